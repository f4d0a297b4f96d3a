package record

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const deployedAt = "1700000000"

func newRecorder(t *testing.T) (*Recorder, string) {
	t.Helper()
	root := t.TempDir()
	r, err := New(Options{
		Root:             root,
		DeploymentOutDir: filepath.Join(root, "deployments"),
		Version:          "2.0.0",
		FacetsFile:       "diamonds.json",
	})
	require.NoError(t, err)
	return r, root
}

func writeBuildOutput(t *testing.T, root, contract, body string) {
	t.Helper()
	dir := filepath.Join(root, "out", contract+".sol")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, contract+".json"), []byte(body), 0o644))
}

func TestDeployment_Skip(t *testing.T) {
	assert.True(t, Deployment{ChainID: LocalChainID}.Skip())
	assert.False(t, Deployment{ChainID: LocalChainID, AllChains: true}.Skip())
	assert.False(t, Deployment{ChainID: "1"}.Skip())
}

func TestNew_RequiresDeploymentDir(t *testing.T) {
	_, err := New(Options{Version: "1.0.0"})
	assert.ErrorContains(t, err, "DEPLOYMENT_OUT_DIR")

	_, err = New(Options{DeploymentOutDir: t.TempDir()})
	assert.ErrorContains(t, err, "version")
}

func TestRecordABI(t *testing.T) {
	r, root := newRecorder(t)
	body := `{"abi":[{"type":"function","name":"addTag"}]}`
	writeBuildOutput(t, root, "AppManager", body)

	dst, err := r.RecordABI("AppManager", Deployment{ChainID: "80001", Timestamp: deployedAt})
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "deployments", "2.0.0", "abi", "AppManager.sol"), dst)

	got, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, body, string(got))
}

func TestRecordABI_LocalChain(t *testing.T) {
	r, root := newRecorder(t)
	writeBuildOutput(t, root, "AppManager", `{"abi":[]}`)

	dst, err := r.RecordABI("AppManager", Deployment{ChainID: LocalChainID, Timestamp: deployedAt})
	require.NoError(t, err)
	assert.Empty(t, dst)
	assert.NoDirExists(t, r.Dir())

	dst, err = r.RecordABI("AppManager", Deployment{ChainID: LocalChainID, Timestamp: deployedAt, AllChains: true})
	require.NoError(t, err)
	assert.FileExists(t, dst)
}

func TestRecordABI_Errors(t *testing.T) {
	r, _ := newRecorder(t)

	_, err := r.RecordABI("Missing", Deployment{ChainID: "1", Timestamp: deployedAt})
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = r.RecordABI("AppManager", Deployment{ChainID: "1", Timestamp: "yesterday"})
	assert.ErrorContains(t, err, "invalid timestamp")

	_, err = r.RecordABI("../AppManager", Deployment{ChainID: "1", Timestamp: deployedAt})
	assert.ErrorContains(t, err, "invalid contract name")
}

func TestRecordFacet(t *testing.T) {
	r, _ := newRecorder(t)
	d := Deployment{ChainID: "11155111", Timestamp: deployedAt}

	path, err := r.RecordFacet("RuleProcessorDiamond", "ERC20RuleProcessorFacet", "0x1111", d)
	require.NoError(t, err)
	_, err = r.RecordFacet("RuleProcessorDiamond", "RuleDataFacet", "0x2222", d)
	require.NoError(t, err)
	_, err = r.RecordFacet("HandlerDiamond", "FeesFacet", "0x3333", d)
	require.NoError(t, err)
	_, err = r.RecordFacet("RuleProcessorDiamond", "ERC20RuleProcessorFacet", "0x4444", d)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(r.Dir(), "diamonds.json"), path)

	facets, err := r.LoadFacets()
	require.NoError(t, err)
	assert.Equal(t, Facets{
		"2.0.0": map[string]any{
			"RuleProcessorDiamond": map[string]any{
				"ERC20RuleProcessorFacet": "0x4444",
				"RuleDataFacet":           "0x2222",
			},
			"HandlerDiamond": map[string]any{"FeesFacet": "0x3333"},
		},
	}, facets)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n    \"2.0.0\": {")
}

func TestRecordFacet_ReplacesUnreadableRecord(t *testing.T) {
	r, _ := newRecorder(t)
	require.NoError(t, os.MkdirAll(r.Dir(), 0o755))

	for _, body := range []string{"", "not json", "null", "[]", `{"2.0.0": `} {
		require.NoError(t, os.WriteFile(filepath.Join(r.Dir(), "diamonds.json"), []byte(body), 0o644))

		_, err := r.RecordFacet("HandlerDiamond", "FeesFacet", "0xabcd", Deployment{ChainID: "1", Timestamp: deployedAt})
		require.NoError(t, err, "body %q", body)

		facets, err := r.LoadFacets()
		require.NoError(t, err)
		assert.Equal(t, Facets{"2.0.0": map[string]any{"HandlerDiamond": map[string]any{"FeesFacet": "0xabcd"}}}, facets)
	}
}

func TestRecordFacet_LocalChain(t *testing.T) {
	r, _ := newRecorder(t)

	path, err := r.RecordFacet("HandlerDiamond", "FeesFacet", "0xabcd", Deployment{ChainID: LocalChainID, Timestamp: deployedAt})
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.NoFileExists(t, filepath.Join(r.Dir(), "diamonds.json"))
}

func TestRecordFacet_RequiresFile(t *testing.T) {
	r, err := New(Options{DeploymentOutDir: t.TempDir(), Version: "1.0.0"})
	require.NoError(t, err)

	_, err = r.RecordFacet("HandlerDiamond", "FeesFacet", "0x1", Deployment{ChainID: "1", Timestamp: deployedAt})
	assert.ErrorContains(t, err, "DIAMOND_DEPLOYMENT_OUT_FILE")
}

func TestRecordFacet_KeepsHistory(t *testing.T) {
	r, _ := newRecorder(t)
	require.NoError(t, os.MkdirAll(r.Dir(), 0o755))
	path := filepath.Join(r.Dir(), "diamonds.json")
	prior := `{
    "1.3.0": {"Rule": {"A": "0x1", "deployedAt": 1700000000}},
    "2.0.0": {"Rule": {"A": "0x5"}, "Handler": "pending", "notes": ["kept"]}
}`
	require.NoError(t, os.WriteFile(path, []byte(prior), 0o644))

	_, err := r.RecordFacet("Rule", "B", "0x2", Deployment{ChainID: "1", Timestamp: deployedAt})
	require.NoError(t, err)
	_, err = r.RecordFacet("Handler", "FeesFacet", "0x3", Deployment{ChainID: "1", Timestamp: deployedAt})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"1.3.0": {"Rule": {"A": "0x1", "deployedAt": 1700000000}},
		"2.0.0": {
			"Rule": {"A": "0x5", "B": "0x2"},
			"Handler": {"FeesFacet": "0x3"},
			"notes": ["kept"]
		}
	}`, string(data))
	assert.Contains(t, string(data), `"deployedAt": 1700000000`)
}

func TestRecord_LocalChainIgnoresTimestamp(t *testing.T) {
	r, _ := newRecorder(t)
	d := Deployment{ChainID: LocalChainID, Timestamp: "not-a-timestamp"}

	dst, err := r.RecordABI("AppManager", d)
	require.NoError(t, err)
	assert.Empty(t, dst)

	path, err := r.RecordFacet("HandlerDiamond", "FeesFacet", "0x1", d)
	require.NoError(t, err)
	assert.Empty(t, path)
	assert.NoDirExists(t, r.Dir())
}
