package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		KeyOutDir, KeyManifest, KeyTable, KeyConcurrency, KeyDebug,
		KeyDeploymentOutDir, KeyDiamondDeploymentOutFile,
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	t.Setenv(KeyRoot, root)

	e, err := Load()
	require.NoError(t, err)

	assert.Equal(t, root, e.Root)
	assert.Equal(t, filepath.Join(root, "doom-abis"), e.OutDir)
	assert.Equal(t, filepath.Join(root, "package.json"), e.Manifest)
	assert.Empty(t, e.Table)
	assert.Equal(t, 16, e.Concurrency)
	assert.False(t, e.Debug)
	assert.Empty(t, e.DeploymentOutDir)
}

func TestLoad_DotEnv(t *testing.T) {
	clearEnv(t)
	root := t.TempDir()
	t.Setenv(KeyRoot, root)

	dotenv := "DEPLOYMENT_OUT_DIR=./deployments\nDIAMOND_DEPLOYMENT_OUT_FILE=diamonds.json\nABI_AGGREGATOR_CONCURRENCY=4\n"
	require.NoError(t, os.WriteFile(filepath.Join(root, DotEnvFile), []byte(dotenv), 0o644))

	e, err := Load()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "deployments"), e.DeploymentOutDir)
	assert.Equal(t, "diamonds.json", e.DiamondDeploymentOutFile)
	assert.Equal(t, 4, e.Concurrency)

	t.Run("process environment wins", func(t *testing.T) {
		abs := t.TempDir()
		t.Setenv(KeyDeploymentOutDir, abs)
		t.Setenv(KeyConcurrency, "2")

		e, err := Load()
		require.NoError(t, err)
		assert.Equal(t, abs, e.DeploymentOutDir)
		assert.Equal(t, 2, e.Concurrency)
	})
}

func TestLoad_InvalidConcurrency(t *testing.T) {
	clearEnv(t)
	t.Setenv(KeyRoot, t.TempDir())
	t.Setenv(KeyConcurrency, "0")

	_, err := Load()
	assert.ErrorContains(t, err, KeyConcurrency)
}
