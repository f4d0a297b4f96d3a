// Package record archives deployed contract ABIs and facet addresses under
// the deployment output directory, keyed by package version.
package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// LocalChainID is the chain id of a local anvil node. Deployments there are
// not recorded unless AllChains is set.
const LocalChainID = "31337"

type Deployment struct {
	ChainID   string
	Timestamp string
	AllChains bool
}

// Skip reports whether the deployment should not be recorded.
func (d Deployment) Skip() bool {
	return d.ChainID == LocalChainID && !d.AllChains
}

// Time parses Timestamp as unix seconds.
func (d Deployment) Time() (time.Time, error) {
	sec, err := strconv.ParseInt(d.Timestamp, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", d.Timestamp, err)
	}
	return time.Unix(sec, 0).UTC(), nil
}

type Options struct {
	// Root holds the forge out/ directory.
	Root             string
	DeploymentOutDir string
	Version          string
	// FacetsFile is the name of the facet address record inside the ABI directory.
	FacetsFile string
	Logger     *zap.Logger
}

type Recorder struct {
	root       string
	dir        string
	version    string
	facetsFile string
	logger     *zap.Logger
}

func New(opts Options) (*Recorder, error) {
	if opts.DeploymentOutDir == "" {
		return nil, errors.New("DEPLOYMENT_OUT_DIR is not set")
	}
	if opts.Version == "" {
		return nil, errors.New("no package version to record under")
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{
		root:       opts.Root,
		dir:        filepath.Join(opts.DeploymentOutDir, opts.Version, "abi"),
		version:    opts.Version,
		facetsFile: opts.FacetsFile,
		logger:     logger,
	}, nil
}

// Dir is where recorded ABIs are kept.
func (r *Recorder) Dir() string {
	return r.dir
}

// RecordABI copies the build artifact of contract to <dir>/<contract>.sol and
// returns the destination, or "" when the deployment is skipped.
func (r *Recorder) RecordABI(contract string, d Deployment) (string, error) {
	if err := checkName("contract", contract); err != nil {
		return "", err
	}
	if d.Skip() {
		r.logger.Debug("local chain, not recording abi", zap.String("contract", contract))
		return "", nil
	}
	at, err := d.Time()
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", err
	}
	src := filepath.Join(r.root, "out", contract+".sol", contract+".json")
	dst := filepath.Join(r.dir, contract+".sol")
	if err := copyFile(src, dst); err != nil {
		return "", fmt.Errorf("record abi of %s: %w", contract, err)
	}

	r.logger.Info("recorded abi",
		zap.String("contract", contract),
		zap.String("chain", d.ChainID),
		zap.Time("deployed", at),
		zap.String("path", dst),
	)
	return dst, nil
}

// Facets maps version -> diamond -> contract -> address. Entries recorded by
// other tools may carry other values; they are kept as decoded.
type Facets map[string]any

// RecordFacet stores address as the deployment of contract in diamond for the
// current version and returns the record path, or "" when skipped. An
// unreadable record is replaced.
func (r *Recorder) RecordFacet(diamond, contract, address string, d Deployment) (string, error) {
	if r.facetsFile == "" {
		return "", errors.New("DIAMOND_DEPLOYMENT_OUT_FILE is not set")
	}
	if err := checkName("diamond", diamond); err != nil {
		return "", err
	}
	if err := checkName("contract", contract); err != nil {
		return "", err
	}
	if d.Skip() {
		r.logger.Debug("local chain, not recording facet", zap.String("diamond", diamond), zap.String("contract", contract))
		return "", nil
	}
	if _, err := d.Time(); err != nil {
		return "", err
	}

	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(r.dir, r.facetsFile)

	facets, err := r.loadFacets(path)
	if err != nil {
		return "", err
	}
	facets.set(r.version, diamond, contract, address)

	data, err := json.MarshalIndent(facets, "", "    ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write facet record: %w", err)
	}

	r.logger.Info("recorded facet",
		zap.String("diamond", diamond),
		zap.String("contract", contract),
		zap.String("address", address),
		zap.String("chain", d.ChainID),
	)
	return path, nil
}

// LoadFacets reads the facet record of the current version directory.
func (r *Recorder) LoadFacets() (Facets, error) {
	return r.loadFacets(filepath.Join(r.dir, r.facetsFile))
}

func (r *Recorder) loadFacets(path string) (Facets, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Facets{}, nil
	}
	if err != nil {
		return nil, err
	}

	// Numbers stay json.Number so block timestamps and the like are written
	// back unchanged.
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var facets Facets
	if err := dec.Decode(&facets); err != nil {
		r.logger.Warn("discarding unreadable facet record", zap.String("path", path), zap.Error(err))
		return Facets{}, nil
	}
	if facets == nil {
		facets = Facets{}
	}
	return facets, nil
}

// set stores address under version/diamond/contract, leaving every other
// entry in place. A level that is not an object is replaced.
func (f Facets) set(version, diamond, contract, address string) {
	diamonds, ok := f[version].(map[string]any)
	if !ok {
		diamonds = map[string]any{}
		f[version] = diamonds
	}
	contracts, ok := diamonds[diamond].(map[string]any)
	if !ok {
		contracts = map[string]any{}
		diamonds[diamond] = contracts
	}
	contracts[contract] = address
}

func checkName(kind, name string) error {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return fmt.Errorf("invalid %s name %q", kind, name)
	}
	return nil
}

func copyFile(src, dst string) (err error) {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, out.Close())
	}()

	_, err = io.Copy(out, in)
	return err
}
