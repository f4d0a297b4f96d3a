package env

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

const (
	KeyRoot        = "ABI_AGGREGATOR_ROOT"
	KeyOutDir      = "ABI_AGGREGATOR_OUT_DIR"
	KeyManifest    = "ABI_AGGREGATOR_MANIFEST"
	KeyTable       = "ABI_AGGREGATOR_TABLE"
	KeyConcurrency = "ABI_AGGREGATOR_CONCURRENCY"
	KeyDebug       = "ABI_AGGREGATOR_DEBUG"

	KeyDeploymentOutDir         = "DEPLOYMENT_OUT_DIR"
	KeyDiamondDeploymentOutFile = "DIAMOND_DEPLOYMENT_OUT_FILE"

	DotEnvFile = ".env"
)

// Env is the resolved configuration of one invocation. Every path is absolute.
type Env struct {
	Root        string
	OutDir      string
	Manifest    string
	Table       string
	Concurrency int
	Debug       bool

	DeploymentOutDir         string
	DiamondDeploymentOutFile string
}

// Load resolves the configuration from the process environment, falling back
// to the .env file of the project root. The root itself comes from
// ABI_AGGREGATOR_ROOT or the working directory.
func Load() (*Env, error) {
	root := os.Getenv(KeyRoot)
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("couldn't get working directory: %w", err)
		}
		root = wd
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}

	v := viper.New()
	v.SetDefault(KeyOutDir, "doom-abis")
	v.SetDefault(KeyManifest, "package.json")
	v.SetDefault(KeyConcurrency, 16)
	v.AutomaticEnv()

	dotenv := filepath.Join(root, DotEnvFile)
	if _, err := os.Stat(dotenv); err == nil {
		v.SetConfigFile(dotenv)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read %s: %w", dotenv, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, err
	}

	e := &Env{
		Root:        root,
		OutDir:      resolve(root, v.GetString(KeyOutDir)),
		Manifest:    resolve(root, v.GetString(KeyManifest)),
		Table:       resolve(root, v.GetString(KeyTable)),
		Concurrency: v.GetInt(KeyConcurrency),
		Debug:       v.GetBool(KeyDebug),

		DeploymentOutDir:         resolve(root, v.GetString(KeyDeploymentOutDir)),
		DiamondDeploymentOutFile: v.GetString(KeyDiamondDeploymentOutFile),
	}
	if e.Concurrency < 1 {
		return nil, fmt.Errorf("%s must be at least 1, got %d", KeyConcurrency, e.Concurrency)
	}

	return e, nil
}

// Path resolves p against the project root.
func (e *Env) Path(p string) string {
	return resolve(e.Root, p)
}

func resolve(root, p string) string {
	if p == "" {
		return ""
	}
	if filepath.IsAbs(p) {
		return filepath.Clean(p)
	}
	return filepath.Join(root, p)
}
