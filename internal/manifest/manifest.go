// Package manifest reads the package manifest that versions published ABIs.
package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"golang.org/x/mod/semver"
)

// ErrNotFound is returned by Version when the manifest file does not exist.
var ErrNotFound = errors.New("manifest not found")

type packageJSON struct {
	Name    string `json:"name"`
	Version string `json:"version"`
}

// Version returns the "version" field of the package.json at path. The value
// must be a semantic version, with or without a leading "v".
func Version(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return "", fmt.Errorf("read manifest %s: %w", path, err)
	}

	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return "", fmt.Errorf("parse manifest %s: %w", path, err)
	}
	if pkg.Version == "" {
		return "", fmt.Errorf("manifest %s: missing version", path)
	}
	if !IsValid(pkg.Version) {
		return "", fmt.Errorf("manifest %s: %q is not a semantic version", path, pkg.Version)
	}

	return pkg.Version, nil
}

// IsValid reports whether v is a full semantic version (major.minor.patch).
func IsValid(v string) bool {
	if v == "" {
		return false
	}
	canonical := v
	if canonical[0] != 'v' {
		canonical = "v" + canonical
	}
	return semver.IsValid(canonical) && semver.Canonical(canonical) == stripBuild(canonical)
}

func stripBuild(v string) string {
	if b := semver.Build(v); b != "" {
		return v[:len(v)-len(b)]
	}
	return v
}
