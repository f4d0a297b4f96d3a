package version

import (
	"runtime/debug"
	"strings"
)

const versionLocal = "local"

// Version is set at link time: -ldflags "-X .../internal/version.Version=v1.2.0".
var Version = versionLocal

func GetVersion() string {
	if Version != versionLocal {
		return Version
	}

	info, ok := debug.ReadBuildInfo()
	if !ok {
		return Version
	}
	return fromModule(info.Main.Version)
}

// fromModule marks a module version as a local build, or returns "local" for
// a development build without one.
func fromModule(v string) string {
	if v == "" || v == "(devel)" {
		return versionLocal
	}
	parts := strings.Split(v, "-")
	return parts[0] + "-" + versionLocal
}
