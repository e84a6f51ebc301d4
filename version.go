package unildd

import "runtime"

// Version is the semantic version of the unildd library.
const Version = "0.3.0"

// GetVersion returns the current version string.
func GetVersion() string {
	return Version
}

// VersionInfo contains detailed version information.
type VersionInfo struct {
	// Version is the semantic version (e.g., "0.3.0")
	Version string `json:"version" yaml:"version"`
	// GitCommit is the git commit hash (set via ldflags at build time)
	GitCommit string `json:"gitCommit" yaml:"gitCommit"`
	// BuildTime is the build timestamp (set via ldflags at build time)
	BuildTime string `json:"buildTime" yaml:"buildTime"`
	// GoVersion is the Go version used to build
	GoVersion string `json:"goVersion" yaml:"goVersion"`
}

// GetVersionInfo returns detailed version information.
//
// GitCommit and BuildTime are populated at build time via -ldflags and
// show as "unknown" otherwise. GoVersion falls back to runtime.Version.
//
// Example build command:
//
//	go build -ldflags="-X github.com/simonhull/unildd.gitCommit=$(git rev-parse HEAD) \
//	  -X github.com/simonhull/unildd.buildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)" ./cmd/unildd
func GetVersionInfo() VersionInfo {
	goVer := goVersion
	if goVer == "unknown" {
		goVer = runtime.Version()
	}

	return VersionInfo{
		Version:   Version,
		GitCommit: gitCommit,
		BuildTime: buildTime,
		GoVersion: goVer,
	}
}

// Variables populated at build time via -ldflags.
var (
	gitCommit = "unknown"
	buildTime = "unknown"
	goVersion = "unknown"
)
