// Package version provides build version information and version comparison
// for plugin releases and IDA versions.
package version

import (
	"fmt"
	"runtime"
)

// Build metadata, overridden with -ldflags "-X".
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

// Short returns just the version number.
func Short() string {
	return Version
}

// Info describes the running binary on one line, for the log file.
func Info() string {
	commit := Commit
	if len(commit) > 8 {
		commit = commit[:8]
	}
	return fmt.Sprintf("idapm %s commit=%s built=%s %s %s/%s",
		Version, commit, BuildDate, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
