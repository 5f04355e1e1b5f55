// Package version holds build metadata, overridden at build time with ldflags.
package version

import (
	"fmt"
	"runtime"
)

var (
	// Version is the release version.
	Version = "development"
	// Commit is the git commit hash.
	Commit = "unknown"
	// Date is the build date.
	Date = "unknown"
)

// String returns the version, with the commit appended when known.
func String() string {
	if Commit != "unknown" {
		return Version + "+" + Commit
	}
	return Version
}

// UserAgent is sent with every API request.
func UserAgent() string {
	return "retroshelf/" + String()
}

// Long returns the multi-line version report printed by the version command.
func Long() string {
	return fmt.Sprintf("retroshelf %s\ncommit: %s\nbuilt: %s\ngo: %s %s/%s",
		Version, Commit, Date, runtime.Version(), runtime.GOOS, runtime.GOARCH)
}
