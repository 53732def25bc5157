// Package version holds build metadata injected with -ldflags.
package version

import "fmt"

var (
	// Version is the release tag.
	Version = "v0.0.0-dev"

	// GitCommit is the short commit hash.
	GitCommit = "unknown"

	// BuildTime is the UTC build timestamp.
	BuildTime = "unknown"
)

// Info returns a one-line summary suitable for logs and /status.
func Info() string {
	return fmt.Sprintf("%s (%s) built at %s", Version, GitCommit, BuildTime)
}
