package app

import "fmt"

// Build-time variables, injected via -ldflags.
var (
	gitVersion = "v0.0.0-dev"
	gitCommit  = "unknown"
	buildDate  = "unknown"
)

// Version returns the human readable version string.
func Version() string {
	return fmt.Sprintf("%s (commit %s, built %s)", gitVersion, gitCommit, buildDate)
}

// GetVersion returns the bare version tag.
func GetVersion() string {
	return gitVersion
}
