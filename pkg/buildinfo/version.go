// Package buildinfo holds the version stamped into release binaries.
//
// Release builds set the variables with -ldflags, for example
//
//	-X github.com/matzehuels/mindtree/pkg/buildinfo.Version=v0.3.0
//
// and likewise Commit and Date. Local builds report "dev".
package buildinfo

import "fmt"

var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// Template returns the cobra version template, e.g.
//
//	mindtree version v0.3.0 (commit 1a2b3c4, built 2025-01-02)
func Template() string {
	return fmt.Sprintf("{{.Name}} version %s (commit %s, built %s)\n", Version, short(Commit), Date)
}

func short(commit string) string {
	if len(commit) > 7 {
		return commit[:7]
	}
	return commit
}
