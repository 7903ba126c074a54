// Package version carries vecmcp build metadata, set with -ldflags "-X".
package version

import "fmt"

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String renders the build as "vecmcp <version> (<commit>, <date>)".
func String() string {
	return fmt.Sprintf("vecmcp %s (%s, %s)", Version, Commit, Date)
}
