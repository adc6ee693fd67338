// ABOUTME: Build version information
// ABOUTME: Version and Commit are overridden at link time with -ldflags -X
package version

import "fmt"

const Product = "hxplay"

var (
	Version = "0.3.0"
	Commit  = "unknown"
)

// String returns the product name with version and commit
func String() string {
	return fmt.Sprintf("%s %s (%s)", Product, Version, Commit)
}
