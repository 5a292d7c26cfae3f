// Package rowkeeper holds build metadata for the rowkeeper module.
package rowkeeper

// Version is the release version, without a leading "v".
const Version = "0.1.0"

// ModulePath is the Go module path.
const ModulePath = "github.com/mesh-intelligence/rowkeeper"
