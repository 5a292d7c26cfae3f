// Package schemacfg resolves table column metadata.
//
// Resolution is cache-aside over two tiers: a persisted descriptor in a
// Store is used when present; otherwise the live table is introspected and
// the result written back to the Store so later processes skip the
// introspection. Descriptors are validated against a CUE schema on load.
package schemacfg
