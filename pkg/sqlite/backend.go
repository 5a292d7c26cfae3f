// Package sqlite provides the public constructor for the SQLite database
// backend while keeping its implementation internal.
package sqlite

import (
	"log/slog"

	"github.com/mesh-intelligence/rowkeeper/internal/sqlite"
	"github.com/mesh-intelligence/rowkeeper/pkg/types"
)

// Option configures a backend.
type Option = sqlite.Option

// WithLogger sets the logger used by the backend and its mappers.
func WithLogger(l *slog.Logger) Option {
	return sqlite.WithLogger(l)
}

// NewBackend creates a detached SQLite backend. Call Attach before use.
//
// Example:
//
//	db := sqlite.NewBackend()
//	err := db.Attach(types.Config{
//	    Driver:  types.DriverSQLite,
//	    DataDir: ".rowkeeper-db",
//	})
//	defer db.Detach()
//	articles, err := db.Mapper("articles")
func NewBackend(opts ...Option) types.Database {
	return sqlite.NewBackend(opts...)
}
