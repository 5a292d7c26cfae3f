package types

import "errors"

// Database is an attachable backend handing out one Mapper per table.
type Database interface {
	// Attach connects to the backend described by config. Returns
	// ErrAlreadyAttached if called while attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent.
	Detach() error

	// Mapper returns the mapper for table, creating it on first use with
	// the given behaviors. Later calls return the same mapper and ignore
	// behaviors. Returns ErrTableNotFound if the table does not exist.
	Mapper(table string, behaviors ...Behavior) (Mapper, error)
}

// Database lifecycle errors.
var (
	ErrDatabaseDetached = errors.New("database is detached")
	ErrAlreadyAttached  = errors.New("database is already attached")
	ErrTableNotFound    = errors.New("table not found")
)
