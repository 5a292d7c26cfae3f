package types

import "iter"

// Mapper translates Records of one table to and from rows.
//
// Find, FindAll, LoadValues, Insert, Update and Delete fail with an
// *OperationFailedError carrying the operation name and the cause.
type Mapper interface {
	Persister

	// Table returns the mapped table name.
	Table() string

	// Schema resolves the table schema on first use and caches it for the
	// mapper's lifetime.
	Schema() (*Schema, error)

	// New returns an empty record in StateNew with the mapper's behaviors
	// attached.
	New() (*Record, error)

	// Find returns the first row matching criteria, or (nil, nil) when no
	// row matches. criteria is nil (any row), a scalar primary key value
	// for single-column keys, or a map of column to value equalities.
	Find(criteria any) (*Record, error)

	// FindAll returns a lazy collection of rows matching conditions.
	FindAll(conditions map[string]any) Collection

	// LoadValues refreshes columns (all of them when none are named) of a
	// record identified by its primary key, without marking them modified.
	LoadValues(r *Record, columns ...string) error

	// Insert writes every assigned column, reads back an auto-increment
	// key and moves the record to StateExisting.
	Insert(r *Record) error

	// Update writes the modified columns. An update with nothing modified
	// issues no query but still fires the update events.
	Update(r *Record) error

	// Delete removes the row keyed by the record's primary key and moves the
	// record to StateDeleted.
	Delete(r *Record) error
}

// Collection is a lazy, restartable sequence of records. Each traversal
// runs the query again.
type Collection interface {
	All() ([]*Record, error)
	Each(fn func(*Record) error) error
	Records() iter.Seq2[*Record, error]
}
