package types

import (
	"errors"
	"fmt"
	"strings"
)

// Record and mapper errors.
var (
	ErrUnknownColumn   = errors.New("unknown column")
	ErrNotFound        = errors.New("row not found")
	ErrRecordDeleted   = errors.New("record is deleted")
	ErrNoPrimaryKey    = errors.New("table has no primary key")
	ErrCompositeKey    = errors.New("table has a composite primary key")
	ErrInvalidCriteria = errors.New("invalid find criteria")
	ErrDetached        = errors.New("record is not bound to a mapper")
)

// Operation names a mapper operation in an OperationFailedError.
type Operation string

// Mapper operations.
const (
	OpFind       Operation = "find"
	OpFindAll    Operation = "findAll"
	OpLoadValues Operation = "loadValues"
	OpInsert     Operation = "insert"
	OpUpdate     Operation = "update"
	OpDelete     Operation = "delete"
)

// SchemaResolutionError reports that column metadata for a table could not
// be obtained from either the descriptor store or live introspection.
type SchemaResolutionError struct {
	Table string
	Err   error
}

func (e *SchemaResolutionError) Error() string {
	return fmt.Sprintf("resolving schema for table %q: %v", e.Table, e.Err)
}

func (e *SchemaResolutionError) Unwrap() error { return e.Err }

// MissingKeyError reports key columns that were required but never set.
type MissingKeyError struct {
	Columns []string
}

func (e *MissingKeyError) Error() string {
	return "key columns not set: " + strings.Join(e.Columns, ", ")
}

// OperationFailedError wraps any failure raised while a mapper operation
// runs: collaborator errors, hook errors and record contract violations.
// The cause is kept intact for errors.Is and errors.As.
type OperationFailedError struct {
	Op    Operation
	Table string
	Err   error
}

func (e *OperationFailedError) Error() string {
	return fmt.Sprintf("%s on %s failed: %v", e.Op, e.Table, e.Err)
}

func (e *OperationFailedError) Unwrap() error { return e.Err }

// IsMissingKey reports whether err carries a MissingKeyError.
func IsMissingKey(err error) bool {
	var mk *MissingKeyError
	return errors.As(err, &mk)
}

// IsSchemaResolution reports whether err carries a SchemaResolutionError.
func IsSchemaResolution(err error) bool {
	var se *SchemaResolutionError
	return errors.As(err, &se)
}
