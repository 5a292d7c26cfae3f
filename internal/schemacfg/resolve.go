package schemacfg

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/mesh-intelligence/rowkeeper/pkg/types"
)

// Introspector reads column metadata from the live database.
type Introspector interface {
	DescribeTable(table string) ([]types.Column, error)
}

// Store persists schema descriptors.
type Store interface {
	// Load returns the descriptor for table, or ErrDescriptorNotFound.
	Load(table string) (*types.Schema, error)
	Save(schema *types.Schema) error
}

// ErrDescriptorNotFound is returned by Store.Load when no descriptor exists.
var ErrDescriptorNotFound = errors.New("schema descriptor not found")

// ErrNoColumns is returned when introspection finds no columns, which for
// SQLite means the table does not exist.
var ErrNoColumns = errors.New("no columns")

// Resolver resolves schemas from a Store and an Introspector. Either may be
// nil; a nil Store disables descriptor caching.
type Resolver struct {
	store        Store
	introspector Introspector
	logger       *slog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		r.logger = l
	}
}

// NewResolver creates a Resolver.
func NewResolver(store Store, introspector Introspector, opts ...Option) *Resolver {
	r := &Resolver{store: store, introspector: introspector, logger: slog.Default()}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns the schema for table. A stored descriptor wins; a missing
// or unreadable one falls back to introspection, and the introspected schema
// is saved for next time. A failed save is logged and does not fail the
// resolution. When neither tier yields metadata Resolve returns a
// *types.SchemaResolutionError.
func (r *Resolver) Resolve(table string) (*types.Schema, error) {
	var causes []error

	if r.store != nil {
		s, err := r.store.Load(table)
		if err == nil {
			r.logger.Debug("schema loaded from descriptor", "table", table, "columns", len(s.Columns))
			return s, nil
		}
		if !errors.Is(err, ErrDescriptorNotFound) {
			r.logger.Warn("unreadable schema descriptor, introspecting", "table", table, "error", err)
			causes = append(causes, err)
		}
	}

	if r.introspector == nil {
		causes = append(causes, errors.New("no introspector configured"))
		return nil, &types.SchemaResolutionError{Table: table, Err: errors.Join(causes...)}
	}

	cols, err := r.introspector.DescribeTable(table)
	if err == nil && len(cols) == 0 {
		err = fmt.Errorf("%w: %w", types.ErrTableNotFound, ErrNoColumns)
	}
	if err != nil {
		causes = append(causes, fmt.Errorf("introspecting: %w", err))
		return nil, &types.SchemaResolutionError{Table: table, Err: errors.Join(causes...)}
	}

	s := &types.Schema{Table: table, Columns: cols}
	r.logger.Info("schema introspected", "table", table, "columns", len(cols))

	if r.store != nil {
		if err := r.store.Save(s); err != nil {
			r.logger.Warn("saving schema descriptor failed", "table", table, "error", err)
		}
	}
	return s, nil
}
