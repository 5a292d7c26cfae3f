// Package sqlite implements the SQLite database backend: connection setup,
// live schema introspection and the per-table mapper registry.
package sqlite

import (
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/mesh-intelligence/rowkeeper/internal/mapper"
	"github.com/mesh-intelligence/rowkeeper/internal/schemacfg"
	"github.com/mesh-intelligence/rowkeeper/pkg/types"
)

// Compile-time interface check.
var _ types.Database = (*Backend)(nil)

// Backend implements types.Database on a SQLite file or in-memory database.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	store    schemacfg.Store
	mappers  map[string]*mapper.Mapper
	logger   *slog.Logger
}

// Option configures a Backend.
type Option func(*Backend)

// WithLogger sets the logger handed to every mapper.
func WithLogger(l *slog.Logger) Option {
	return func(b *Backend) {
		b.logger = l
	}
}

// NewBackend creates a detached backend. Call Attach before use.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{
		mappers: make(map[string]*mapper.Mapper),
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Attach opens the database described by config. DataDir is created if
// needed. Schema descriptors are cached under config.SchemaPath when it is
// set. Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	if config.DataDir != "" {
		if err := os.MkdirAll(config.DataDir, 0o755); err != nil {
			return fmt.Errorf("creating data directory: %w", err)
		}
	}

	var store schemacfg.Store
	if dir := config.SchemaPath(); dir != "" {
		fs, err := schemacfg.NewFileStore(dir, config.Format())
		if err != nil {
			return err
		}
		store = fs
	}

	db, err := Open(config)
	if err != nil {
		return err
	}

	b.db = db
	b.store = store
	b.config = config
	b.attached = true
	b.logger.Debug("database attached", "driver", config.Driver, "source", config.DataSource())
	return nil
}

// Detach closes the database. All mappers handed out become unusable.
// Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}
	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return err
		}
		b.db = nil
	}
	b.attached = false
	b.store = nil
	b.mappers = make(map[string]*mapper.Mapper)
	b.logger.Debug("database detached")
	return nil
}

// Mapper returns the mapper for table. The first call creates it with
// behaviors and resolves its schema; later calls return the same mapper and
// ignore behaviors. Returns ErrTableNotFound if the table has no columns and
// no descriptor.
func (b *Backend) Mapper(table string, behaviors ...types.Behavior) (types.Mapper, error) {
	b.mu.RLock()
	if !b.attached {
		b.mu.RUnlock()
		return nil, types.ErrDatabaseDetached
	}
	if m, ok := b.mappers[table]; ok {
		b.mu.RUnlock()
		return m, nil
	}
	b.mu.RUnlock()

	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil, types.ErrDatabaseDetached
	}
	if m, ok := b.mappers[table]; ok {
		return m, nil
	}

	m := mapper.New(table, b.db, b.store, NewIntrospector(b.db),
		mapper.WithBehaviors(behaviors...),
		mapper.WithLogger(b.logger),
	)
	if _, err := m.Schema(); err != nil {
		return nil, err
	}
	b.mappers[table] = m
	return m, nil
}

// Exec runs a SQL script, such as the DDL creating the mapped tables.
func (b *Backend) Exec(script string) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return types.ErrDatabaseDetached
	}
	if _, err := b.db.Exec(script); err != nil {
		return fmt.Errorf("executing script: %w", err)
	}
	return nil
}

// Tables lists the user tables of the attached database.
func (b *Backend) Tables() ([]string, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrDatabaseDetached
	}
	rows, err := b.db.Query(`SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var n string
		if err := rows.Scan(&n); err != nil {
			return nil, fmt.Errorf("listing tables: %w", err)
		}
		names = append(names, n)
	}
	return names, rows.Err()
}
