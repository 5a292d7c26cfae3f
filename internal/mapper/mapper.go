package mapper

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mesh-intelligence/rowkeeper/internal/query"
	"github.com/mesh-intelligence/rowkeeper/internal/schemacfg"
	"github.com/mesh-intelligence/rowkeeper/pkg/types"
)

// Compile-time interface check.
var _ types.Mapper = (*Mapper)(nil)

// ErrForeignRecord is returned when a record of another table is passed to
// a mapper.
var ErrForeignRecord = errors.New("record belongs to another table")

// Mapper maps the rows of one table. It is safe for concurrent use; the
// records it hands out are not.
type Mapper struct {
	table     string
	q         *query.Builder
	resolver  *schemacfg.Resolver
	behaviors []types.Behavior
	logger    *slog.Logger

	mu     sync.Mutex
	schema *types.Schema
}

// Option configures a Mapper.
type Option func(*Mapper)

// WithBehaviors attaches behaviors to every record the mapper creates.
func WithBehaviors(behaviors ...types.Behavior) Option {
	return func(m *Mapper) {
		m.behaviors = append(m.behaviors, behaviors...)
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Mapper) {
		m.logger = l
	}
}

// New creates a Mapper for table running statements on exec. The schema is
// resolved from store and introspector on first use; store may be nil.
func New(table string, exec query.Executor, store schemacfg.Store, introspector schemacfg.Introspector, opts ...Option) *Mapper {
	m := &Mapper{
		table:  table,
		q:      query.New(exec),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.resolver = schemacfg.NewResolver(store, introspector, schemacfg.WithLogger(m.logger))
	return m
}

// Table returns the mapped table name.
func (m *Mapper) Table() string {
	return m.table
}

// Schema resolves the schema once and caches it. Concurrent first calls
// wait for a single resolution. A failed resolution is not cached.
func (m *Mapper) Schema() (*types.Schema, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.schema != nil {
		return m.schema, nil
	}
	s, err := m.resolver.Resolve(m.table)
	if err != nil {
		return nil, err
	}
	m.schema = s
	return s, nil
}

// New returns an empty record with the mapper's behaviors attached.
func (m *Mapper) New() (*types.Record, error) {
	s, err := m.Schema()
	if err != nil {
		return nil, err
	}
	return m.newRecord(s), nil
}

// newRecord is the only place behaviors are attached, so each record runs
// every Setup exactly once.
func (m *Mapper) newRecord(s *types.Schema) *types.Record {
	r := types.NewRecord(s, m)
	for _, b := range m.behaviors {
		b.Setup(r)
	}
	return r
}

// Find returns the first matching row as an existing record, or (nil, nil).
func (m *Mapper) Find(criteria any) (*types.Record, error) {
	r, err := m.find(criteria)
	if err != nil {
		return nil, m.fail(types.OpFind, err)
	}
	return r, nil
}

func (m *Mapper) find(criteria any) (*types.Record, error) {
	s, err := m.Schema()
	if err != nil {
		return nil, err
	}
	where, err := m.criteria(s, criteria)
	if err != nil {
		return nil, err
	}
	row, err := m.q.Select().From(m.table).Where(where).Limit(1).Fetch()
	if err != nil {
		return nil, fmt.Errorf("executing select: %w", err)
	}
	if row == nil {
		return nil, nil
	}
	return m.hydrate(s, row)
}

// FindAll returns a collection of the rows matching conditions, ordered by
// primary key.
func (m *Mapper) FindAll(conditions map[string]any) types.Collection {
	return &Collection{m: m, conditions: conditions}
}

// LoadValues refreshes columns of r from its row without marking them
// modified. With no columns named, every column is refreshed.
func (m *Mapper) LoadValues(r *types.Record, columns ...string) error {
	if err := m.loadValues(r, columns); err != nil {
		return m.fail(types.OpLoadValues, err)
	}
	return nil
}

func (m *Mapper) loadValues(r *types.Record, columns []string) error {
	s, err := m.Schema()
	if err != nil {
		return err
	}
	if err := m.owns(r); err != nil {
		return err
	}
	key, err := m.key(s, r)
	if err != nil {
		return err
	}
	for _, c := range columns {
		if !s.Has(c) {
			return fmt.Errorf("%w %q", types.ErrUnknownColumn, c)
		}
	}
	row, err := m.q.Select(columns...).From(m.table).Where(key).Limit(1).Fetch()
	if err != nil {
		return fmt.Errorf("executing select: %w", err)
	}
	if row == nil {
		return types.ErrNotFound
	}
	for col, val := range row {
		if err := r.Load(col, val); err != nil {
			return err
		}
	}
	return nil
}

// Save inserts a new record and updates any other.
func (m *Mapper) Save(r *types.Record) error {
	if r.State() == types.StateNew {
		return m.Insert(r)
	}
	return m.Update(r)
}

// Insert writes every assigned column. Columns never assigned are left to
// their database defaults. An auto-increment key is read back and assigned
// before the after-insert hooks run.
func (m *Mapper) Insert(r *types.Record) error {
	if err := m.insert(r); err != nil {
		return m.fail(types.OpInsert, err)
	}
	return nil
}

func (m *Mapper) insert(r *types.Record) error {
	s, err := m.writable(r)
	if err != nil {
		return err
	}
	if err := r.Fire(types.EventBeforeInsert); err != nil {
		return hookError(types.EventBeforeInsert, err)
	}

	values := make(map[string]any, len(s.Columns))
	for _, c := range s.Columns {
		if !r.HasValue(c.Name) {
			continue
		}
		v, err := r.Get(c.Name)
		if err != nil {
			return err
		}
		values[c.Name] = coerce(v, c.Type)
	}

	res, err := m.q.Insert(m.table, values).Execute()
	if err != nil {
		return fmt.Errorf("executing insert: %w", err)
	}
	// The row exists from here on, even if reading it back fails.
	r.SetState(types.StateExisting)
	r.ClearModified()

	if err := reload(r, values); err != nil {
		return err
	}
	if pk, ok := generatedKey(s, values); ok {
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("reading generated key: %w", err)
		}
		if err := r.Load(pk, id); err != nil {
			return err
		}
	}

	m.logger.Debug("row inserted", "table", m.table, "columns", len(values))

	if err := r.Fire(types.EventAfterInsert); err != nil {
		return hookError(types.EventAfterInsert, err)
	}
	return nil
}

// Update writes the schema columns modified on r, keyed by its primary key.
// The modified set is read after the before-update hooks, so columns they
// assign are written too. With nothing modified no statement runs, but the
// after-update hooks still fire.
func (m *Mapper) Update(r *types.Record) error {
	if err := m.update(r); err != nil {
		return m.fail(types.OpUpdate, err)
	}
	return nil
}

func (m *Mapper) update(r *types.Record) error {
	s, err := m.writable(r)
	if err != nil {
		return err
	}
	if err := r.Fire(types.EventBeforeUpdate); err != nil {
		return hookError(types.EventBeforeUpdate, err)
	}

	cols := r.ModifiedColumns()
	if len(cols) > 0 {
		values := make(map[string]any, len(cols))
		for _, c := range cols {
			v, err := r.Get(c)
			if err != nil {
				return err
			}
			values[c] = coerce(v, s.Type(c))
		}
		key, err := m.key(s, r)
		if err != nil {
			return err
		}
		if _, err := m.q.Update(m.table, values).Where(key).Execute(); err != nil {
			return fmt.Errorf("executing update: %w", err)
		}
		if err := reload(r, values); err != nil {
			return err
		}
		r.ClearModified()
		m.logger.Debug("row updated", "table", m.table, "columns", len(values))
	} else {
		m.logger.Debug("update skipped, nothing modified", "table", m.table)
	}

	if err := r.Fire(types.EventAfterUpdate); err != nil {
		return hookError(types.EventAfterUpdate, err)
	}
	return nil
}

// Delete removes the row keyed by r's primary key. A missing row is not an
// error.
func (m *Mapper) Delete(r *types.Record) error {
	if err := m.delete(r); err != nil {
		return m.fail(types.OpDelete, err)
	}
	return nil
}

func (m *Mapper) delete(r *types.Record) error {
	s, err := m.writable(r)
	if err != nil {
		return err
	}
	if err := r.Fire(types.EventBeforeDelete); err != nil {
		return hookError(types.EventBeforeDelete, err)
	}
	key, err := m.key(s, r)
	if err != nil {
		return err
	}
	if _, err := m.q.Delete(m.table).Where(key).Execute(); err != nil {
		return fmt.Errorf("executing delete: %w", err)
	}

	r.SetState(types.StateDeleted)
	m.logger.Debug("row deleted", "table", m.table)

	if err := r.Fire(types.EventAfterDelete); err != nil {
		return hookError(types.EventAfterDelete, err)
	}
	return nil
}

// reload stores the written values back on r, so the record holds what
// the row holds after coercion.
func reload(r *types.Record, values map[string]any) error {
	for c, v := range values {
		if err := r.Load(c, v); err != nil {
			return err
		}
	}
	return nil
}

// generatedKey returns the primary key column when the database assigned
// its value on insert: the key is auto-increment and values left it unset.
func generatedKey(s *types.Schema, values map[string]any) (string, bool) {
	if !s.IsPrimaryAutoIncrement() {
		return "", false
	}
	pk, err := s.PrimaryColumn()
	if err != nil {
		return "", false
	}
	if v, ok := values[pk]; ok && v != nil {
		return "", false
	}
	return pk, true
}

// writable resolves the schema and checks that r may be written.
func (m *Mapper) writable(r *types.Record) (*types.Schema, error) {
	s, err := m.Schema()
	if err != nil {
		return nil, err
	}
	if err := m.owns(r); err != nil {
		return nil, err
	}
	if r.State() == types.StateDeleted {
		return nil, types.ErrRecordDeleted
	}
	return s, nil
}

func (m *Mapper) owns(r *types.Record) error {
	if t := r.Schema().Table; t != m.table {
		return fmt.Errorf("%w: %q", ErrForeignRecord, t)
	}
	return nil
}

// key returns the coerced primary key predicate of r.
func (m *Mapper) key(s *types.Schema, r *types.Record) (query.Predicate, error) {
	pk := s.PrimaryColumns()
	if len(pk) == 0 {
		return nil, types.ErrNoPrimaryKey
	}
	vals, err := r.GetValues(pk...)
	if err != nil {
		return nil, err
	}
	key := make(query.Predicate, len(vals))
	for c, v := range vals {
		key[c] = coerce(v, s.Type(c))
	}
	return key, nil
}

// criteria turns Find criteria into a predicate.
func (m *Mapper) criteria(s *types.Schema, criteria any) (query.Predicate, error) {
	switch c := criteria.(type) {
	case nil:
		return nil, nil
	case map[string]any:
		return m.predicate(s, c)
	case query.Predicate:
		return m.predicate(s, c)
	}

	v, err := types.NormalizeValue(criteria)
	if err != nil || v == nil {
		return nil, fmt.Errorf("%w: %T", types.ErrInvalidCriteria, criteria)
	}
	pk, err := s.PrimaryColumn()
	if err != nil {
		return nil, fmt.Errorf("scalar criteria: %w", err)
	}
	return query.Predicate{pk: coerce(v, s.Type(pk))}, nil
}

// predicate validates condition columns and coerces their values.
func (m *Mapper) predicate(s *types.Schema, conditions map[string]any) (query.Predicate, error) {
	if len(conditions) == 0 {
		return nil, nil
	}
	p := make(query.Predicate, len(conditions))
	for col, val := range conditions {
		c, ok := s.Column(col)
		if !ok {
			return nil, fmt.Errorf("%w %q", types.ErrUnknownColumn, col)
		}
		v, err := types.NormalizeValue(val)
		if err != nil {
			return nil, fmt.Errorf("condition on %q: %w", col, err)
		}
		p[col] = coerce(v, c.Type)
	}
	return p, nil
}

// hydrate builds an existing record from a row. Columns missing from the
// cached schema are skipped.
func (m *Mapper) hydrate(s *types.Schema, row map[string]any) (*types.Record, error) {
	r := m.newRecord(s)
	for col, val := range row {
		if !s.Has(col) {
			m.logger.Debug("skipping column not in schema", "table", m.table, "column", col)
			continue
		}
		if err := r.Load(col, val); err != nil {
			return nil, err
		}
	}
	r.SetState(types.StateExisting)
	r.ClearModified()
	return r, nil
}

func (m *Mapper) fail(op types.Operation, err error) error {
	m.logger.Debug("operation failed", "op", string(op), "table", m.table, "error", err)
	return &types.OperationFailedError{Op: op, Table: m.table, Err: err}
}

func hookError(event types.Event, err error) error {
	return fmt.Errorf("%s hook: %w", event, err)
}
