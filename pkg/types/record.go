package types

import "fmt"

// Event names a point in a record's persistence lifecycle.
type Event string

// Lifecycle events fired by a Mapper.
const (
	EventBeforeInsert Event = "beforeInsert"
	EventAfterInsert  Event = "afterInsert"
	EventBeforeUpdate Event = "beforeUpdate"
	EventAfterUpdate  Event = "afterUpdate"
	EventBeforeDelete Event = "beforeDelete"
	EventAfterDelete  Event = "afterDelete"
)

// RecordState is the persistence state of a Record.
type RecordState string

// Record states. New records become existing on insert; any record becomes
// deleted on delete, which is terminal.
const (
	StateNew      RecordState = "new"
	StateExisting RecordState = "existing"
	StateDeleted  RecordState = "deleted"
)

// Hook is a callback registered for a lifecycle event.
type Hook func(r *Record) error

// Behavior attaches lifecycle hooks to a record. Setup must only register
// hooks: no queries and no changes to the record's values or state.
type Behavior interface {
	Setup(r *Record)
}

// Persister saves a record, inserting or updating depending on its state.
type Persister interface {
	Save(r *Record) error
}

// Record is one row of a mapped table: column values, the set of columns
// assigned since the last persist or load, a lifecycle state and the hook
// table. A Record is owned by its caller and is not safe for concurrent use.
type Record struct {
	schema   *Schema
	owner    Persister
	values   map[string]any
	modified map[string]struct{}
	state    RecordState
	hooks    map[Event][]Hook
}

// NewRecord returns an empty record in StateNew for schema. owner may be nil,
// in which case Save returns ErrDetached.
func NewRecord(schema *Schema, owner Persister) *Record {
	return &Record{
		schema:   schema,
		owner:    owner,
		values:   make(map[string]any, len(schema.Columns)),
		modified: make(map[string]struct{}),
		state:    StateNew,
		hooks:    make(map[Event][]Hook),
	}
}

// Schema returns the table schema the record is bound to.
func (r *Record) Schema() *Schema {
	return r.schema
}

// Get returns the value of column, or nil if it was never assigned.
// Returns ErrUnknownColumn if column is not part of the schema.
func (r *Record) Get(column string) (any, error) {
	if !r.schema.Has(column) {
		return nil, unknownColumn(column)
	}
	return r.values[column], nil
}

// Set assigns a column value and marks the column modified. Assigning the
// current value still marks it modified.
func (r *Record) Set(column string, value any) error {
	if err := r.assign(column, value); err != nil {
		return err
	}
	r.modified[column] = struct{}{}
	return nil
}

// Load assigns a column value without marking it modified. Mappers use it
// to hydrate and refresh records from stored rows.
func (r *Record) Load(column string, value any) error {
	return r.assign(column, value)
}

func (r *Record) assign(column string, value any) error {
	if !r.schema.Has(column) {
		return unknownColumn(column)
	}
	v, err := NormalizeValue(value)
	if err != nil {
		return err
	}
	r.values[column] = v
	return nil
}

// HasValue reports whether column has ever been assigned, including nil.
func (r *Record) HasValue(column string) bool {
	_, ok := r.values[column]
	return ok
}

// GetValues returns the values of the named columns. It fails with a
// MissingKeyError listing every column that was never assigned.
func (r *Record) GetValues(columns ...string) (map[string]any, error) {
	out := make(map[string]any, len(columns))
	var missing []string
	for _, c := range columns {
		if !r.schema.Has(c) {
			return nil, unknownColumn(c)
		}
		v, ok := r.values[c]
		if !ok {
			missing = append(missing, c)
			continue
		}
		out[c] = v
	}
	if len(missing) > 0 {
		return nil, &MissingKeyError{Columns: missing}
	}
	return out, nil
}

// Values returns a copy of every assigned column value.
func (r *Record) Values() map[string]any {
	out := make(map[string]any, len(r.values))
	for k, v := range r.values {
		out[k] = v
	}
	return out
}

// Primary returns the value of the single primary key column.
func (r *Record) Primary() (any, error) {
	pk, err := r.schema.PrimaryColumn()
	if err != nil {
		return nil, err
	}
	v, ok := r.values[pk]
	if !ok {
		return nil, &MissingKeyError{Columns: []string{pk}}
	}
	return v, nil
}

// ModifiedColumns returns the modified column names in schema order.
func (r *Record) ModifiedColumns() []string {
	var cols []string
	for _, c := range r.schema.Columns {
		if _, ok := r.modified[c.Name]; ok {
			cols = append(cols, c.Name)
		}
	}
	return cols
}

// IsModified reports whether column was assigned since the last persist.
func (r *Record) IsModified(column string) bool {
	_, ok := r.modified[column]
	return ok
}

// ClearModified empties the modified set.
func (r *Record) ClearModified() {
	clear(r.modified)
}

// State returns the persistence state.
func (r *Record) State() RecordState {
	return r.state
}

// SetState sets the persistence state.
func (r *Record) SetState(s RecordState) {
	r.state = s
}

// On registers hook for event. Hooks run in registration order.
func (r *Record) On(event Event, hook Hook) {
	r.hooks[event] = append(r.hooks[event], hook)
}

// HookCount returns the number of hooks registered for event.
func (r *Record) HookCount(event Event) int {
	return len(r.hooks[event])
}

// Fire runs every hook registered for event in order. The first failing
// hook stops the chain and its error is returned.
func (r *Record) Fire(event Event) error {
	hooks := r.hooks[event]
	for i := range hooks {
		if err := hooks[i](r); err != nil {
			return err
		}
	}
	return nil
}

// Save persists the record through the mapper that created it.
func (r *Record) Save() error {
	if r.owner == nil {
		return ErrDetached
	}
	return r.owner.Save(r)
}

func unknownColumn(column string) error {
	return fmt.Errorf("%w %q", ErrUnknownColumn, column)
}
