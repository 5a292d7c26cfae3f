package behavior

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/mesh-intelligence/rowkeeper/pkg/types"
)

// UUIDKey fills an empty key column with a UUID v7 before insert. Explicit
// keys are kept.
type UUIDKey struct {
	column string
}

// NewUUIDKey creates a UUIDKey behavior for column.
func NewUUIDKey(column string) *UUIDKey {
	return &UUIDKey{column: column}
}

// Setup registers the key assignment hook.
func (k *UUIDKey) Setup(r *types.Record) {
	r.On(types.EventBeforeInsert, k.assign)
}

func (k *UUIDKey) assign(r *types.Record) error {
	v, err := r.Get(k.column)
	if err != nil {
		return err
	}
	if !types.IsEmpty(v) {
		return nil
	}
	id, err := uuid.NewV7()
	if err != nil {
		return fmt.Errorf("generating UUID v7: %w", err)
	}
	return r.Set(k.column, id.String())
}
