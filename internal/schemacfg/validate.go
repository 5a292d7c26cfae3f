package schemacfg

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"

	"github.com/mesh-intelligence/rowkeeper/pkg/types"
)

// ErrInvalidDescriptor is returned for descriptors that violate the
// descriptor schema.
var ErrInvalidDescriptor = errors.New("invalid schema descriptor")

// descriptorSchema constrains persisted descriptors: a named table with at
// least one fully specified column.
const descriptorSchema = `
#Column: {
	name:           string & !=""
	type:           string
	primary:        bool
	auto_increment: bool
}

table:   string & !=""
columns: [#Column, ...#Column]
`

// validator checks descriptors against descriptorSchema. cue.Context is not
// safe for concurrent use, so calls are serialized.
type validator struct {
	mu     sync.Mutex
	ctx    *cue.Context
	schema cue.Value
}

func newValidator() (*validator, error) {
	ctx := cuecontext.New()
	schema := ctx.CompileString(descriptorSchema)
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("compiling descriptor schema: %w", err)
	}
	return &validator{ctx: ctx, schema: schema}, nil
}

func (v *validator) validate(s *types.Schema) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding descriptor: %w", err)
	}

	v.mu.Lock()
	val := v.ctx.CompileBytes(data)
	if err := val.Err(); err != nil {
		v.mu.Unlock()
		return fmt.Errorf("%w: %v", ErrInvalidDescriptor, err)
	}
	err = v.schema.Unify(val).Validate(cue.Concrete(true))
	v.mu.Unlock()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidDescriptor, err)
	}

	seen := make(map[string]bool, len(s.Columns))
	for _, c := range s.Columns {
		if seen[c.Name] {
			return fmt.Errorf("%w: duplicate column %q", ErrInvalidDescriptor, c.Name)
		}
		seen[c.Name] = true
	}
	return nil
}
