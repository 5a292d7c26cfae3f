package mapper

import (
	"fmt"
	"iter"

	"github.com/mesh-intelligence/rowkeeper/pkg/types"
)

// Compile-time interface check.
var _ types.Collection = (*Collection)(nil)

// Collection is a lazily evaluated FindAll result. The query runs at the
// start of each traversal and its rows are buffered before the first record
// is yielded, so callers may write through the mapper while iterating.
type Collection struct {
	m          *Mapper
	conditions map[string]any
}

// Records iterates the matching records in primary key order. A failure is
// yielded once with a nil record and ends the traversal.
func (c *Collection) Records() iter.Seq2[*types.Record, error] {
	return func(yield func(*types.Record, error) bool) {
		s, rows, err := c.fetch()
		if err != nil {
			yield(nil, c.m.fail(types.OpFindAll, err))
			return
		}
		for _, row := range rows {
			r, err := c.m.hydrate(s, row)
			if err != nil {
				yield(nil, c.m.fail(types.OpFindAll, err))
				return
			}
			if !yield(r, nil) {
				return
			}
		}
	}
}

// All returns every matching record.
func (c *Collection) All() ([]*types.Record, error) {
	var out []*types.Record
	for r, err := range c.Records() {
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, nil
}

// Each calls fn for every matching record, stopping at the first error.
func (c *Collection) Each(fn func(*types.Record) error) error {
	for r, err := range c.Records() {
		if err != nil {
			return err
		}
		if err := fn(r); err != nil {
			return err
		}
	}
	return nil
}

func (c *Collection) fetch() (*types.Schema, []map[string]any, error) {
	s, err := c.m.Schema()
	if err != nil {
		return nil, nil, err
	}
	where, err := c.m.predicate(s, c.conditions)
	if err != nil {
		return nil, nil, err
	}
	rows, err := c.m.q.Select().From(c.m.table).Where(where).OrderBy(s.PrimaryColumns()...).FetchAll()
	if err != nil {
		return nil, nil, fmt.Errorf("executing select: %w", err)
	}
	return s, rows, nil
}
