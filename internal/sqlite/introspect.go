package sqlite

import (
	"fmt"
	"strings"

	"github.com/mesh-intelligence/rowkeeper/internal/query"
	"github.com/mesh-intelligence/rowkeeper/internal/schemacfg"
	"github.com/mesh-intelligence/rowkeeper/pkg/types"
)

// Compile-time interface check.
var _ schemacfg.Introspector = (*Introspector)(nil)

// Introspector reads table schemas from the live database catalog.
type Introspector struct {
	exec query.Executor
}

// NewIntrospector returns an Introspector querying through exec.
func NewIntrospector(exec query.Executor) *Introspector {
	return &Introspector{exec: exec}
}

// DescribeTable returns the columns of table in declaration order. A table
// that does not exist yields no columns and no error.
//
// A single INTEGER primary key column of a rowid table is an alias of the
// rowid and is reported as auto-increment. WITHOUT ROWID tables never are.
func (in *Introspector) DescribeTable(table string) ([]types.Column, error) {
	rows, err := in.exec.Query(`SELECT name, type, pk FROM pragma_table_info(?) ORDER BY cid`, table)
	if err != nil {
		return nil, fmt.Errorf("describing table %q: %w", table, err)
	}
	defer rows.Close()

	var cols []types.Column
	keys := 0
	for rows.Next() {
		var (
			c  types.Column
			pk int
		)
		if err := rows.Scan(&c.Name, &c.Type, &pk); err != nil {
			return nil, fmt.Errorf("scanning column of %q: %w", table, err)
		}
		c.Primary = pk > 0
		if c.Primary {
			keys++
		}
		cols = append(cols, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("describing table %q: %w", table, err)
	}

	if keys != 1 {
		return cols, nil
	}
	for i := range cols {
		if !cols[i].Primary || !strings.EqualFold(cols[i].Type, "INTEGER") {
			continue
		}
		rowid, err := in.hasRowid(table)
		if err != nil {
			return nil, err
		}
		cols[i].AutoIncrement = rowid
	}
	return cols, nil
}

// hasRowid reports whether table is stored as a rowid table.
func (in *Introspector) hasRowid(table string) (bool, error) {
	rows, err := in.exec.Query(`SELECT wr FROM pragma_table_list WHERE name = ? ORDER BY schema = 'temp' DESC LIMIT 1`, table)
	if err != nil {
		return false, fmt.Errorf("reading storage of %q: %w", table, err)
	}
	defer rows.Close()

	wr := 0
	if rows.Next() {
		if err := rows.Scan(&wr); err != nil {
			return false, fmt.Errorf("reading storage of %q: %w", table, err)
		}
	}
	if err := rows.Err(); err != nil {
		return false, fmt.Errorf("reading storage of %q: %w", table, err)
	}
	return wr == 0, nil
}
