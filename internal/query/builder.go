package query

import (
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Executor runs statements. *sql.DB and *sql.Tx satisfy it.
type Executor interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
}

// Predicate is a conjunction of column equalities. A nil value matches
// NULL.
type Predicate map[string]any

// Builder errors.
var (
	ErrNoTable      = errors.New("no table given")
	ErrNoValues     = errors.New("no values to write")
	ErrUnrestricted = errors.New("refusing to modify every row without a predicate")
)

// Builder creates statements bound to an Executor.
type Builder struct {
	exec Executor
}

// New returns a Builder running statements on exec.
func New(exec Executor) *Builder {
	return &Builder{exec: exec}
}

// SelectQuery is a SELECT statement under construction.
type SelectQuery struct {
	b       *Builder
	columns []string
	table   string
	where   Predicate
	orderBy []string
	limit   int
}

// Select starts a SELECT of columns; no columns selects every column.
func (b *Builder) Select(columns ...string) *SelectQuery {
	return &SelectQuery{b: b, columns: columns}
}

// From sets the table.
func (q *SelectQuery) From(table string) *SelectQuery {
	q.table = table
	return q
}

// Where adds equalities to the predicate. Repeated calls are combined with
// AND; a later value for the same column replaces the earlier one.
func (q *SelectQuery) Where(p map[string]any) *SelectQuery {
	q.where = merge(q.where, p)
	return q
}

// OrderBy sets ascending ordering columns.
func (q *SelectQuery) OrderBy(columns ...string) *SelectQuery {
	q.orderBy = columns
	return q
}

// Limit caps the number of rows; zero means no limit.
func (q *SelectQuery) Limit(n int) *SelectQuery {
	q.limit = n
	return q
}

// SQL renders the statement and its arguments.
func (q *SelectQuery) SQL() (string, []any, error) {
	if q.table == "" {
		return "", nil, ErrNoTable
	}
	var sb strings.Builder
	sb.WriteString("SELECT ")
	if len(q.columns) == 0 {
		sb.WriteString("*")
	} else {
		sb.WriteString(quoteList(q.columns))
	}
	sb.WriteString(" FROM ")
	sb.WriteString(Quote(q.table))

	where, args := compilePredicate(q.where)
	if where != "" {
		sb.WriteString(" WHERE ")
		sb.WriteString(where)
	}
	if len(q.orderBy) > 0 {
		sb.WriteString(" ORDER BY ")
		sb.WriteString(quoteList(q.orderBy))
	}
	if q.limit > 0 {
		sb.WriteString(" LIMIT ")
		sb.WriteString(strconv.Itoa(q.limit))
	}
	return sb.String(), args, nil
}

// Execute runs the statement. Callers must close the returned rows.
func (q *SelectQuery) Execute() (*sql.Rows, error) {
	stmt, args, err := q.SQL()
	if err != nil {
		return nil, err
	}
	return q.b.exec.Query(stmt, args...)
}

// Fetch returns the first row as a column map, or nil when there is none.
func (q *SelectQuery) Fetch() (map[string]any, error) {
	rows, err := q.Execute()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	return ScanMap(rows)
}

// FetchAll returns every row as a column map.
func (q *SelectQuery) FetchAll() ([]map[string]any, error) {
	rows, err := q.Execute()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []map[string]any
	for rows.Next() {
		row, err := ScanMap(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating rows: %w", err)
	}
	return out, nil
}

// InsertQuery is an INSERT statement.
type InsertQuery struct {
	b      *Builder
	table  string
	values map[string]any
}

// Insert starts an INSERT of values into table. Empty values insert a row
// of column defaults.
func (b *Builder) Insert(table string, values map[string]any) *InsertQuery {
	return &InsertQuery{b: b, table: table, values: values}
}

// SQL renders the statement and its arguments.
func (q *InsertQuery) SQL() (string, []any, error) {
	if q.table == "" {
		return "", nil, ErrNoTable
	}
	if len(q.values) == 0 {
		return "INSERT INTO " + Quote(q.table) + " DEFAULT VALUES", nil, nil
	}
	cols := sortedKeys(q.values)
	args := make([]any, len(cols))
	marks := make([]string, len(cols))
	for i, c := range cols {
		args[i] = q.values[c]
		marks[i] = "?"
	}
	stmt := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		Quote(q.table), quoteList(cols), strings.Join(marks, ", "))
	return stmt, args, nil
}

// Execute runs the statement.
func (q *InsertQuery) Execute() (sql.Result, error) {
	stmt, args, err := q.SQL()
	if err != nil {
		return nil, err
	}
	return q.b.exec.Exec(stmt, args...)
}

// UpdateQuery is an UPDATE statement.
type UpdateQuery struct {
	b      *Builder
	table  string
	values map[string]any
	where  Predicate
}

// Update starts an UPDATE of table setting values.
func (b *Builder) Update(table string, values map[string]any) *UpdateQuery {
	return &UpdateQuery{b: b, table: table, values: values}
}

// Where adds equalities to the predicate.
func (q *UpdateQuery) Where(p map[string]any) *UpdateQuery {
	q.where = merge(q.where, p)
	return q
}

// SQL renders the statement and its arguments.
func (q *UpdateQuery) SQL() (string, []any, error) {
	if q.table == "" {
		return "", nil, ErrNoTable
	}
	if len(q.values) == 0 {
		return "", nil, ErrNoValues
	}
	where, whereArgs := compilePredicate(q.where)
	if where == "" {
		return "", nil, ErrUnrestricted
	}
	cols := sortedKeys(q.values)
	sets := make([]string, len(cols))
	args := make([]any, 0, len(cols)+len(whereArgs))
	for i, c := range cols {
		sets[i] = Quote(c) + " = ?"
		args = append(args, q.values[c])
	}
	args = append(args, whereArgs...)
	stmt := fmt.Sprintf("UPDATE %s SET %s WHERE %s", Quote(q.table), strings.Join(sets, ", "), where)
	return stmt, args, nil
}

// Execute runs the statement.
func (q *UpdateQuery) Execute() (sql.Result, error) {
	stmt, args, err := q.SQL()
	if err != nil {
		return nil, err
	}
	return q.b.exec.Exec(stmt, args...)
}

// DeleteQuery is a DELETE statement.
type DeleteQuery struct {
	b     *Builder
	table string
	where Predicate
}

// Delete starts a DELETE from table.
func (b *Builder) Delete(table string) *DeleteQuery {
	return &DeleteQuery{b: b, table: table}
}

// Where adds equalities to the predicate.
func (q *DeleteQuery) Where(p map[string]any) *DeleteQuery {
	q.where = merge(q.where, p)
	return q
}

// SQL renders the statement and its arguments.
func (q *DeleteQuery) SQL() (string, []any, error) {
	if q.table == "" {
		return "", nil, ErrNoTable
	}
	where, args := compilePredicate(q.where)
	if where == "" {
		return "", nil, ErrUnrestricted
	}
	return "DELETE FROM " + Quote(q.table) + " WHERE " + where, args, nil
}

// Execute runs the statement.
func (q *DeleteQuery) Execute() (sql.Result, error) {
	stmt, args, err := q.SQL()
	if err != nil {
		return nil, err
	}
	return q.b.exec.Exec(stmt, args...)
}

// Quote quotes an SQL identifier.
func Quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func quoteList(idents []string) string {
	quoted := make([]string, len(idents))
	for i, id := range idents {
		quoted[i] = Quote(id)
	}
	return strings.Join(quoted, ", ")
}

// compilePredicate renders p as an AND of equalities in sorted column order.
func compilePredicate(p Predicate) (string, []any) {
	if len(p) == 0 {
		return "", nil
	}
	cols := sortedKeys(p)
	parts := make([]string, len(cols))
	var args []any
	for i, c := range cols {
		v := p[c]
		if v == nil {
			parts[i] = Quote(c) + " IS NULL"
			continue
		}
		parts[i] = Quote(c) + " = ?"
		args = append(args, v)
	}
	return strings.Join(parts, " AND "), args
}

func merge(dst Predicate, src map[string]any) Predicate {
	if len(src) == 0 {
		return dst
	}
	if dst == nil {
		dst = make(Predicate, len(src))
	}
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
