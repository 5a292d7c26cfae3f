package query

import (
	"database/sql"
	"fmt"
	"strings"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

type renderer interface {
	SQL() (string, []any, error)
}

func TestBuilder_RenderGolden(t *testing.T) {
	b := New(nil)

	cases := []struct {
		name string
		q    renderer
	}{
		{"select all", b.Select().From("articles")},
		{"select by key", b.Select().From("articles").Where(Predicate{"id": int64(42)}).Limit(1)},
		{"select columns by composite key", b.Select("name", "seo_url").From("articles").
			Where(Predicate{"tag": "go", "article_id": int64(1)}).
			OrderBy("article_id", "tag")},
		{"select null predicate", b.Select().From("articles").Where(Predicate{"deleted_at": nil})},
		{"insert", b.Insert("articles", map[string]any{"name": "Hello World", "created": "2024-01-01 00:00:00"})},
		{"insert defaults", b.Insert("articles", nil)},
		{"update", b.Update("articles", map[string]any{"seo_url": "42-hello-world", "updated": "x"}).
			Where(Predicate{"id": int64(42)})},
		{"delete", b.Delete("articles").Where(Predicate{"id": int64(42)})},
		{"quoted identifier", b.Select().From(`odd"name`)},
	}

	entries := make([]string, 0, len(cases))
	for _, c := range cases {
		stmt, args, err := c.q.SQL()
		require.NoError(t, err, c.name)
		entries = append(entries, fmt.Sprintf("-- %s\n%s\nargs: %v\n", c.name, stmt, args))
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "statements", []byte(strings.Join(entries, "\n")))
}

func TestBuilder_WhereMerges(t *testing.T) {
	stmt, args, err := New(nil).Select().From("t").
		Where(Predicate{"a": 1}).
		Where(Predicate{"b": 2, "a": 3}).
		SQL()
	require.NoError(t, err)
	assert.Equal(t, `SELECT * FROM "t" WHERE "a" = ? AND "b" = ?`, stmt)
	assert.Equal(t, []any{3, 2}, args)
}

func TestBuilder_Refusals(t *testing.T) {
	b := New(nil)

	_, _, err := b.Select().SQL()
	assert.ErrorIs(t, err, ErrNoTable)

	_, _, err = b.Update("t", map[string]any{"a": 1}).SQL()
	assert.ErrorIs(t, err, ErrUnrestricted)

	_, _, err = b.Update("t", nil).Where(Predicate{"id": 1}).SQL()
	assert.ErrorIs(t, err, ErrNoValues)

	_, _, err = b.Delete("t").SQL()
	assert.ErrorIs(t, err, ErrUnrestricted)

	_, err = b.Delete("t").Execute()
	assert.ErrorIs(t, err, ErrUnrestricted)
}

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	_, err = db.Exec(`CREATE TABLE items (id INTEGER PRIMARY KEY AUTOINCREMENT, name TEXT, qty INTEGER DEFAULT 5)`)
	require.NoError(t, err)
	return db
}

func TestBuilder_ExecuteAgainstSQLite(t *testing.T) {
	db := openTestDB(t)
	b := New(db)

	res, err := b.Insert("items", map[string]any{"name": "bolt"}).Execute()
	require.NoError(t, err)
	id, err := res.LastInsertId()
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)

	_, err = b.Insert("items", nil).Execute()
	require.NoError(t, err)

	row, err := b.Select().From("items").Where(Predicate{"id": id}).Limit(1).Fetch()
	require.NoError(t, err)
	assert.Equal(t, "bolt", row["name"])
	assert.Equal(t, int64(5), row["qty"])

	res, err = b.Update("items", map[string]any{"qty": int64(9)}).Where(Predicate{"id": id}).Execute()
	require.NoError(t, err)
	n, _ := res.RowsAffected()
	assert.Equal(t, int64(1), n)

	rows, err := b.Select("id", "qty").From("items").OrderBy("id").FetchAll()
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, int64(9), rows[0]["qty"])
	assert.Nil(t, rows[1]["name"])

	nullRows, err := b.Select().From("items").Where(Predicate{"name": nil}).FetchAll()
	require.NoError(t, err)
	assert.Len(t, nullRows, 1)

	_, err = b.Delete("items").Where(Predicate{"id": id}).Execute()
	require.NoError(t, err)

	row, err = b.Select().From("items").Where(Predicate{"id": id}).Fetch()
	require.NoError(t, err)
	assert.Nil(t, row)
}

func TestBuilder_ExecuteReportsDriverErrors(t *testing.T) {
	db := openTestDB(t)
	b := New(db)

	_, err := b.Select().From("missing_table").Fetch()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing_table")

	_, err = b.Insert("items", map[string]any{"nope": 1}).Execute()
	require.Error(t, err)
}
