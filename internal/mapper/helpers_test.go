package mapper_test

import (
	"database/sql"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/rowkeeper/internal/mapper"
	"github.com/mesh-intelligence/rowkeeper/internal/schemacfg"
	"github.com/mesh-intelligence/rowkeeper/internal/sqlite"
	"github.com/mesh-intelligence/rowkeeper/pkg/types"
)

const testDDL = `
CREATE TABLE articles (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	seo_url TEXT,
	created DATETIME,
	creator_id INTEGER,
	updated DATETIME,
	updator_id INTEGER,
	views INTEGER DEFAULT 0
);
CREATE TABLE tags (
	article_id INTEGER NOT NULL,
	tag TEXT NOT NULL,
	weight REAL,
	PRIMARY KEY (article_id, tag)
);`

func openDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sqlite.Open(types.Config{Driver: types.DriverSQLite, Database: types.MemoryDatabase})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	_, err = db.Exec(testDDL)
	require.NoError(t, err)
	return db
}

func newMapper(t *testing.T, db *sql.DB, table string, opts ...mapper.Option) *mapper.Mapper {
	t.Helper()
	return mapper.New(table, db, nil, sqlite.NewIntrospector(db), opts...)
}

// countingExec counts the statements run through it.
type countingExec struct {
	*sql.DB
	mu      sync.Mutex
	execs   int
	queries int
}

func (c *countingExec) Exec(query string, args ...any) (sql.Result, error) {
	c.mu.Lock()
	c.execs++
	c.mu.Unlock()
	return c.DB.Exec(query, args...)
}

func (c *countingExec) Query(query string, args ...any) (*sql.Rows, error) {
	c.mu.Lock()
	c.queries++
	c.mu.Unlock()
	return c.DB.Query(query, args...)
}

func (c *countingExec) Execs() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.execs
}

// countingIntrospector counts catalog lookups.
type countingIntrospector struct {
	inner schemacfg.Introspector
	mu    sync.Mutex
	calls int
}

func (c *countingIntrospector) DescribeTable(table string) ([]types.Column, error) {
	c.mu.Lock()
	c.calls++
	c.mu.Unlock()
	return c.inner.DescribeTable(table)
}

// memStore is an in-memory descriptor store.
type memStore struct {
	mu      sync.Mutex
	schemas map[string]*types.Schema
	saves   int
}

func newMemStore() *memStore {
	return &memStore{schemas: make(map[string]*types.Schema)}
}

func (s *memStore) Load(table string) (*types.Schema, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if sc, ok := s.schemas[table]; ok {
		return sc, nil
	}
	return nil, schemacfg.ErrDescriptorNotFound
}

func (s *memStore) Save(sc *types.Schema) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.saves++
	s.schemas[sc.Table] = sc
	return nil
}

// hookBehavior registers a single hook.
type hookBehavior struct {
	event types.Event
	hook  types.Hook
}

func (h hookBehavior) Setup(r *types.Record) {
	r.On(h.event, h.hook)
}

func get(t *testing.T, r *types.Record, column string) any {
	t.Helper()
	v, err := r.Get(column)
	require.NoError(t, err)
	return v
}

func rowCount(t *testing.T, db *sql.DB, table string) int {
	t.Helper()
	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM "`+table+`"`).Scan(&n))
	return n
}

func insertArticle(t *testing.T, m *mapper.Mapper, name string) *types.Record {
	t.Helper()
	r, err := m.New()
	require.NoError(t, err)
	require.NoError(t, r.Set("name", name))
	require.NoError(t, m.Insert(r))
	return r
}

var errNoInsertID = errors.New("insert id unavailable")

// noInsertIDExec runs statements on the database but cannot report
// generated keys.
type noInsertIDExec struct {
	*sql.DB
}

type noInsertIDResult struct {
	sql.Result
}

func (noInsertIDResult) LastInsertId() (int64, error) {
	return 0, errNoInsertID
}

func (e noInsertIDExec) Exec(query string, args ...any) (sql.Result, error) {
	res, err := e.DB.Exec(query, args...)
	if err != nil {
		return nil, err
	}
	return noInsertIDResult{res}, nil
}
