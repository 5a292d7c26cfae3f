package sqlite

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/rowkeeper/pkg/types"
)

const articlesDDL = `
CREATE TABLE articles (
	id INTEGER PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	seo_url TEXT,
	created DATETIME,
	creator_id INTEGER,
	updated DATETIME,
	updator_id INTEGER
);
CREATE TABLE tags (
	article_id INTEGER NOT NULL,
	tag TEXT NOT NULL,
	weight REAL,
	PRIMARY KEY (article_id, tag)
);`

func memoryConfig() types.Config {
	return types.Config{Driver: types.DriverSQLite, Database: types.MemoryDatabase}
}

// newAttachedBackend attaches a file backend under a temp dir with the test
// tables created.
func newAttachedBackend(t *testing.T) (*Backend, string) {
	t.Helper()
	dataDir := t.TempDir()
	b := NewBackend()
	require.NoError(t, b.Attach(types.Config{Driver: types.DriverSQLite, DataDir: dataDir}))
	t.Cleanup(func() { b.Detach() })
	require.NoError(t, b.Exec(articlesDDL))
	return b, dataDir
}

func openMemory(t *testing.T) *sql.DB {
	t.Helper()
	db, err := Open(memoryConfig())
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	_, err = db.Exec(articlesDDL)
	require.NoError(t, err)
	return db
}
