package sqlite_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/rowkeeper/pkg/sqlite"
	"github.com/mesh-intelligence/rowkeeper/pkg/types"
)

func TestNewBackend_Lifecycle(t *testing.T) {
	db := sqlite.NewBackend()
	require.NoError(t, db.Attach(types.Config{Driver: types.DriverSQLite, DataDir: t.TempDir()}))
	defer db.Detach()

	_, err := db.Mapper("nothing")
	assert.ErrorIs(t, err, types.ErrTableNotFound)

	require.NoError(t, db.Detach())
	_, err = db.Mapper("nothing")
	assert.ErrorIs(t, err, types.ErrDatabaseDetached)
}
