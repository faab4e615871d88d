package sqltest

import (
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/squareup/connectoragent/sources/sqldb"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestSQLiteScenarios(t *testing.T) {
	db, err := sql.Open(sqldb.SQLiteDriver, filepath.Join(t.TempDir(), "dataprep.db"))
	require.NoError(t, err)
	defer func() {
		require.NoError(t, db.Close())
	}()
	suite.Run(t, &ScenarioSuite{DB: db})
}
