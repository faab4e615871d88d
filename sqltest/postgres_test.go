//go:build integration

package sqltest

import (
	"database/sql"
	"testing"

	"github.com/squareup/connectoragent/pgtest"
	"github.com/squareup/connectoragent/sources/sqldb"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestPostgresScenarios(t *testing.T) {
	pgtest.RequirePostgres(t)
	db, err := sql.Open(sqldb.PostgresDriver, pgtest.DSN)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, db.Close())
	}()
	suite.Run(t, &ScenarioSuite{DB: db})
}
