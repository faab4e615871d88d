// Package pgtest starts a PostgreSQL container for integration tests.
package pgtest

import (
	"context"
	"database/sql"
	"fmt"
	"testing"
	"time"

	"github.com/ory/dockertest"
	dc "github.com/ory/dockertest/docker"
	log "github.com/sirupsen/logrus"
	"github.com/squareup/connectoragent/sources/sqldb"
	"github.com/stretchr/testify/require"
)

const postgresVersion = "14-alpine"
const postgresPort = "5432"
const database = "dataprep"
const password = "postgres"

// DSN of the test database, whether it runs in the container or was already running.
var DSN = fmt.Sprintf("postgres://postgres:%s@localhost:%s/%s?sslmode=disable", password, postgresPort, database)

// RequirePostgres makes sure a PostgreSQL server is accepting connections on postgresPort, starting a container if
// one is not already running. The container is removed when the test finishes.
func RequirePostgres(t *testing.T) {
	t.Helper()
	if err := checkPostgresHealth(); err == nil {
		log.Warn("postgres already running on port " + postgresPort)
		return
	}

	pool, err := dockertest.NewPool("")
	require.NoError(t, err)
	pool.MaxWait = 60 * time.Second

	log.Info("Starting postgres on :" + postgresPort)
	container, err := pool.RunWithOptions(&dockertest.RunOptions{
		Name:       "connector-agent-postgres",
		Repository: "postgres",
		Tag:        postgresVersion,
		Env: []string{
			"POSTGRES_PASSWORD=" + password,
			"POSTGRES_DB=" + database,
		},
		ExposedPorts: []string{postgresPort},
		PortBindings: map[dc.Port][]dc.PortBinding{
			postgresPort: {{HostPort: postgresPort}},
		},
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		if err := pool.Purge(container); err != nil {
			t.Logf("failed to remove postgres container: %v", err)
		}
	})

	err = pool.Retry(func() error {
		err := checkPostgresHealth()
		if err != nil {
			log.Infof("postgres connection not ready: %v", err)
		}
		return err
	})
	require.NoError(t, err)
}

func checkPostgresHealth() error {
	db, err := sql.Open(sqldb.PostgresDriver, DSN)
	if err != nil {
		return err
	}
	defer func() {
		_ = db.Close()
	}()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	return db.PingContext(ctx)
}
