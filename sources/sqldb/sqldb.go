// Package sqldb is a backend over database/sql. PostgreSQL is reached through the pgx driver and SQLite through
// modernc.org/sqlite. Other registered drivers work too; their errors count as query errors unless they are
// network errors.
package sqldb

import (
	"context"
	"database/sql"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx"
	log "github.com/sirupsen/logrus"
	"github.com/squareup/connectoragent/common"
	"github.com/squareup/connectoragent/errors"
	"github.com/squareup/connectoragent/sources"
	_ "modernc.org/sqlite" // registers "sqlite"
)

const (
	PostgresDriver = "pgx"
	SQLiteDriver   = "sqlite"
)

// SourceBuilder shares one *sql.DB between all sources it builds; each source pins its own *sql.Conn.
type SourceBuilder struct {
	driverName string
	dsn        string
	once       sync.Once
	db         *sql.DB
	openErr    error
	ownsDB     bool
}

func NewSourceBuilder(driverName string, dsn string) *SourceBuilder {
	return &SourceBuilder{driverName: driverName, dsn: dsn, ownsDB: true}
}

func NewPostgresBuilder(dsn string) *SourceBuilder {
	return NewSourceBuilder(PostgresDriver, dsn)
}

func NewSQLiteBuilder(dsn string) *SourceBuilder {
	return NewSourceBuilder(SQLiteDriver, dsn)
}

// NewSourceBuilderFromDB uses an already opened handle, which the caller keeps ownership of.
func NewSourceBuilderFromDB(db *sql.DB) *SourceBuilder {
	b := &SourceBuilder{db: db}
	b.once.Do(func() {})
	return b
}

func (b *SourceBuilder) open() (*sql.DB, error) {
	b.once.Do(func() {
		db, err := sql.Open(b.driverName, b.dsn)
		if err != nil {
			b.openErr = errors.NewConnectionError(err)
			return
		}
		b.db = db
	})
	return b.db, b.openErr
}

func (b *SourceBuilder) Build(ctx context.Context) (sources.DataSource, error) {
	db, err := b.open()
	if err != nil {
		return nil, err
	}
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, classify("", err)
	}
	if err := conn.PingContext(ctx); err != nil {
		common.InvokeCloser(conn)
		return nil, classify("", err)
	}
	return &Source{conn: conn}, nil
}

// Close releases the pooled handle if the builder opened it.
func (b *SourceBuilder) Close() error {
	if !b.ownsDB || b.db == nil {
		return nil
	}
	return b.db.Close()
}

// Source materialises the whole result set of its query when RunQuery is called, so row and column counts are
// known before the first cell is produced.
type Source struct {
	sources.Cursor
	conn *sql.Conn
}

func (s *Source) RunQuery(ctx context.Context, query string) error {
	if s.Loaded() {
		return errors.WithStack(sources.ErrAlreadyQueried)
	}
	rows, err := s.conn.QueryContext(ctx, query)
	if err != nil {
		return classify(query, err)
	}
	defer func() {
		if err := rows.Close(); err != nil {
			log.Warnf("failed to close rows for query %q %v", query, err)
		}
	}()
	cols, err := rows.Columns()
	if err != nil {
		return classify(query, err)
	}
	ncols := len(cols)
	var cells []interface{}
	nrows := 0
	vals := make([]interface{}, ncols)
	ptrs := make([]interface{}, ncols)
	for i := range vals {
		ptrs[i] = &vals[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return classify(query, err)
		}
		cells = append(cells, vals...)
		nrows++
	}
	if err := rows.Err(); err != nil {
		return classify(query, err)
	}
	if cells == nil {
		cells = []interface{}{}
	}
	s.Reset(cells, nrows, ncols)
	log.Tracef("query %q returned %d rows and %d columns", query, nrows, ncols)
	return nil
}

func (s *Source) Close() error {
	return errors.WithStack(s.conn.Close())
}
