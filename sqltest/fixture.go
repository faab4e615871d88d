// Package sqltest runs the dispatch scenarios end to end against real databases.
package sqltest

import (
	"context"
	"database/sql"

	"github.com/squareup/connectoragent/common"
	"github.com/squareup/connectoragent/dispatcher"
	"github.com/squareup/connectoragent/errors"
	"github.com/squareup/connectoragent/partition"
	"github.com/squareup/connectoragent/sources"
	"github.com/squareup/connectoragent/sources/sqldb"
	memwriter "github.com/squareup/connectoragent/writers/memory"
	"github.com/stretchr/testify/suite"
)

var fixtureStatements = []string{
	`drop table if exists person`,
	`create table person (id bigint primary key, name text, email text, age bigint)`,
	`insert into person values (1, 'Raj', 'raj@gmail.com', 22), (2, 'Abhishek', 'ab@gmail.com', 32), (3, 'Ashish', 'ashish@gmail.com', 25)`,
}

// CreatePersonTable (re)creates the three row person table.
func CreatePersonTable(db *sql.DB) error {
	for _, stmt := range fixtureStatements {
		if _, err := db.Exec(stmt); err != nil {
			return errors.WithStack(err)
		}
	}
	return nil
}

// ScenarioSuite runs the dispatch scenarios against a database holding the person table. DB must be set before the
// suite runs.
type ScenarioSuite struct {
	suite.Suite
	DB      *sql.DB
	builder *sqldb.SourceBuilder
}

func (s *ScenarioSuite) SetupTest() {
	s.Require().NoError(CreatePersonTable(s.DB))
	s.builder = sqldb.NewSourceBuilderFromDB(s.DB)
}

func (s *ScenarioSuite) dispatch(schema common.Schema, queries ...string) *memwriter.Writer {
	w, err := dispatcher.NewDispatcher(s.builder, memwriter.NewWriter(), schema, queries).RunChecked(context.Background())
	s.Require().NoError(err)
	return w
}

func (s *ScenarioSuite) rows(w *memwriter.Writer) [][]interface{} {
	var rows [][]interface{}
	for i := 0; i < w.NRows(); i++ {
		row, err := w.Row(i)
		s.Require().NoError(err)
		rows = append(rows, row)
	}
	return rows
}

func (s *ScenarioSuite) TestSinglePartition() {
	w := s.dispatch(common.Schema{common.TypeUint64, common.TypeString, common.TypeString, common.TypeUint64},
		"select * from person order by id")
	s.Require().Equal([][]interface{}{
		{uint64(1), "Raj", "raj@gmail.com", uint64(22)},
		{uint64(2), "Abhishek", "ab@gmail.com", uint64(32)},
		{uint64(3), "Ashish", "ashish@gmail.com", uint64(25)},
	}, s.rows(w))
}

func (s *ScenarioSuite) TestMultiPartition() {
	w := s.dispatch(common.Schema{common.TypeString, common.TypeString},
		"select name, email from person where id < 2 order by id",
		"select name, email from person where id >= 2 order by id")
	s.Require().Equal([][]interface{}{
		{"Raj", "raj@gmail.com"},
		{"Abhishek", "ab@gmail.com"},
		{"Ashish", "ashish@gmail.com"},
	}, s.rows(w))
}

func (s *ScenarioSuite) TestRangePartitions() {
	queries, err := partition.Queries(context.Background(), s.builder, partition.Config{
		Query:  "select id, age from person",
		Column: "id",
		Num:    3,
	})
	s.Require().NoError(err)
	s.Require().Len(queries, 3)
	w := s.dispatch(common.Schema{common.TypeInt64, common.TypeFloat64}, queries...)
	s.Require().Equal([][]interface{}{
		{int64(1), float64(22)},
		{int64(2), float64(32)},
		{int64(3), float64(25)},
	}, s.rows(w))
}

func (s *ScenarioSuite) TestWrongTable() {
	_, err := dispatcher.NewDispatcher(s.builder, memwriter.NewWriter(), common.Schema{common.TypeString},
		[]string{"select name from person", "select name from nobody"}).RunChecked(context.Background())
	s.Require().True(errors.HasCode(err, errors.QueryFailed), "%v", err)
}

func (s *ScenarioSuite) TestWrongSchema() {
	_, err := dispatcher.NewDispatcher(s.builder, memwriter.NewWriter(), common.Schema{common.TypeString},
		[]string{"select name, email from person"}).RunChecked(context.Background())
	s.Require().True(errors.HasCode(err, errors.SchemaMismatch), "%v", err)
}

func (s *ScenarioSuite) TestProduceAfterEnd() {
	src, err := s.builder.Build(context.Background())
	s.Require().NoError(err)
	defer func() {
		s.Require().NoError(src.Close())
	}()
	s.Require().NoError(src.RunQuery(context.Background(), "select name from person where id = 1"))
	name, err := sources.Produce[string](src)
	s.Require().NoError(err)
	s.Require().Equal("Raj", name)
	_, err = sources.Produce[string](src)
	s.Require().True(errors.HasCode(err, errors.SourceExhausted), "%v", err)
}
