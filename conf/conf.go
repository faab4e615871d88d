package conf

import (
	"fmt"
	"strings"

	"github.com/squareup/connectoragent/errors"
	"github.com/squareup/connectoragent/partition"
	"github.com/squareup/connectoragent/sources/sqldb"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config describes one dispatch job. Either Queries or PartitionQuery must be given, but not both.
type Config struct {
	Driver          string   `help:"Database driver" enum:"postgres,sqlite" default:"postgres"`
	DSN             string   `help:"Connection string for the database" name:"dsn"`
	Schema          string   `help:"Result schema, e.g. 'id:uint, name:text'"`
	Queries         []string `help:"Queries to run, one per partition" sep:";"`
	PartitionQuery  string   `help:"Query to split into range partitions"`
	PartitionColumn string   `help:"Integer column to split the partition query on"`
	PartitionNum    int      `help:"Number of partitions to split the partition query into" default:"4"`
	PartitionMin    int64    `help:"Lower bound of the partition column. Read from the database if min and max are both 0"`
	PartitionMax    int64    `help:"Upper bound of the partition column. Read from the database if min and max are both 0"`
	Workers         int      `help:"Maximum partitions to run at once. 0 runs every partition at once" default:"0"`
	MetricsAddr     string   `help:"Address to serve prometheus metrics on. Metrics are not served if blank"`
}

func (c *Config) Validate() error {
	if c.Driver != DriverPostgres && c.Driver != DriverSQLite {
		return errors.NewInvalidConfigurationError(fmt.Sprintf("Driver must be %s or %s", DriverPostgres, DriverSQLite))
	}
	if c.DSN == "" {
		return errors.NewInvalidConfigurationError("DSN must be specified")
	}
	if strings.TrimSpace(c.Schema) == "" {
		return errors.NewInvalidConfigurationError("Schema must be specified")
	}
	if c.Workers < 0 {
		return errors.NewInvalidConfigurationError("Workers must be >= 0")
	}
	queries := c.trimmedQueries()
	switch {
	case len(queries) == 0 && c.PartitionQuery == "":
		return errors.NewInvalidConfigurationError("one of Queries or PartitionQuery must be specified")
	case len(queries) > 0 && c.PartitionQuery != "":
		return errors.NewInvalidConfigurationError("only one of Queries or PartitionQuery can be specified")
	case c.PartitionQuery != "":
		pc := c.PartitionConfig()
		return pc.Validate()
	}
	return nil
}

// SQLDriver is the database/sql driver name for Driver.
func (c *Config) SQLDriver() string {
	if c.Driver == DriverSQLite {
		return sqldb.SQLiteDriver
	}
	return sqldb.PostgresDriver
}

// DirectQueries returns Queries with blank entries removed. A trailing ';' on the command line leaves one.
func (c *Config) DirectQueries() []string {
	return c.trimmedQueries()
}

func (c *Config) PartitionConfig() partition.Config {
	return partition.Config{
		Query:  c.PartitionQuery,
		Column: c.PartitionColumn,
		Num:    c.PartitionNum,
		Min:    c.PartitionMin,
		Max:    c.PartitionMax,
	}
}

func (c *Config) trimmedQueries() []string {
	var queries []string
	for _, q := range c.Queries {
		if q = strings.TrimSpace(q); q != "" {
			queries = append(queries, q)
		}
	}
	return queries
}
