// Package partition splits one query into several range queries over an integer column, so a large result can be
// fetched by many partitions in parallel.
package partition

import (
	"context"
	"fmt"
	"regexp"

	"github.com/squareup/connectoragent/common"
	"github.com/squareup/connectoragent/errors"
	"github.com/squareup/connectoragent/sources"
)

var identifier = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z_0-9]*(\.[a-zA-Z_][a-zA-Z_0-9]*)?$`)

// Config describes how to partition a query. When Min and Max are both zero they are read from the source.
type Config struct {
	Query  string
	Column string
	Num    int
	Min    int64
	Max    int64
}

func (c *Config) Validate() error {
	if c.Query == "" {
		return errors.NewInvalidConfigurationError("partition query must be specified")
	}
	if !identifier.MatchString(c.Column) {
		return errors.NewInvalidConfigurationError(fmt.Sprintf("invalid partition column %q", c.Column))
	}
	if c.Num < 1 {
		return errors.NewInvalidConfigurationError("number of partitions must be >= 1")
	}
	if c.Min > c.Max {
		return errors.NewInvalidConfigurationError(fmt.Sprintf("partition min %d is greater than max %d", c.Min, c.Max))
	}
	return nil
}

// Queries returns the partition queries for cfg, in ascending column order.
func Queries(ctx context.Context, builder sources.SourceBuilder, cfg Config) ([]string, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	min, max := cfg.Min, cfg.Max
	if min == 0 && max == 0 {
		var empty bool
		var err error
		min, max, empty, err = Bounds(ctx, builder, cfg.Query, cfg.Column)
		if err != nil {
			return nil, err
		}
		if empty {
			return []string{cfg.Query}, nil
		}
	}
	return Split(cfg.Query, cfg.Column, min, max, cfg.Num), nil
}

// Bounds reads the minimum and maximum of column over the rows of query. empty is true if query returns no rows.
func Bounds(ctx context.Context, builder sources.SourceBuilder, query string, column string) (min int64, max int64, empty bool, err error) {
	src, err := builder.Build(ctx)
	if err != nil {
		return 0, 0, false, err
	}
	defer common.InvokeCloser(src)
	bq := fmt.Sprintf("SELECT COUNT(%s), MIN(%s), MAX(%s) FROM (%s) AS cxa_bounds", column, column, column, query)
	if err := src.RunQuery(ctx, bq); err != nil {
		return 0, 0, false, err
	}
	if src.NRows() != 1 || src.NCols() != 3 {
		return 0, 0, false, errors.Errorf("bounds query returned %d rows and %d columns", src.NRows(), src.NCols())
	}
	count, err := sources.Produce[int64](src)
	if err != nil {
		return 0, 0, false, err
	}
	if count == 0 {
		return 0, 0, true, nil
	}
	if min, err = sources.Produce[int64](src); err != nil {
		return 0, 0, false, err
	}
	if max, err = sources.Produce[int64](src); err != nil {
		return 0, 0, false, err
	}
	return min, max, false, nil
}

// Split divides [min, max] into at most num contiguous ranges of near equal width. Every value in [min, max] falls in
// exactly one range, and ranges are returned in ascending order so the merged result keeps the column order between
// partitions.
func Split(query string, column string, min int64, max int64, num int) []string {
	// span is the number of values minus one, so the full int64 range does not overflow.
	span := uint64(max) - uint64(min)
	if num < 1 {
		num = 1
	}
	if span < uint64(num-1) {
		num = int(span + 1)
	}
	n := uint64(num)
	step, rem := span/n, span%n+1
	if rem == n {
		step, rem = step+1, 0
	}
	queries := make([]string, 0, num)
	lo := min
	for i := 0; i < num; i++ {
		size := step
		if uint64(i) < rem {
			size++
		}
		hi := lo + int64(size-1)
		queries = append(queries, fmt.Sprintf("SELECT * FROM (%s) AS cxa_part WHERE %s >= %d AND %s <= %d",
			query, column, lo, column, hi))
		lo = hi + 1
	}
	return queries
}
