// Package memory is an in-process backend: a Catalog maps query text to a fixed result set. It is used to test the
// dispatcher without a database and to feed already materialised rows through the same pipeline.
package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/squareup/connectoragent/errors"
	"github.com/squareup/connectoragent/sources"
)

type result struct {
	ncols   int
	rows    [][]interface{}
	latency time.Duration
}

// Catalog holds the result sets a Source can return. It is safe for concurrent use.
type Catalog struct {
	lock    sync.RWMutex
	results map[string]*result
	offline bool
}

func NewCatalog() *Catalog {
	return &Catalog{results: make(map[string]*result)}
}

// Register makes query return rows. Every row must have ncols cells.
func (c *Catalog) Register(query string, ncols int, rows ...[]interface{}) error {
	for i, row := range rows {
		if len(row) != ncols {
			return errors.Errorf("row %d has %d cells, expected %d", i, len(row), ncols)
		}
	}
	c.lock.Lock()
	defer c.lock.Unlock()
	c.results[query] = &result{ncols: ncols, rows: rows}
	return nil
}

// SetLatency delays RunQuery for query by d, used to control completion order between partitions.
func (c *Catalog) SetLatency(query string, d time.Duration) {
	c.lock.Lock()
	defer c.lock.Unlock()
	if r, ok := c.results[query]; ok {
		r.latency = d
	}
}

// SetOffline makes Build and RunQuery fail with a connection error.
func (c *Catalog) SetOffline(offline bool) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.offline = offline
}

func (c *Catalog) lookup(query string) (*result, bool, bool) {
	c.lock.RLock()
	defer c.lock.RUnlock()
	r, ok := c.results[query]
	return r, ok, c.offline
}

func (c *Catalog) isOffline() bool {
	c.lock.RLock()
	defer c.lock.RUnlock()
	return c.offline
}

type SourceBuilder struct {
	catalog *Catalog
}

func NewSourceBuilder(catalog *Catalog) *SourceBuilder {
	return &SourceBuilder{catalog: catalog}
}

func (b *SourceBuilder) Build(ctx context.Context) (sources.DataSource, error) {
	if b.catalog.isOffline() {
		return nil, errors.NewConnectionError(fmt.Errorf("catalog is offline"))
	}
	return &Source{catalog: b.catalog}, nil
}

type Source struct {
	sources.Cursor
	catalog *Catalog
	closed  bool
}

func (s *Source) RunQuery(ctx context.Context, query string) error {
	if s.closed {
		return errors.NewConnectionError(fmt.Errorf("source is closed"))
	}
	if s.Loaded() {
		return errors.WithStack(sources.ErrAlreadyQueried)
	}
	r, ok, offline := s.catalog.lookup(query)
	if offline {
		return errors.NewConnectionError(fmt.Errorf("catalog is offline"))
	}
	if !ok {
		return errors.NewQueryError(query, fmt.Errorf("no result registered"))
	}
	if r.latency > 0 {
		select {
		case <-time.After(r.latency):
		case <-ctx.Done():
			return errors.WithStack(ctx.Err())
		}
	}
	cells := make([]interface{}, 0, len(r.rows)*r.ncols)
	for _, row := range r.rows {
		cells = append(cells, row...)
	}
	s.Reset(cells, len(r.rows), r.ncols)
	return nil
}

func (s *Source) Close() error {
	s.closed = true
	return nil
}
