// Package dispatcher runs a set of queries, one partition each, against a SourceBuilder and merges their rows into
// one Writer.
//
// A dispatch runs in two phases separated by a barrier. In the prepare phase every partition builds its own
// DataSource, runs its query and checks the column count against the schema. Once all row counts are known each
// partition is given the row range that follows the ranges of all lower partition indexes, the writer is sized, and
// in the transfer phase every partition copies its cells into its own range. Ranges never overlap so partitions
// write concurrently without locks. Row order in the writer therefore only depends on partition index.
package dispatcher

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/squareup/connectoragent/common"
	"github.com/squareup/connectoragent/errors"
	"github.com/squareup/connectoragent/failinject"
	"github.com/squareup/connectoragent/sources"
	"github.com/squareup/connectoragent/writers"
	"golang.org/x/sync/errgroup"
)

// rows moved between checks of the context
const cancelCheckInterval = 1024

type Dispatcher[W writers.Writer] struct {
	id       string
	builder  sources.SourceBuilder
	writer   W
	schema   common.Schema
	queries  []string
	workers  int
	injector failinject.Injector
	ran      common.AtomicBool
}

type Option func(*options)

type options struct {
	workers  int
	injector failinject.Injector
}

// WithWorkers caps the number of partitions running at once. Zero, the default, runs every partition at once.
func WithWorkers(workers int) Option {
	return func(o *options) {
		o.workers = workers
	}
}

// WithInjector sets the failpoint injector, used in tests.
func WithInjector(injector failinject.Injector) Option {
	return func(o *options) {
		o.injector = injector
	}
}

func NewDispatcher[W writers.Writer](builder sources.SourceBuilder, writer W, schema common.Schema, queries []string,
	opts ...Option) *Dispatcher[W] {
	o := options{injector: failinject.NewDummyInjector()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Dispatcher[W]{
		id:       uuid.New().String(),
		builder:  builder,
		writer:   writer,
		schema:   schema,
		queries:  queries,
		workers:  o.workers,
		injector: o.injector,
	}
}

type partition struct {
	index  int
	query  string
	source sources.DataSource
	writer *writers.PartitionWriter
	nrows  int
	err    error
}

func (d *Dispatcher[W]) validate() error {
	if err := d.schema.Validate(); err != nil {
		return err
	}
	if len(d.queries) == 0 {
		return errors.NewInvalidConfigurationError("at least one query is required")
	}
	if d.workers < 0 {
		return errors.NewInvalidConfigurationError(fmt.Sprintf("workers must be >= 0, got %d", d.workers))
	}
	return nil
}

// RunChecked runs every partition and returns the finalized writer. If any partition fails the error of the lowest
// failing partition index is returned and the writer is not finalized. A dispatcher can only be run once.
func (d *Dispatcher[W]) RunChecked(ctx context.Context) (W, error) {
	var zero W
	if !d.ran.CompareAndSet(false, true) {
		return zero, errors.New("dispatcher has already been run")
	}
	if err := d.validate(); err != nil {
		return zero, err
	}
	start := time.Now()
	logger := log.WithField("dispatch", d.id)
	logger.Debugf("starting dispatch of %d partitions with schema [%s]", len(d.queries), d.schema)

	parts := make([]*partition, len(d.queries))
	for i, q := range d.queries {
		parts[i] = &partition{index: i, query: q}
	}
	defer d.closeSources(parts)

	if err := d.run(logger, parts, func(p *partition) error { return d.prepare(ctx, p) }); err != nil {
		dispatchesVec.WithLabelValues(outcomeFailed).Inc()
		return zero, err
	}

	counts := make([]int, len(parts))
	for i, p := range parts {
		counts[i] = p.nrows
	}
	ranges, total := writers.ComputeRanges(counts)
	if err := d.writer.Allocate(d.schema, total); err != nil {
		dispatchesVec.WithLabelValues(outcomeFailed).Inc()
		return zero, err
	}
	for i, p := range parts {
		p.writer = writers.NewPartitionWriter(d.writer, ranges[i])
	}
	logger.Debugf("allocated %d rows", total)

	if err := d.run(logger, parts, func(p *partition) error { return d.transfer(ctx, p) }); err != nil {
		dispatchesVec.WithLabelValues(outcomeFailed).Inc()
		return zero, err
	}
	if err := d.writer.Finalize(); err != nil {
		dispatchesVec.WithLabelValues(outcomeFailed).Inc()
		return zero, err
	}

	dispatchesVec.WithLabelValues(outcomeSucceeded).Inc()
	partitionsVec.WithLabelValues(outcomeSucceeded).Add(float64(len(parts)))
	elapsed := time.Since(start)
	dispatchTimeHistogram.Observe(elapsed.Seconds())
	logger.Infof("dispatched %d rows from %d partitions in %d ms", total, len(parts), elapsed.Milliseconds())
	return d.writer, nil
}

// run executes phase for every partition on the worker pool and waits for all of them. It returns the error of the
// lowest failed partition index, regardless of which one failed first in time.
func (d *Dispatcher[W]) run(logger *log.Entry, parts []*partition, phase func(p *partition) error) error {
	var g errgroup.Group
	if d.workers > 0 {
		g.SetLimit(d.workers)
	}
	for _, p := range parts {
		g.Go(func() error {
			p.err = phase(p)
			return nil
		})
	}
	// phase errors are stored on the partition
	_ = g.Wait()

	var first error
	failed := 0
	for _, p := range parts {
		if p.err == nil {
			continue
		}
		failed++
		logger.Warnf("partition %d failed: %v", p.index, p.err)
		if first == nil {
			first = errors.Wrapf(p.err, "partition %d", p.index)
		}
	}
	if failed > 0 {
		partitionsVec.WithLabelValues(outcomeFailed).Add(float64(failed))
	}
	return first
}

func (d *Dispatcher[W]) prepare(ctx context.Context, p *partition) error {
	if err := d.injector.GetFailpoint(failinject.PreparePartition).CheckFail(p.index); err != nil {
		return err
	}
	src, err := d.builder.Build(ctx)
	if err != nil {
		return err
	}
	p.source = src
	if err := src.RunQuery(ctx, p.query); err != nil {
		return err
	}
	if src.NCols() != len(d.schema) {
		return errors.NewSchemaMismatchError(p.index, len(d.schema), src.NCols())
	}
	if src.NRows() < 0 {
		return errors.Errorf("source reported %d rows", src.NRows())
	}
	p.nrows = src.NRows()
	return nil
}

func (d *Dispatcher[W]) transfer(ctx context.Context, p *partition) error {
	if err := d.injector.GetFailpoint(failinject.TransferPartition).CheckFail(p.index); err != nil {
		return err
	}
	mvs := moversFor(d.schema)
	for row := 0; row < p.nrows; row++ {
		if row%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return errors.WithStack(err)
			}
		}
		for col, mv := range mvs {
			if err := mv(p.source, p.writer, row, col); err != nil {
				return errors.Wrapf(err, "row %d column %d", row, col)
			}
		}
	}
	rowsTransferredCounter.Add(float64(p.nrows))
	return nil
}

func (d *Dispatcher[W]) closeSources(parts []*partition) {
	for _, p := range parts {
		if p.source != nil {
			common.InvokeCloser(p.source)
		}
	}
}
