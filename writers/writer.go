// Package writers defines the destination of a dispatch. A Writer is sized once, after every partition has reported
// its row count, then written concurrently by the partitions, each restricted to its own RowRange.
package writers

import (
	"fmt"

	"github.com/squareup/connectoragent/common"
	"github.com/squareup/connectoragent/errors"
)

// Consumer stores single cells addressed by absolute row and column.
type Consumer interface {
	WriteUint64(row int, col int, v uint64) error
	WriteInt64(row int, col int, v int64) error
	WriteFloat64(row int, col int, v float64) error
	WriteBool(row int, col int, v bool) error
	WriteString(row int, col int, v string) error
	WriteBytes(row int, col int, v []byte) error
}

// Writer is the shared output buffer of a dispatch.
//
// Allocate is called once, before any write. Writes to distinct rows may run concurrently. Finalize is called once
// every write has completed, only after it may the typed views of an implementation be read.
type Writer interface {
	Consumer

	Allocate(schema common.Schema, nrows int) error

	Finalize() error
}

// RowRange is the half open interval [Offset, Offset+Length) of rows owned by one partition.
type RowRange struct {
	Offset int
	Length int
}

func (r RowRange) End() int {
	return r.Offset + r.Length
}

func (r RowRange) String() string {
	return fmt.Sprintf("[%d, %d)", r.Offset, r.End())
}

// ComputeRanges lays the partitions out back to back in index order and returns their ranges and the total row
// count. The result depends only on counts, never on the order partitions finished in.
func ComputeRanges(counts []int) ([]RowRange, int) {
	ranges := make([]RowRange, len(counts))
	offset := 0
	for i, n := range counts {
		ranges[i] = RowRange{Offset: offset, Length: n}
		offset += n
	}
	return ranges, offset
}

// PartitionWriter gives one partition access to its range of a Writer. Rows are relative to the range start.
type PartitionWriter struct {
	w   Writer
	rng RowRange
}

func NewPartitionWriter(w Writer, rng RowRange) *PartitionWriter {
	return &PartitionWriter{w: w, rng: rng}
}

func (p *PartitionWriter) Range() RowRange {
	return p.rng
}

func (p *PartitionWriter) abs(row int) (int, error) {
	if row < 0 || row >= p.rng.Length {
		return 0, errors.Errorf("row %d is outside partition range %s", row, p.rng)
	}
	return p.rng.Offset + row, nil
}

func (p *PartitionWriter) WriteUint64(row int, col int, v uint64) error {
	r, err := p.abs(row)
	if err != nil {
		return err
	}
	return p.w.WriteUint64(r, col, v)
}

func (p *PartitionWriter) WriteInt64(row int, col int, v int64) error {
	r, err := p.abs(row)
	if err != nil {
		return err
	}
	return p.w.WriteInt64(r, col, v)
}

func (p *PartitionWriter) WriteFloat64(row int, col int, v float64) error {
	r, err := p.abs(row)
	if err != nil {
		return err
	}
	return p.w.WriteFloat64(r, col, v)
}

func (p *PartitionWriter) WriteBool(row int, col int, v bool) error {
	r, err := p.abs(row)
	if err != nil {
		return err
	}
	return p.w.WriteBool(r, col, v)
}

func (p *PartitionWriter) WriteString(row int, col int, v string) error {
	r, err := p.abs(row)
	if err != nil {
		return err
	}
	return p.w.WriteString(r, col, v)
}

func (p *PartitionWriter) WriteBytes(row int, col int, v []byte) error {
	r, err := p.abs(row)
	if err != nil {
		return err
	}
	return p.w.WriteBytes(r, col, v)
}
