// Package arrowwriter finalizes the merged buffer into an Apache Arrow record.
package arrowwriter

import (
	"fmt"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/array"
	"github.com/apache/arrow-go/v18/arrow/memory"
	"github.com/squareup/connectoragent/common"
	"github.com/squareup/connectoragent/errors"
	memwriter "github.com/squareup/connectoragent/writers/memory"
)

// Writer collects cells in a memwriter.Writer arena and converts the columns to Arrow arrays on Finalize.
type Writer struct {
	*memwriter.Writer
	names  []string
	alloc  memory.Allocator
	record arrow.Record
}

// NewWriter creates a writer whose columns are named by names, missing names default to col<i>.
func NewWriter(names []string) *Writer {
	return NewWriterWithAllocator(names, memory.NewGoAllocator())
}

func NewWriterWithAllocator(names []string, alloc memory.Allocator) *Writer {
	return &Writer{Writer: memwriter.NewWriter(), names: names, alloc: alloc}
}

func ArrowType(dt common.DataType) (arrow.DataType, error) {
	switch dt {
	case common.TypeUint64:
		return arrow.PrimitiveTypes.Uint64, nil
	case common.TypeInt64:
		return arrow.PrimitiveTypes.Int64, nil
	case common.TypeFloat64:
		return arrow.PrimitiveTypes.Float64, nil
	case common.TypeBool:
		return arrow.FixedWidthTypes.Boolean, nil
	case common.TypeString:
		return arrow.BinaryTypes.String, nil
	case common.TypeBytes:
		return arrow.BinaryTypes.Binary, nil
	default:
		return nil, errors.Errorf("no arrow type for %s", dt)
	}
}

// Finalize finalizes the arena and converts it to a record. On error neither the record nor the arena views are
// readable.
func (w *Writer) Finalize() error {
	return w.Writer.FinalizeWith(w.buildRecord)
}

func (w *Writer) buildRecord() error {
	schema := w.Schema()
	if len(w.names) > len(schema) {
		return errors.Errorf("%d column names given for %d columns", len(w.names), len(schema))
	}
	fields := make([]arrow.Field, len(schema))
	arrs := make([]arrow.Array, len(schema))
	defer func() {
		for _, arr := range arrs {
			if arr != nil {
				arr.Release()
			}
		}
	}()
	for col, dt := range schema {
		at, err := ArrowType(dt)
		if err != nil {
			return err
		}
		fields[col] = arrow.Field{Name: w.columnName(col), Type: at}
		arr, err := w.buildArray(col, dt)
		if err != nil {
			return err
		}
		arrs[col] = arr
	}
	w.record = array.NewRecord(arrow.NewSchema(fields, nil), arrs, int64(w.NRows()))
	return nil
}

func (w *Writer) columnName(col int) string {
	if col < len(w.names) && w.names[col] != "" {
		return w.names[col]
	}
	return fmt.Sprintf("col%d", col)
}

func (w *Writer) buildArray(col int, dt common.DataType) (arrow.Array, error) {
	switch dt {
	case common.TypeUint64:
		vals, err := memwriter.ColumnView[uint64](w.Writer, col)
		if err != nil {
			return nil, err
		}
		b := array.NewUint64Builder(w.alloc)
		defer b.Release()
		b.AppendValues(vals, nil)
		return b.NewArray(), nil
	case common.TypeInt64:
		vals, err := memwriter.ColumnView[int64](w.Writer, col)
		if err != nil {
			return nil, err
		}
		b := array.NewInt64Builder(w.alloc)
		defer b.Release()
		b.AppendValues(vals, nil)
		return b.NewArray(), nil
	case common.TypeFloat64:
		vals, err := memwriter.ColumnView[float64](w.Writer, col)
		if err != nil {
			return nil, err
		}
		b := array.NewFloat64Builder(w.alloc)
		defer b.Release()
		b.AppendValues(vals, nil)
		return b.NewArray(), nil
	case common.TypeBool:
		vals, err := memwriter.ColumnView[bool](w.Writer, col)
		if err != nil {
			return nil, err
		}
		b := array.NewBooleanBuilder(w.alloc)
		defer b.Release()
		b.AppendValues(vals, nil)
		return b.NewArray(), nil
	case common.TypeString:
		vals, err := memwriter.ColumnView[string](w.Writer, col)
		if err != nil {
			return nil, err
		}
		b := array.NewStringBuilder(w.alloc)
		defer b.Release()
		b.AppendValues(vals, nil)
		return b.NewArray(), nil
	case common.TypeBytes:
		vals, err := memwriter.ColumnView[[]byte](w.Writer, col)
		if err != nil {
			return nil, err
		}
		b := array.NewBinaryBuilder(w.alloc, arrow.BinaryTypes.Binary)
		defer b.Release()
		b.AppendValues(vals, nil)
		return b.NewArray(), nil
	default:
		return nil, errors.Errorf("unexpected data type %s", dt)
	}
}

// Record returns the finalized record. The writer keeps its reference until Release.
func (w *Writer) Record() (arrow.Record, error) {
	if w.record == nil {
		return nil, errors.New("writer is not finalized")
	}
	return w.record, nil
}

func (w *Writer) Release() {
	if w.record != nil {
		w.record.Release()
		w.record = nil
	}
}
