// Package memory is the reference Writer: a column-major arena of typed Go slices, one per schema column, sized
// once by Allocate. Partitions write disjoint rows of the same slices, so no locking is needed.
package memory

import (
	"github.com/squareup/connectoragent/common"
	"github.com/squareup/connectoragent/errors"
)

type Writer struct {
	schema    common.Schema
	nrows     int
	columns   []interface{}
	allocated bool
	finalized common.AtomicBool
}

func NewWriter() *Writer {
	return &Writer{}
}

func (w *Writer) Allocate(schema common.Schema, nrows int) error {
	if w.allocated {
		return errors.New("writer is already allocated")
	}
	if err := schema.Validate(); err != nil {
		return err
	}
	if nrows < 0 {
		return errors.Errorf("invalid row count %d", nrows)
	}
	columns := make([]interface{}, len(schema))
	for i, dt := range schema {
		switch dt {
		case common.TypeUint64:
			columns[i] = make([]uint64, nrows)
		case common.TypeInt64:
			columns[i] = make([]int64, nrows)
		case common.TypeFloat64:
			columns[i] = make([]float64, nrows)
		case common.TypeBool:
			columns[i] = make([]bool, nrows)
		case common.TypeString:
			columns[i] = make([]string, nrows)
		case common.TypeBytes:
			columns[i] = make([][]byte, nrows)
		default:
			panic("unexpected data type " + dt.String())
		}
	}
	w.schema = append(common.Schema(nil), schema...)
	w.nrows = nrows
	w.columns = columns
	w.allocated = true
	return nil
}

func (w *Writer) Finalize() error {
	return w.FinalizeWith(nil)
}

// FinalizeWith finalizes the writer and then runs build, which may read the typed views. If build fails the writer
// goes back to the unfinalized state, so no view is readable after a failed finalize.
func (w *Writer) FinalizeWith(build func() error) error {
	if !w.allocated {
		return errors.New("writer has not been allocated")
	}
	if !w.finalized.CompareAndSet(false, true) {
		return errors.New("writer is already finalized")
	}
	if build == nil {
		return nil
	}
	if err := build(); err != nil {
		w.finalized.Set(false)
		return err
	}
	return nil
}

func (w *Writer) Finalized() bool {
	return w.finalized.Get()
}

func (w *Writer) Schema() common.Schema {
	return w.schema
}

func (w *Writer) NRows() int {
	return w.nrows
}

func (w *Writer) NCols() int {
	return len(w.schema)
}

func column[T common.Value](w *Writer, row int, col int) ([]T, error) {
	if col < 0 || col >= len(w.columns) {
		return nil, errors.Errorf("column %d out of range, writer has %d columns", col, len(w.columns))
	}
	if row < 0 || row >= w.nrows {
		return nil, errors.Errorf("row %d out of range, writer has %d rows", row, w.nrows)
	}
	vals, ok := w.columns[col].([]T)
	if !ok {
		return nil, errors.Errorf("column %d is %s, cannot write %s", col, w.schema[col], common.DataTypeOf[T]())
	}
	return vals, nil
}

func write[T common.Value](w *Writer, row int, col int, v T) error {
	if w.finalized.Get() {
		return errors.New("writer is finalized")
	}
	vals, err := column[T](w, row, col)
	if err != nil {
		return err
	}
	vals[row] = v
	return nil
}

func (w *Writer) WriteUint64(row int, col int, v uint64) error {
	return write(w, row, col, v)
}

func (w *Writer) WriteInt64(row int, col int, v int64) error {
	return write(w, row, col, v)
}

func (w *Writer) WriteFloat64(row int, col int, v float64) error {
	return write(w, row, col, v)
}

func (w *Writer) WriteBool(row int, col int, v bool) error {
	return write(w, row, col, v)
}

func (w *Writer) WriteString(row int, col int, v string) error {
	return write(w, row, col, v)
}

func (w *Writer) WriteBytes(row int, col int, v []byte) error {
	return write(w, row, col, v)
}

// ColumnView returns column col of a finalized writer. The slice is shared with the writer and must not be
// modified.
func ColumnView[T common.Value](w *Writer, col int) ([]T, error) {
	if !w.finalized.Get() {
		return nil, errors.New("writer is not finalized")
	}
	if col < 0 || col >= len(w.columns) {
		return nil, errors.Errorf("column %d out of range, writer has %d columns", col, len(w.columns))
	}
	vals, ok := w.columns[col].([]T)
	if !ok {
		return nil, errors.Errorf("column %d is %s, not %s", col, w.schema[col], common.DataTypeOf[T]())
	}
	return vals, nil
}

// Row returns the cells of one row of a finalized writer, each boxed as its column's Go type.
func (w *Writer) Row(row int) ([]interface{}, error) {
	if !w.finalized.Get() {
		return nil, errors.New("writer is not finalized")
	}
	if row < 0 || row >= w.nrows {
		return nil, errors.Errorf("row %d out of range, writer has %d rows", row, w.nrows)
	}
	cells := make([]interface{}, len(w.columns))
	for i, c := range w.columns {
		switch vals := c.(type) {
		case []uint64:
			cells[i] = vals[row]
		case []int64:
			cells[i] = vals[row]
		case []float64:
			cells[i] = vals[row]
		case []bool:
			cells[i] = vals[row]
		case []string:
			cells[i] = vals[row]
		case [][]byte:
			cells[i] = vals[row]
		}
	}
	return cells, nil
}
