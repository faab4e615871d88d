package memory

import (
	"fmt"
	"sync"
	"testing"

	"github.com/squareup/connectoragent/common"
	"github.com/squareup/connectoragent/writers"
	"github.com/stretchr/testify/require"
)

var mixedSchema = common.Schema{common.TypeUint64, common.TypeInt64, common.TypeFloat64, common.TypeBool, common.TypeString, common.TypeBytes}

func TestWriteAndView(t *testing.T) {
	w := NewWriter()
	require.NoError(t, w.Allocate(mixedSchema, 2))
	for row := 0; row < 2; row++ {
		require.NoError(t, w.WriteUint64(row, 0, uint64(row+1)))
		require.NoError(t, w.WriteInt64(row, 1, -int64(row)))
		require.NoError(t, w.WriteFloat64(row, 2, float64(row)/2))
		require.NoError(t, w.WriteBool(row, 3, row == 1))
		require.NoError(t, w.WriteString(row, 4, []string{"Raj", "Abhishek"}[row]))
		require.NoError(t, w.WriteBytes(row, 5, []byte{byte(row)}))
	}
	_, err := ColumnView[uint64](w, 0)
	require.Error(t, err, "views are not readable before finalize")

	require.NoError(t, w.Finalize())
	require.True(t, w.Finalized())
	require.Equal(t, 2, w.NRows())
	require.Equal(t, 6, w.NCols())
	require.Equal(t, mixedSchema, w.Schema())

	u, err := ColumnView[uint64](w, 0)
	require.NoError(t, err)
	require.Equal(t, []uint64{1, 2}, u)
	s, err := ColumnView[string](w, 4)
	require.NoError(t, err)
	require.Equal(t, []string{"Raj", "Abhishek"}, s)
	_, err = ColumnView[string](w, 0)
	require.Error(t, err)
	_, err = ColumnView[string](w, 6)
	require.Error(t, err)

	row, err := w.Row(1)
	require.NoError(t, err)
	require.Equal(t, []interface{}{uint64(2), int64(-1), 0.5, true, "Abhishek", []byte{1}}, row)
	_, err = w.Row(2)
	require.Error(t, err)
}

func TestWriteRejectsWrongTypeAndBounds(t *testing.T) {
	w := NewWriter()
	require.NoError(t, w.Allocate(common.Schema{common.TypeString}, 1))
	require.Error(t, w.WriteUint64(0, 0, 1))
	require.Error(t, w.WriteString(1, 0, "x"))
	require.Error(t, w.WriteString(0, 1, "x"))
	require.NoError(t, w.WriteString(0, 0, "x"))
	require.NoError(t, w.Finalize())
	require.Error(t, w.WriteString(0, 0, "y"))
	require.Error(t, w.Finalize())
}

func TestAllocateOnce(t *testing.T) {
	w := NewWriter()
	require.Error(t, w.Finalize())
	require.Error(t, w.Allocate(common.Schema{}, 1))
	require.NoError(t, w.Allocate(common.Schema{common.TypeBool}, 0))
	require.Error(t, w.Allocate(common.Schema{common.TypeBool}, 0))
}

func TestDisjointConcurrentWrites(t *testing.T) {
	counts := []int{100, 37, 250, 1}
	ranges, total := writers.ComputeRanges(counts)
	w := NewWriter()
	require.NoError(t, w.Allocate(common.Schema{common.TypeInt64, common.TypeString}, total))
	var wg sync.WaitGroup
	for p, rng := range ranges {
		wg.Add(1)
		go func(p int, pw *writers.PartitionWriter) {
			defer wg.Done()
			for r := 0; r < pw.Range().Length; r++ {
				if err := pw.WriteInt64(r, 0, int64(p)); err != nil {
					panic(err)
				}
				if err := pw.WriteString(r, 1, "v"); err != nil {
					panic(err)
				}
			}
		}(p, writers.NewPartitionWriter(w, rng))
	}
	wg.Wait()
	require.NoError(t, w.Finalize())
	ids, err := ColumnView[int64](w, 0)
	require.NoError(t, err)
	k := 0
	for p, n := range counts {
		for i := 0; i < n; i++ {
			require.Equal(t, int64(p), ids[k])
			k++
		}
	}
}

func TestFinalizeWithFailedBuild(t *testing.T) {
	w := NewWriter()
	require.NoError(t, w.Allocate(common.Schema{common.TypeString}, 1))
	require.NoError(t, w.WriteString(0, 0, "Raj"))

	err := w.FinalizeWith(func() error {
		col, err := ColumnView[string](w, 0)
		require.NoError(t, err)
		require.Equal(t, []string{"Raj"}, col)
		return fmt.Errorf("conversion failed")
	})
	require.EqualError(t, err, "conversion failed")
	require.False(t, w.Finalized())
	_, err = ColumnView[string](w, 0)
	require.Error(t, err)

	require.NoError(t, w.Finalize())
	col, err := ColumnView[string](w, 0)
	require.NoError(t, err)
	require.Equal(t, []string{"Raj"}, col)
}
