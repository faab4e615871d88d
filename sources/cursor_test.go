package sources

import (
	"testing"

	"github.com/squareup/connectoragent/errors"
	"github.com/stretchr/testify/require"
)

func personCursor() *Cursor {
	c := &Cursor{}
	c.Reset([]interface{}{
		int64(1), "Raj", "raj@gmail.com", int64(22),
		int64(2), "Abhishek", "ab@gmail.com", int64(32),
		int64(3), "Ashish", "ashish@gmail.com", int64(25),
	}, 3, 4)
	return c
}

func TestCursorRowMajor(t *testing.T) {
	c := personCursor()
	require.Equal(t, 3, c.NRows())
	require.Equal(t, 4, c.NCols())

	type person struct {
		id    uint64
		name  string
		email string
		age   uint64
	}
	var got []person
	for i := 0; i < c.NRows(); i++ {
		var p person
		var err error
		p.id, err = Produce[uint64](c)
		require.NoError(t, err)
		p.name, err = Produce[string](c)
		require.NoError(t, err)
		p.email, err = Produce[string](c)
		require.NoError(t, err)
		p.age, err = Produce[uint64](c)
		require.NoError(t, err)
		got = append(got, p)
	}
	require.Equal(t, []person{
		{1, "Raj", "raj@gmail.com", 22},
		{2, "Abhishek", "ab@gmail.com", 32},
		{3, "Ashish", "ashish@gmail.com", 25},
	}, got)
}

func TestCursorExhaustsAfterNRowsTimesNCols(t *testing.T) {
	c := personCursor()
	calls := 0
	for {
		_, err := c.ProduceString()
		if err != nil {
			require.True(t, errors.HasCode(err, errors.SourceExhausted))
			break
		}
		calls++
	}
	require.Equal(t, c.NRows()*c.NCols(), calls)
	_, err := c.ProduceUint64()
	require.True(t, errors.HasCode(err, errors.SourceExhausted))
}

func TestCursorAdvancesOnConversionFailure(t *testing.T) {
	c := personCursor()
	_, err := c.ProduceUint64()
	require.NoError(t, err)
	_, err = c.ProduceUint64() // "Raj"
	require.True(t, errors.HasCode(err, errors.ConversionFailed))
	require.Equal(t, 10, c.Remaining())
	email, err := c.ProduceString()
	require.NoError(t, err)
	require.Equal(t, "raj@gmail.com", email)
}

func TestProduceGenericAllTypes(t *testing.T) {
	c := &Cursor{}
	c.Reset([]interface{}{uint64(1), int64(-2), 2.5, true, "s", []byte{0x1}}, 1, 6)
	u, err := Produce[uint64](c)
	require.NoError(t, err)
	require.Equal(t, uint64(1), u)
	i, err := Produce[int64](c)
	require.NoError(t, err)
	require.Equal(t, int64(-2), i)
	f, err := Produce[float64](c)
	require.NoError(t, err)
	require.Equal(t, 2.5, f)
	b, err := Produce[bool](c)
	require.NoError(t, err)
	require.True(t, b)
	s, err := Produce[string](c)
	require.NoError(t, err)
	require.Equal(t, "s", s)
	bs, err := Produce[[]byte](c)
	require.NoError(t, err)
	require.Equal(t, []byte{0x1}, bs)
}
