package memory

import (
	"context"
	"testing"

	"github.com/squareup/connectoragent/errors"
	"github.com/squareup/connectoragent/sources"
	"github.com/stretchr/testify/require"
)

func personCatalog(t *testing.T) *Catalog {
	t.Helper()
	c := NewCatalog()
	require.NoError(t, c.Register("select * from person", 4,
		[]interface{}{int64(1), "Raj", "raj@gmail.com", int64(22)},
		[]interface{}{int64(2), "Abhishek", "ab@gmail.com", int64(32)},
		[]interface{}{int64(3), "Ashish", "ashish@gmail.com", int64(25)},
	))
	return c
}

func TestLoadAndParse(t *testing.T) {
	ctx := context.Background()
	src, err := NewSourceBuilder(personCatalog(t)).Build(ctx)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, src.Close())
	}()
	require.NoError(t, src.RunQuery(ctx, "select * from person"))
	require.Equal(t, 3, src.NRows())
	require.Equal(t, 4, src.NCols())

	var ids, ages []uint64
	var names []string
	for i := 0; i < src.NRows(); i++ {
		id, err := sources.Produce[uint64](src)
		require.NoError(t, err)
		name, err := sources.Produce[string](src)
		require.NoError(t, err)
		_, err = sources.Produce[string](src)
		require.NoError(t, err)
		age, err := sources.Produce[uint64](src)
		require.NoError(t, err)
		ids = append(ids, id)
		names = append(names, name)
		ages = append(ages, age)
	}
	require.Equal(t, []uint64{1, 2, 3}, ids)
	require.Equal(t, []string{"Raj", "Abhishek", "Ashish"}, names)
	require.Equal(t, []uint64{22, 32, 25}, ages)

	_, err = src.ProduceUint64()
	require.True(t, errors.HasCode(err, errors.SourceExhausted))
}

func TestWrongTableName(t *testing.T) {
	ctx := context.Background()
	src, err := NewSourceBuilder(personCatalog(t)).Build(ctx)
	require.NoError(t, err)
	err = src.RunQuery(ctx, "select * from test_table_wrong")
	require.True(t, errors.HasCode(err, errors.QueryFailed))
}

func TestOffline(t *testing.T) {
	ctx := context.Background()
	c := personCatalog(t)
	b := NewSourceBuilder(c)
	src, err := b.Build(ctx)
	require.NoError(t, err)

	c.SetOffline(true)
	_, err = b.Build(ctx)
	require.True(t, errors.HasCode(err, errors.ConnectionFailed))
	err = src.RunQuery(ctx, "select * from person")
	require.True(t, errors.HasCode(err, errors.ConnectionFailed))
}

func TestRegisterRejectsRaggedRows(t *testing.T) {
	c := NewCatalog()
	err := c.Register("q", 2, []interface{}{1, 2}, []interface{}{1})
	require.Error(t, err)
}

func TestEmptyResult(t *testing.T) {
	ctx := context.Background()
	c := NewCatalog()
	require.NoError(t, c.Register("empty", 3))
	src, err := NewSourceBuilder(c).Build(ctx)
	require.NoError(t, err)
	require.NoError(t, src.RunQuery(ctx, "empty"))
	require.Equal(t, 0, src.NRows())
	require.Equal(t, 3, src.NCols())
	_, err = src.ProduceString()
	require.True(t, errors.HasCode(err, errors.SourceExhausted))
}

func TestSecondQueryRejected(t *testing.T) {
	ctx := context.Background()
	c := personCatalog(t)
	require.NoError(t, c.Register("select name from person", 1, []interface{}{"Raj"}))
	src, err := NewSourceBuilder(c).Build(ctx)
	require.NoError(t, err)
	require.NoError(t, src.RunQuery(ctx, "select * from person"))
	err = src.RunQuery(ctx, "select name from person")
	require.True(t, errors.Is(err, sources.ErrAlreadyQueried), "%v", err)
	require.Equal(t, 3, src.NRows())
	require.Equal(t, 4, src.NCols())
	id, err := sources.Produce[uint64](src)
	require.NoError(t, err)
	require.Equal(t, uint64(1), id)
}
