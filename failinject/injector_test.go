package failinject

import (
	"testing"

	"github.com/squareup/connectoragent/errors"
	"github.com/stretchr/testify/require"
)

func TestFailpoint(t *testing.T) {
	inj := NewInjector()
	require.NoError(t, inj.Start())
	fp := inj.GetFailpoint(TransferPartition)
	require.NoError(t, fp.CheckFail(0))

	boom := errors.New("boom")
	fp.SetFailAction(FailOn(2, boom))
	require.NoError(t, fp.CheckFail(1))
	require.Equal(t, boom, fp.CheckFail(2))

	fp.Deactivate()
	require.NoError(t, fp.CheckFail(2))

	_, err := inj.RegisterFailpoint(TransferPartition)
	require.Error(t, err)
	require.Panics(t, func() {
		inj.GetFailpoint("unknown")
	})
}

func TestDummyInjector(t *testing.T) {
	inj := NewDummyInjector()
	require.NoError(t, inj.Start())
	fp := inj.GetFailpoint(PreparePartition)
	fp.SetFailAction(func(int) error { return errors.New("never") })
	require.NoError(t, fp.CheckFail(0))
	require.NoError(t, inj.Stop())
}
