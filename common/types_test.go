package common

import (
	"testing"

	"github.com/squareup/connectoragent/errors"
	"github.com/stretchr/testify/require"
)

func TestParseDataType(t *testing.T) {
	tests := []struct {
		name string
		want DataType
	}{
		{"uint", TypeUint64},
		{"U64", TypeUint64},
		{"bigint", TypeInt64},
		{"Double", TypeFloat64},
		{"boolean", TypeBool},
		{"varchar", TypeString},
		{" text ", TypeString},
		{"BLOB", TypeBytes},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dt, err := ParseDataType(tt.name)
			require.NoError(t, err)
			require.Equal(t, tt.want, dt)
		})
	}
	_, err := ParseDataType("decimal")
	require.Error(t, err)
}

func TestDataTypeStringRoundTrip(t *testing.T) {
	for _, dt := range AllDataTypes {
		require.True(t, dt.Valid())
		parsed, err := ParseDataType(dt.String())
		require.NoError(t, err)
		require.Equal(t, dt, parsed)
	}
	require.False(t, TypeUnknown.Valid())
	require.Equal(t, "unknown(0)", TypeUnknown.String())
}

func TestCapture(t *testing.T) {
	var dt DataType
	require.NoError(t, dt.Capture([]string{"float"}))
	require.Equal(t, TypeFloat64, dt)
	require.Error(t, dt.Capture([]string{"timestamp"}))
}

func TestDataTypeOf(t *testing.T) {
	require.Equal(t, TypeUint64, DataTypeOf[uint64]())
	require.Equal(t, TypeInt64, DataTypeOf[int64]())
	require.Equal(t, TypeFloat64, DataTypeOf[float64]())
	require.Equal(t, TypeBool, DataTypeOf[bool]())
	require.Equal(t, TypeString, DataTypeOf[string]())
	require.Equal(t, TypeBytes, DataTypeOf[[]byte]())
}

func TestSchemaValidate(t *testing.T) {
	require.NoError(t, Schema{TypeUint64, TypeString}.Validate())

	err := Schema{}.Validate()
	require.True(t, errors.HasCode(err, errors.InvalidConfiguration))

	err = Schema{TypeString, TypeUnknown}.Validate()
	require.True(t, errors.HasCode(err, errors.InvalidConfiguration))

	require.Equal(t, "uint, text, bool", Schema{TypeUint64, TypeString, TypeBool}.String())
}
