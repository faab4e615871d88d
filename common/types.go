package common

import (
	"fmt"
	"strings"

	"github.com/squareup/connectoragent/errors"
)

// DataType is the logical type of one output column.
type DataType int

const (
	TypeUnknown DataType = iota
	TypeUint64
	TypeInt64
	TypeFloat64
	TypeBool
	TypeString
	TypeBytes
)

// AllDataTypes lists every supported type, in declaration order.
var AllDataTypes = []DataType{TypeUint64, TypeInt64, TypeFloat64, TypeBool, TypeString, TypeBytes}

var dataTypeNames = map[DataType]string{
	TypeUint64:  "uint",
	TypeInt64:   "int",
	TypeFloat64: "float",
	TypeBool:    "bool",
	TypeString:  "text",
	TypeBytes:   "bytes",
}

var dataTypesByName = map[string]DataType{
	"UINT":    TypeUint64,
	"U64":     TypeUint64,
	"UINT64":  TypeUint64,
	"INT":     TypeInt64,
	"I64":     TypeInt64,
	"INT64":   TypeInt64,
	"BIGINT":  TypeInt64,
	"FLOAT":   TypeFloat64,
	"F64":     TypeFloat64,
	"FLOAT64": TypeFloat64,
	"DOUBLE":  TypeFloat64,
	"BOOL":    TypeBool,
	"BOOLEAN": TypeBool,
	"TEXT":    TypeString,
	"STRING":  TypeString,
	"VARCHAR": TypeString,
	"BYTES":   TypeBytes,
	"BLOB":    TypeBytes,
}

// Value is the set of Go types a DataType maps to.
type Value interface {
	uint64 | int64 | float64 | bool | string | []byte
}

// ParseDataType looks up a type by name, case insensitively.
func ParseDataType(name string) (DataType, error) {
	t, ok := dataTypesByName[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return TypeUnknown, errors.Errorf("unknown data type %s", name)
	}
	return t, nil
}

// Capture is used by the schema parser.
func (t *DataType) Capture(tokens []string) error {
	dt, err := ParseDataType(strings.Join(tokens, " "))
	if err != nil {
		return err
	}
	*t = dt
	return nil
}

func (t DataType) String() string {
	if name, ok := dataTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", int(t))
}

// Valid is false for TypeUnknown and anything outside the closed set.
func (t DataType) Valid() bool {
	_, ok := dataTypeNames[t]
	return ok
}

// DataTypeOf returns the DataType a Value type parameter maps to.
func DataTypeOf[T Value]() DataType {
	var zero T
	switch any(zero).(type) {
	case uint64:
		return TypeUint64
	case int64:
		return TypeInt64
	case float64:
		return TypeFloat64
	case bool:
		return TypeBool
	case string:
		return TypeString
	case []byte:
		return TypeBytes
	default:
		panic(fmt.Sprintf("unexpected value type %T", zero))
	}
}

// Schema is the ordered list of column types shared by every partition of a dispatch.
type Schema []DataType

// Validate checks the schema is non-empty and only holds known types.
func (s Schema) Validate() error {
	if len(s) == 0 {
		return errors.NewInvalidConfigurationError("schema must have at least one column")
	}
	for i, t := range s {
		if !t.Valid() {
			return errors.NewInvalidConfigurationError(fmt.Sprintf("column %d has unknown type %d", i, int(t)))
		}
	}
	return nil
}

func (s Schema) String() string {
	sb := strings.Builder{}
	for i, t := range s {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(t.String())
	}
	return sb.String()
}
