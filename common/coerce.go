package common

import (
	"math"
	"strconv"
	"time"

	"github.com/squareup/connectoragent/errors"
)

// The Coerce functions interpret a raw cell, as handed over by a backend driver, as one of the DataType value
// types. Only lossless interpretations are allowed; nil (SQL NULL) never converts.

// signed widens any signed integer type to int64.
func signed(val interface{}) (int64, bool) {
	switch v := val.(type) {
	case int64:
		return v, true
	case int32:
		return int64(v), true
	case int16:
		return int64(v), true
	case int8:
		return int64(v), true
	case int:
		return int64(v), true
	}
	return 0, false
}

// unsigned widens any unsigned integer type to uint64.
func unsigned(val interface{}) (uint64, bool) {
	switch v := val.(type) {
	case uint64:
		return v, true
	case uint32:
		return uint64(v), true
	case uint16:
		return uint64(v), true
	case uint8:
		return uint64(v), true
	case uint:
		return uint64(v), true
	}
	return 0, false
}

func CoerceUint64(val interface{}) (uint64, error) {
	if u, ok := unsigned(val); ok {
		return u, nil
	}
	if i, ok := signed(val); ok {
		if i < 0 {
			return 0, errors.NewConversionError(val, "uint")
		}
		return uint64(i), nil
	}
	switch v := val.(type) {
	case float64:
		if v < 0 || v != math.Trunc(v) || v >= 0x1p64 {
			return 0, errors.NewConversionError(v, "uint")
		}
		return uint64(v), nil
	case string:
		r, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return 0, errors.NewConversionError(v, "uint")
		}
		return r, nil
	case []byte:
		return CoerceUint64(string(v))
	default:
		return 0, errors.NewConversionError(v, "uint")
	}
}

func CoerceInt64(val interface{}) (int64, error) {
	if i, ok := signed(val); ok {
		return i, nil
	}
	if u, ok := unsigned(val); ok {
		if u > math.MaxInt64 {
			return 0, errors.NewConversionError(val, "int")
		}
		return int64(u), nil
	}
	switch v := val.(type) {
	case float64:
		if v != math.Trunc(v) || v < math.MinInt64 || v >= 0x1p63 {
			return 0, errors.NewConversionError(v, "int")
		}
		return int64(v), nil
	case string:
		r, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, errors.NewConversionError(v, "int")
		}
		return r, nil
	case []byte:
		return CoerceInt64(string(v))
	default:
		return 0, errors.NewConversionError(v, "int")
	}
}

// CoerceFloat64 accepts integers only when they round trip through float64 exactly, so magnitudes above 2^53 fail
// unless they happen to be representable.
func CoerceFloat64(val interface{}) (float64, error) {
	if i, ok := signed(val); ok {
		f := float64(i)
		if f >= 0x1p63 || int64(f) != i {
			return 0, errors.NewConversionError(val, "float")
		}
		return f, nil
	}
	if u, ok := unsigned(val); ok {
		f := float64(u)
		if f >= 0x1p64 || uint64(f) != u {
			return 0, errors.NewConversionError(val, "float")
		}
		return f, nil
	}
	switch v := val.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case string:
		r, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0, errors.NewConversionError(v, "float")
		}
		return r, nil
	case []byte:
		return CoerceFloat64(string(v))
	default:
		return 0, errors.NewConversionError(v, "float")
	}
}

func CoerceBool(val interface{}) (bool, error) {
	// SQLite has no boolean storage class, booleans come back as 0 or 1
	if i, ok := signed(val); ok && (i == 0 || i == 1) {
		return i == 1, nil
	}
	if u, ok := unsigned(val); ok && (u == 0 || u == 1) {
		return u == 1, nil
	}
	switch v := val.(type) {
	case bool:
		return v, nil
	case string:
		r, err := strconv.ParseBool(v)
		if err != nil {
			return false, errors.NewConversionError(v, "bool")
		}
		return r, nil
	case []byte:
		return CoerceBool(string(v))
	default:
		return false, errors.NewConversionError(v, "bool")
	}
}

func CoerceString(val interface{}) (string, error) {
	if i, ok := signed(val); ok {
		return strconv.FormatInt(i, 10), nil
	}
	if u, ok := unsigned(val); ok {
		return strconv.FormatUint(u, 10), nil
	}
	switch v := val.(type) {
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), nil
	case float32:
		return strconv.FormatFloat(float64(v), 'g', -1, 32), nil
	case bool:
		return strconv.FormatBool(v), nil
	case time.Time:
		return v.Format(time.RFC3339Nano), nil
	default:
		return "", errors.NewConversionError(v, "text")
	}
}

func CoerceBytes(val interface{}) ([]byte, error) {
	switch v := val.(type) {
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, errors.NewConversionError(v, "bytes")
	}
}
