// Package sources defines the contracts a backend implements to feed a dispatch: a SourceBuilder opens independent
// DataSources, each DataSource runs one query and hands its cells out one at a time in row-major order.
package sources

import (
	"context"

	"github.com/squareup/connectoragent/common"
)

// Producer yields the next cell of a result set interpreted as a given type. Every call advances the cursor by
// exactly one cell, whether it succeeds or not. Calling past the last cell fails with a SourceExhausted error, a
// cell that cannot be interpreted as the requested type fails with a ConversionFailed error.
type Producer interface {
	ProduceUint64() (uint64, error)
	ProduceInt64() (int64, error)
	ProduceFloat64() (float64, error)
	ProduceBool() (bool, error)
	ProduceString() (string, error)
	ProduceBytes() ([]byte, error)
}

// DataSource is one query executed over one connection. Row and column counts are known as soon as RunQuery
// returns successfully, and the column count stays fixed for the life of the instance.
type DataSource interface {
	Producer

	RunQuery(ctx context.Context, query string) error

	NRows() int

	NCols() int

	Close() error
}

// SourceBuilder opens new, independent DataSources. Build must be safe to call from many goroutines at once.
type SourceBuilder interface {
	Build(ctx context.Context) (DataSource, error)
}

// Produce is the generic form of the Producer methods.
func Produce[T common.Value](p Producer) (T, error) {
	var zero T
	var v interface{}
	var err error
	switch any(zero).(type) {
	case uint64:
		v, err = p.ProduceUint64()
	case int64:
		v, err = p.ProduceInt64()
	case float64:
		v, err = p.ProduceFloat64()
	case bool:
		v, err = p.ProduceBool()
	case string:
		v, err = p.ProduceString()
	case []byte:
		v, err = p.ProduceBytes()
	}
	if err != nil {
		return zero, err
	}
	return v.(T), nil
}
