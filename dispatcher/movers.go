package dispatcher

import (
	"github.com/squareup/connectoragent/common"
	"github.com/squareup/connectoragent/sources"
	"github.com/squareup/connectoragent/writers"
)

// cellMover moves one cell from a source to a partition writer using the routines for one DataType.
type cellMover func(src sources.Producer, dst *writers.PartitionWriter, row int, col int) error

func newMover[T common.Value](produce func(sources.Producer) (T, error),
	write func(*writers.PartitionWriter, int, int, T) error) cellMover {
	return func(src sources.Producer, dst *writers.PartitionWriter, row int, col int) error {
		v, err := produce(src)
		if err != nil {
			return err
		}
		return write(dst, row, col, v)
	}
}

var movers = map[common.DataType]cellMover{
	common.TypeUint64:  newMover(sources.Producer.ProduceUint64, (*writers.PartitionWriter).WriteUint64),
	common.TypeInt64:   newMover(sources.Producer.ProduceInt64, (*writers.PartitionWriter).WriteInt64),
	common.TypeFloat64: newMover(sources.Producer.ProduceFloat64, (*writers.PartitionWriter).WriteFloat64),
	common.TypeBool:    newMover(sources.Producer.ProduceBool, (*writers.PartitionWriter).WriteBool),
	common.TypeString:  newMover(sources.Producer.ProduceString, (*writers.PartitionWriter).WriteString),
	common.TypeBytes:   newMover(sources.Producer.ProduceBytes, (*writers.PartitionWriter).WriteBytes),
}

// moversFor resolves the mover of every column once, before any row is read. The schema has been validated so
// every type has a mover.
func moversFor(schema common.Schema) []cellMover {
	res := make([]cellMover, len(schema))
	for i, dt := range schema {
		mv, ok := movers[dt]
		if !ok {
			panic("no mover for data type " + dt.String())
		}
		res[i] = mv
	}
	return res
}
