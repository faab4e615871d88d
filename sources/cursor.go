package sources

import (
	"github.com/squareup/connectoragent/common"
	"github.com/squareup/connectoragent/errors"
)

// Cursor implements Producer over a materialised, row-major slice of raw cells. Backends that buffer their result
// set client side embed it.
type Cursor struct {
	cells  []interface{}
	nrows  int
	ncols  int
	pos    int
	loaded bool
}

// ErrAlreadyQueried is returned by RunQuery on a source that already ran a query; counts are fixed per source.
var ErrAlreadyQueried = errors.New("a query has already been run on this source")

// Reset replaces the cursor's cells. len(cells) must be nrows*ncols.
func (c *Cursor) Reset(cells []interface{}, nrows int, ncols int) {
	if len(cells) != nrows*ncols {
		panic("cells do not match nrows * ncols")
	}
	c.cells = cells
	c.nrows = nrows
	c.ncols = ncols
	c.pos = 0
	c.loaded = true
}

// Loaded reports whether Reset has been called, i.e. the owning source has run its query.
func (c *Cursor) Loaded() bool {
	return c.loaded
}

func (c *Cursor) NRows() int {
	return c.nrows
}

func (c *Cursor) NCols() int {
	return c.ncols
}

// Remaining is the number of cells left to produce.
func (c *Cursor) Remaining() int {
	return len(c.cells) - c.pos
}

func (c *Cursor) next() (interface{}, error) {
	if c.pos >= len(c.cells) {
		return nil, errors.NewExhaustedError(len(c.cells))
	}
	v := c.cells[c.pos]
	c.cells[c.pos] = nil
	c.pos++
	return v, nil
}

func (c *Cursor) ProduceUint64() (uint64, error) {
	v, err := c.next()
	if err != nil {
		return 0, err
	}
	return common.CoerceUint64(v)
}

func (c *Cursor) ProduceInt64() (int64, error) {
	v, err := c.next()
	if err != nil {
		return 0, err
	}
	return common.CoerceInt64(v)
}

func (c *Cursor) ProduceFloat64() (float64, error) {
	v, err := c.next()
	if err != nil {
		return 0, err
	}
	return common.CoerceFloat64(v)
}

func (c *Cursor) ProduceBool() (bool, error) {
	v, err := c.next()
	if err != nil {
		return false, err
	}
	return common.CoerceBool(v)
}

func (c *Cursor) ProduceString() (string, error) {
	v, err := c.next()
	if err != nil {
		return "", err
	}
	return common.CoerceString(v)
}

func (c *Cursor) ProduceBytes() ([]byte, error) {
	v, err := c.next()
	if err != nil {
		return nil, err
	}
	return common.CoerceBytes(v)
}
