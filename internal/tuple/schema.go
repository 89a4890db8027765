package tuple

import (
	"github.com/nvmdb/nvmdb/internal/engineerr"
	"github.com/nvmdb/nvmdb/internal/invariant"
)

// MaxTupleLen is the maximum row length a table's schema may produce.
const MaxTupleLen = 8192

// InvalidColID marks the absence of a column with a given name.
const InvalidColID = ^uint32(0)

// Schema is a table's column-descriptor vector plus the derived row length
// and null-bitmap size. It is initialised once by walking the column
// descriptors and assigning each its byte offset.
type Schema struct {
	Columns  []ColumnDesc
	RowLen   uint64
	NullBits int // number of bits in the per-row null bitmap, == len(Columns)
}

// NullBitmapLen returns the byte length of the null bitmap for this schema.
func (s *Schema) NullBitmapLen() int {
	return (s.NullBits + 7) / 8
}

// NewSchema assigns byte offsets to cols in order and sums them into RowLen.
// cols is copied; later mutation of the caller's slice does not affect the
// schema.
func NewSchema(cols []ColumnDesc) (*Schema, error) {
	out := make([]ColumnDesc, len(cols))
	copy(out, cols)

	var offset uint64
	for i := range out {
		out[i].Offset = offset
		offset += out[i].Len
	}
	if offset > MaxTupleLen {
		return nil, engineerr.Wrap(engineerr.ErrRowSizeExceeded, "row length %d exceeds max %d", offset, MaxTupleLen)
	}
	return &Schema{Columns: out, RowLen: offset, NullBits: len(out)}, nil
}

// ColIDByName returns the column index for name, or InvalidColID if absent.
func (s *Schema) ColIDByName(name string) uint32 {
	for i, c := range s.Columns {
		if c.Name == name {
			return uint32(i)
		}
	}
	return InvalidColID
}

// ColDesc returns the descriptor for column index idx.
func (s *Schema) ColDesc(idx uint32) *ColumnDesc {
	invariant.Check(int(idx) < len(s.Columns), "column index %d out of range (have %d columns)", idx, len(s.Columns))
	return &s.Columns[idx]
}

// ColCount returns the number of columns in the schema.
func (s *Schema) ColCount() uint32 {
	return uint32(len(s.Columns))
}
