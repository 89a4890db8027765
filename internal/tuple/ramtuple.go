package tuple

import (
	"bytes"
	"encoding/binary"

	"github.com/nvmdb/nvmdb/internal/invariant"
)

// RAMTuple is an in-memory row: a contiguous byte buffer of the schema's
// row_len, plus a per-row null bitmap. Field access is by column index.
type RAMTuple struct {
	Schema *Schema
	Data   []byte
	Null   []byte // bitmap, one bit per column
}

// NewRAMTuple allocates a zeroed row for schema.
func NewRAMTuple(schema *Schema) *RAMTuple {
	return &RAMTuple{
		Schema: schema,
		Data:   make([]byte, schema.RowLen),
		Null:   make([]byte, schema.NullBitmapLen()),
	}
}

// SetNull sets or clears the null bit for column idx.
func (t *RAMTuple) SetNull(idx uint32, isNull bool) {
	invariant.Check(int(idx) < len(t.Schema.Columns), "column index %d out of range", idx)
	byteIdx, bit := idx/8, idx%8
	if isNull {
		t.Null[byteIdx] |= 1 << bit
	} else {
		t.Null[byteIdx] &^= 1 << bit
	}
}

// IsNull reports whether column idx is null in this row.
func (t *RAMTuple) IsNull(idx uint32) bool {
	invariant.Check(int(idx) < len(t.Schema.Columns), "column index %d out of range", idx)
	byteIdx, bit := idx/8, idx%8
	return t.Null[byteIdx]&(1<<bit) != 0
}

// SetCol writes a fixed-width value into column idx's offset. For varchar
// columns, value is the payload only; SetCol writes the 4-byte length
// prefix followed by the payload, zero-padding any unused tail of the
// column's reserved space.
func (t *RAMTuple) SetCol(idx uint32, value []byte) {
	col := t.Schema.ColDesc(idx)
	field := t.Data[col.Offset : col.Offset+col.Len]
	if col.Type == ColumnTypeVarchar {
		invariant.Check(uint64(len(value)) <= col.VarcharMaxLen(), "varchar column %q: value length %d exceeds max %d", col.Name, len(value), col.VarcharMaxLen())
		binary.LittleEndian.PutUint32(field[:VarcharLen], uint32(len(value)))
		clear(field[VarcharLen:])
		copy(field[VarcharLen:], value)
		return
	}
	invariant.Check(uint64(len(value)) == col.Len, "column %q: value length %d does not match column length %d", col.Name, len(value), col.Len)
	copy(field, value)
}

// GetCol returns the raw field bytes for column idx. For varchar columns
// this is the full reserved span (length prefix + payload capacity); use
// GetVarchar for just the effective payload.
func (t *RAMTuple) GetCol(idx uint32) []byte {
	col := t.Schema.ColDesc(idx)
	return t.Data[col.Offset : col.Offset+col.Len]
}

// GetVarchar returns the effective payload of a varchar column idx, sliced
// according to its 4-byte length prefix.
func (t *RAMTuple) GetVarchar(idx uint32) []byte {
	col := t.Schema.ColDesc(idx)
	invariant.Check(col.Type == ColumnTypeVarchar, "column %q is not varchar", col.Name)
	field := t.Data[col.Offset : col.Offset+col.Len]
	n := binary.LittleEndian.Uint32(field[:VarcharLen])
	return field[VarcharLen : VarcharLen+n]
}

// SetInt32 stores v in column idx, which must be an Int column. Fixed-width
// integer columns are stored little-endian in the row buffer; order-
// preserving encoding only happens when a row is projected into an index
// tuple.
func (t *RAMTuple) SetInt32(idx uint32, v int32) {
	col := t.Schema.ColDesc(idx)
	invariant.Check(col.Type == ColumnTypeInt, "column %q is not int", col.Name)
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], uint32(v))
	t.SetCol(idx, buf[:])
}

// GetInt32 reads column idx, which must be an Int column.
func (t *RAMTuple) GetInt32(idx uint32) int32 {
	col := t.Schema.ColDesc(idx)
	invariant.Check(col.Type == ColumnTypeInt, "column %q is not int", col.Name)
	return int32(binary.LittleEndian.Uint32(t.GetCol(idx)))
}

// SetUint64 stores v in column idx, which must be an UnsignedLong column.
func (t *RAMTuple) SetUint64(idx uint32, v uint64) {
	col := t.Schema.ColDesc(idx)
	invariant.Check(col.Type == ColumnTypeUnsignedLong, "column %q is not unsigned_long", col.Name)
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], v)
	t.SetCol(idx, buf[:])
}

// GetUint64 reads column idx, which must be an UnsignedLong column.
func (t *RAMTuple) GetUint64(idx uint32) uint64 {
	col := t.Schema.ColDesc(idx)
	invariant.Check(col.Type == ColumnTypeUnsignedLong, "column %q is not unsigned_long", col.Name)
	return binary.LittleEndian.Uint64(t.GetCol(idx))
}

// SetVarchar stores payload in varchar column idx.
func (t *RAMTuple) SetVarchar(idx uint32, payload []byte) {
	t.SetCol(idx, payload)
}

// ColEqual reports whether column idx's full field bytes equal value
// byte-for-byte.
func (t *RAMTuple) ColEqual(idx uint32, value []byte) bool {
	return bytes.Equal(t.GetCol(idx), value)
}

// UpdateCol overwrites column idx in place with the same semantics as
// SetCol. It exists as a distinct name to mirror the original engine's
// update_col, which callers use post-insert to distinguish "set" (row
// construction) from "update" (row mutation) even though the underlying
// write is identical.
func (t *RAMTuple) UpdateCol(idx uint32, value []byte) {
	t.SetCol(idx, value)
}

// CopyRow bulk-copies src's data and null bitmap into t. Both tuples must
// share the same schema.
func (t *RAMTuple) CopyRow(src *RAMTuple) {
	invariant.Check(t.Schema == src.Schema, "CopyRow: schema mismatch")
	copy(t.Data, src.Data)
	copy(t.Null, src.Null)
}

// Clone returns a deep copy of t.
func (t *RAMTuple) Clone() *RAMTuple {
	out := NewRAMTuple(t.Schema)
	out.CopyRow(t)
	return out
}
