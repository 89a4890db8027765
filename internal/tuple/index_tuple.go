package tuple

import (
	"encoding/binary"

	"github.com/nvmdb/nvmdb/internal/codec"
	"github.com/nvmdb/nvmdb/internal/engineerr"
	"github.com/nvmdb/nvmdb/internal/invariant"
)

// IndexColumnDesc identifies one column of an index key: which column of
// the base table it projects, and whether it participates in ordering
// ascending or descending. Descending columns are not supported by the
// current encoder (see §9); the field is carried for forward compatibility
// with a future bit-flip encoding step.
type IndexColumnDesc struct {
	ColID uint32
	Desc  bool
}

// IndexDesc describes an ordered index: the table schema it projects from,
// the ordered list of key columns, and whether duplicate keys are allowed.
type IndexDesc struct {
	IndexID uint32 // 4-byte prefix isolating this index's keys in the shared ordered structure
	Name    string
	Table   *Schema
	Columns []IndexColumnDesc
	Unique  bool
}

// KeyMax is the maximum encoded length of an index key, prefix and suffix
// included (§6 Configuration keys: index key length limit, default 256 bytes).
const KeyMax = 256

// keyOverhead is the fixed framing cost every encoded key pays: a 4-byte
// index-id prefix plus a 1-byte row-id tag and 4-byte row-id suffix.
const keyOverhead = 4 + 1 + 4

// KeyDataLength bounds the sum of a composite index key's encoded column
// lengths (tag bytes included), after reserving keyOverhead for the framing.
const KeyDataLength = KeyMax - keyOverhead

// NewIndexDesc validates that every referenced column exists in table, is of
// a supported index type, is not nullable, and that the resulting composite
// key cannot exceed KeyDataLength. indexID is the 4-byte prefix that
// disambiguates this index's keys from every other index sharing the same
// ordered structure.
func NewIndexDesc(indexID uint32, name string, table *Schema, unique bool, colIDs ...uint32) (*IndexDesc, error) {
	cols := make([]IndexColumnDesc, len(colIDs))
	var keyLen uint64
	for i, id := range colIDs {
		invariant.Check(int(id) < len(table.Columns), "index %q: column id %d out of range", name, id)
		cd := table.ColDesc(id)
		if !IsIndexTypeSupported(cd.Type) {
			return nil, indexTypeErr(name, cd)
		}
		if !cd.NotNull {
			return nil, engineerr.Wrap(engineerr.ErrIndexColumnNullable, "index %q: column %q is nullable", name, cd.Name)
		}
		cols[i] = IndexColumnDesc{ColID: id}
		keyLen += encodedColMaxLen(cd)
	}
	if keyLen > KeyDataLength {
		return nil, engineerr.Wrap(engineerr.ErrKeySizeExceeded, "index %q: encoded key length %d exceeds max %d", name, keyLen, KeyDataLength)
	}
	return &IndexDesc{IndexID: indexID, Name: name, Table: table, Columns: cols, Unique: unique}, nil
}

func indexTypeErr(indexName string, cd *ColumnDesc) error {
	return engineerr.Wrap(engineerr.ErrIndexTypeNotSupported, "index %q: column %q has unindexable type %s", indexName, cd.Name, cd.Type)
}

// encodedColMaxLen returns the worst-case encoded length of column cd,
// including its one-byte type tag, when projected into an index key.
func encodedColMaxLen(cd *ColumnDesc) uint64 {
	switch cd.Type {
	case ColumnTypeInt:
		return 1 + 4
	case ColumnTypeUnsignedLong:
		return 1 + 8
	case ColumnTypeVarchar:
		return 1 + cd.VarcharMaxLen() + 1 // tag + payload + NUL terminator
	default:
		invariant.Check(false, "index column %q: type %s not encodable", cd.Name, cd.Type)
		return 0
	}
}

// DRAMIndexTuple is a projected, encodable view of one row's index key
// columns, held as a small slice of raw column values rather than encoded
// bytes, so that callers can inspect or overwrite individual fields before
// a final Encode.
type DRAMIndexTuple struct {
	Desc   *IndexDesc
	Values [][]byte // one entry per Desc.Columns, raw (unencoded) column bytes
}

// NewDRAMIndexTuple allocates an index tuple for desc with empty values.
func NewDRAMIndexTuple(desc *IndexDesc) *DRAMIndexTuple {
	return &DRAMIndexTuple{Desc: desc, Values: make([][]byte, len(desc.Columns))}
}

// ExtractFromTuple projects row's key columns (per Desc) into t's Values,
// copying each field so the index tuple remains valid after row mutates.
func (t *DRAMIndexTuple) ExtractFromTuple(row *RAMTuple) {
	for i, ic := range t.Desc.Columns {
		cd := t.Desc.Table.ColDesc(ic.ColID)
		var raw []byte
		if cd.Type == ColumnTypeVarchar {
			raw = row.GetVarchar(ic.ColID)
		} else {
			raw = row.GetCol(ic.ColID)
		}
		buf := make([]byte, len(raw))
		copy(buf, raw)
		t.Values[i] = buf
	}
}

// SetCol overwrites key column i with a raw fixed-width value.
func (t *DRAMIndexTuple) SetCol(i int, value []byte) {
	buf := make([]byte, len(value))
	copy(buf, value)
	t.Values[i] = buf
}

// SetVarchar overwrites key column i with a varchar payload (unterminated).
func (t *DRAMIndexTuple) SetVarchar(i int, payload []byte) {
	t.SetCol(i, payload)
}

// FillColWith overwrites every byte of key column i's stored value with b,
// without changing its length. Used by range-scan bound construction to
// build an all-0x00 lower bound or all-0xFF upper bound probe for a
// partially specified composite key.
func (t *DRAMIndexTuple) FillColWith(i int, b byte) {
	for j := range t.Values[i] {
		t.Values[i][j] = b
	}
}

// GetCol returns the raw (unencoded) bytes of key column i.
func (t *DRAMIndexTuple) GetCol(i int) []byte {
	return t.Values[i]
}

// Encode returns the full ordered-index key for row-id rowID: a 4-byte
// big-endian index-id prefix, the tagged order-preserving encoding of every
// key column in column order, and a row-id tag plus 4-byte big-endian row-id
// suffix. The suffix is what lets a non-unique secondary index hold several
// rows under otherwise-identical composite keys without one overwriting
// another, and lets a range scan bound a composite prefix by fixing the
// suffix to 0 or 0xFFFFFFFF.
func (t *DRAMIndexTuple) Encode(buf []byte, rowID uint32) []byte {
	buf = codec.EncodeUint32(buf, t.Desc.IndexID)
	for i, ic := range t.Desc.Columns {
		cd := t.Desc.Table.ColDesc(ic.ColID)
		switch cd.Type {
		case ColumnTypeInt:
			buf = append(buf, byte(codec.TagInt32))
			buf = codec.EncodeInt32(buf, int32(binary.LittleEndian.Uint32(t.Values[i])))
		case ColumnTypeUnsignedLong:
			buf = append(buf, byte(codec.TagUint64))
			buf = codec.EncodeUint64(buf, binary.LittleEndian.Uint64(t.Values[i]))
		case ColumnTypeVarchar:
			buf = append(buf, byte(codec.TagVarchar))
			buf = codec.EncodeVarchar(buf, t.Values[i])
		default:
			invariant.Check(false, "index column %q: type %s not encodable", cd.Name, cd.Type)
		}
	}
	buf = append(buf, byte(codec.TagRowID))
	buf = codec.EncodeUint32(buf, rowID)
	return buf
}

// Copy returns a deep copy of t.
func (t *DRAMIndexTuple) Copy() *DRAMIndexTuple {
	out := &DRAMIndexTuple{Desc: t.Desc, Values: make([][]byte, len(t.Values))}
	for i, v := range t.Values {
		buf := make([]byte, len(v))
		copy(buf, v)
		out.Values[i] = buf
	}
	return out
}
