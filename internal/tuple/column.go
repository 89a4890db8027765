// Package tuple implements the typed row layout: column descriptors, the
// per-row null bitmap, typed column get/set, and projection of a row into
// an index-tuple ready for encoding by the codec package.
//
// Grounded on GaussDBKernel-nvmdb/include/nvm_tuple.h and nvm_table.h
// (column descriptor + row layout) and nvm_index_tuple.h (index tuple
// projection and encoding), adapted from C struct-of-offsets into Go
// value types with explicit byte-offset bookkeeping.
package tuple

import "github.com/nvmdb/nvmdb/internal/engineerr"

// ColumnType is the closed set of column types the engine understands.
type ColumnType uint8

const (
	ColumnTypeInvalid ColumnType = iota
	ColumnTypeChar
	ColumnTypeTiny
	ColumnTypeShort
	ColumnTypeInt
	ColumnTypeLong
	ColumnTypeUnsignedLong
	ColumnTypeFloat
	ColumnTypeDouble
	ColumnTypeDecimal
	ColumnTypeDate
	ColumnTypeTime
	ColumnTypeTimestamp
	ColumnTypeTimestampTZ
	ColumnTypeTimeTZ
	ColumnTypeInterval
	ColumnTypeTInterval
	ColumnTypeVarchar
	ColumnTypeBPChar
	ColumnTypeText
)

func (t ColumnType) String() string {
	switch t {
	case ColumnTypeChar:
		return "char"
	case ColumnTypeTiny:
		return "tiny"
	case ColumnTypeShort:
		return "short"
	case ColumnTypeInt:
		return "int"
	case ColumnTypeLong:
		return "long"
	case ColumnTypeUnsignedLong:
		return "unsigned_long"
	case ColumnTypeFloat:
		return "float"
	case ColumnTypeDouble:
		return "double"
	case ColumnTypeDecimal:
		return "decimal"
	case ColumnTypeDate:
		return "date"
	case ColumnTypeTime:
		return "time"
	case ColumnTypeTimestamp:
		return "timestamp"
	case ColumnTypeTimestampTZ:
		return "timestamp_tz"
	case ColumnTypeTimeTZ:
		return "time_tz"
	case ColumnTypeInterval:
		return "interval"
	case ColumnTypeTInterval:
		return "tinterval"
	case ColumnTypeVarchar:
		return "varchar"
	case ColumnTypeBPChar:
		return "bpchar"
	case ColumnTypeText:
		return "text"
	default:
		return "invalid"
	}
}

// FixedWidth returns the in-row byte width of fixed-size column types
// (excluding the 4-byte length prefix carried by varchar/text-like types).
// ok is false for variable-width types, where the caller must supply an
// explicit max length instead.
func (t ColumnType) FixedWidth() (width uint64, ok bool) {
	switch t {
	case ColumnTypeChar, ColumnTypeTiny:
		return 1, true
	case ColumnTypeShort:
		return 2, true
	case ColumnTypeInt, ColumnTypeFloat, ColumnTypeDate, ColumnTypeTimeTZ:
		return 4, true
	case ColumnTypeLong, ColumnTypeUnsignedLong, ColumnTypeDouble, ColumnTypeTime,
		ColumnTypeTimestamp, ColumnTypeTimestampTZ, ColumnTypeInterval, ColumnTypeTInterval:
		return 8, true
	default:
		return 0, false
	}
}

// IsIndexTypeSupported reports whether a column of this type may appear in
// an index descriptor. Per §4.6/§7, only int32, uint64 and varchar columns
// are indexable. Float/double are rejected outright (§9 Open Questions):
// the codec's float encoding is not strictly order-preserving for negative
// values, so this reimplementation forbids them rather than accepting them
// silently.
func IsIndexTypeSupported(t ColumnType) bool {
	switch t {
	case ColumnTypeInt, ColumnTypeUnsignedLong, ColumnTypeVarchar:
		return true
	default:
		return false
	}
}

// ColumnDesc describes one column of a row: its type, in-row byte length
// (including the 4-byte length prefix for varchar), byte offset, nullability,
// and name.
type ColumnDesc struct {
	Name    string
	Type    ColumnType
	Len     uint64 // in-row byte length, including varchar's 4-byte prefix
	Offset  uint64 // assigned by Schema construction
	NotNull bool
}

// VarcharLen is the conventional length prefix width for varchar columns.
const VarcharLen = 4

// NewVarcharColumn builds a ColumnDesc for a fixed-maximum-length varchar
// column: maxLen bytes of payload plus a 4-byte length prefix.
func NewVarcharColumn(name string, maxLen uint64, notNull bool) ColumnDesc {
	return ColumnDesc{Name: name, Type: ColumnTypeVarchar, Len: VarcharLen + maxLen, NotNull: notNull}
}

// NewFixedColumn builds a ColumnDesc for a fixed-width column type.
func NewFixedColumn(name string, t ColumnType, notNull bool) (ColumnDesc, error) {
	w, ok := t.FixedWidth()
	if !ok {
		return ColumnDesc{}, engineerr.Wrap(engineerr.ErrUnsupportedColumnType, "column %q: type %s has no fixed width", name, t)
	}
	return ColumnDesc{Name: name, Type: t, Len: w, NotNull: notNull}, nil
}

// VarcharMaxLen returns the maximum payload length of a varchar column.
func (c ColumnDesc) VarcharMaxLen() uint64 {
	return c.Len - VarcharLen
}
