package tuple

import (
	"bytes"
	"testing"

	"github.com/cockroachdb/errors"

	"github.com/nvmdb/nvmdb/internal/codec"
	"github.com/nvmdb/nvmdb/internal/engineerr"
)

// indexableSchema mirrors testSchema but declares every column NOT NULL,
// since an indexed column may never be nullable.
func indexableSchema(t *testing.T) *Schema {
	t.Helper()
	id, _ := NewFixedColumn("id", ColumnTypeInt, true)
	bal, _ := NewFixedColumn("balance", ColumnTypeUnsignedLong, true)
	name := NewVarcharColumn("name", 16, true)
	s, err := NewSchema([]ColumnDesc{id, bal, name})
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	return s
}

func TestDRAMIndexTupleExtractAndEncode(t *testing.T) {
	s := indexableSchema(t)
	desc, err := NewIndexDesc(7, "by_id", s, true, 0)
	if err != nil {
		t.Fatalf("NewIndexDesc: %v", err)
	}

	row := NewRAMTuple(s)
	row.SetInt32(0, -4)

	it := NewDRAMIndexTuple(desc)
	it.ExtractFromTuple(row)

	key := it.Encode(nil, 1)
	if len(key) == 0 {
		t.Fatalf("expected non-empty encoded key")
	}

	row2 := NewRAMTuple(s)
	row2.SetInt32(0, 4)
	it2 := NewDRAMIndexTuple(desc)
	it2.ExtractFromTuple(row2)
	key2 := it2.Encode(nil, 2)

	if bytes.Compare(key, key2) >= 0 {
		t.Fatalf("expected encode(-4) < encode(4) through index tuple projection")
	}
}

func TestDRAMIndexTupleEncodeLayout(t *testing.T) {
	s := indexableSchema(t)
	desc, err := NewIndexDesc(7, "by_id", s, true, 0)
	if err != nil {
		t.Fatalf("NewIndexDesc: %v", err)
	}

	row := NewRAMTuple(s)
	row.SetInt32(0, -4)
	it := NewDRAMIndexTuple(desc)
	it.ExtractFromTuple(row)

	key := it.Encode(nil, 42)

	// [index-id: 4BE][tag + encoded int32: 1+4][tag=ROWID: 1][row-id: 4BE]
	if len(key) != 4+1+4+1+4 {
		t.Fatalf("unexpected key length: got %d", len(key))
	}
	if got := codec.DecodeUint32(key[:4]); got != 7 {
		t.Fatalf("expected index-id prefix 7, got %d", got)
	}
	if key[4] != byte(codec.TagInt32) {
		t.Fatalf("expected int32 tag at offset 4, got %d", key[4])
	}
	tagOff := 4 + 1 + 4
	if key[tagOff] != byte(codec.TagRowID) {
		t.Fatalf("expected row-id tag at offset %d, got %d", tagOff, key[tagOff])
	}
	if got := codec.DecodeUint32(key[tagOff+1:]); got != 42 {
		t.Fatalf("expected row-id suffix 42, got %d", got)
	}
}

func TestDRAMIndexTupleEncodeRowIDDisambiguatesDuplicateKeys(t *testing.T) {
	s := indexableSchema(t)
	desc, err := NewIndexDesc(3, "by_balance", s, false, 1)
	if err != nil {
		t.Fatalf("NewIndexDesc: %v", err)
	}

	row := NewRAMTuple(s)
	row.SetUint64(1, 100)

	it1 := NewDRAMIndexTuple(desc)
	it1.ExtractFromTuple(row)
	key1 := it1.Encode(nil, 1)

	it2 := NewDRAMIndexTuple(desc)
	it2.ExtractFromTuple(row)
	key2 := it2.Encode(nil, 2)

	if bytes.Equal(key1, key2) {
		t.Fatalf("expected two rows sharing the same indexed column to encode distinct keys")
	}
	if !bytes.Equal(key1[:len(key1)-4], key2[:len(key2)-4]) {
		t.Fatalf("expected identical composite-column prefix before the row-id suffix")
	}
	if bytes.Compare(key1, key2) >= 0 {
		t.Fatalf("expected row-id 1's key to sort before row-id 2's key")
	}
}

func TestDRAMIndexTupleVarcharColumn(t *testing.T) {
	s := indexableSchema(t)
	desc, err := NewIndexDesc(9, "by_name", s, false, 2)
	if err != nil {
		t.Fatalf("NewIndexDesc: %v", err)
	}

	mkKey := func(name string, rowID uint32) []byte {
		row := NewRAMTuple(s)
		row.SetVarchar(2, []byte(name))
		it := NewDRAMIndexTuple(desc)
		it.ExtractFromTuple(row)
		return it.Encode(nil, rowID)
	}

	jones := mkKey("JONES", 1)
	smith := mkKey("SMITH", 2)
	if bytes.Compare(jones, smith) >= 0 {
		t.Fatalf("expected encode(JONES) < encode(SMITH)")
	}
}

func TestNewIndexDescRejectsUnindexableType(t *testing.T) {
	f, _ := NewFixedColumn("score", ColumnTypeFloat, true)
	s, err := NewSchema([]ColumnDesc{f})
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	if _, err := NewIndexDesc(0, "by_score", s, false, 0); err == nil {
		t.Fatalf("expected error indexing a float column")
	}
}

func TestNewIndexDescRejectsNullableColumn(t *testing.T) {
	s := testSchema(t) // column 2 ("name") is nullable
	_, err := NewIndexDesc(0, "by_name", s, false, 2)
	if err == nil {
		t.Fatalf("expected error indexing a nullable column")
	}
	if !errors.Is(err, engineerr.ErrIndexColumnNullable) {
		t.Fatalf("expected ErrIndexColumnNullable, got %v", err)
	}
}

func TestNewIndexDescRejectsOversizedKey(t *testing.T) {
	big, _ := NewFixedColumn("id", ColumnTypeInt, true)
	hugeName := NewVarcharColumn("huge_name", KeyMax, true) // far larger than KeyDataLength allows
	s, err := NewSchema([]ColumnDesc{big, hugeName})
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	_, err = NewIndexDesc(0, "by_huge_name", s, false, 1)
	if err == nil {
		t.Fatalf("expected error for an oversized composite key")
	}
	if !errors.Is(err, engineerr.ErrKeySizeExceeded) {
		t.Fatalf("expected ErrKeySizeExceeded, got %v", err)
	}
}

func TestDRAMIndexTupleCopyIsIndependent(t *testing.T) {
	s := indexableSchema(t)
	desc, err := NewIndexDesc(7, "by_id", s, true, 0)
	if err != nil {
		t.Fatalf("NewIndexDesc: %v", err)
	}
	row := NewRAMTuple(s)
	row.SetInt32(0, 5)
	it := NewDRAMIndexTuple(desc)
	it.ExtractFromTuple(row)

	cp := it.Copy()
	cp.FillColWith(0, 0xFF)
	if bytes.Equal(it.GetCol(0), cp.GetCol(0)) {
		t.Fatalf("expected copy mutation to not affect original")
	}
}
