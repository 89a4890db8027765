package tuple

import "testing"

func TestNewSchemaAssignsOffsets(t *testing.T) {
	id, _ := NewFixedColumn("id", ColumnTypeInt, true)
	bal, _ := NewFixedColumn("balance", ColumnTypeUnsignedLong, true)
	name := NewVarcharColumn("name", 16, false)

	s, err := NewSchema([]ColumnDesc{id, bal, name})
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	if s.Columns[0].Offset != 0 {
		t.Fatalf("id offset: want 0, got %d", s.Columns[0].Offset)
	}
	if s.Columns[1].Offset != 4 {
		t.Fatalf("balance offset: want 4, got %d", s.Columns[1].Offset)
	}
	if s.Columns[2].Offset != 12 {
		t.Fatalf("name offset: want 12, got %d", s.Columns[2].Offset)
	}
	wantLen := uint64(4 + 8 + (VarcharLen + 16))
	if s.RowLen != wantLen {
		t.Fatalf("row len: want %d, got %d", wantLen, s.RowLen)
	}
	if s.NullBitmapLen() != 1 {
		t.Fatalf("null bitmap len: want 1, got %d", s.NullBitmapLen())
	}
}

func TestNewSchemaRejectsOversizedRow(t *testing.T) {
	big := NewVarcharColumn("blob", MaxTupleLen, false)
	if _, err := NewSchema([]ColumnDesc{big, big}); err == nil {
		t.Fatalf("expected error for oversized row")
	}
}

func TestColIDByName(t *testing.T) {
	id, _ := NewFixedColumn("id", ColumnTypeInt, true)
	s, err := NewSchema([]ColumnDesc{id})
	if err != nil {
		t.Fatalf("NewSchema: %v", err)
	}
	if got := s.ColIDByName("id"); got != 0 {
		t.Fatalf("ColIDByName(id): want 0, got %d", got)
	}
	if got := s.ColIDByName("missing"); got != InvalidColID {
		t.Fatalf("ColIDByName(missing): want InvalidColID, got %d", got)
	}
}

func TestNewFixedColumnRejectsVariableType(t *testing.T) {
	if _, err := NewFixedColumn("x", ColumnTypeVarchar, false); err == nil {
		t.Fatalf("expected error building fixed column from varchar type")
	}
}
