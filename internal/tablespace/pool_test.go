package tablespace

import "testing"

func TestAllocateExtentDistinctAddresses(t *testing.T) {
	p := NewMemPool()
	a, err := p.AllocateExtent(1024)
	if err != nil {
		t.Fatalf("AllocateExtent: %v", err)
	}
	b, err := p.AllocateExtent(1024)
	if err != nil {
		t.Fatalf("AllocateExtent: %v", err)
	}
	if a.ExtentID == b.ExtentID {
		t.Fatalf("expected distinct extent ids, got %d twice", a.ExtentID)
	}
}

func TestAllocateExtentRejectsOversizeRequest(t *testing.T) {
	p := NewMemPool()
	if _, err := p.AllocateExtent(ExtentSize + 1); err == nil {
		t.Fatalf("expected error allocating extent larger than size class")
	}
}

func TestAddrBytesWritesThroughPool(t *testing.T) {
	p := NewMemPool()
	a, err := p.AllocateExtent(64)
	if err != nil {
		t.Fatalf("AllocateExtent: %v", err)
	}
	buf := a.Bytes(p)
	buf[0] = 0xAB
	buf2 := a.Bytes(p)
	if buf2[0] != 0xAB {
		t.Fatalf("expected write through extent to be visible via a second Bytes() call")
	}
}

func TestNilAddr(t *testing.T) {
	if !Nil.IsNil() {
		t.Fatalf("expected Nil.IsNil() true")
	}
	a := Addr{ExtentID: 0}
	if a.IsNil() {
		t.Fatalf("expected extent id 0 to not be Nil")
	}
}

func TestCreateSearchDropTable(t *testing.T) {
	p := NewMemPool()
	ts := p.CreateTable(7, "warehouse")
	if ts.OID != 7 || ts.Name != "warehouse" {
		t.Fatalf("unexpected table segment: %+v", ts)
	}

	again := p.CreateTable(7, "warehouse")
	if again != ts {
		t.Fatalf("expected CreateTable to be idempotent and return the same segment")
	}

	got, ok := p.SearchTable(7)
	if !ok || got != ts {
		t.Fatalf("SearchTable: expected to find segment for oid 7")
	}

	if err := p.DropTable(7); err != nil {
		t.Fatalf("DropTable: %v", err)
	}
	if _, ok := p.SearchTable(7); ok {
		t.Fatalf("expected table to be gone after DropTable")
	}
	if err := p.DropTable(7); err == nil {
		t.Fatalf("expected error dropping an already-dropped table")
	}
}

func TestVersionPoint(t *testing.T) {
	p := NewMemPool()
	ts := p.CreateTable(1, "t")

	if _, ok := ts.VersionPoint(42); ok {
		t.Fatalf("expected no version point for unallocated row")
	}

	addr, _ := p.AllocateExtent(8)
	ts.SetVersionPoint(42, addr)
	got, ok := ts.VersionPoint(42)
	if !ok || got != addr {
		t.Fatalf("VersionPoint: want %+v, got %+v (ok=%v)", addr, got, ok)
	}

	ts.ClearVersionPoint(42)
	if _, ok := ts.VersionPoint(42); ok {
		t.Fatalf("expected version point cleared")
	}
}
