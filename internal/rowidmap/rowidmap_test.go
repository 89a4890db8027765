package rowidmap

import (
	"sync"
	"testing"

	"github.com/nvmdb/nvmdb/internal/tablespace"
)

type cacheRow struct {
	value int
}

func newTestMap(t *testing.T) (*Map[cacheRow], *tablespace.Pool) {
	t.Helper()
	pool := tablespace.NewMemPool()
	ts := pool.CreateTable(1, "test")
	return New[cacheRow](ts), pool
}

func TestGetEntryReadMissingRowFails(t *testing.T) {
	m, _ := newTestMap(t)
	if _, err := m.GetEntry(42, true); err == nil {
		t.Fatalf("expected error reading a row with no version point")
	}
}

func TestGetEntryWriteMaterialisesEntry(t *testing.T) {
	m, pool := newTestMap(t)
	addr, _ := pool.AllocateExtent(8)

	e, err := m.GetEntry(42, false)
	if err != nil {
		t.Fatalf("GetEntry: %v", err)
	}
	if !e.Valid() {
		t.Fatalf("expected entry materialised with whatever version-point existed (none), still valid")
	}
	e.SetAddr(addr)
	if e.Addr() != addr {
		t.Fatalf("Addr: want %+v, got %+v", addr, e.Addr())
	}
}

func TestGetEntryIsStableAcrossRepeatedCalls(t *testing.T) {
	m, _ := newTestMap(t)
	e1, err := m.GetEntry(7, false)
	if err != nil {
		t.Fatalf("GetEntry: %v", err)
	}
	e1.SetCache(&cacheRow{value: 99})

	e2, err := m.GetEntry(7, false)
	if err != nil {
		t.Fatalf("GetEntry: %v", err)
	}
	if e2.Cache().value != 99 {
		t.Fatalf("expected repeated GetEntry for same row id to return the same entry")
	}
}

func TestGetEntryMaterialisesFromVersionPoint(t *testing.T) {
	m, pool := newTestMap(t)
	ts, _ := pool.SearchTable(1)
	addr, _ := pool.AllocateExtent(8)
	ts.SetVersionPoint(5, addr)

	e, err := m.GetEntry(5, true)
	if err != nil {
		t.Fatalf("GetEntry: %v", err)
	}
	if !e.Valid() {
		t.Fatalf("expected entry to be valid once a version point exists")
	}
	if e.Addr() != addr {
		t.Fatalf("Addr: want %+v, got %+v", addr, e.Addr())
	}
}

func TestRowIDMapGrowsAcrossManySegments(t *testing.T) {
	m, _ := newTestMap(t)
	const n = SegLen*3 + 17
	for i := uint64(0); i < n; i++ {
		e, err := m.GetEntry(i, false)
		if err != nil {
			t.Fatalf("GetEntry(%d): %v", i, err)
		}
		e.SetCache(&cacheRow{value: int(i)})
	}
	for i := uint64(0); i < n; i++ {
		e, err := m.GetEntry(i, false)
		if err != nil {
			t.Fatalf("GetEntry(%d): %v", i, err)
		}
		if e.Cache().value != int(i) {
			t.Fatalf("row %d: want cache value %d, got %d", i, i, e.Cache().value)
		}
	}
}

func TestRowIDMapConcurrentGrowth(t *testing.T) {
	m, _ := newTestMap(t)
	const n = SegLen * 4
	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for i := uint64(worker); i < n; i += 8 {
				e, err := m.GetEntry(i, false)
				if err != nil {
					t.Errorf("GetEntry(%d): %v", i, err)
					return
				}
				e.SetCache(&cacheRow{value: int(i)})
			}
		}(w)
	}
	wg.Wait()

	for i := uint64(0); i < n; i++ {
		e, err := m.GetEntry(i, false)
		if err != nil {
			t.Fatalf("GetEntry(%d): %v", i, err)
		}
		if e.Cache() == nil || e.Cache().value != int(i) {
			t.Fatalf("row %d: cache not set correctly after concurrent growth", i)
		}
	}
}
