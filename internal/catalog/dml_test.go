package catalog

import (
	"testing"

	"github.com/nvmdb/nvmdb/internal/heap"
	"github.com/nvmdb/nvmdb/internal/index"
	"github.com/nvmdb/nvmdb/internal/tablespace"
	"github.com/nvmdb/nvmdb/internal/tuple"
	"github.com/nvmdb/nvmdb/internal/txn"
)

func rowWithID(t *testing.T, schema *tuple.Schema, id int32) []byte {
	t.Helper()
	row := tuple.NewRAMTuple(schema)
	row.SetInt32(0, id)
	return row.Data
}

func TestInsertRowDrivesAttachedIndex(t *testing.T) {
	cat := New()
	pool := tablespace.NewMemPool()
	schema := newTestSchema(t)

	h, err := cat.CreateTable(1, "warehouse", schema, pool, nil)
	if err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	desc, err := tuple.NewIndexDesc(0, "by_id", schema, true, 0)
	if err != nil {
		t.Fatalf("NewIndexDesc: %v", err)
	}
	h.AttachIndex(&IndexHandle{Desc: desc, Idx: index.NewWithSeed(nil, 1)})

	tx := txn.Begin(0, 0)
	data := rowWithID(t, schema, 7)
	rowID, err := h.InsertRow(tx, data)
	if err != nil {
		t.Fatalf("InsertRow: %v", err)
	}

	it := tuple.NewDRAMIndexTuple(desc)
	row := tuple.RAMTuple{Schema: schema, Data: data}
	it.ExtractFromTuple(&row)
	key := it.Encode(nil, uint32(rowID))

	csn, found := h.Indexes()[0].Idx.Lookup(key)
	if !found {
		t.Fatalf("expected InsertRow to install a live entry in the attached index")
	}
	if csn != index.InvalidCSN {
		t.Fatalf("expected a live insert marker (InvalidCSN), got %d", csn)
	}
}

func TestInsertRowNonUniqueIndexKeepsDistinctEntriesPerRow(t *testing.T) {
	cat := New()
	pool := tablespace.NewMemPool()
	schema := newTestSchema(t)

	h, err := cat.CreateTable(1, "district", schema, pool, nil)
	if err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	// A non-unique index on the same single column: two rows with the
	// identical indexed value must not collide in the ordered structure.
	desc, err := tuple.NewIndexDesc(0, "by_id_nonunique", schema, false, 0)
	if err != nil {
		t.Fatalf("NewIndexDesc: %v", err)
	}
	h.AttachIndex(&IndexHandle{Desc: desc, Idx: index.NewWithSeed(nil, 1)})

	tx := txn.Begin(0, 0)
	data := rowWithID(t, schema, 9)

	rowID1, err := h.InsertRow(tx, data)
	if err != nil {
		t.Fatalf("InsertRow (1): %v", err)
	}
	rowID2, err := h.InsertRow(tx, data)
	if err != nil {
		t.Fatalf("InsertRow (2): %v", err)
	}
	if rowID1 == rowID2 {
		t.Fatalf("expected two inserts to receive distinct row-ids")
	}

	results := h.Indexes()[0].Idx.Scan(nil, nil, 0, false, nil)
	if len(results) != 2 {
		t.Fatalf("expected both rows to have distinct entries in the non-unique index, got %d", len(results))
	}
}

func TestDeleteRowInstallsTombstoneInAttachedIndex(t *testing.T) {
	cat := New()
	pool := tablespace.NewMemPool()
	schema := newTestSchema(t)

	h, err := cat.CreateTable(1, "stock", schema, pool, nil)
	if err != nil {
		t.Fatalf("CreateTable: %v", err)
	}
	desc, err := tuple.NewIndexDesc(0, "by_id", schema, true, 0)
	if err != nil {
		t.Fatalf("NewIndexDesc: %v", err)
	}
	h.AttachIndex(&IndexHandle{Desc: desc, Idx: index.NewWithSeed(nil, 1)})

	tx := txn.Begin(0, 0)
	data := rowWithID(t, schema, 3)
	rowID, err := h.InsertRow(tx, data)
	if err != nil {
		t.Fatalf("InsertRow: %v", err)
	}
	if err := tx.Commit(1); err != nil {
		t.Fatalf("Commit: %v", err)
	}

	deleteTx := txn.Begin(1, 0)
	const deleteCSN = 2
	if status, err := h.DeleteRow(deleteTx, rowID, deleteCSN); err != nil || status != heap.StatusSuccess {
		t.Fatalf("DeleteRow: status=%v err=%v", status, err)
	}

	it := tuple.NewDRAMIndexTuple(desc)
	row := tuple.RAMTuple{Schema: schema, Data: data}
	it.ExtractFromTuple(&row)
	key := it.Encode(nil, uint32(rowID))

	csn, found := h.Indexes()[0].Idx.Lookup(key)
	if !found {
		t.Fatalf("expected the tombstone to still be looked up by key")
	}
	if csn != deleteCSN {
		t.Fatalf("expected delete marker CSN %d, got %d", deleteCSN, csn)
	}
}
