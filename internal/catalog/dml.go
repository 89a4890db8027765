package catalog

import (
	"github.com/nvmdb/nvmdb/internal/heap"
	"github.com/nvmdb/nvmdb/internal/index"
	"github.com/nvmdb/nvmdb/internal/tuple"
	"github.com/nvmdb/nvmdb/internal/txn"
)

// InsertRow inserts data into the table's heap and drives every attached
// index once: projecting the new row into the index's key columns (C2),
// encoding a composite key (C1), and installing a live entry (C6) keyed by
// the heap row-id Insert just assigned. A failure partway through leaves
// the heap row in place with only a prefix of its indexes populated; the
// caller is expected to abort tx, which the MVCC visibility rule in
// heap.Visible already hides from every other reader.
func (h *TableHandle) InsertRow(tx *txn.Transaction, data []byte) (heap.RowID, error) {
	rowID, err := h.Heap.Insert(tx, data)
	if err != nil {
		return 0, err
	}
	if err := h.driveIndexes(data, rowID, index.InvalidCSN); err != nil {
		return rowID, err
	}
	return rowID, nil
}

// DeleteRow tombstones row rowID in the table's heap and installs a delete
// marker at deleteCSN in every attached index's entry for it. The marker
// is keyed by the row's pre-delete data, read before Heap.Delete, so the
// tombstone lands on the exact composite key InsertRow used to place the
// live entry.
func (h *TableHandle) DeleteRow(tx *txn.Transaction, rowID heap.RowID, deleteCSN uint64) (heap.Status, error) {
	data, status, err := h.Heap.Read(tx, rowID)
	if err != nil || status != heap.StatusSuccess {
		return status, err
	}
	if status, err = h.Heap.Delete(tx, rowID); err != nil || status != heap.StatusSuccess {
		return status, err
	}
	if err := h.driveIndexes(data, rowID, deleteCSN); err != nil {
		return status, err
	}
	return status, nil
}

// driveIndexes projects data (a row matching h.Schema's layout) into every
// attached index's key columns and installs (key, csn) into each one.
func (h *TableHandle) driveIndexes(data []byte, rowID heap.RowID, csn uint64) error {
	row := &tuple.RAMTuple{Schema: h.Schema, Data: data}
	for _, ih := range h.Indexes() {
		it := tuple.NewDRAMIndexTuple(ih.Desc)
		it.ExtractFromTuple(row)
		key := it.Encode(nil, uint32(rowID))
		if _, err := ih.Idx.Insert(key, csn); err != nil {
			return err
		}
	}
	return nil
}
