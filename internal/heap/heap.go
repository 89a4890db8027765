package heap

import (
	"sync/atomic"

	"github.com/cockroachdb/errors"

	"github.com/nvmdb/nvmdb/internal/engineerr"
	"github.com/nvmdb/nvmdb/internal/rowidmap"
	"github.com/nvmdb/nvmdb/internal/tablespace"
	"github.com/nvmdb/nvmdb/internal/txn"
)

// RowID identifies a row within one table's heap.
type RowID = uint64

// TableID identifies a table for the undo collaborator's bookkeeping.
type TableID = uint32

// Status is the outcome of a heap operation.
type Status int

const (
	StatusSuccess Status = iota
	StatusNotFound
	StatusConflict
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "HAM_SUCCESS"
	case StatusNotFound:
		return "HAM_NOT_FOUND"
	case StatusConflict:
		return "HAM_CONFLICT"
	default:
		return "HAM_UNKNOWN"
	}
}

// VersionRecord is one version in a row's version chain. Visibility is
// evaluated lazily against CreatorTxn/DeleterTxn's live status rather
// than a CSN snapshotted at write time, since a version's creator may
// still be active (or may yet abort) when later readers consult it.
type VersionRecord struct {
	CreatorTxn *txn.Transaction
	DeleterTxn *txn.Transaction // nil until the row is tombstoned
	Data       []byte
	Prev       *VersionRecord
}

// Heap is one table's row store: a row-id map whose DRAM cache slot holds
// the head of each row's version chain.
type Heap struct {
	tableID TableID
	table   *tablespace.TableSegment
	pool    *tablespace.Pool
	rows    *rowidmap.Map[VersionRecord]
	nextID  atomic.Uint64
	undo    UndoWriter
}

// New builds a heap over table, backed by pool for persistent allocation
// and undo for version-write durability. A nil undo defaults to
// NopUndoWriter.
func New(tableID TableID, pool *tablespace.Pool, table *tablespace.TableSegment, undo UndoWriter) *Heap {
	if undo == nil {
		undo = NopUndoWriter{}
	}
	return &Heap{
		tableID: tableID,
		table:   table,
		pool:    pool,
		rows:    rowidmap.New[VersionRecord](table),
		undo:    undo,
	}
}

// Insert allocates a fresh row-id, writes the row version through undo,
// and materialises the row-id-map entry. Row-id 0 is reserved as a
// sentinel, so the first row-id issued by a fresh heap is 1.
func (h *Heap) Insert(tx *txn.Transaction, data []byte) (RowID, error) {
	rowID := h.nextID.Add(1)

	if err := h.undo.AppendVersion(tx, h.tableID, rowID, nil, data); err != nil {
		return 0, err
	}

	entry, err := h.rows.GetEntry(rowID, false)
	if err != nil {
		return 0, err
	}

	buf := append([]byte(nil), data...)
	entry.SetCache(&VersionRecord{CreatorTxn: tx, Data: buf})

	if addr, aerr := h.pool.AllocateExtent(uint64(len(buf))); aerr == nil {
		copy(addr.Bytes(h.pool), buf)
		entry.SetAddr(addr)
		h.table.SetVersionPoint(rowID, addr)
	}

	return rowID, nil
}

// Read walks the version chain for row_id, returning the version visible
// at tx's snapshot.
func (h *Heap) Read(tx *txn.Transaction, rowID RowID) ([]byte, Status, error) {
	entry, err := h.rows.GetEntry(rowID, true)
	if err != nil {
		if errIsNotFound(err) {
			return nil, StatusNotFound, nil
		}
		return nil, StatusNotFound, err
	}

	rec := entry.Cache()
	for rec != nil {
		if Visible(rec, tx) {
			return rec.Data, StatusSuccess, nil
		}
		rec = rec.Prev
	}
	return nil, StatusNotFound, nil
}

// Update creates a new version on top of row_id's chain, linking the
// prior head as Prev and registering undo. Returns HAM_CONFLICT if the
// current head was written by a different transaction that is still
// active, or tombstoned by a different transaction.
func (h *Heap) Update(tx *txn.Transaction, rowID RowID, data []byte) (Status, error) {
	entry, err := h.rows.GetEntry(rowID, true)
	if err != nil {
		if errIsNotFound(err) {
			return StatusNotFound, nil
		}
		return StatusNotFound, err
	}

	head := entry.Cache()
	if head == nil {
		return StatusNotFound, nil
	}
	if head.DeleterTxn != nil && head.DeleterTxn != tx && conflictingDeleter(head.DeleterTxn, tx) {
		return StatusConflict, nil
	}
	if conflicts(head, tx) {
		return StatusConflict, nil
	}

	if err := h.undo.AppendVersion(tx, h.tableID, rowID, head.Data, data); err != nil {
		return StatusNotFound, err
	}

	buf := append([]byte(nil), data...)
	entry.SetCache(&VersionRecord{CreatorTxn: tx, Data: buf, Prev: head})
	return StatusSuccess, nil
}

// Delete tombstones the latest version of row_id at tx's eventual commit.
func (h *Heap) Delete(tx *txn.Transaction, rowID RowID) (Status, error) {
	entry, err := h.rows.GetEntry(rowID, true)
	if err != nil {
		if errIsNotFound(err) {
			return StatusNotFound, nil
		}
		return StatusNotFound, err
	}

	head := entry.Cache()
	if head == nil {
		return StatusNotFound, nil
	}
	if head.DeleterTxn != nil && head.DeleterTxn != tx {
		if conflictingDeleter(head.DeleterTxn, tx) {
			return StatusConflict, nil
		}
	}
	if conflicts(head, tx) {
		return StatusConflict, nil
	}

	if err := h.undo.AppendVersion(tx, h.tableID, rowID, head.Data, nil); err != nil {
		return StatusNotFound, err
	}
	head.DeleterTxn = tx
	return StatusSuccess, nil
}

// UpperRowID returns the inclusive upper bound row-id for sequential scans:
// the highest row-id issued so far, or 0 if the heap has never had a row
// inserted (row-ids are issued densely starting at 1).
func (h *Heap) UpperRowID() RowID {
	return h.nextID.Load()
}

// Visible implements the MVCC visibility rule: a version is visible to tx
// iff its creator committed at or before tx's snapshot (or tx is itself
// the creator) and either it has no deleter, or the deleter's commit is
// strictly after tx's snapshot (and tx is not itself the deleter).
func Visible(rec *VersionRecord, tx *txn.Transaction) bool {
	if rec.CreatorTxn != tx {
		if rec.CreatorTxn.Status != txn.StatusCommitted {
			return false
		}
		if rec.CreatorTxn.CommitCSN > tx.LookupSnapshot().Snapshot {
			return false
		}
	}
	if rec.DeleterTxn != nil {
		if rec.DeleterTxn == tx {
			return false
		}
		if rec.DeleterTxn.Status == txn.StatusCommitted && rec.DeleterTxn.CommitCSN <= tx.LookupSnapshot().Snapshot {
			return false
		}
	}
	return true
}

// conflicts reports whether tx may write on top of head: it may not if
// head was created by a different transaction that is still active
// (a concurrent uncommitted write).
func conflicts(head *VersionRecord, tx *txn.Transaction) bool {
	if head.CreatorTxn == tx {
		return false
	}
	return head.CreatorTxn.Status == txn.StatusActive
}

func conflictingDeleter(deleter *txn.Transaction, tx *txn.Transaction) bool {
	return deleter.Status == txn.StatusActive || deleter.Status == txn.StatusCommitted
}

func errIsNotFound(err error) bool {
	return errors.Is(err, engineerr.ErrNotFound)
}
