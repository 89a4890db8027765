// Package heap implements row read/insert/update/delete under MVCC. It
// produces row-ids via the row-id map and interfaces with an external
// undo/redo collaborator through the UndoWriter contract below; the
// collaborator's own implementation (durability, replay ordering) is out
// of scope — the core only needs to call it.
//
// Grounded on GaussDBKernel-nvmdb/dbcore/heap/nvm_heap.cpp for the
// operation set and MVCC visibility rule, and on how
// LeeNgari-RDBMS/internal/storage/manager/registry.go injects wal.WAL
// into Registry behind a narrow interface — UndoWriter plays the same
// "pluggable collaborator" role here.
package heap

import (
	"context"
	"sync"

	"github.com/nvmdb/nvmdb/internal/txn"
)

// UndoWriter is the contract the heap uses to durably record a version
// change before mutating in-memory state, and to replay those records on
// restart. The heap ships two implementations: NopUndoWriter (default,
// used when no undo/redo collaborator is wired) and DebugUndoWriter
// (records calls in memory for test assertions).
type UndoWriter interface {
	AppendVersion(tx *txn.Transaction, tableID TableID, rowID RowID, before, after []byte) error
	Replay(ctx context.Context) error
}

// NopUndoWriter discards every call. It is the heap's default collaborator.
type NopUndoWriter struct{}

func (NopUndoWriter) AppendVersion(*txn.Transaction, TableID, RowID, []byte, []byte) error {
	return nil
}

func (NopUndoWriter) Replay(context.Context) error { return nil }

// UndoCall records one AppendVersion invocation for DebugUndoWriter.
type UndoCall struct {
	TxID    uint64
	TableID TableID
	RowID   RowID
	Before  []byte
	After   []byte
}

// DebugUndoWriter records every AppendVersion call in memory, for
// assertions in heap tests that want to verify the undo contract is
// honoured without standing up a real undo/redo log.
type DebugUndoWriter struct {
	mu    sync.Mutex
	Calls []UndoCall
}

func (d *DebugUndoWriter) AppendVersion(tx *txn.Transaction, tableID TableID, rowID RowID, before, after []byte) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.Calls = append(d.Calls, UndoCall{TxID: tx.TxID, TableID: tableID, RowID: rowID, Before: before, After: after})
	return nil
}

func (d *DebugUndoWriter) Replay(context.Context) error { return nil }

// Len returns the number of recorded calls.
func (d *DebugUndoWriter) Len() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.Calls)
}
