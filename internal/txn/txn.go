// Package txn models the transaction handle the storage core consumes.
// Begin/commit/abort mechanics (locking, durability of the commit record,
// two-phase commit) belong to an external transaction manager; this
// package only carries the identity and snapshot contract the core reads
// from a live transaction.
//
// Grounded on LeeNgari-RDBMS/internal/domain/transaction/transaction.go:
// the UUID identity alongside a numeric, monotonically increasing id
// (there WAL-facing TxID, here the CSN-facing TxID) is carried over
// directly; Status replaces the teacher's bool Active field with a small
// enum so a transaction's terminal state (committed vs aborted) survives
// past the point where "Active" would otherwise just become false either
// way.
package txn

import (
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/nvmdb/nvmdb/internal/engineerr"
)

// InvalidCSN marks a live insert whose commit sequence number has not
// yet been assigned, or an index entry with no delete marker.
const InvalidCSN uint64 = 0

var txIDCounter atomic.Uint64

// Status is a transaction's lifecycle state.
type Status int

const (
	StatusActive Status = iota
	StatusCommitted
	StatusAborted
	StatusFailedSQL
)

func (s Status) String() string {
	switch s {
	case StatusActive:
		return "active"
	case StatusCommitted:
		return "committed"
	case StatusAborted:
		return "aborted"
	case StatusFailedSQL:
		return "failed_sql"
	default:
		return "unknown"
	}
}

// LookupSnapshot is the MVCC visibility window a transaction's reads are
// evaluated against: a version is visible iff its creator CSN is <=
// Snapshot and either it has no deleter or the deleter's CSN is > Snapshot.
// MinCSN bounds how far back a scan needs to consider delete markers.
type LookupSnapshot struct {
	Snapshot uint64
	MinCSN   uint64
}

// Transaction is the handle the storage core reads identity and
// visibility information from.
type Transaction struct {
	ID     uuid.UUID
	TxID   uint64
	Status Status

	// CommitCSN is assigned by Commit and is the CSN every write this
	// transaction made becomes visible at.
	CommitCSN uint64

	// snapshot is fixed at Begin and does not advance as other
	// transactions commit; it is what LookupSnapshot reports until this
	// transaction itself commits.
	snapshot uint64
	minCSN   uint64
}

// Begin starts a new transaction with the given visibility snapshot.
func Begin(snapshot, minCSN uint64) *Transaction {
	return &Transaction{
		ID:       uuid.New(),
		TxID:     txIDCounter.Add(1),
		Status:   StatusActive,
		snapshot: snapshot,
		minCSN:   minCSN,
	}
}

// LookupSnapshot returns the visibility window this transaction's reads
// are evaluated against.
func (t *Transaction) LookupSnapshot() LookupSnapshot {
	if t.Status == StatusCommitted {
		return LookupSnapshot{Snapshot: t.CommitCSN, MinCSN: t.minCSN}
	}
	return LookupSnapshot{Snapshot: t.snapshot, MinCSN: t.minCSN}
}

// Commit assigns csn as this transaction's commit sequence number and
// marks it committed. Writes made under this transaction become visible
// to snapshots >= csn.
func (t *Transaction) Commit(csn uint64) error {
	if t.Status != StatusActive {
		return engineerr.Wrap(engineerr.ErrTransactionAborted, "transaction %s: commit called in status %s", t.ID, t.Status)
	}
	t.CommitCSN = csn
	t.Status = StatusCommitted
	return nil
}

// Abort marks the transaction aborted. Any writes it made must be rolled
// back by the undo facility described in the heap package's UndoWriter
// contract.
func (t *Transaction) Abort() error {
	if t.Status != StatusActive {
		return engineerr.Wrap(engineerr.ErrTransactionAborted, "transaction %s: abort called in status %s", t.ID, t.Status)
	}
	t.Status = StatusAborted
	return nil
}

// IsActive reports whether the transaction can still perform reads/writes.
func (t *Transaction) IsActive() bool {
	return t.Status == StatusActive
}
