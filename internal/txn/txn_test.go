package txn

import "testing"

func TestBeginAssignsDistinctIdentity(t *testing.T) {
	a := Begin(5, 0)
	b := Begin(5, 0)
	if a.ID == b.ID {
		t.Fatalf("expected distinct UUIDs")
	}
	if a.TxID == b.TxID {
		t.Fatalf("expected distinct TxIDs")
	}
	if a.Status != StatusActive {
		t.Fatalf("expected new transaction to be active")
	}
}

func TestLookupSnapshotBeforeCommit(t *testing.T) {
	txn := Begin(10, 3)
	s := txn.LookupSnapshot()
	if s.Snapshot != 10 || s.MinCSN != 3 {
		t.Fatalf("unexpected snapshot: %+v", s)
	}
}

func TestCommitAdvancesSnapshot(t *testing.T) {
	txn := Begin(10, 3)
	if err := txn.Commit(42); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if txn.Status != StatusCommitted {
		t.Fatalf("expected committed status")
	}
	s := txn.LookupSnapshot()
	if s.Snapshot != 42 {
		t.Fatalf("expected post-commit snapshot to be the commit CSN, got %d", s.Snapshot)
	}
}

func TestCommitTwiceFails(t *testing.T) {
	txn := Begin(10, 3)
	if err := txn.Commit(42); err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if err := txn.Commit(43); err == nil {
		t.Fatalf("expected error committing an already-committed transaction")
	}
}

func TestAbortMarksInactive(t *testing.T) {
	txn := Begin(10, 3)
	if err := txn.Abort(); err != nil {
		t.Fatalf("Abort: %v", err)
	}
	if txn.IsActive() {
		t.Fatalf("expected aborted transaction to not be active")
	}
	if err := txn.Abort(); err == nil {
		t.Fatalf("expected error double-aborting")
	}
}
