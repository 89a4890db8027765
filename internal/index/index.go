// Package index implements the ordered structure backing C6: a
// mutex-guarded treap keyed by the raw encoded byte key, durable across
// crashes via a structural operation log.
//
// Grounded on GaussDBKernel-nvmdb/dbcore/index/pactree (operation set,
// crash-recovery contract, key-layout rationale) and on
// internal/oplog (adapted from LeeNgari-RDBMS/internal/wal) for the
// durability half. The underlying tree itself is a hand-rolled,
// dependency-free treap rather than a lock-free skip-list or B-tree: the
// teacher's own core data structures (WAL ring buffer, registry map) are
// all plain, dependency-free Go, and the index follows that convention.
package index

import (
	"math/rand"
	"sync"

	"github.com/nvmdb/nvmdb/internal/oplog"
	"github.com/nvmdb/nvmdb/internal/txn"
)

// InvalidCSN marks a live insert with no delete marker installed.
const InvalidCSN uint64 = 0

// Breakpoint, when non-nil, is invoked twice per Insert: with
// "begin-logged" after the Begin record is logged and before the
// in-memory tree is changed, and with "applied" after the tree is changed
// and before the Commit record is logged. Production code leaves it nil;
// recovery tests set it to simulate a crash at one of those phases and
// assert the documented recovery contract afterward.
var Breakpoint func(phase string)

// ThreadGroup is the retained API surface of the original design's
// epoch-based reclamation registration. The Go implementation is a
// no-op: the garbage collector reclaims retired nodes, so there is
// nothing for Unregister to free. Kept so callers written against the
// original contract (register once per worker, unregister on exit)
// still compile and behave correctly.
type ThreadGroup interface {
	RegisterThread(groupID int)
	UnregisterThread()
}

type nopThreadGroup struct{}

func (nopThreadGroup) RegisterThread(int) {}
func (nopThreadGroup) UnregisterThread()  {}

// KV is one (key, value) pair returned by Scan.
type KV struct {
	Key   []byte
	Value uint64
}

// Index is an ordered, durable key -> CSN map.
type Index struct {
	nopThreadGroup

	mu   sync.RWMutex
	root *node
	log  *oplog.Log

	rngMu sync.Mutex
	rng   *rand.Rand
}

// New builds an index whose structural operations are logged to log
// (nil disables logging, e.g. for tests that don't exercise recovery).
func New(log *oplog.Log) *Index {
	return NewWithSeed(log, 1)
}

// NewWithSeed is New with an explicit priority-RNG seed, for
// deterministic tests.
func NewWithSeed(log *oplog.Log, seed int64) *Index {
	return &Index{log: log, rng: rand.New(rand.NewSource(seed))}
}

func (idx *Index) nextPriority() uint32 {
	idx.rngMu.Lock()
	defer idx.rngMu.Unlock()
	return idx.rng.Uint32()
}

// Insert installs value at key. If key already exists, its value is
// overwritten (this is how delete-marker installation works: insert the
// same key again with a non-zero CSN) and Insert returns existed=true.
func (idx *Index) Insert(key []byte, value uint64) (existed bool, err error) {
	if idx.log != nil {
		if _, err := idx.log.WriteBegin(key, value); err != nil {
			return false, err
		}
	}
	if Breakpoint != nil {
		Breakpoint("begin-logged")
	}

	idx.mu.Lock()
	idx.root, existed = treapInsert(idx.root, append([]byte(nil), key...), value, idx.nextPriority())
	idx.mu.Unlock()

	if Breakpoint != nil {
		Breakpoint("applied")
	}

	if idx.log != nil {
		if _, err := idx.log.WriteCommit(key, value); err != nil {
			return existed, err
		}
	}
	return existed, nil
}

// Lookup returns the value stored at key.
func (idx *Index) Lookup(key []byte) (uint64, bool) {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return treapLookup(idx.root, key)
}

// Scan collects up to max pairs (0 = unbounded) whose keys lie in
// [start, end] (either bound nil meaning unconstrained), in ascending
// order unless reverse is true. visible filters each raw value (e.g.
// the heap/MVCC layer supplies a snapshot-aware tombstone filter); a
// nil visible accepts every entry.
func (idx *Index) Scan(start, end []byte, max int, reverse bool, visible func(value uint64) bool) []KV {
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	var out []KV
	visit := func(key []byte, value uint64) bool {
		if visible == nil || visible(value) {
			k := append([]byte(nil), key...)
			out = append(out, KV{Key: k, Value: value})
			if max > 0 && len(out) >= max {
				return false
			}
		}
		return true
	}

	if reverse {
		treapRangeReverse(idx.root, start, end, visit)
	} else {
		treapRange(idx.root, start, end, visit)
	}
	return out
}

// Recover replays the structural operation log at path, applying every
// committed (key, value) pair to the tree. It is meant to be called once
// at startup before any Insert.
func (idx *Index) Recover(path string) error {
	return oplog.Replay(path, func(key []byte, value uint64) {
		idx.mu.Lock()
		idx.root, _ = treapInsert(idx.root, append([]byte(nil), key...), value, idx.nextPriority())
		idx.mu.Unlock()
	})
}

// VisibleToSnapshot builds a Scan visibility predicate implementing the
// MVCC tombstone filter: an entry is yielded iff its value is
// InvalidCSN (a live insert marker) or its value CSN lies outside the
// snapshot's visible delete horizon, i.e. the deleting CSN is strictly
// greater than the snapshot.
func VisibleToSnapshot(snapshot txn.LookupSnapshot) func(value uint64) bool {
	return func(value uint64) bool {
		if value == InvalidCSN {
			return true
		}
		return value > snapshot.Snapshot
	}
}
