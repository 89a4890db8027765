// Package rowidmap implements the segmented row-id directory: a
// two-level structure mapping a row id to its persistent version-chain
// address and an optional DRAM cache slot, with a lock-free growth
// protocol for readers racing a top-level directory resize.
//
// Grounded on GaussDBKernel-nvmdb/dbcore/heap/nvm_rowid_map.cpp. The
// extend_version double-read and the set-flag/publish/reset-flag growth
// sequence are carried over unchanged; release/acquire fences become
// paired atomic.Bool/atomic.Uint64 Store/Load per the Go memory model,
// since Go has no standalone fence intrinsic.
package rowidmap

import (
	"sync"
	"sync/atomic"

	"github.com/nvmdb/nvmdb/internal/engineerr"
	"github.com/nvmdb/nvmdb/internal/tablespace"
)

// SegLen is the number of entries per segment.
const SegLen = 1024

// Entry is one row-id's materialised slot: a validity flag, the
// persistent address of its version-chain head, and an optional DRAM
// cache pointer of caller-chosen type T. The latch (mu) is held only for
// the brief materialisation critical section in GetEntry; once valid is
// true it never transitions back.
type Entry[T any] struct {
	mu    sync.Mutex
	valid atomic.Bool
	addr  atomic.Uint64 // packed tablespace.Addr
	cache atomic.Pointer[T]
}

// Valid reports whether the entry has been materialised.
func (e *Entry[T]) Valid() bool {
	return e.valid.Load()
}

// Addr returns the entry's persistent version-chain head address. Only
// meaningful once Valid() is true.
func (e *Entry[T]) Addr() tablespace.Addr {
	return unpackAddr(e.addr.Load())
}

// SetAddr overwrites the entry's persistent address, e.g. after
// inserting a new version.
func (e *Entry[T]) SetAddr(a tablespace.Addr) {
	e.addr.Store(packAddr(a))
}

// Cache returns the entry's DRAM cache pointer, or nil if unset.
func (e *Entry[T]) Cache() *T {
	return e.cache.Load()
}

// SetCache installs v as the entry's DRAM cache pointer.
func (e *Entry[T]) SetCache(v *T) {
	e.cache.Store(v)
}

// Segment is a fixed-size block of row-id-map entries. Once allocated, a
// segment's address never changes; only the top-level directory that
// points to segments is ever replaced.
type Segment[T any] struct {
	Entries [SegLen]Entry[T]
}

// Map is the row-id directory for one table: a growable array of segment
// pointers over a table's persistent version-point directory.
type Map[T any] struct {
	table *tablespace.TableSegment

	growMu        sync.Mutex
	top           atomic.Pointer[[]*Segment[T]]
	extendVersion atomic.Uint64
}

// New builds an empty row-id map backed by table's version-point
// directory.
func New[T any](table *tablespace.TableSegment) *Map[T] {
	m := &Map[T]{table: table}
	empty := make([]*Segment[T], 0)
	m.top.Store(&empty)
	return m
}

func packAddr(a tablespace.Addr) uint64 {
	return uint64(a.ExtentID)<<32 | uint64(a.Offset)
}

func unpackAddr(v uint64) tablespace.Addr {
	return tablespace.Addr{ExtentID: uint32(v >> 32), Offset: uint32(v)}
}

// GetSegment returns the segment for segID, growing the top-level
// directory and allocating the segment if necessary. It implements the
// reader protocol from the original design: double-read extend_version
// around the top-array load so a grower's in-flight resize is detected
// and retried rather than observed half-published.
func (m *Map[T]) GetSegment(segID uint64) *Segment[T] {
	for {
		v1 := m.extendVersion.Load()
		top := *m.top.Load()
		var seg *Segment[T]
		if segID < uint64(len(top)) {
			seg = top[segID]
		}
		v2 := m.extendVersion.Load()
		if seg != nil && v1 == v2 {
			return seg
		}
		m.extend(segID)
	}
}

// extend grows the top-level directory to cover segID, allocating the
// segment if needed. It follows the set-flag / publish / reset-flag
// sequence: extend_version is incremented before the new array is
// published and again after, so a reader whose double-read straddles the
// publish always sees mismatched versions and retries.
func (m *Map[T]) extend(segID uint64) {
	m.growMu.Lock()
	defer m.growMu.Unlock()

	top := *m.top.Load()
	if segID < uint64(len(top)) && top[segID] != nil {
		return // another goroutine already grew and filled this segment
	}

	newCap := uint64(len(top))
	if newCap == 0 {
		newCap = 1
	}
	for segID >= newCap {
		newCap *= 2
	}

	newTop := make([]*Segment[T], newCap)
	copy(newTop, top)
	if newTop[segID] == nil {
		newTop[segID] = &Segment[T]{}
	}

	m.extendVersion.Add(1) // set-flag phase
	m.top.Store(&newTop)   // publish
	m.extendVersion.Add(1) // reset-flag phase
}

// GetEntry locates rowID's entry, materialising it from the table's
// persistent version-point directory if it is not yet valid. If isRead
// is true and the row has no recorded version point, GetEntry returns
// engineerr.ErrNotFound rather than materialising an entry for a row
// that was never written.
func (m *Map[T]) GetEntry(rowID uint64, isRead bool) (*Entry[T], error) {
	segID := rowID / SegLen
	idx := rowID % SegLen
	seg := m.GetSegment(segID)
	entry := &seg.Entries[idx]

	if entry.Valid() {
		return entry, nil
	}

	addr, ok := m.table.VersionPoint(rowID)
	if !ok && isRead {
		return nil, engineerr.Wrap(engineerr.ErrNotFound, "row %d has no version point", rowID)
	}

	entry.mu.Lock()
	if !entry.valid.Load() {
		entry.addr.Store(packAddr(addr)) // release: ordered before the Store below
		entry.valid.Store(true)
	}
	entry.mu.Unlock()

	return entry, nil
}
