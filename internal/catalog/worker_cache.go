package catalog

import (
	"sync"

	"github.com/nvmdb/nvmdb/internal/engineerr"
)

// WorkerCache is a per-worker mirror of the process registry. A worker
// (a connection goroutine, a benchmark driver thread) registers once via
// Catalog.RegisterWorker, does repeated table lookups through the
// returned WorkerCache instead of the process Catalog directly, and
// unregisters on exit via UnregisterWorker. Each table the worker has
// looked up holds one extra ref on top of the process registry's own ref;
// that ref is released either individually (Drop) or all at once
// (UnregisterWorker).
type WorkerCache struct {
	mu      sync.Mutex
	cat     *Catalog
	entries map[uint32]*TableHandle
}

// RegisterWorker builds a new per-worker cache mirroring this catalog.
func (c *Catalog) RegisterWorker() *WorkerCache {
	return &WorkerCache{cat: c, entries: make(map[uint32]*TableHandle)}
}

// Get returns the table handle for oid, populating the worker's local
// cache (and taking a ref) on first access.
func (w *WorkerCache) Get(oid uint32) (*TableHandle, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if h, ok := w.entries[oid]; ok {
		return h, nil
	}
	h, ok := w.cat.LookupTable(oid)
	if !ok {
		return nil, engineerr.Wrap(engineerr.ErrTableNotFound, "table oid %d", oid)
	}
	h.Retain()
	w.entries[oid] = h
	return h, nil
}

// Drop evicts oid from the worker's local cache, releasing its ref. It
// is a no-op if the worker never looked the table up.
func (w *WorkerCache) Drop(oid uint32) {
	w.mu.Lock()
	defer w.mu.Unlock()
	h, ok := w.entries[oid]
	if !ok {
		return
	}
	delete(w.entries, oid)
	h.Release()
}

// UnregisterWorker releases every ref the worker's cache is holding. It
// must be called exactly once, when the worker exits.
func (w *WorkerCache) UnregisterWorker() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for oid, h := range w.entries {
		delete(w.entries, oid)
		h.Release()
	}
}
