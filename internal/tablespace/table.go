package tablespace

import (
	"sync"

	"github.com/nvmdb/nvmdb/internal/engineerr"
)

// TableSegment is one table's slice of the arena: its identity plus the
// version-point directory mapping a row id to the address of its
// version-chain head.
type TableSegment struct {
	OID  uint32
	Name string

	mu            sync.RWMutex
	versionPoints map[uint64]Addr
}

// VersionPoint returns the version-chain head address for rowID, or
// (Nil, false) if the row has never been allocated in this segment.
func (t *TableSegment) VersionPoint(rowID uint64) (Addr, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	a, ok := t.versionPoints[rowID]
	if !ok {
		return Nil, false
	}
	return a, true
}

// SetVersionPoint records addr as rowID's version-chain head.
func (t *TableSegment) SetVersionPoint(rowID uint64, addr Addr) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.versionPoints[rowID] = addr
}

// ClearVersionPoint removes rowID's version-chain head, used when a row's
// last version is reclaimed.
func (t *TableSegment) ClearVersionPoint(rowID uint64) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.versionPoints, rowID)
}

// CreateTable registers a new table segment under oid, or returns the
// existing one if oid is already registered (create is idempotent).
func (p *Pool) CreateTable(oid uint32, name string) *TableSegment {
	p.mu.Lock()
	defer p.mu.Unlock()
	if ts, ok := p.tables[oid]; ok {
		return ts
	}
	ts := &TableSegment{OID: oid, Name: name, versionPoints: make(map[uint64]Addr)}
	p.tables[oid] = ts
	return ts
}

// SearchTable looks up the table segment registered under oid.
func (p *Pool) SearchTable(oid uint32) (*TableSegment, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ts, ok := p.tables[oid]
	return ts, ok
}

// DropTable unregisters the table segment under oid. Dropping an unknown
// oid is an error: callers are expected to have looked the table up
// first via the catalog.
func (p *Pool) DropTable(oid uint32) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, ok := p.tables[oid]; !ok {
		return engineerr.Wrap(engineerr.ErrTableNotFound, "table oid %d", oid)
	}
	delete(p.tables, oid)
	return nil
}
