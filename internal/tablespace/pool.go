// Package tablespace models the heap's persistent arena: a named,
// byte-addressable region carved into fixed-size extents, plus the
// per-table version-point directory used to find a row's version-chain
// head.
//
// Grounded on GaussDBKernel-nvmdb/dbcore/table_space/nvm_table_space.cpp
// (allocate_extent/version_point/create_table/search_table/drop_table),
// reimplemented as a Go memory-mapped file per pool directory so that the
// "persistent region" is a real mapped file rather than a plain process
// heap slice. golang.org/x/sys/unix supplies Mmap/Munmap/Msync; a pure
// in-memory backing (NewMemPool) is provided for tests that don't need a
// filesystem.
package tablespace

import (
	"math"
	"sync"

	"github.com/nvmdb/nvmdb/internal/engineerr"
)

// ExtentSize is the engine's single extent size class.
const ExtentSize = 2 << 20 // 2 MiB

// Addr is an opaque handle into the arena: an extent id plus a byte
// offset within it. It cannot be dereferenced without presenting a live
// *Pool to Bytes; this mirrors the non-owning, pool-lifetime-scoped
// pointers the row-id map and extent headers hold in the original design.
type Addr struct {
	ExtentID uint32
	Offset   uint32
}

// Nil is the zero-value-distinct "no address" sentinel; ExtentID 0 is a
// valid extent, so Nil uses the all-ones extent id instead.
var Nil = Addr{ExtentID: math.MaxUint32}

// IsNil reports whether a is the Nil sentinel.
func (a Addr) IsNil() bool {
	return a.ExtentID == Nil.ExtentID
}

// Bytes returns the byte slice a addresses within pool, from Offset to
// the end of the extent.
func (a Addr) Bytes(pool *Pool) []byte {
	return pool.extent(a.ExtentID)[a.Offset:]
}

// backing is the storage behind a Pool's extents: a real mmap'd file or a
// plain in-memory slice-of-slices.
type backing interface {
	allocate() (id uint32, data []byte, err error)
	extent(id uint32) []byte
	sync() error
	close() error
}

// Pool is a mounted arena: an extent allocator plus the table directory
// (OID -> TableSegment) carved out of it. Create/mount/unmount are
// idempotent; callers external to this package serialise lifecycle calls.
type Pool struct {
	mu     sync.Mutex
	back   backing
	tables map[uint32]*TableSegment
}

func newPool(b backing) *Pool {
	return &Pool{back: b, tables: make(map[uint32]*TableSegment)}
}

// NewMemPool returns a Pool backed by plain Go memory, for tests that do
// not need a real mapped file.
func NewMemPool() *Pool {
	return newPool(&memBacking{})
}

// AllocateExtent allocates a fresh extent and returns its head address
// (offset 0). requestedSize must not exceed ExtentSize: the engine uses a
// single size class, so any larger request is a caller bug.
func (p *Pool) AllocateExtent(requestedSize uint64) (Addr, error) {
	if requestedSize > ExtentSize {
		return Addr{}, engineerr.Wrap(engineerr.ErrInput, "requested extent size %d exceeds class size %d", requestedSize, uint64(ExtentSize))
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	id, _, err := p.back.allocate()
	if err != nil {
		return Addr{}, engineerr.Wrap(engineerr.ErrOutOfMemory, "allocate extent: %v", err)
	}
	return Addr{ExtentID: id, Offset: 0}, nil
}

func (p *Pool) extent(id uint32) []byte {
	return p.back.extent(id)
}

// Sync flushes all mapped extents to their backing store. It is a no-op
// for a pool built by NewMemPool.
func (p *Pool) Sync() error {
	return p.back.sync()
}

// Close unmaps and releases the pool's backing storage.
func (p *Pool) Close() error {
	return p.back.close()
}
