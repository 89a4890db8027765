//go:build unix

package tablespace

import (
	"os"
	"sync"

	"go.uber.org/multierr"
	"golang.org/x/sys/unix"
)

// mmapBacking allocates extents as regions of a single growable file,
// memory-mapped MAP_SHARED so writes are visible to any other process
// that maps the same pool file and are durable once Msync'd.
type mmapBacking struct {
	mu      sync.Mutex
	file    *os.File
	extents [][]byte
}

// openMmapBacking opens (creating if absent) the pool file at path.
func openMmapBacking(path string) (*mmapBacking, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, err
	}
	return &mmapBacking{file: f}, nil
}

func (b *mmapBacking) allocate() (uint32, []byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := uint32(len(b.extents))
	offset := int64(id) * ExtentSize
	if err := b.file.Truncate(offset + ExtentSize); err != nil {
		return 0, nil, err
	}
	data, err := unix.Mmap(int(b.file.Fd()), offset, ExtentSize, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		return 0, nil, err
	}
	b.extents = append(b.extents, data)
	return id, data, nil
}

func (b *mmapBacking) extent(id uint32) []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.extents[id]
}

func (b *mmapBacking) sync() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	var errs error
	for _, e := range b.extents {
		if err := unix.Msync(e, unix.MS_SYNC); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

func (b *mmapBacking) close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	var errs error
	for _, e := range b.extents {
		if err := unix.Munmap(e); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	b.extents = nil
	if err := b.file.Close(); err != nil {
		errs = multierr.Append(errs, err)
	}
	return errs
}

// OpenFilePool mounts a persistent pool backed by a memory-mapped file
// under dir. The directory must already exist.
func OpenFilePool(dir string) (*Pool, error) {
	back, err := openMmapBacking(dir + "/nvmdb.pool")
	if err != nil {
		return nil, err
	}
	return newPool(back), nil
}
