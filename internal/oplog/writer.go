package oplog

import (
	"hash/crc32"
	"os"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
)

// Log is an append-only structural-operation log for one index. Every
// Insert is logged as a Begin record (key + proposed value) before the
// in-memory tree is touched, then a Commit record once the tree reflects
// the change.
type Log struct {
	mu            sync.Mutex
	file          *os.File
	indexName     string
	nextLSN       uint64
	currentOffset uint64
}

// Open creates or opens the oplog file at path for index indexName.
func Open(path, indexName string) (*Log, error) {
	existed := false
	if _, err := os.Stat(path); err == nil {
		existed = true
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0o644)
	if err != nil {
		return nil, errors.Wrapf(err, "open oplog %q", path)
	}

	l := &Log{file: f, indexName: indexName, nextLSN: 1}

	if existed {
		offset, err := f.Seek(0, os.SEEK_END)
		if err != nil {
			f.Close()
			return nil, errors.Wrapf(err, "seek oplog %q", path)
		}
		l.currentOffset = uint64(offset)
	} else if err := l.writeFileHeader(); err != nil {
		f.Close()
		return nil, err
	}

	return l, nil
}

func (l *Log) writeFileHeader() error {
	var h FileHeader
	h.Magic = Magic
	h.Version = FormatVersion
	copy(h.IndexName[:], l.indexName)
	h.InitialLSN = l.nextLSN
	h.CreatedAt = time.Now().Unix()

	buf := make([]byte, FileHeaderSize)
	copy(buf[0:8], h.Magic[:])
	ByteOrder.PutUint16(buf[8:10], h.Version)
	copy(buf[10:42], h.IndexName[:])
	ByteOrder.PutUint64(buf[42:50], h.InitialLSN)
	ByteOrder.PutUint64(buf[50:58], uint64(h.CreatedAt))

	n, err := l.file.WriteAt(buf, 0)
	if err != nil {
		return errors.Wrapf(err, "write oplog file header")
	}
	l.currentOffset = uint64(n)
	return nil
}

// WriteBegin logs the start of a structural change: the engine intends
// to install value at key but has not yet mutated the in-memory tree.
func (l *Log) WriteBegin(key []byte, value uint64) (uint64, error) {
	return l.writeRecord(RecordIndexBegin, encodeKeyValue(key, value))
}

// WriteCommit logs that the structural change from the matching Begin
// has been applied to the in-memory tree.
func (l *Log) WriteCommit(key []byte, value uint64) (uint64, error) {
	return l.writeRecord(RecordIndexCommit, encodeKeyValue(key, value))
}

// WriteCheckpoint logs a point beyond which no earlier record needs
// replaying; callers may truncate the log up to this LSN once durable.
func (l *Log) WriteCheckpoint() (uint64, error) {
	return l.writeRecord(RecordCheckpoint, nil)
}

func encodeKeyValue(key []byte, value uint64) []byte {
	buf := make([]byte, 4+len(key)+8)
	ByteOrder.PutUint32(buf[0:4], uint32(len(key)))
	copy(buf[4:4+len(key)], key)
	ByteOrder.PutUint64(buf[4+len(key):], value)
	return buf
}

func decodeKeyValue(payload []byte) ([]byte, uint64, error) {
	if len(payload) < 4 {
		return nil, 0, errors.New("oplog: payload too short for key length")
	}
	keyLen := int(ByteOrder.Uint32(payload[0:4]))
	if keyLen < 0 || 4+keyLen+8 > len(payload) {
		return nil, 0, errors.Newf("oplog: corrupt key-value payload (keyLen=%d, len=%d)", keyLen, len(payload))
	}
	key := append([]byte(nil), payload[4:4+keyLen]...)
	value := ByteOrder.Uint64(payload[4+keyLen : 4+keyLen+8])
	return key, value, nil
}

func (l *Log) writeRecord(t RecordType, payload []byte) (uint64, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(payload)+RecordHeaderSize > MaxRecordSize {
		return 0, errors.Newf("oplog: record too large (%d bytes)", len(payload))
	}

	lsn := l.nextLSN
	l.nextLSN++

	total := AlignTo8(RecordHeaderSize + len(payload))
	buf := make([]byte, total)
	buf[0] = byte(t)
	ByteOrder.PutUint32(buf[2:6], uint32(total))
	ByteOrder.PutUint64(buf[6:14], lsn)
	ByteOrder.PutUint32(buf[14:18], crc32.ChecksumIEEE(payload))
	ByteOrder.PutUint64(buf[18:26], l.currentOffset)
	copy(buf[RecordHeaderSize:], payload)

	n, err := l.file.WriteAt(buf, int64(l.currentOffset))
	if err != nil {
		return 0, errors.Wrapf(err, "write oplog record")
	}
	l.currentOffset += uint64(n)
	return lsn, nil
}

// Sync flushes the log to stable storage.
func (l *Log) Sync() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Sync()
}

// Close syncs and closes the underlying file.
func (l *Log) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if err := l.file.Sync(); err != nil {
		l.file.Close()
		return err
	}
	return l.file.Close()
}
