// Package oplog is the ordered index's structural-operation log: a
// durable record of every Insert before it is applied to the in-memory
// tree, so that a crash mid-mutation can be rolled forward or back to a
// defined state on restart.
//
// Grounded on LeeNgari-RDBMS/internal/wal: the binary framing (magic
// file header, 32-byte record headers, CRC32 payload checksums,
// monotonic LSN, records padded to 8-byte alignment) is carried over unchanged in shape;
// the record set is narrowed to what the index needs (Begin/Commit of a
// single key-value structural change, plus Checkpoint) instead of the
// teacher's full DML/transaction record set.
package oplog

import "encoding/binary"

// ByteOrder is the byte order used for all multi-byte oplog fields.
var ByteOrder = binary.LittleEndian

// RecordAlignment is the byte alignment every record is padded to.
const RecordAlignment = 8

// MaxRecordSize bounds a single record's total length, guarding recovery
// against a corrupted Length field driving an oversized allocation.
const MaxRecordSize = 1 << 20 // 1 MiB

// MinRecordSize is the smallest possible record: header with no payload.
const MinRecordSize = RecordHeaderSize

// Magic identifies a valid oplog file.
var Magic = [8]byte{'N', 'V', 'M', 'D', 'B', 'O', 'P', 'L'}

// FormatVersion is the current oplog binary format version.
const FormatVersion uint16 = 1

// FileHeader is written once at the start of every oplog file.
type FileHeader struct {
	Magic      [8]byte
	Version    uint16
	IndexName  [32]byte
	InitialLSN uint64
	CreatedAt  int64
	_          [6]byte // padding to FileHeaderSize
}

// FileHeaderSize is the fixed on-disk size of FileHeader.
const FileHeaderSize = 64

// RecordType distinguishes the phases of a logged structural operation.
type RecordType uint8

const (
	RecordIndexBegin RecordType = iota + 1
	RecordIndexCommit
	RecordCheckpoint
)

func (rt RecordType) String() string {
	switch rt {
	case RecordIndexBegin:
		return "IndexBegin"
	case RecordIndexCommit:
		return "IndexCommit"
	case RecordCheckpoint:
		return "Checkpoint"
	default:
		return "Unknown"
	}
}

// RecordHeader is the common 32-byte header prefixing every record.
//
// Binary layout (little-endian):
//
//	Type(1) Pad(1) Length(4) LSN(8) CRC32(4) FileOffset(8) Pad(6)
type RecordHeader struct {
	Type       RecordType
	_          uint8
	Length     uint32 // total record length, header + payload + padding
	LSN        uint64
	CRC32      uint32 // checksum of the payload only
	FileOffset uint64 // byte offset of this record's header in the file
	_          [6]byte
}

// RecordHeaderSize is the fixed on-disk size of RecordHeader.
const RecordHeaderSize = 32

// AlignTo8 rounds size up to the next 8-byte boundary.
func AlignTo8(size int) int {
	return (size + 7) &^ 7
}
