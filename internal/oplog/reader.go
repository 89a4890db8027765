package oplog

import (
	"hash/crc32"
	"io"
	"os"

	"github.com/cockroachdb/errors"
)

// Record is one decoded oplog entry.
type Record struct {
	Header RecordHeader
	Key    []byte
	Value  uint64
}

// ReadAll reads every well-formed record from the oplog file at path, in
// LSN order. A truncated or corrupt trailing record (the signature of a
// crash mid-write) is treated as the torn tail of an in-flight write and
// silently dropped rather than surfaced as an error, matching the
// documented recovery contract that a crash never surfaces a read error
// for otherwise-committed state.
func ReadAll(path string) ([]Record, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errors.Wrapf(err, "open oplog %q", path)
	}
	defer f.Close()

	header := make([]byte, FileHeaderSize)
	if _, err := io.ReadFull(f, header); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, nil // empty or header-only file
		}
		return nil, errors.Wrapf(err, "read oplog file header")
	}
	if !magicMatches(header[0:8]) {
		return nil, errors.Newf("oplog %q: bad magic", path)
	}

	var records []Record
	offset := int64(FileHeaderSize)
	for {
		hdrBuf := make([]byte, RecordHeaderSize)
		n, err := f.ReadAt(hdrBuf, offset)
		if n < RecordHeaderSize {
			break // torn/short header: stop, discard tail
		}
		if err != nil && err != io.EOF {
			return nil, errors.Wrapf(err, "read oplog record header at %d", offset)
		}

		length := int(ByteOrder.Uint32(hdrBuf[2:6]))
		if length < RecordHeaderSize || length > MaxRecordSize {
			break // corrupt length: stop, discard tail
		}

		rh := RecordHeader{
			Type:       RecordType(hdrBuf[0]),
			Length:     uint32(length),
			LSN:        ByteOrder.Uint64(hdrBuf[6:14]),
			CRC32:      ByteOrder.Uint32(hdrBuf[14:18]),
			FileOffset: ByteOrder.Uint64(hdrBuf[18:26]),
		}

		payload := make([]byte, length-RecordHeaderSize)
		if len(payload) > 0 {
			pn, perr := f.ReadAt(payload, offset+RecordHeaderSize)
			if pn < len(payload) {
				break // torn payload: stop, discard tail
			}
			if perr != nil && perr != io.EOF {
				return nil, errors.Wrapf(perr, "read oplog record payload at %d", offset)
			}
		}
		trimmed := trimPayload(rh.Type, payload)
		if crc32.ChecksumIEEE(trimmed) != rh.CRC32 {
			break // checksum mismatch: torn or corrupt tail, stop here
		}

		rec := Record{Header: rh}
		if rh.Type == RecordIndexBegin || rh.Type == RecordIndexCommit {
			key, value, derr := decodeKeyValue(trimmed)
			if derr != nil {
				break
			}
			rec.Key, rec.Value = key, value
		}
		records = append(records, rec)

		offset += int64(length)
	}

	return records, nil
}

// trimPayload returns the logical payload length for a record's type:
// Begin/Commit payloads are exactly 4+len(key)+8 bytes with no trailing
// alignment padding counted in the checksum, matching how writeRecord
// computed the checksum over the raw, unpadded payload it was given.
func trimPayload(t RecordType, payload []byte) []byte {
	if t != RecordIndexBegin && t != RecordIndexCommit {
		return payload[:0]
	}
	if len(payload) < 4 {
		return payload
	}
	keyLen := int(ByteOrder.Uint32(payload[0:4]))
	want := 4 + keyLen + 8
	if keyLen < 0 || want > len(payload) {
		return payload
	}
	return payload[:want]
}

func magicMatches(b []byte) bool {
	for i, m := range Magic {
		if b[i] != m {
			return false
		}
	}
	return true
}
