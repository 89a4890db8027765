// Package codec implements order-preserving byte encodings for index keys.
//
// Every encoder here produces a byte sequence whose unsigned lexicographic
// order matches the natural order of the decoded value, so that a composite
// index key built by concatenating encoded columns can be compared with a
// plain bytes.Compare and still sort the way the underlying tuples do.
//
// Grounded on GaussDBKernel-nvmdb/dbcore/codec/nvm_codec.cpp: the sign-flip
// trick for signed integers, the NUL-terminated varchar encoding, and the
// float caveat are all carried over unchanged in semantics.
package codec

import "encoding/binary"

// Tag is the one-byte type tag prefixing every encoded column in a key.
type Tag byte

const (
	TagRowID   Tag = 1
	TagInt32   Tag = 2
	TagUint32  Tag = 3
	TagInt64   Tag = 4
	TagUint64  Tag = 5
	TagFloat   Tag = 6
	TagVarchar Tag = 7
	TagInvalid Tag = 255
)

const (
	int32Sign = uint32(0x8000_0000)
	int64Sign = uint64(0x8000_0000_0000_0000)
)

// EncodeUint32 appends the 4 big-endian bytes of u to dst and returns the result.
func EncodeUint32(dst []byte, u uint32) []byte {
	var buf [4]byte
	binary.BigEndian.PutUint32(buf[:], u)
	return append(dst, buf[:]...)
}

// DecodeUint32 decodes the first 4 bytes of buf as a big-endian uint32.
func DecodeUint32(buf []byte) uint32 {
	return binary.BigEndian.Uint32(buf[:4])
}

// EncodeInt32ToUint32 flips the sign bit so that signed order becomes unsigned order.
func EncodeInt32ToUint32(i int32) uint32 {
	return uint32(i) ^ int32Sign
}

// DecodeUint32ToInt32 is the inverse of EncodeInt32ToUint32.
func DecodeUint32ToInt32(u uint32) int32 {
	return int32(u ^ int32Sign)
}

// EncodeInt32 appends the order-preserving encoding of i to dst.
func EncodeInt32(dst []byte, i int32) []byte {
	return EncodeUint32(dst, EncodeInt32ToUint32(i))
}

// DecodeInt32 decodes the first 4 bytes of buf as produced by EncodeInt32.
func DecodeInt32(buf []byte) int32 {
	return DecodeUint32ToInt32(DecodeUint32(buf))
}

// EncodeUint64 appends the 8 big-endian bytes of u to dst and returns the result.
func EncodeUint64(dst []byte, u uint64) []byte {
	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], u)
	return append(dst, buf[:]...)
}

// DecodeUint64 decodes the first 8 bytes of buf as a big-endian uint64.
func DecodeUint64(buf []byte) uint64 {
	return binary.BigEndian.Uint64(buf[:8])
}

// EncodeInt64ToUint64 flips the sign bit so that signed order becomes unsigned order.
func EncodeInt64ToUint64(i int64) uint64 {
	return uint64(i) ^ int64Sign
}

// DecodeUint64ToInt64 is the inverse of EncodeInt64ToUint64.
func DecodeUint64ToInt64(u uint64) int64 {
	return int64(u ^ int64Sign)
}

// EncodeInt64 appends the order-preserving encoding of i to dst.
func EncodeInt64(dst []byte, i int64) []byte {
	return EncodeUint64(dst, EncodeInt64ToUint64(i))
}

// DecodeInt64 decodes the first 8 bytes of buf as produced by EncodeInt64.
func DecodeInt64(buf []byte) int64 {
	return DecodeUint64ToInt64(DecodeUint64(buf))
}

// EncodeVarchar appends payload followed by a single NUL terminator byte.
// The terminator guarantees that any proper prefix of a longer string sorts
// before the longer string: "ab\x00" < "abc\x00" bytewise.
func EncodeVarchar(dst []byte, payload []byte) []byte {
	dst = append(dst, payload...)
	return append(dst, 0)
}

// DecodeVarchar copies the payload preceding the NUL terminator in src into
// dst, which must have length at least maxlen. Unlike the original
// DecodeVarchar (see §9 Design Notes — the source routine aliased buf as
// both source and destination for strcpy_s), src and dst are always
// distinct buffers here: decode always copies out of the key buffer into a
// caller-supplied destination.
func DecodeVarchar(dst []byte, src []byte, maxlen int) []byte {
	n := 0
	for n < len(src) && src[n] != 0 {
		n++
	}
	if n > maxlen {
		n = maxlen
	}
	copy(dst[:n], src[:n])
	return dst[:n]
}

// EncodeFloatBits appends the IEEE-754 bit pattern of the float through the
// unsigned integer path. This is not strictly order-preserving for negative
// floats; float/double columns are rejected at index-descriptor build time
// (see tuple.IsIndexTypeSupported) rather than silently accepted, closing
// the gap flagged in §9 Open Questions. Exact-equality probes remain sound
// since equal floats still encode to equal bytes.
func EncodeFloatBits(dst []byte, bits uint64) []byte {
	return EncodeUint64(dst, bits)
}
