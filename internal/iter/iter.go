// Package iter implements the batched scan iterators over an ordered
// index (C6) and the strided sequential iterator over a heap, used when
// no index satisfies a predicate.
//
// Grounded on GaussDBKernel-nvmdb/dbcore/index/nvm_index_iterator.cpp:
// the fetch-in-batches-of-DEFAULT_BATCH protocol and the
// successor-by-byte-increment-with-carry range continuation are carried
// over unchanged.
package iter

import (
	"github.com/nvmdb/nvmdb/internal/index"
	"github.com/nvmdb/nvmdb/internal/txn"
)

// DefaultBatch is the number of pairs fetched per underlying Scan call
// by an unbounded iterator.
const DefaultBatch = 6

// Index is an ordered range scan over an index.Index, fetched in
// batches. A bounded scan (maxRange > 0) fetches once; an unbounded scan
// re-issues Scan starting from Successor(lastKey) each time the current
// batch is exhausted, until a batch returns fewer than the requested
// count or the key space is exhausted.
type Index struct {
	src      *index.Index
	start    []byte
	end      []byte
	snapshot txn.LookupSnapshot
	maxRange int
	reverse  bool

	batch   []index.KV
	pos     int
	remaining int // -1 means unbounded
	exhausted bool
}

// NewIndexIterator constructs an iterator over [start, end] (either bound
// nil for unconstrained) as visible at snapshot. maxRange == 0 means
// unbounded, fetching DefaultBatch pairs at a time.
func NewIndexIterator(src *index.Index, start, end []byte, snapshot txn.LookupSnapshot, maxRange int, reverse bool) *Index {
	it := &Index{
		src:      src,
		start:    start,
		end:      end,
		snapshot: snapshot,
		maxRange: maxRange,
		reverse:  reverse,
	}
	if maxRange > 0 {
		it.remaining = maxRange
	} else {
		it.remaining = -1
	}
	it.fetch()
	return it
}

func (it *Index) fetch() {
	if it.exhausted {
		it.batch = nil
		it.pos = 0
		return
	}

	want := DefaultBatch
	if it.maxRange > 0 {
		want = it.remaining
	}
	if want == 0 {
		it.exhausted = true
		it.batch = nil
		it.pos = 0
		return
	}

	batch := it.src.Scan(it.start, it.end, want, it.reverse, index.VisibleToSnapshot(it.snapshot))
	it.batch = batch
	it.pos = 0

	if it.remaining >= 0 {
		it.remaining -= len(batch)
	}

	if it.maxRange > 0 || len(batch) < want {
		it.exhausted = true
		return
	}

	last := batch[len(batch)-1].Key
	if it.maxRange == 0 {
		// Unbounded: re-issue from the successor of the last key seen so
		// the next fetch continues past it, in scan direction.
		if it.reverse {
			pred := predecessorBound(last)
			if pred == nil {
				it.exhausted = true
				return
			}
			it.end = pred
		} else {
			succ, ok := Successor(last)
			if !ok {
				it.exhausted = true
				return
			}
			it.start = succ
		}
	}
}

// Valid reports whether Curr/Next may be called.
func (it *Index) Valid() bool {
	return it.pos < len(it.batch)
}

// Curr returns the current pair: the encoded key, whose last 4 bytes
// carry the row-id, and its value, the CSN stored alongside the key.
func (it *Index) Curr() (key []byte, value uint64) {
	kv := it.batch[it.pos]
	return kv.Key, kv.Value
}

// Next advances the iterator, fetching the next batch if the current one
// is exhausted.
func (it *Index) Next() {
	it.pos++
	if it.pos >= len(it.batch) && !it.exhausted {
		it.fetch()
	}
}

// Successor returns the lexicographically smallest byte string no longer
// than key that is strictly greater than it (longer strings having key as
// a prefix sort between the two), by incrementing the last byte that is not already
// 0xFF and truncating everything after it (byte-increment with carry). A
// key consisting entirely of 0xFF bytes (or empty) has no successor.
func Successor(key []byte) ([]byte, bool) {
	out := append([]byte(nil), key...)
	for i := len(out) - 1; i >= 0; i-- {
		if out[i] != 0xFF {
			out[i]++
			return out[:i+1], true
		}
	}
	return nil, false
}

// predecessorBound returns the largest byte string of the same length
// strictly less than key (decrement with borrow: the last non-0x00 byte is
// decremented and every byte after it set to 0xFF), used to continue a
// reverse scan past the last key seen. A key of all 0x00 bytes (or empty)
// has no predecessor.
func predecessorBound(key []byte) []byte {
	out := append([]byte(nil), key...)
	for i := len(out) - 1; i >= 0; i-- {
		if out[i] != 0x00 {
			out[i]--
			for j := i + 1; j < len(out); j++ {
				out[j] = 0xFF
			}
			return out
		}
	}
	return nil
}
