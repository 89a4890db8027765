package iter

// Sequential walks row-ids [0, upperRowID] in order, for use when no
// index satisfies a scan's predicate. It carries no underlying index
// state; it is functionally a strided counter.
type Sequential struct {
	curr  uint64
	upper uint64
	done  bool
}

// NewSequential builds a sequential iterator over [0, upperRowID]
// inclusive. heap.Heap.UpperRowID returns 0 for an empty heap (no rows
// ever inserted); the iterator then still yields row-id 0, the reserved
// sentinel that never holds a row.
func NewSequential(upperRowID uint64) *Sequential {
	return &Sequential{curr: 0, upper: upperRowID}
}

// Valid reports whether Curr/Next may be called.
func (s *Sequential) Valid() bool {
	return !s.done && s.curr <= s.upper
}

// Curr returns the current row-id.
func (s *Sequential) Curr() uint64 {
	return s.curr
}

// Next advances to the next row-id.
func (s *Sequential) Next() {
	if s.curr == s.upper {
		s.done = true
		return
	}
	s.curr++
}
