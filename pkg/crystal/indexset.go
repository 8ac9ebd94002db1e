package crystal

import "github.com/bits-and-blooms/bitset"

// IndexSet is a fixed-capacity set of plane indices.
type IndexSet struct {
	n    int
	bits *bitset.BitSet
}

// NewIndexSet returns a set able to hold indices in [0, n) that initially
// contains members.
func NewIndexSet(n int, members ...int) *IndexSet {
	s := &IndexSet{n: n, bits: bitset.New(uint(max(n, 0)))}
	for _, m := range members {
		s.Add(m)
	}
	return s
}

func (s *IndexSet) inRange(i int) bool {
	return i >= 0 && i < s.n
}

// Add inserts i. Indices outside the capacity are ignored.
func (s *IndexSet) Add(i int) {
	if s.inRange(i) {
		s.bits.Set(uint(i))
	}
}

// Remove deletes i.
func (s *IndexSet) Remove(i int) {
	if s.inRange(i) {
		s.bits.Clear(uint(i))
	}
}

// Has reports whether i is in the set.
func (s *IndexSet) Has(i int) bool {
	return s != nil && s.inRange(i) && s.bits.Test(uint(i))
}

// Len returns the number of members.
func (s *IndexSet) Len() int {
	if s == nil {
		return 0
	}
	return int(s.bits.Count())
}
