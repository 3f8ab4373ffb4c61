// Package setstore implements a sorted-set-of-sets store: an array
// of per-entity sorted integer sets, each optionally partitioned into
// ordered sub-buckets (a hard requirement bucket plus zero or more OR
// disjunctions), with an on-demand reverse index for "which entities
// contain value v" queries.
package setstore

import (
	"pkgreaper/internal/hashindex"
	"pkgreaper/internal/varint"
)

// entry holds one outer index's sub-bucketed sorted contents. offs holds
// k boundary offsets for subsets 0..k: subset 0 spans [0, offs[0]), subset
// i spans [offs[i-1], offs[i]), and the final subset k spans
// [offs[k-1], vals.Len()).
type entry struct {
	offs []uint32
	vals varint.Array
}

func (e *entry) subsets() int { return len(e.offs) + 1 }

func (e *entry) subsetRange(j int) (start, end int) {
	if j > 0 {
		start = int(e.offs[j-1])
	}
	if j < len(e.offs) {
		end = int(e.offs[j])
	} else {
		end = e.vals.Len()
	}
	return start, end
}

func (e *entry) has(v uint32) (pos int, found bool) {
	for j := 0; j < e.subsets(); j++ {
		start, end := e.subsetRange(j)
		p := e.vals.Bsearch(start, end-start, v)
		if p < end && e.vals.Get(p) == v {
			return p, true
		}
	}
	return 0, false
}

// Store is an array of entries, each a sorted set-of-sets, plus an
// optional reverse index built on demand by Hash.
type Store struct {
	entries []*entry
	rix     *hashindex.Index
}

// New returns an empty store.
func New() *Store {
	return &Store{}
}

func (s *Store) ensure(outer uint32) *entry {
	for uint32(len(s.entries)) <= outer {
		s.entries = append(s.entries, &entry{})
	}
	return s.entries[outer]
}

// checkMutable panics if the store is currently frozen by a built reverse
// index, per the frozen-after-index constraint: once Hash has run,
// mutating any entry is a programmer error.
func (s *Store) checkMutable() {
	if s.rix != nil {
		panic("setstore: mutation attempted while reverse index is built")
	}
}

// Len reports the number of outer entries allocated.
func (s *Store) Len() int { return len(s.entries) }

// Subsets reports subset count k+1 for outer index s.
func (s *Store) Subsets(outer uint32) int {
	if int(outer) >= len(s.entries) {
		return 1
	}
	return s.entries[outer].subsets()
}

// Size reports the total number of elements stored across all subsets of
// outer index s.
func (s *Store) Size(outer uint32) int {
	if int(outer) >= len(s.entries) {
		return 0
	}
	return s.entries[outer].vals.Len()
}

// SubsetSize reports the number of elements in subset j of outer index s.
func (s *Store) SubsetSize(outer uint32, j int) int {
	if int(outer) >= len(s.entries) {
		return 0
	}
	start, end := s.entries[outer].subsetRange(j)
	return end - start
}

// Get returns the i-th smallest element of subset j of outer index s.
func (s *Store) Get(outer uint32, j, i int) uint32 {
	e := s.entries[outer]
	start, _ := e.subsetRange(j)
	return e.vals.Get(start + i)
}

// Has reports whether value v appears in any subset of outer index s.
func (s *Store) Has(outer uint32, v uint32) bool {
	if int(outer) >= len(s.entries) {
		return false
	}
	_, found := s.entries[outer].has(v)
	return found
}

// SubsetHas reports whether value v appears in subset j of outer index s.
func (s *Store) SubsetHas(outer uint32, j int, v uint32) bool {
	if int(outer) >= len(s.entries) {
		return false
	}
	e := s.entries[outer]
	start, end := e.subsetRange(j)
	pos := e.vals.Bsearch(start, end-start, v)
	return pos < end && e.vals.Get(pos) == v
}

// Add inserts v into subset j of outer index s, extending the entry with
// new empty sub-buckets if j names a subset beyond the current count. It
// returns whether v was newly inserted (false if already present).
func (s *Store) Add(outer uint32, j int, v uint32) bool {
	s.checkMutable()
	e := s.ensure(outer)
	for len(e.offs) < j {
		e.offs = append(e.offs, uint32(e.vals.Len()))
	}
	start, end := e.subsetRange(j)
	pos := e.vals.Bsearch(start, end-start, v)
	if pos < end && e.vals.Get(pos) == v {
		return false
	}
	n := e.vals.Len()
	e.vals.SetLen(n + 1)
	if pos < n {
		e.vals.Move(pos+1, pos, n-pos)
	}
	e.vals.Set(pos, v)
	for i := j; i < len(e.offs); i++ {
		e.offs[i]++
	}
	return true
}

// SubsetCmp reports whether subset j1 of outer s1 and subset j2 of outer
// s2 hold exactly the same elements in the same order.
func (s *Store) SubsetCmp(s1 uint32, j1 int, s2 uint32, j2 int) bool {
	n1, n2 := s.SubsetSize(s1, j1), s.SubsetSize(s2, j2)
	if n1 != n2 {
		return false
	}
	for i := 0; i < n1; i++ {
		if s.Get(s1, j1, i) != s.Get(s2, j2, i) {
			return false
		}
	}
	return true
}

// MergeFlat unions every element of every subset of src's srcOuter entry
// into subset 0 of this store's dstOuter entry. It is how provides sets
// absorb file-provides before the reverse index is built.
func (s *Store) MergeFlat(dstOuter uint32, src *Store, srcOuter uint32) {
	s.checkMutable()
	if int(srcOuter) >= len(src.entries) {
		return
	}
	se := src.entries[srcOuter]
	for j := 0; j < se.subsets(); j++ {
		start, end := se.subsetRange(j)
		for i := start; i < end; i++ {
			s.Add(dstOuter, 0, se.vals.Get(i))
		}
	}
}

// Merge union-merges every entry of src into this store, entry by entry,
// flattening each source entry into the destination entry's subset 0.
func (s *Store) Merge(src *Store) {
	for outer := range src.entries {
		s.MergeFlat(uint32(outer), src, uint32(outer))
	}
}

// Clone returns an independent deep copy. The reverse index, if any, is
// not copied; callers that need one must call Hash on the clone.
func (s *Store) Clone() *Store {
	c := &Store{entries: make([]*entry, len(s.entries))}
	for i, e := range s.entries {
		ne := &entry{
			offs: append([]uint32(nil), e.offs...),
			vals: *e.vals.Clone(),
		}
		c.entries[i] = ne
	}
	return c
}

// valueHash applies a Fibonacci (multiplicative) hash, which is a
// bijection mod 2^32, so distinct values never collide before the table's
// modulo reduction.
func valueHash(v uint32) uint32 {
	return v * 2654435761
}

// Hash builds the reverse index mapping every stored value to the set of
// outer indices containing it, and freezes the store against further
// mutation until Unhash is called. Rebuilding scans every stored value
// once; a per-value scratch cache remembers how far each value's probe
// chain has already been walked, so a value held by many outer entries is
// inserted in amortized O(1) per occurrence instead of re-walking its
// whole existing chain from the start each time.
func (s *Store) Hash() {
	total := 0
	for _, e := range s.entries {
		total += e.vals.Len()
	}
	s.rix = hashindex.New()
	s.rix.Reserve(total)

	cache := make(map[uint32]int, total)
	for idx, e := range s.entries {
		outer := uint32(idx)
		n := e.vals.Len()
		for i := 0; i < n; i++ {
			v := e.vals.Get(i)
			h := valueHash(v)
			iter := cache[v]
			for {
				before := iter
				_, ok := s.rix.Find(h, &iter)
				if !ok {
					s.rix.AddAt(outer, h, before)
					cache[v] = iter
					break
				}
			}
		}
	}
}

// Unhash releases the reverse index, unfreezing the store.
func (s *Store) Unhash() {
	s.rix = nil
}

// Hashed reports whether a reverse index currently exists.
func (s *Store) Hashed() bool { return s.rix != nil }

// Find enumerates, across repeated calls with the same iter, every outer
// index whose entry contains v. ok is false once exhausted. Hash must have
// been called first.
func (s *Store) Find(v uint32, iter *int) (outer uint32, ok bool) {
	if s.rix == nil {
		panic("setstore: Find called before Hash")
	}
	h := valueHash(v)
	for {
		cand, present := s.rix.Find(h, iter)
		if !present {
			return 0, false
		}
		if int(cand) < len(s.entries) {
			if _, found := s.entries[cand].has(v); found {
				return cand, true
			}
		}
	}
}
