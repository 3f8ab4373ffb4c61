// Package hashindex implements an open-addressed, quadratically probed
// slot table mapping a caller-supplied hash to a small integer id.
//
// The index deliberately knows nothing about what is hashed: strings, deps,
// and the reverse index over a sorted-set-of-sets store all share this same
// table, each supplying its own hash function and its own equality check
// over the ids the table returns.
package hashindex

// Index is a slot table storing id+1 per slot (0 means empty).
type Index struct {
	slots []uint32
	count int
}

const minSize = 16

// New returns an empty index with its initial table size.
func New() *Index {
	return &Index{slots: make([]uint32, minSize)}
}

// Len reports how many ids are currently stored.
func (ix *Index) Len() int { return ix.count }

// slot computes the i-th probe position for hash h: a quadratic probe
// sequence (h + (i + i*i)/2) mod N.
func (ix *Index) slot(h uint32, i int) int {
	n := uint64(len(ix.slots))
	step := uint64(i+i*i) / 2
	return int((uint64(h) + step) % n)
}

// Find returns the id stored at the iter-th probed slot for hash h, and
// advances iter. ok is false once an empty slot is reached, meaning the
// probe chain has ended and no further candidates exist. Callers loop,
// calling Find repeatedly with the same iter variable, and filter the
// returned ids by their own equality check, since a hash collision does not
// imply equality.
func (ix *Index) Find(h uint32, iter *int) (id uint32, ok bool) {
	s := ix.slot(h, *iter)
	*iter++
	v := ix.slots[s]
	if v == 0 {
		return 0, false
	}
	return v - 1, true
}

// MaybeResize doubles the table (starting from minSize) if inserting one
// more id would push the load factor above 0.5. It returns true if a
// resize happened, in which case every previously stored id has been
// dropped from the table and the caller must re-add each one using its
// recomputed hash before relying on Find again.
func (ix *Index) MaybeResize() bool {
	if (ix.count+1)*2 <= len(ix.slots) {
		return false
	}
	newSize := len(ix.slots) * 2
	if newSize < minSize {
		newSize = minSize
	}
	ix.slots = make([]uint32, newSize)
	ix.count = 0
	return true
}

// Add inserts id under hash h, probing until it finds an empty slot or a
// slot that already holds id. It returns false without mutating the table
// if id is already present anywhere along the probe chain.
func (ix *Index) Add(id uint32, h uint32) bool {
	for i := 0; ; i++ {
		s := ix.slot(h, i)
		cur := ix.slots[s]
		if cur == 0 {
			ix.slots[s] = id + 1
			ix.count++
			return true
		}
		if cur-1 == id {
			return false
		}
	}
}

// Reserve grows the table (if needed) so that n further insertions fit
// under the 0.5 load factor, in one shot rather than one doubling at a
// time. It must only be called on an index with nothing stored yet: like
// MaybeResize, growing drops any previously stored ids, but callers of
// Reserve are expected to size up-front before their first insert rather
// than replay entries that were never there.
func (ix *Index) Reserve(n int) {
	for (ix.count+n)*2 > len(ix.slots) {
		newSize := len(ix.slots) * 2
		if newSize < minSize {
			newSize = minSize
		}
		ix.slots = make([]uint32, newSize)
		ix.count = 0
	}
}

// AddAt installs id at the probe position iter previously returned by a
// Find call that came back empty (ok == false). This skips re-probing the
// chain already walked by that failed Find. It panics if the slot is no
// longer empty, which would indicate a concurrent mutation.
func (ix *Index) AddAt(id uint32, h uint32, iter int) {
	s := ix.slot(h, iter)
	if ix.slots[s] != 0 {
		panic("hashindex: AddAt target slot is occupied")
	}
	ix.slots[s] = id + 1
	ix.count++
}
