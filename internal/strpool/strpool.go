// Package strpool implements an interned string arena: an
// append-only byte blob holding every distinct string exactly once,
// addressed by its byte offset, backed by a hashindex.Index for
// deduplication.
package strpool

import "pkgreaper/internal/hashindex"

// NoID is the sentinel "absent" id. Zero is a valid id (the offset of the
// first interned string), so callers must never treat 0 as absent.
const NoID = ^uint32(0)

// Pool is a deduplicated, null-terminated string arena.
type Pool struct {
	data []byte
	ix   *hashindex.Index
}

// New returns an empty pool.
func New() *Pool {
	return &Pool{ix: hashindex.New()}
}

func hash(s string) uint32 {
	var h uint32
	for i := 0; i < len(s); i++ {
		h = 27*h + uint32(s[i])
	}
	return h
}

// find walks the probe chain for s's hash, returning the existing id if s
// is already interned, or the iter position of the first empty slot
// otherwise (so a subsequent insert can use hashindex.AddAt directly).
func (p *Pool) find(s string, h uint32) (id uint32, freeIter int, found bool) {
	iter := 0
	for {
		before := iter
		cand, ok := p.ix.Find(h, &iter)
		if !ok {
			return 0, before, false
		}
		if p.Get(cand) == s {
			return cand, 0, true
		}
	}
}

// rebuild re-inserts every interned string into the hash index using a
// freshly recomputed hash. Called after the index has resized, since
// resizing discards the table's contents.
func (p *Pool) rebuild() {
	for id := uint32(0); id < uint32(len(p.data)); {
		s := p.Get(id)
		p.ix.Add(id, hash(s))
		id += uint32(len(s)) + 1
	}
}

// Add interns s, returning its existing id if already present, else
// appending s (plus a terminator) and returning the new id.
func (p *Pool) Add(s string) uint32 {
	h := hash(s)
	if id, _, found := p.find(s, h); found {
		return id
	}
	if p.ix.MaybeResize() {
		p.rebuild()
	}
	_, freeIter, found := p.find(s, h)
	if found {
		// Can happen only if rebuild somehow reintroduced a collision
		// resolution path that finds s; strings are never duplicated in
		// the arena, so this is unreachable in practice but kept safe.
		id, _, _ := p.find(s, h)
		return id
	}
	id := uint32(len(p.data))
	p.data = append(p.data, s...)
	p.data = append(p.data, 0)
	p.ix.AddAt(id, h, freeIter)
	return id
}

// GetID returns the id of s if interned, else NoID.
func (p *Pool) GetID(s string) uint32 {
	if id, _, found := p.find(s, hash(s)); found {
		return id
	}
	return NoID
}

// Get returns the string stored at id. It panics if id does not point at
// the start of an interned string.
func (p *Pool) Get(id uint32) string {
	if int(id) >= len(p.data) {
		panic("strpool: id out of range")
	}
	end := id
	for end < uint32(len(p.data)) && p.data[end] != 0 {
		end++
	}
	return string(p.data[id:end])
}

// First returns the id of the first interned string, or NoID if the pool
// is empty.
func (p *Pool) First() uint32 {
	if len(p.data) == 0 {
		return NoID
	}
	return 0
}

// Next returns the id of the string following the one at id, or NoID if id
// is the last interned string.
func (p *Pool) Next(id uint32) uint32 {
	s := p.Get(id)
	next := id + uint32(len(s)) + 1
	if int(next) >= len(p.data) {
		return NoID
	}
	return next
}

// Len reports the number of bytes in the backing arena (for diagnostics).
func (p *Pool) Len() int { return len(p.data) }
