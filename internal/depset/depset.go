// Package depset implements the dependency table: interned
// (name, flags, epoch, version, release) tuples with rpm-style version
// range matching.
package depset

import (
	"strconv"
	"strings"

	"pkgreaper/internal/hashindex"
	"pkgreaper/internal/strpool"
	"pkgreaper/internal/vercmp"
)

// Flag bits for a dependency's version-range constraint. Any other bit a
// reader passes in (e.g. rpm's PREREQ) is masked off at intern time:
// callers downstream never need to know whether the original input
// carried extra bits, because depset always normalizes to this 3-bit set.
const (
	Less uint8 = 1 << iota
	Greater
	Equal
)

const flagMask = Less | Greater | Equal

// ID identifies one interned dependency tuple.
type ID = uint32

// NoID is the sentinel absent id, matching strpool.NoID.
const NoID = strpool.NoID

// Table is an append-only, deduplicated store of dependency tuples, keyed
// for lookup by a hash of the name component.
type Table struct {
	pool *strpool.Pool

	names    []uint32
	flags    []uint8
	epochs   []uint32
	versions []uint32
	releases []uint32

	ix *hashindex.Index
}

// New returns an empty table whose string fields are interned into pool.
func New(pool *strpool.Pool) *Table {
	return &Table{pool: pool, ix: hashindex.New()}
}

// hash computes h(name) = ((13*name) << 8) xor name.
func hash(name uint32) uint32 {
	return (13*name)<<8 ^ name
}

// Len reports the number of distinct dependency tuples interned.
func (t *Table) Len() int { return len(t.names) }

// Name returns the interned name string-id of dep d.
func (t *Table) Name(d ID) uint32 { return t.names[d] }

// Flags returns the masked version-range flags of dep d.
func (t *Table) Flags(d ID) uint8 { return t.flags[d] }

// Epoch returns the epoch of dep d.
func (t *Table) Epoch(d ID) uint32 { return t.epochs[d] }

// Version returns the version string of dep d, empty if unconstrained.
func (t *Table) Version(d ID) string { return t.pool.Get(t.versions[d]) }

// Release returns the release string of dep d, empty if unconstrained.
func (t *Table) Release(d ID) string { return t.pool.Get(t.releases[d]) }

// Add parses an optional "epoch:" prefix and optional "-release" suffix
// out of versionString (missing components become empty) and interns the
// resulting tuple via AddEVR.
func (t *Table) Add(name string, flags uint8, versionString string) ID {
	epoch, version, release := parseEVR(versionString)
	return t.AddEVR(name, flags, epoch, version, release)
}

// parseEVR splits "[epoch:]version[-release]" into its components. A
// prefix that doesn't parse as a decimal before a colon is treated as
// part of the version instead.
func parseEVR(s string) (epoch uint32, version, release string) {
	rest := s
	if idx := strings.IndexByte(rest, ':'); idx >= 0 {
		if e, err := strconv.ParseUint(rest[:idx], 10, 32); err == nil {
			epoch = uint32(e)
			rest = rest[idx+1:]
		}
	}
	version = rest
	if idx := strings.LastIndexByte(rest, '-'); idx >= 0 {
		version = rest[:idx]
		release = rest[idx+1:]
	}
	return epoch, version, release
}

// AddEVR interns (name, flags, epoch, version, release), deduplicating by
// the full 5-tuple, and returns its dep-id.
func (t *Table) AddEVR(name string, flags uint8, epoch uint32, version, release string) ID {
	nameID := t.pool.Add(name)
	versionID := t.pool.Add(version)
	releaseID := t.pool.Add(release)
	flags &= flagMask
	h := hash(nameID)

	if id, found := t.lookupExact(nameID, flags, epoch, versionID, releaseID, h); found {
		return id
	}
	if t.ix.MaybeResize() {
		t.rebuild()
	}
	_, freeIter, found := t.probeExact(nameID, flags, epoch, versionID, releaseID, h)
	if found {
		id, _ := t.lookupExact(nameID, flags, epoch, versionID, releaseID, h)
		return id
	}
	id := ID(len(t.names))
	t.names = append(t.names, nameID)
	t.flags = append(t.flags, flags)
	t.epochs = append(t.epochs, epoch)
	t.versions = append(t.versions, versionID)
	t.releases = append(t.releases, releaseID)
	t.ix.AddAt(id, h, freeIter)
	return id
}

func (t *Table) lookupExact(nameID uint32, flags uint8, epoch, versionID, releaseID, h uint32) (ID, bool) {
	id, _, found := t.probeExact(nameID, flags, epoch, versionID, releaseID, h)
	return id, found
}

// probeExact walks the hash chain for h, returning the matching id if the
// full tuple is already present, or the iter position of the first empty
// slot to insert at.
func (t *Table) probeExact(nameID uint32, flags uint8, epoch, versionID, releaseID, h uint32) (id ID, freeIter int, found bool) {
	iter := 0
	for {
		before := iter
		cand, ok := t.ix.Find(h, &iter)
		if !ok {
			return 0, before, false
		}
		if t.names[cand] == nameID && t.flags[cand] == flags && t.epochs[cand] == epoch &&
			t.versions[cand] == versionID && t.releases[cand] == releaseID {
			return cand, 0, true
		}
	}
}

func (t *Table) rebuild() {
	for id := range t.names {
		t.ix.Add(uint32(id), hash(t.names[id]))
	}
}

// Find enumerates, in turn, every stored dep-id that would Match dep,
// advancing iter on each call. ok is false once the probe chain for dep's
// name hash is exhausted.
func (t *Table) Find(dep ID, iter *int) (id ID, ok bool) {
	h := hash(t.names[dep])
	for {
		cand, present := t.ix.Find(h, iter)
		if !present {
			return 0, false
		}
		if t.Match(dep, cand) {
			return cand, true
		}
	}
}

// Match reports whether deps x and y are compatible under rpm-style
// version-range semantics: names must agree; if either side carries no
// constraint (flags == 0) they match regardless of version; otherwise the
// epoch/version/release triples are compared in order (skipping any
// component where either side's string is empty) and the result's sign
// must be consistent with the union of the two sides' flags.
func (t *Table) Match(x, y ID) bool {
	if t.names[x] != t.names[y] {
		return false
	}
	xf, yf := t.flags[x], t.flags[y]
	if xf == 0 || yf == 0 {
		return true
	}
	d := t.compareEVR(x, y)
	switch {
	case d > 0:
		return xf&Less != 0 || yf&Greater != 0
	case d < 0:
		return xf&Greater != 0 || yf&Less != 0
	default:
		return xf&yf != 0
	}
}

func (t *Table) compareEVR(x, y ID) int {
	xe, ye := t.epochs[x], t.epochs[y]
	if xe != ye {
		if xe > ye {
			return 1
		}
		return -1
	}
	xv, yv := t.Version(x), t.Version(y)
	if xv != "" && yv != "" {
		if d := vercmp.Compare(xv, yv); d != 0 {
			return d
		}
	}
	xr, yr := t.Release(x), t.Release(y)
	if xr != "" && yr != "" {
		if d := vercmp.Compare(xr, yr); d != 0 {
			return d
		}
	}
	return 0
}
