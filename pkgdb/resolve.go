package pkgdb

import (
	"sort"

	"pkgreaper/internal/depset"
)

// MatchDeps runs the resolver once over every package's requires and
// provides, then classifies the graph. It must be called exactly once,
// after every Set/AddReq*/AddProv*/AddFileprov call the source reader
// intends to make.
func (p *Pkgs) MatchDeps() {
	n := uint32(p.Len())

	// Provides absorbs fileprovides before its reverse index is built.
	p.provides.Merge(p.fileprovides)
	p.provides.Hash()

	for pid := uint32(0); pid < n; pid++ {
		p.resolvePackage(pid)
	}
	p.provides.Unhash()

	p.buildRequiredBy()
	p.classifyAll()
	p.computeSCCs()
}

// collectProviders gathers, as a sorted unique pid slice, every package
// that provides any dep-id the depset considers a match for r.
func (p *Pkgs) collectProviders(r depset.ID) []Pid {
	seen := make(map[Pid]struct{})
	var out []Pid
	depIter := 0
	for {
		rPrime, ok := p.Deps.Find(r, &depIter)
		if !ok {
			break
		}
		provIter := 0
		for {
			q, ok2 := p.provides.Find(rPrime, &provIter)
			if !ok2 {
				break
			}
			if _, dup := seen[q]; !dup {
				seen[q] = struct{}{}
				out = append(out, q)
			}
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// resolvePackage resolves every hard requirement of pid into required[pid]
// subset 0, every unresolved one into a BROKEN flag, and every genuinely
// ambiguous one into a new disjunction subset.
func (p *Pkgs) resolvePackage(pid Pid) {
	n := p.requires.SubsetSize(pid, 0)
	for i := 0; i < n; i++ {
		r := p.requires.Get(pid, 0, i)
		providers := p.collectProviders(r)

		selfSatisfied := false
		for _, q := range providers {
			if q == pid {
				selfSatisfied = true
				break
			}
		}
		// A package that provides its own requirement drops the
		// requirement entirely and is never marked BROKEN over it, even
		// if it was the only provider.
		if selfSatisfied {
			continue
		}

		switch len(providers) {
		case 0:
			p.setBits(pid, Broken)
		case 1:
			p.required.Add(pid, 0, providers[0])
		default:
			p.addDisjunction(pid, providers)
		}
	}
}

// addDisjunction adds providers as a new subset of required[pid], unless
// it overlaps an existing hard requirement or duplicates a disjunction
// already recorded.
func (p *Pkgs) addDisjunction(pid Pid, providers []Pid) {
	for _, q := range providers {
		if p.required.SubsetHas(pid, 0, q) {
			return
		}
	}
	subsets := p.required.Subsets(pid)
	for j := 1; j < subsets; j++ {
		if p.subsetEqualsSlice(pid, j, providers) {
			return
		}
	}
	for _, q := range providers {
		p.required.Add(pid, subsets, q)
	}
}

func (p *Pkgs) subsetEqualsSlice(pid Pid, j int, vals []Pid) bool {
	if p.required.SubsetSize(pid, j) != len(vals) {
		return false
	}
	for i, v := range vals {
		if p.required.Get(pid, j, i) != v {
			return false
		}
	}
	return true
}

// buildRequiredBy inverts required into required_by: a hard edge p->q adds
// p to required_by[q]'s hard subset, a disjunctive edge adds p to
// required_by[q]'s single disjunctive subset.
func (p *Pkgs) buildRequiredBy() {
	n := uint32(p.Len())
	for pid := uint32(0); pid < n; pid++ {
		subsets := p.required.Subsets(pid)
		for j := 0; j < subsets; j++ {
			count := p.required.SubsetSize(pid, j)
			for i := 0; i < count; i++ {
				q := p.required.Get(pid, j, i)
				if j == 0 {
					p.requiredBy.Add(q, 0, pid)
				} else {
					p.requiredBy.Add(q, 1, pid)
				}
			}
		}
	}
}
