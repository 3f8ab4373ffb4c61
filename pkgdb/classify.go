package pkgdb

import "pkgreaper/internal/setstore"

// isAlldel reports whether pid is marked for deletion this session or was
// already removed from the underlying store.
func (p *Pkgs) isAlldel(pid Pid) bool { return p.HasAny(pid, Alldel) }

// classifyAll computes LEAF/PARTLEAF for every package, then TOBEBROKEN,
// which depends on the ALLDEL state of each package's own requirements
// rather than on its requirers.
func (p *Pkgs) classifyAll() {
	n := uint32(p.Len())
	for pid := uint32(0); pid < n; pid++ {
		p.classifyPkg(pid)
	}
	for pid := uint32(0); pid < n; pid++ {
		p.recomputeTobebroken(pid)
	}
}

// classifyPkg recomputes pid's LEAF and PARTLEAF bits: a package
// is a LEAF if nothing non-ALLDEL requires it, hard or disjunctively; it is
// a PARTLEAF instead if nothing non-ALLDEL hard-requires it and non-ALLDEL
// disjunctive requirers exist but all of them have an alternative. An
// ALLDEL package carries neither bit.
func (p *Pkgs) classifyPkg(pid Pid) {
	if p.isAlldel(pid) {
		p.clearBits(pid, Leaf|Partleaf)
		return
	}
	n0 := p.requiredBy.SubsetSize(pid, 0)
	for i := 0; i < n0; i++ {
		q := p.requiredBy.Get(pid, 0, i)
		if !p.isAlldel(q) {
			p.clearBits(pid, Leaf|Partleaf)
			return
		}
	}

	subsets := p.requiredBy.Subsets(pid)
	if subsets <= 1 {
		p.clearBits(pid, Partleaf)
		p.setBits(pid, Leaf)
		return
	}

	n1 := p.requiredBy.SubsetSize(pid, 1)
	anyNonAlldelRequirer := false
	allHaveAlternative := true
	for i := 0; i < n1; i++ {
		q := p.requiredBy.Get(pid, 1, i)
		if p.isAlldel(q) {
			continue
		}
		anyNonAlldelRequirer = true
		if !p.requirerHasAlternative(q, pid) {
			allHaveAlternative = false
			break
		}
	}

	switch {
	case !anyNonAlldelRequirer:
		p.clearBits(pid, Partleaf)
		p.setBits(pid, Leaf)
	case allHaveAlternative:
		p.clearBits(pid, Leaf)
		p.setBits(pid, Partleaf)
	default:
		p.clearBits(pid, Leaf|Partleaf)
	}
}

// requirerHasAlternative reports whether every disjunction of q's
// requirements that contains pid also contains another non-ALLDEL choice.
func (p *Pkgs) requirerHasAlternative(q, pid Pid) bool {
	subsets := p.required.Subsets(q)
	for j := 1; j < subsets; j++ {
		n := p.required.SubsetSize(q, j)
		containsPid := false
		for i := 0; i < n; i++ {
			if p.required.Get(q, j, i) == pid {
				containsPid = true
				break
			}
		}
		if !containsPid {
			continue
		}
		hasAlt := false
		for i := 0; i < n; i++ {
			alt := p.required.Get(q, j, i)
			if alt == pid {
				continue
			}
			if !p.isAlldel(alt) {
				hasAlt = true
				break
			}
		}
		if !hasAlt {
			return false
		}
	}
	return true
}

// wouldBeBroken reports whether pid's own requirements would leave it
// unsatisfiable given the current ALLDEL state of the packages it depends
// on: some hard requirement is ALLDEL, or some disjunction has no
// non-ALLDEL alternative left.
func (p *Pkgs) wouldBeBroken(pid Pid) bool {
	n0 := p.required.SubsetSize(pid, 0)
	for i := 0; i < n0; i++ {
		q := p.required.Get(pid, 0, i)
		if p.isAlldel(q) {
			return true
		}
	}
	subsets := p.required.Subsets(pid)
	for j := 1; j < subsets; j++ {
		n := p.required.SubsetSize(pid, j)
		hasAlt := false
		for i := 0; i < n; i++ {
			if !p.isAlldel(p.required.Get(pid, j, i)) {
				hasAlt = true
				break
			}
		}
		if !hasAlt {
			return true
		}
	}
	return false
}

// recomputeTobebroken recomputes pid's TOBEBROKEN bit and keeps
// BrokenCount in sync with the transition. TOBEBROKEN only ever applies to
// a package that is not itself already ALLDEL.
func (p *Pkgs) recomputeTobebroken(pid Pid) {
	if p.isAlldel(pid) {
		if p.Has(pid, Tobebroken) {
			p.BrokenCount--
		}
		p.clearBits(pid, Tobebroken)
		return
	}
	broken := p.wouldBeBroken(pid)
	was := p.Has(pid, Tobebroken)
	switch {
	case broken && !was:
		p.setBits(pid, Tobebroken)
		p.BrokenCount++
	case !broken && was:
		p.clearBits(pid, Tobebroken)
		p.BrokenCount--
	}
}

// verifyPartleaves re-evaluates the LEAF/PARTLEAF status of every package
// q disjunctively requires, since a change in q's own ALLDEL state or
// disjunction membership can change whether those alternatives still have
// a requirer keeping them alive.
func (p *Pkgs) verifyPartleaves(q Pid) {
	subsets := p.required.Subsets(q)
	for j := 1; j < subsets; j++ {
		n := p.required.SubsetSize(q, j)
		for i := 0; i < n; i++ {
			p.classifyPkg(p.required.Get(q, j, i))
		}
	}
}

// neighbors returns every package that requires pid, hard or disjunctive,
// for use as the directed edge set p -> q in SCC computation.
func (p *Pkgs) neighbors(pid Pid) []Pid {
	var out []Pid
	subsets := p.requiredBy.Subsets(pid)
	for j := 0; j < subsets; j++ {
		n := p.requiredBy.SubsetSize(pid, j)
		for i := 0; i < n; i++ {
			out = append(out, p.requiredBy.Get(pid, j, i))
		}
	}
	return out
}

// computeSCCs runs Tarjan's algorithm over the p -> q edges built from
// required_by, recording every component of size 2 or more in sccs and
// setting INLOOP on each of its members.
func (p *Pkgs) computeSCCs() {
	n := p.Len()
	index := make([]int, n)
	low := make([]int, n)
	onStack := make([]bool, n)
	for i := range index {
		index[i] = -1
	}
	var stack []Pid
	counter := 0
	var components [][]Pid

	var strongconnect func(v Pid)
	strongconnect = func(v Pid) {
		index[v] = counter
		low[v] = counter
		counter++
		stack = append(stack, v)
		onStack[v] = true

		for _, w := range p.neighbors(v) {
			if index[w] == -1 {
				strongconnect(w)
				if low[w] < low[v] {
					low[v] = low[w]
				}
			} else if onStack[w] {
				if index[w] < low[v] {
					low[v] = index[w]
				}
			}
		}

		if low[v] == index[v] {
			var comp []Pid
			for {
				w := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[w] = false
				comp = append(comp, w)
				if w == v {
					break
				}
			}
			if len(comp) >= 2 {
				components = append(components, comp)
			}
		}
	}

	for v := 0; v < n; v++ {
		if index[v] == -1 {
			strongconnect(Pid(v))
		}
	}

	// Rebuild sccs from scratch, tagging every member package with INLOOP
	// and freezing a reverse index so SCCOf can answer via the store's own
	// Find.
	s := setstore.New()
	for idx, comp := range components {
		for _, pid := range comp {
			s.Add(uint32(idx), 0, pid)
			p.setBits(pid, Inloop)
		}
	}
	s.Hash()
	p.sccs = s
}

// SCCOf returns the loop id pid belongs to, if any.
func (p *Pkgs) SCCOf(pid Pid) (uint32, bool) {
	iter := 0
	return p.sccs.Find(pid, &iter)
}
