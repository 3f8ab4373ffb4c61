package pkgdb

// Delete marks pid for removal this session. It refuses (returns false,
// no mutation) when pid is already ALLDEL, or when pid is neither LEAF nor
// PARTLEAF and force is false. On success it propagates: every package pid
// itself required is reclassified (pid no longer counts as a requirer of
// it), and every non-ALLDEL requirer of pid has its TOBEBROKEN recomputed,
// with disjunctive requirers also re-verifying their other alternatives.
func (p *Pkgs) Delete(pid Pid, force bool) bool {
	if p.isAlldel(pid) {
		return false
	}
	if !force && !p.HasAny(pid, Leaf|Partleaf) {
		return false
	}

	p.setBits(pid, Delete)
	p.clearBits(pid, Leaf|Partleaf)
	p.recomputeTobebroken(pid)
	p.DeletedCount++
	p.DeletedSizeKB += uint64(p.SizeKB(pid))

	subsets := p.required.Subsets(pid)
	for j := 0; j < subsets; j++ {
		n := p.required.SubsetSize(pid, j)
		for i := 0; i < n; i++ {
			p.classifyPkg(p.required.Get(pid, j, i))
		}
	}

	rbSubsets := p.requiredBy.Subsets(pid)
	for j := 0; j < rbSubsets; j++ {
		n := p.requiredBy.SubsetSize(pid, j)
		for i := 0; i < n; i++ {
			r := p.requiredBy.Get(pid, j, i)
			if p.isAlldel(r) {
				continue
			}
			p.recomputeTobebroken(r)
			if j == 1 {
				p.verifyPartleaves(r)
			}
		}
	}
	return true
}

// Undelete clears pid's session DELETE mark. It refuses when pid was never
// session-deleted (a pre-removed, DELETED package cannot be undeleted).
// If clearing the mark would leave pid itself broken given the current
// state of its own requirements, the call fails unless force is set, in
// which case pid is undeleted but immediately marked TOBEBROKEN.
func (p *Pkgs) Undelete(pid Pid, force bool) bool {
	if !p.Has(pid, Delete) {
		return false
	}
	willBeBroken := p.wouldBeBroken(pid)
	if willBeBroken && !force {
		return false
	}

	p.clearBits(pid, Delete)
	p.DeletedCount--
	p.DeletedSizeKB -= uint64(p.SizeKB(pid))
	if willBeBroken {
		p.setBits(pid, Tobebroken)
		p.BrokenCount++
	}

	subsets := p.required.Subsets(pid)
	for j := 0; j < subsets; j++ {
		n := p.required.SubsetSize(pid, j)
		for i := 0; i < n; i++ {
			p.classifyPkg(p.required.Get(pid, j, i))
		}
	}

	rbSubsets := p.requiredBy.Subsets(pid)
	for j := 0; j < rbSubsets; j++ {
		n := p.requiredBy.SubsetSize(pid, j)
		for i := 0; i < n; i++ {
			r := p.requiredBy.Get(pid, j, i)
			if p.isAlldel(r) {
				continue
			}
			p.recomputeTobebroken(r)
			if j == 1 {
				p.verifyPartleaves(r)
			}
		}
	}

	p.classifyPkg(pid)
	return true
}

// requirerExclusivelyNeeds reports whether every disjunction of r's
// requirements that contains pid has no other non-ALLDEL alternative,
// meaning r cannot survive pid's removal through that disjunction.
func (p *Pkgs) requirerExclusivelyNeeds(r, pid Pid) bool {
	subsets := p.required.Subsets(r)
	any := false
	for j := 1; j < subsets; j++ {
		n := p.required.SubsetSize(r, j)
		containsPid := false
		for i := 0; i < n; i++ {
			if p.required.Get(r, j, i) == pid {
				containsPid = true
				break
			}
		}
		if !containsPid {
			continue
		}
		any = true
		for i := 0; i < n; i++ {
			alt := p.required.Get(r, j, i)
			if alt == pid {
				continue
			}
			if !p.isAlldel(alt) {
				return false
			}
		}
	}
	return any
}

// DeleteRec deletes pid and the full depth-first closure of packages that
// only survive because of it. Any package the walk reaches that is INLOOP
// is force-deleted up front to break the cycle before recursion walks
// its requirers; every hard requirer is always recursed into, and a
// disjunctive requirer is recursed into only when pid was its last
// non-ALLDEL alternative. It returns false, stopping immediately, the
// first time any step along the way is refused.
func (p *Pkgs) DeleteRec(pid Pid) bool {
	if p.isAlldel(pid) {
		return true
	}
	if p.Has(pid, Inloop) {
		if !p.Delete(pid, true) {
			return false
		}
	}

	subsets := p.requiredBy.Subsets(pid)
	for j := 0; j < subsets; j++ {
		n := p.requiredBy.SubsetSize(pid, j)
		for i := 0; i < n; i++ {
			r := p.requiredBy.Get(pid, j, i)
			if p.isAlldel(r) {
				continue
			}
			if j == 1 && !p.requirerExclusivelyNeeds(r, pid) {
				continue
			}
			if !p.DeleteRec(r) {
				return false
			}
		}
	}

	if p.isAlldel(pid) {
		return true
	}
	return p.Delete(pid, false)
}

// UndeleteRec undoes DeleteRec: it walks the hard (subset 0) requirements
// of pid, undeleting every one that is currently ALLDEL, before attempting
// pid itself.
func (p *Pkgs) UndeleteRec(pid Pid) bool {
	if !p.isAlldel(pid) {
		return true
	}
	if p.Has(pid, Inloop) {
		if !p.Undelete(pid, true) {
			return false
		}
	}

	n := p.required.SubsetSize(pid, 0)
	for i := 0; i < n; i++ {
		r := p.required.Get(pid, 0, i)
		if !p.isAlldel(r) {
			continue
		}
		if !p.UndeleteRec(r) {
			return false
		}
	}

	if !p.isAlldel(pid) {
		return true
	}
	return p.Undelete(pid, false)
}

// TransReqs returns the transitive closure of pid's requirements (reqBy
// false) or requirers (reqBy true), across every subset, in first-visit
// order with no duplicates.
func (p *Pkgs) TransReqs(pid Pid, reqBy bool) []Pid {
	store := p.required
	if reqBy {
		store = p.requiredBy
	}
	seen := map[Pid]struct{}{pid: {}}
	var order []Pid

	var visit func(v Pid)
	visit = func(v Pid) {
		subsets := store.Subsets(v)
		for j := 0; j < subsets; j++ {
			n := store.SubsetSize(v, j)
			for i := 0; i < n; i++ {
				q := store.Get(v, j, i)
				if _, ok := seen[q]; ok {
					continue
				}
				seen[q] = struct{}{}
				order = append(order, q)
				visit(q)
			}
		}
	}
	visit(pid)
	return order
}
