package pkgdb

import "testing"

func TestDeleteRefusesNonLeafWithoutForce(t *testing.T) {
	p := New()
	addPkg(p, 0, "app")
	addPkg(p, 1, "libfoo")
	p.AddReq(0, "libfoo", 0, "")
	p.AddProv(1, "libfoo", 0, "")
	p.MatchDeps()

	if p.Delete(1, false) {
		t.Error("Delete without force should refuse a hard-required package")
	}
	if p.Has(1, Delete) {
		t.Error("a refused Delete must not mutate state")
	}
}

func TestDeleteLeafSucceeds(t *testing.T) {
	p := New()
	addPkg(p, 0, "standalone")
	p.MatchDeps()

	if !p.Delete(0, false) {
		t.Fatal("Delete on a LEAF package should succeed without force")
	}
	if !p.Has(0, Delete) {
		t.Error("deleted package should carry the DELETE bit")
	}
	if p.DeletedCount != 1 {
		t.Errorf("DeletedCount = %d, want 1", p.DeletedCount)
	}
}

func TestDeleteRefusesAlreadyDeleted(t *testing.T) {
	p := New()
	addPkg(p, 0, "standalone")
	p.MatchDeps()
	p.Delete(0, false)
	if p.Delete(0, false) {
		t.Error("Delete on an already-ALLDEL package should refuse")
	}
}

func TestUndeleteRoundTrip(t *testing.T) {
	p := New()
	addPkg(p, 0, "app")
	addPkg(p, 1, "libfoo")
	p.AddReq(0, "libfoo", 0, "")
	p.AddProv(1, "libfoo", 0, "")
	p.MatchDeps()

	before := p.Status(0)
	if !p.Delete(0, true) {
		t.Fatal("Delete(app, force) should succeed")
	}
	if !p.Undelete(0, false) {
		t.Fatal("Undelete(app) should succeed")
	}
	if p.Status(0) != before {
		t.Errorf("Status after delete+undelete round trip = %v, want %v", p.Status(0), before)
	}
	if p.DeletedCount != 0 {
		t.Errorf("DeletedCount = %d, want 0 after undelete", p.DeletedCount)
	}
}

func TestUndeleteRefusesWhenNotDeleted(t *testing.T) {
	p := New()
	addPkg(p, 0, "standalone")
	p.MatchDeps()
	if p.Undelete(0, false) {
		t.Error("Undelete on a package that was never deleted should refuse")
	}
}

func TestUndeleteNoPartialMutationOnRefusal(t *testing.T) {
	p := New()
	addPkg(p, 0, "a")
	addPkg(p, 1, "b")
	addPkg(p, 2, "c")
	p.AddReq(0, "b", 0, "")
	p.AddProv(1, "b", 0, "")
	p.AddReq(1, "c", 0, "")
	p.AddProv(2, "c", 0, "")
	p.MatchDeps()

	if !p.Delete(2, true) {
		t.Fatal("setup: Delete(c, force) should succeed")
	}
	if !p.Delete(1, true) {
		t.Fatal("setup: Delete(b, force) should succeed now that c is gone")
	}

	beforeStatus := p.Status(1)
	beforeDeletedCount := p.DeletedCount
	beforeBrokenCount := p.BrokenCount

	if p.Undelete(1, false) {
		t.Fatal("Undelete(b) without force should refuse: its requirement c is still ALLDEL")
	}
	if p.Status(1) != beforeStatus {
		t.Errorf("a refused Undelete must not mutate status: got %v, want %v", p.Status(1), beforeStatus)
	}
	if p.DeletedCount != beforeDeletedCount {
		t.Errorf("a refused Undelete must not change DeletedCount: got %d, want %d", p.DeletedCount, beforeDeletedCount)
	}
	if p.BrokenCount != beforeBrokenCount {
		t.Errorf("a refused Undelete must not change BrokenCount: got %d, want %d", p.BrokenCount, beforeBrokenCount)
	}

	if !p.Undelete(1, true) {
		t.Fatal("Undelete(b, force) should succeed")
	}
	if !p.Has(1, Tobebroken) {
		t.Error("forced Undelete(b) should leave it marked TOBEBROKEN since c is still deleted")
	}
}

func TestDeleteRecBreaksCycle(t *testing.T) {
	p := New()
	addPkg(p, 0, "x")
	addPkg(p, 1, "y")
	addPkg(p, 2, "z")
	p.AddReq(0, "y", 0, "")
	p.AddProv(1, "y", 0, "")
	p.AddReq(1, "z", 0, "")
	p.AddProv(2, "z", 0, "")
	p.AddReq(2, "x", 0, "")
	p.AddProv(0, "x", 0, "")
	p.MatchDeps()

	if !p.DeleteRec(0) {
		t.Fatal("DeleteRec on a cycle member should succeed")
	}
	for _, pid := range []Pid{0, 1, 2} {
		if !p.Has(pid, Delete) {
			t.Errorf("pid %d should be deleted as part of the forced cycle break", pid)
		}
	}
	if p.DeletedCount != 3 {
		t.Errorf("DeletedCount = %d, want 3", p.DeletedCount)
	}
}

func TestDeleteRecCascadesThroughHardRequirers(t *testing.T) {
	p := New()
	addPkg(p, 0, "app")
	addPkg(p, 1, "libfoo")
	p.AddReq(0, "libfoo", 0, "")
	p.AddProv(1, "libfoo", 0, "")
	p.MatchDeps()

	if !p.DeleteRec(1) {
		t.Fatal("DeleteRec(libfoo) should succeed by also deleting app")
	}
	if !p.Has(0, Delete) || !p.Has(1, Delete) {
		t.Error("both app and libfoo should be deleted")
	}
}

func TestDeleteRecLeavesDisjunctionAloneWhenAlternativeSurvives(t *testing.T) {
	p := New()
	addPkg(p, 0, "app")
	addPkg(p, 1, "provider-a")
	addPkg(p, 2, "provider-b")
	p.AddReq(0, "virtual", 0, "")
	p.AddProv(1, "virtual", 0, "")
	p.AddProv(2, "virtual", 0, "")
	p.MatchDeps()

	if !p.DeleteRec(1) {
		t.Fatal("DeleteRec(provider-a) should succeed")
	}
	if p.Has(0, Delete) {
		t.Error("app should survive since provider-b still satisfies the disjunction")
	}
	if p.Has(2, Delete) {
		t.Error("provider-b should not be pulled in by an unrelated DeleteRec")
	}
}

func TestUndeleteRecRestoresHardRequirements(t *testing.T) {
	p := New()
	addPkg(p, 0, "app")
	addPkg(p, 1, "libfoo")
	p.AddReq(0, "libfoo", 0, "")
	p.AddProv(1, "libfoo", 0, "")
	p.MatchDeps()

	p.DeleteRec(1)
	if !p.UndeleteRec(0) {
		t.Fatal("UndeleteRec(app) should succeed, pulling libfoo back in along the way")
	}
	if p.Has(0, Delete) || p.Has(1, Delete) {
		t.Error("both app and libfoo should be restored")
	}
}

func TestTransReqsForward(t *testing.T) {
	p := New()
	addPkg(p, 0, "app")
	addPkg(p, 1, "libfoo")
	addPkg(p, 2, "libbar")
	p.AddReq(0, "libfoo", 0, "")
	p.AddProv(1, "libfoo", 0, "")
	p.AddReq(1, "libbar", 0, "")
	p.AddProv(2, "libbar", 0, "")
	p.MatchDeps()

	got := p.TransReqs(0, false)
	if len(got) != 2 {
		t.Fatalf("TransReqs(app, false) = %v, want 2 entries", got)
	}
	seen := map[Pid]bool{got[0]: true, got[1]: true}
	if !seen[1] || !seen[2] {
		t.Errorf("TransReqs(app, false) = %v, want {libfoo(1), libbar(2)}", got)
	}
}

func TestTransReqsBackward(t *testing.T) {
	p := New()
	addPkg(p, 0, "app")
	addPkg(p, 1, "libfoo")
	p.AddReq(0, "libfoo", 0, "")
	p.AddProv(1, "libfoo", 0, "")
	p.MatchDeps()

	got := p.TransReqs(1, true)
	if len(got) != 1 || got[0] != 0 {
		t.Errorf("TransReqs(libfoo, true) = %v, want [app(0)]", got)
	}
}

func TestDeleteTracksSizeCounter(t *testing.T) {
	p := New()
	p.Set(0, 0, "big", 0, "1", "1", "", Installed, 2048)
	p.Set(1, 0, "small", 0, "1", "1", "", Installed, 16)
	p.MatchDeps()

	p.Delete(0, false)
	p.Delete(1, false)
	if p.DeletedSizeKB != 2064 {
		t.Errorf("DeletedSizeKB = %d, want 2064", p.DeletedSizeKB)
	}
	p.Undelete(1, false)
	if p.DeletedSizeKB != 2048 {
		t.Errorf("DeletedSizeKB = %d after undelete, want 2048", p.DeletedSizeKB)
	}
}

func TestDeleteClearsLeafBitsWhileMarked(t *testing.T) {
	p := New()
	addPkg(p, 0, "standalone")
	p.MatchDeps()

	if !p.Has(0, Leaf) {
		t.Fatal("setup: standalone should be LEAF")
	}
	p.Delete(0, false)
	if p.HasAny(0, Leaf|Partleaf) {
		t.Error("a DELETE-marked package must not carry LEAF or PARTLEAF")
	}
	p.Undelete(0, false)
	if !p.Has(0, Leaf) {
		t.Error("undelete should reclassify the package back to LEAF")
	}
}
