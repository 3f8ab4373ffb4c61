package depset

import (
	"pkgreaper/internal/strpool"
	"testing"
)

func newTable() *Table {
	return New(strpool.New())
}

func TestAddDeduplicates(t *testing.T) {
	tbl := newTable()
	id1 := tbl.Add("foo", Equal, "1.0-1")
	id2 := tbl.Add("foo", Equal, "1.0-1")
	if id1 != id2 {
		t.Fatalf("Add() twice with same tuple gave different ids: %d, %d", id1, id2)
	}
	if tbl.Len() != 1 {
		t.Errorf("Len() = %d, want 1", tbl.Len())
	}
}

func TestAddDistinguishesVersions(t *testing.T) {
	tbl := newTable()
	id1 := tbl.Add("foo", Equal, "1.0-1")
	id2 := tbl.Add("foo", Equal, "2.0-1")
	if id1 == id2 {
		t.Fatal("distinct versions interned to the same id")
	}
	if tbl.Len() != 2 {
		t.Errorf("Len() = %d, want 2", tbl.Len())
	}
}

func TestAddMasksUnknownFlagBits(t *testing.T) {
	tbl := newTable()
	const prereqBit uint8 = 1 << 6
	id := tbl.Add("foo", Equal|prereqBit, "1.0-1")
	if tbl.Flags(id) != Equal {
		t.Errorf("Flags() = %#x, want only Equal set (unrecognized bits must be masked)", tbl.Flags(id))
	}
}

func TestParseEVR(t *testing.T) {
	cases := []struct {
		in                   string
		wantEpoch            uint32
		wantVersion, wantRel string
	}{
		{"1.0-1", 0, "1.0", "1"},
		{"2:1.0-1", 2, "1.0", "1"},
		{"1.0", 0, "1.0", ""},
		{"2:1.0", 2, "1.0", ""},
		{"", 0, "", ""},
	}
	for _, c := range cases {
		e, v, r := parseEVR(c.in)
		if e != c.wantEpoch || v != c.wantVersion || r != c.wantRel {
			t.Errorf("parseEVR(%q) = (%d, %q, %q), want (%d, %q, %q)",
				c.in, e, v, r, c.wantEpoch, c.wantVersion, c.wantRel)
		}
	}
}

func TestMatchUnconstrainedSideAlwaysMatches(t *testing.T) {
	tbl := newTable()
	req := tbl.Add("foo", 0, "")
	prov := tbl.Add("foo", Equal, "9.9-9")
	if !tbl.Match(req, prov) {
		t.Error("unconstrained requirement should match any version of the same name")
	}
}

func TestMatchNameMismatch(t *testing.T) {
	tbl := newTable()
	a := tbl.Add("foo", Equal, "1.0-1")
	b := tbl.Add("bar", Equal, "1.0-1")
	if tbl.Match(a, b) {
		t.Error("deps with different names should never match")
	}
}

func TestMatchEqualVersions(t *testing.T) {
	tbl := newTable()
	a := tbl.Add("foo", Equal, "1.0-1")
	b := tbl.Add("foo", Equal, "1.0-1")
	if !tbl.Match(a, b) {
		t.Error("identical EVR with Equal flags on both sides should match")
	}
}

func TestMatchGreaterLess(t *testing.T) {
	tbl := newTable()
	req := tbl.Add("foo", Greater, "1.0-1")
	prov := tbl.Add("foo", Equal, "2.0-1")
	if !tbl.Match(req, prov) {
		t.Error("requirement foo > 1.0-1 should match provider foo = 2.0-1")
	}
	provLow := tbl.Add("foo", Equal, "0.5-1")
	if tbl.Match(req, provLow) {
		t.Error("requirement foo > 1.0-1 should not match provider foo = 0.5-1")
	}
}

func TestMatchIsSymmetric(t *testing.T) {
	tbl := newTable()
	a := tbl.Add("foo", Greater, "1.0-1")
	b := tbl.Add("foo", Equal, "2.0-1")
	if tbl.Match(a, b) != tbl.Match(b, a) {
		t.Error("Match must be symmetric")
	}
}

func TestFindEnumeratesAllCompatible(t *testing.T) {
	tbl := newTable()
	req := tbl.Add("foo", 0, "")
	p1 := tbl.Add("foo", Equal, "1.0-1")
	p2 := tbl.Add("foo", Equal, "2.0-1")
	tbl.Add("bar", Equal, "1.0-1")

	found := map[ID]bool{}
	iter := 0
	for {
		id, ok := tbl.Find(req, &iter)
		if !ok {
			break
		}
		found[id] = true
	}
	if !found[p1] || !found[p2] {
		t.Errorf("Find() = %v, want both %d and %d", found, p1, p2)
	}
	// req is itself a stored dep that matches req, so Find yields it too.
	if len(found) != 3 {
		t.Errorf("Find() returned %d matches, want 3 (req, %d and %d)", len(found), p1, p2)
	}
}

func TestAddManyForcesResize(t *testing.T) {
	tbl := newTable()
	ids := make(map[string]ID)
	for i := 0; i < 300; i++ {
		name := string(rune('a'+i%26)) + string(rune('A'+(i/26)%26))
		ids[name] = tbl.Add(name, Equal, "1.0-1")
	}
	for name, id := range ids {
		req := tbl.Add(name, 0, "")
		iter := 0
		gotID, ok := tbl.Find(req, &iter)
		if !ok || gotID != id {
			t.Errorf("Find() for %q after resize = (%d, %v), want (%d, true)", name, gotID, ok, id)
		}
	}
}
