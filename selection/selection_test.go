package selection

import (
	"os"
	"path/filepath"
	"testing"

	"pkgreaper/pkgdb"
)

func addPkg(p *pkgdb.Pkgs, pid pkgdb.Pid, name string) {
	p.Set(pid, 0, name, 0, "1", "1", "", pkgdb.Installed, 0)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "selection.toml")

	p := pkgdb.New()
	addPkg(p, 0, "app")
	addPkg(p, 1, "libfoo")
	p.MatchDeps()

	if !p.Delete(0, true) {
		t.Fatal("Delete(app) should succeed")
	}

	if err := Save(path, p); err != nil {
		t.Fatalf("Save: %v", err)
	}

	q := pkgdb.New()
	addPkg(q, 0, "app")
	addPkg(q, 1, "libfoo")
	q.MatchDeps()

	if err := Load(path, q); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !q.Has(0, pkgdb.Delete) {
		t.Error("Load should reproduce the DELETE bit on app")
	}
	if q.Has(1, pkgdb.Delete) {
		t.Error("Load should not mark libfoo DELETE")
	}
}

func TestSaveBacksUpExistingFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "selection.toml")

	if err := os.WriteFile(path, []byte("packages = [\"stale-1-1\"]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	p := pkgdb.New()
	addPkg(p, 0, "app")
	p.MatchDeps()
	p.Delete(0, true)

	if err := Save(path, p); err != nil {
		t.Fatalf("Save: %v", err)
	}

	backup := path + ".bak"
	data, err := os.ReadFile(backup)
	if err != nil {
		t.Fatalf("expected a backup file at %s: %v", backup, err)
	}
	if string(data) != "packages = [\"stale-1-1\"]\n" {
		t.Errorf("backup contents = %q, want the prior file's contents untouched", data)
	}
}

func TestLoadSkipsUnknownNames(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "selection.toml")
	if err := os.WriteFile(path, []byte("packages = [\"gone-9-9\"]\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	p := pkgdb.New()
	addPkg(p, 0, "app")
	p.MatchDeps()

	if err := Load(path, p); err != nil {
		t.Fatalf("Load should tolerate a name with no matching package: %v", err)
	}
	if p.Has(0, pkgdb.Delete) {
		t.Error("app was never named in the selection file and must not be marked")
	}
}
