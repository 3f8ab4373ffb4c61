// Package selection persists and restores the set of packages marked
// DELETE across runs, as a small TOML document of canonical names.
package selection

import (
	"os"

	toml "github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
	shutil "github.com/termie/go-shutil"

	"pkgreaper/pkgdb"
)

type document struct {
	Packages []string `toml:"packages"`
}

// Save writes every package currently marked DELETE, by canonical name,
// to path. If path already exists it is backed up alongside itself first
// (path + ".bak"), so a failed or partial write never destroys the prior
// selection.
func Save(path string, pkgs *pkgdb.Pkgs) error {
	if _, err := os.Stat(path); err == nil {
		if cerr := shutil.CopyFile(path, path+".bak", true); cerr != nil {
			return errors.Wrapf(cerr, "selection: backing up %s", path)
		}
	}

	var doc document
	n := pkgs.Len()
	for pid := uint32(0); pid < uint32(n); pid++ {
		if pkgs.Has(pid, pkgdb.Delete) {
			doc.Packages = append(doc.Packages, pkgs.CanonicalName(pid))
		}
	}

	data, err := toml.Marshal(doc)
	if err != nil {
		return errors.Wrapf(err, "selection: encoding %s", path)
	}
	return os.WriteFile(path, data, 0o644)
}

// Load reads path and marks DELETE, forcibly, on every package whose
// canonical name appears in it. Names with no matching package (the
// database having since changed) are silently skipped.
func Load(path string, pkgs *pkgdb.Pkgs) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return errors.Wrapf(err, "selection: reading %s", path)
	}
	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return errors.Wrapf(err, "selection: decoding %s", path)
	}

	byName := make(map[string]pkgdb.Pid, pkgs.Len())
	n := pkgs.Len()
	for pid := uint32(0); pid < uint32(n); pid++ {
		byName[pkgs.CanonicalName(pid)] = pid
	}

	for _, name := range doc.Packages {
		if pid, ok := byName[name]; ok {
			pkgs.Delete(pid, true)
		}
	}
	return nil
}
