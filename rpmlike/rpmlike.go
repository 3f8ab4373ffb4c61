// Package rpmlike is a demo and test source reader: it satisfies the
// source-reader protocol by loading a directory of per-package TOML
// fragments, the way a real reader would load an installed rpm database.
package rpmlike

import (
	"os"
	"sort"
	"strings"

	"github.com/karrick/godirwalk"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"

	"pkgreaper/internal/depset"
	"pkgreaper/pkgdb"
)

type depSpec struct {
	Name    string `toml:"name"`
	Flags   string `toml:"flags"`
	Version string `toml:"version"`
}

type fragment struct {
	Name    string `toml:"name"`
	Epoch   uint32 `toml:"epoch"`
	Version string `toml:"version"`
	Release string `toml:"release"`
	Arch    string `toml:"arch"`
	Repo    uint32 `toml:"repo"`
	SizeKB  uint32 `toml:"size_kb"`
	Deleted bool   `toml:"deleted"`

	Requires []depSpec `toml:"requires"`
	Provides []depSpec `toml:"provides"`
	Files    []string  `toml:"files"`
}

func parseFlags(s string) uint8 {
	var f uint8
	for _, c := range s {
		switch c {
		case 'L':
			f |= depset.Less
		case 'G':
			f |= depset.Greater
		case 'E':
			f |= depset.Equal
		}
	}
	return f
}

// Source is a loaded fragment database: the reader half that stays alive
// after Load so a driver can query and act on the underlying store.
type Source struct {
	root  string
	paths map[pkgdb.Pid]string
}

var _ pkgdb.SourceOps = (*Source)(nil)

// NewSource returns a reader over the fragment directory at root. Nothing
// is read until Load.
func NewSource(root string) *Source {
	return &Source{root: root}
}

// Load is shorthand for NewSource(root).Load(pkgs) when the caller has no
// further use for the reader itself.
func Load(root string, pkgs *pkgdb.Pkgs) error {
	return NewSource(root).Load(pkgs)
}

// Load walks the reader's root for *.toml package fragments in lexical
// path order (for reproducible pid assignment across runs) and feeds them
// through pkgs, running the full source-reader protocol including the
// final pkgs.MatchDeps call.
func (s *Source) Load(pkgs *pkgdb.Pkgs) error {
	var paths []string
	err := godirwalk.Walk(s.root, &godirwalk.Options{
		Unsorted: true,
		Callback: func(osPathname string, de *godirwalk.Dirent) error {
			if de.IsDir() {
				return nil
			}
			if !strings.HasSuffix(osPathname, ".toml") {
				return nil
			}
			paths = append(paths, osPathname)
			return nil
		},
	})
	if err != nil {
		return errors.Wrapf(err, "rpmlike: walking %s", s.root)
	}
	sort.Strings(paths)

	frags := make([]fragment, 0, len(paths))
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return errors.Wrapf(err, "rpmlike: reading %s", path)
		}
		var frag fragment
		if err := toml.Unmarshal(data, &frag); err != nil {
			return errors.Wrapf(err, "rpmlike: parsing %s", path)
		}
		frags = append(frags, frag)
	}

	s.paths = make(map[pkgdb.Pid]string, len(paths))
	for pid, path := range paths {
		s.paths[pkgdb.Pid(pid)] = path
	}

	for pid, frag := range frags {
		status := pkgdb.Installed
		if frag.Deleted {
			status |= pkgdb.Deleted
		}
		pkgs.Set(uint32(pid), frag.Repo, frag.Name, frag.Epoch, frag.Version, frag.Release, frag.Arch, status, frag.SizeKB)
	}

	// Every requirement is interned before any provide is offered: the
	// needless-provide check drops a capability whose name is not yet
	// interned, and a provider fragment can sort ahead of the fragment
	// that requires it.
	for pid, frag := range frags {
		for _, r := range frag.Requires {
			pkgs.AddReq(uint32(pid), r.Name, parseFlags(r.Flags), r.Version)
		}
	}
	for pid, frag := range frags {
		for _, pr := range frag.Provides {
			pkgs.AddProv(uint32(pid), pr.Name, parseFlags(pr.Flags), pr.Version)
		}
	}

	// Basename discovery: only a file whose basename some requirement
	// could possibly match is worth registering as a fileprovide.
	basenames := pkgs.FileBasenames()
	for pid, frag := range frags {
		for _, path := range frag.Files {
			base := path
			if idx := strings.LastIndexByte(path, '/'); idx >= 0 {
				base = path[idx+1:]
			}
			if _, ok := basenames[base]; !ok {
				continue
			}
			pkgs.AddFileprov(uint32(pid), path)
		}
	}

	pkgs.MatchDeps()
	return nil
}

// PkgInfo reports whether the store still holds pid's fragment: 0 when
// its file is present and readable, negative otherwise. A richer reader
// would surface the package's detail view here.
func (s *Source) PkgInfo(pid pkgdb.Pid) int {
	path, ok := s.paths[pid]
	if !ok {
		return -1
	}
	if _, err := os.Stat(path); err != nil {
		return -1
	}
	return 0
}

// RemovePkgs deletes the fragment file of every package marked DELETE and
// matching opts, which is this store's equivalent of uninstalling it. It
// returns the number removed, or -1 on the first filesystem error.
func (s *Source) RemovePkgs(pkgs *pkgdb.Pkgs, opts pkgdb.RemoveOptions) int {
	removed := 0
	n := uint32(pkgs.Len())
	for pid := uint32(0); pid < n; pid++ {
		if !pkgs.Has(pid, pkgdb.Delete) {
			continue
		}
		if opts.Repo != 0 && pkgs.Repo(pid) != opts.Repo {
			continue
		}
		path, ok := s.paths[pid]
		if !ok {
			continue
		}
		if err := os.Remove(path); err != nil {
			return -1
		}
		delete(s.paths, pid)
		removed++
	}
	return removed
}

// RepoClean drops the per-load state. The Source must Load again before
// further PkgInfo or RemovePkgs calls.
func (s *Source) RepoClean() {
	s.paths = nil
}
