package pkgdb

import (
	"strings"

	"pkgreaper/internal/strpool"
)

// AddReq records that package pid requires the dependency named name under
// flags, with versionString parsed the way depset.Table.Add does (an
// optional "epoch:" prefix and "-release" suffix).
func (p *Pkgs) AddReq(pid Pid, name string, flags uint8, versionString string) {
	dep := p.Deps.Add(name, flags, versionString)
	p.requires.Add(pid, 0, dep)
}

// AddReqEVR is the explicit-fields form of AddReq.
func (p *Pkgs) AddReqEVR(pid Pid, name string, flags uint8, epoch uint32, version, release string) {
	dep := p.Deps.AddEVR(name, flags, epoch, version, release)
	p.requires.Add(pid, 0, dep)
}

// AddProv records that package pid provides the capability named name
// under flags. A capability whose name is not yet interned in the string
// pool is silently dropped as needless: no requirement added so far names
// it. A name already interned for another reason (a package name, a
// version string) is kept even if no requirement mentions it.
func (p *Pkgs) AddProv(pid Pid, name string, flags uint8, versionString string) {
	if p.Strs.GetID(name) == strpool.NoID {
		return
	}
	dep := p.Deps.Add(name, flags, versionString)
	p.provides.Add(pid, 0, dep)
}

// AddProvEVR is the explicit-fields form of AddProv.
func (p *Pkgs) AddProvEVR(pid Pid, name string, flags uint8, epoch uint32, version, release string) {
	if p.Strs.GetID(name) == strpool.NoID {
		return
	}
	dep := p.Deps.AddEVR(name, flags, epoch, version, release)
	p.provides.Add(pid, 0, dep)
}

// AddFileprov records that package pid installs a file at path, which acts
// as an implicit, unversioned capability (flags=0, no version).
func (p *Pkgs) AddFileprov(pid Pid, path string) {
	dep := p.Deps.AddEVR(path, 0, 0, "", "")
	p.fileprovides.Add(pid, 0, dep)
}

// FileBasenames returns the set of basenames of every interned string that
// looks like an absolute path, excluding "." and "/" components. It is
// built lazily on first use. A reader may consult this before enumerating
// a package's files, to skip files whose basename can't possibly satisfy
// any requirement.
func (p *Pkgs) FileBasenames() map[string]struct{} {
	if p.basenamesSet {
		return p.basenames
	}
	out := make(map[string]struct{})
	for id := p.Strs.First(); id != strpool.NoID; id = p.Strs.Next(id) {
		s := p.Strs.Get(id)
		if len(s) == 0 || s[0] != '/' {
			continue
		}
		base := s
		if idx := strings.LastIndexByte(s, '/'); idx >= 0 {
			base = s[idx+1:]
		}
		if base == "" || base == "." {
			continue
		}
		out[base] = struct{}{}
	}
	p.basenames = out
	p.basenamesSet = true
	return out
}
