// Package pkgdb is the package-level dependency graph engine: interned
// package records, the dependency resolver, the leaf/partleaf/broken/loop
// classifier, and the incremental delete/undelete mutator.
//
// pkgdb never reads an installed-package database and never shells out;
// it is fed entirely through the Pkgs methods documented as the
// source-reader interface, and it is read by a UI collaborator through the
// query methods below. Both collaborators live outside this package.
package pkgdb

import (
	"encoding/binary"

	"pkgreaper/internal/depset"
	"pkgreaper/internal/setstore"
	"pkgreaper/internal/strpool"
	"pkgreaper/internal/varint"
)

// Less, Greater, and Equal are the version-range constraint flags accepted
// by AddReq, AddReqEVR, AddProv, and AddProvEVR, re-exported from depset so
// callers need not import that package directly.
const (
	Less    = depset.Less
	Greater = depset.Greater
	Equal   = depset.Equal
)

// Pid identifies one package by its position in the package table.
type Pid = uint32

// Status is the per-package bitset of derived and user-set flags.
type Status uint16

const (
	Installed Status = 1 << iota
	Leaf
	Partleaf
	Broken
	Tobebroken
	Delete
	Deleted
	Inloop
)

// Alldel is shorthand for "marked for deletion this session, or already
// removed from the underlying store but retained for analysis".
const Alldel = Delete | Deleted

// recordWidth is the fixed byte width of one package record: epoch, name,
// version, release, arch, repo, and size_kb are each a uint32, and status
// is a uint16.
const recordWidth = 4*7 + 2

// Pkgs owns every interned string, dependency, package record, and
// derived graph structure for one load. It implements the source-reader
// interface in full (Set/AddReq/AddReqEVR/AddProv/AddFileprov/MatchDeps)
// and exposes the read/query/mutate surface the UI collaborator drives.
type Pkgs struct {
	Strs *strpool.Pool
	Deps *depset.Table

	recs *varint.RecordArray

	requires     *setstore.Store
	provides     *setstore.Store
	fileprovides *setstore.Store

	required   *setstore.Store
	requiredBy *setstore.Store

	sccs *setstore.Store

	basenames    map[string]struct{}
	basenamesSet bool

	DeletedCount  int
	DeletedSizeKB uint64
	BrokenCount   int
}

// New returns an empty package database ready for a single load.
func New() *Pkgs {
	strs := strpool.New()
	return &Pkgs{
		Strs:         strs,
		Deps:         depset.New(strs),
		recs:         varint.NewRecordArray(recordWidth),
		requires:     setstore.New(),
		provides:     setstore.New(),
		fileprovides: setstore.New(),
		required:     setstore.New(),
		requiredBy:   setstore.New(),
		sccs:         setstore.New(),
	}
}

// Len reports the number of packages loaded.
func (p *Pkgs) Len() int { return p.recs.Len() }

func putRecord(buf []byte, epoch, name, version, release, arch, repo, sizeKB uint32, status Status) {
	binary.LittleEndian.PutUint32(buf[0:4], epoch)
	binary.LittleEndian.PutUint32(buf[4:8], name)
	binary.LittleEndian.PutUint32(buf[8:12], version)
	binary.LittleEndian.PutUint32(buf[12:16], release)
	binary.LittleEndian.PutUint32(buf[16:20], arch)
	binary.LittleEndian.PutUint32(buf[20:24], repo)
	binary.LittleEndian.PutUint32(buf[24:28], sizeKB)
	binary.LittleEndian.PutUint16(buf[28:30], uint16(status))
}

// Set stores package pid's scalar fields, the first step of the
// source-reader protocol. epoch is accepted and retained (see Epoch) even
// though neither classification nor dependency matching reads it; matching
// uses the epoch carried by each requirement and provide instead.
func (p *Pkgs) Set(pid Pid, repo uint32, name string, epoch uint32, version, release, arch string, status Status, sizeKB uint32) {
	nameID := p.Strs.Add(name)
	versionID := p.Strs.Add(version)
	releaseID := p.Strs.Add(release)
	archID := p.Strs.Add(arch)

	buf := make([]byte, recordWidth)
	putRecord(buf, epoch, nameID, versionID, releaseID, archID, repo, sizeKB, status)
	p.recs.Set(int(pid), buf)
}

func (p *Pkgs) rec(pid Pid) []byte { return p.recs.Get(int(pid)) }

// Epoch returns package pid's epoch.
func (p *Pkgs) Epoch(pid Pid) uint32 { return binary.LittleEndian.Uint32(p.rec(pid)[0:4]) }

// Name returns package pid's name string.
func (p *Pkgs) Name(pid Pid) string {
	return p.Strs.Get(binary.LittleEndian.Uint32(p.rec(pid)[4:8]))
}

// Version returns package pid's version string.
func (p *Pkgs) Version(pid Pid) string {
	return p.Strs.Get(binary.LittleEndian.Uint32(p.rec(pid)[8:12]))
}

// Release returns package pid's release string.
func (p *Pkgs) Release(pid Pid) string {
	return p.Strs.Get(binary.LittleEndian.Uint32(p.rec(pid)[12:16]))
}

// Arch returns package pid's architecture string, which may be empty.
func (p *Pkgs) Arch(pid Pid) string {
	return p.Strs.Get(binary.LittleEndian.Uint32(p.rec(pid)[16:20]))
}

// Repo returns the repository id package pid came from.
func (p *Pkgs) Repo(pid Pid) uint32 { return binary.LittleEndian.Uint32(p.rec(pid)[20:24]) }

// SizeKB returns package pid's installed size in kilobytes.
func (p *Pkgs) SizeKB(pid Pid) uint32 { return binary.LittleEndian.Uint32(p.rec(pid)[24:28]) }

// Status returns package pid's current status bitset.
func (p *Pkgs) Status(pid Pid) Status {
	return Status(binary.LittleEndian.Uint16(p.rec(pid)[28:30]))
}

func (p *Pkgs) setStatus(pid Pid, st Status) {
	binary.LittleEndian.PutUint16(p.rec(pid)[28:30], uint16(st))
}

// Has reports whether pid currently carries every bit in mask.
func (p *Pkgs) Has(pid Pid, mask Status) bool { return p.Status(pid)&mask == mask }

// HasAny reports whether pid currently carries any bit in mask.
func (p *Pkgs) HasAny(pid Pid, mask Status) bool { return p.Status(pid)&mask != 0 }

func (p *Pkgs) setBits(pid Pid, mask Status)   { p.setStatus(pid, p.Status(pid)|mask) }
func (p *Pkgs) clearBits(pid Pid, mask Status) { p.setStatus(pid, p.Status(pid)&^mask) }

// CanonicalName returns "name-version-release.arch" (or without the ".arch"
// suffix when arch is empty), the identity used throughout the UI, the
// selection save/load format, and the external removal command.
func (p *Pkgs) CanonicalName(pid Pid) string {
	base := p.Name(pid) + "-" + p.Version(pid) + "-" + p.Release(pid)
	if arch := p.Arch(pid); arch != "" {
		return base + "." + arch
	}
	return base
}
