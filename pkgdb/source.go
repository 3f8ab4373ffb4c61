package pkgdb

// RemoveOptions narrows a removal pass over the underlying store and
// carries pass-through flags for its removal command.
type RemoveOptions struct {
	// Repo restricts removal to packages from this repository id; zero
	// means all repositories.
	Repo uint32
	// Root is the installation root the removal command operates under.
	Root string
	// Extra is appended verbatim to the removal command's arguments.
	Extra []string
}

// SourceOps is the half of the source-reader collaborator that outlives
// the load: metadata lookup for a single package, removal of marked
// packages from the underlying store, and release of any per-load state
// the reader holds. The engine itself never calls these; they exist so
// the UI layer can drive the reader without knowing which reader it is.
type SourceOps interface {
	// PkgInfo surfaces the underlying store's detail view of one package
	// (changelog, file list). It returns the underlying command's exit
	// status, or a negative value if the package is unknown to the store.
	PkgInfo(pid Pid) int

	// RemovePkgs removes, from the underlying store, every package in
	// pkgs currently marked DELETE and matching opts. It returns the
	// number of packages removed, or a negative value on failure.
	RemovePkgs(pkgs *Pkgs, opts RemoveOptions) int

	// RepoClean releases any state the reader has held since its load.
	// The reader is unusable afterward until it loads again.
	RepoClean()
}
