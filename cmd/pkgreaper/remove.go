package main

import (
	"context"
	"flag"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/pkg/errors"
	"github.com/sdboyer/constext"
	flock "github.com/theckman/go-flock"

	"pkgreaper/pkgdb"
	"pkgreaper/rpmlike"
	"pkgreaper/selection"
)

var removeCmd = &command{
	name:      "remove",
	argsHelp:  "-db <dir> -sel <file> [-r <root>] [-repo <id>]",
	shortHelp: "execute the removal plan for every package marked DELETE",
	longHelp: "Loads the package database fragments under -db, applies the selection " +
		"saved by mark, and shells out to rpm -evh for every package marked DELETE " +
		"(optionally restricted to a single repo id). On success the fragments of " +
		"the removed packages are dropped from the database as well.",
	register: func(fs *flag.FlagSet) {
		fs.StringVar(&removeDB, "db", ".", "package database fragment directory")
		fs.StringVar(&removeSel, "sel", "", "selection file naming the packages to remove")
		fs.StringVar(&removeRoot, "r", "/", "installation root passed to rpm -r")
		fs.UintVar(&removeRepo, "repo", 0, "restrict removal to this repo id (0 = all)")
	},
	run: runRemove,
}

var (
	removeDB   string
	removeSel  string
	removeRoot string
	removeRepo uint
)

// runRemove locks the database directory for the duration of the plan,
// reloads it, and execs rpm -evh for every DELETE-marked package.
func runRemove(l *Loggers, args []string) error {
	if removeSel == "" {
		return errors.New("remove: -sel is required")
	}

	lock := flock.NewFlock(filepath.Join(removeDB, ".pkgreaper.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return errors.Wrapf(err, "remove: acquiring lock on %s", removeDB)
	}
	if !locked {
		return errors.Errorf("remove: %s is locked by another pkgreaper instance", removeDB)
	}
	defer lock.Unlock()

	src := rpmlike.NewSource(removeDB)
	pkgs := pkgdb.New()
	if err := src.Load(pkgs); err != nil {
		return errors.Wrapf(err, "remove: loading %s", removeDB)
	}
	defer src.RepoClean()
	if err := selection.Load(removeSel, pkgs); err != nil {
		return errors.Wrap(err, "remove")
	}

	opts := pkgdb.RemoveOptions{Repo: uint32(removeRepo), Root: removeRoot}
	var names []string
	n := pkgs.Len()
	for pid := uint32(0); pid < uint32(n); pid++ {
		if !pkgs.Has(pid, pkgdb.Delete) {
			continue
		}
		if opts.Repo != 0 && pkgs.Repo(pid) != opts.Repo {
			continue
		}
		names = append(names, pkgs.CanonicalName(pid))
	}
	if len(names) == 0 {
		l.Out.Println("remove: nothing marked for deletion")
		return nil
	}

	sigCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	deadlineCtx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	cctx, cancelAll := constext.Cons(sigCtx, deadlineCtx)
	defer cancelAll()

	cmdArgs := append([]string{"-evh"}, opts.Extra...)
	cmdArgs = append(cmdArgs, "-r", opts.Root)
	cmdArgs = append(cmdArgs, names...)
	cmd := exec.Command("rpm", cmdArgs...)
	w := newWatchedCmd(cmd, 2*time.Minute)

	out, err := w.run(cctx)
	l.debugf("%s", out)
	if err != nil {
		return errors.Wrap(err, "remove: rpm")
	}

	// rpm uninstalled them for real; drop their fragments so the database
	// mirror agrees with the system again.
	if dropped := src.RemovePkgs(pkgs, opts); dropped < 0 {
		return errors.New("remove: rpm succeeded but pruning the fragment database failed")
	}
	l.Out.Printf("remove: removed %d package(s)\n", len(names))
	return nil
}
