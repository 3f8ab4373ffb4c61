package main

import (
	"flag"

	"github.com/pkg/errors"

	"pkgreaper/filterexpr"
	"pkgreaper/pkgdb"
	"pkgreaper/rpmlike"
	"pkgreaper/selection"
)

var markCmd = &command{
	name:      "mark",
	argsHelp:  "-db <dir> -f <expr> [-undo] [-rec] [-sel <file>]",
	shortHelp: "mark or unmark packages matching a filter expression for deletion",
	longHelp: "Applies delete (or, with -undo, undelete) to every package matching " +
		"-f. With -rec, uses the transitive closure form (delete_rec/undelete_rec) " +
		"instead of the single-package form. With -sel, loads that selection before " +
		"marking and saves the result back to it afterward.",
	register: func(fs *flag.FlagSet) {
		fs.StringVar(&markDB, "db", ".", "package database fragment directory")
		fs.StringVar(&markFilter, "f", "", "search/filter expression selecting packages to act on")
		fs.BoolVar(&markUndo, "undo", false, "undelete instead of delete")
		fs.BoolVar(&markRec, "rec", false, "use the recursive closure form")
		fs.StringVar(&markSel, "sel", "", "selection file to load before and save after")
	},
	run: runMark,
}

var (
	markDB     string
	markFilter string
	markUndo   bool
	markRec    bool
	markSel    string
)

func runMark(l *Loggers, args []string) error {
	if markFilter == "" {
		return errors.New("mark: -f is required")
	}

	pkgs := pkgdb.New()
	if err := rpmlike.Load(markDB, pkgs); err != nil {
		return errors.Wrap(err, "mark")
	}
	if markSel != "" {
		if err := selection.Load(markSel, pkgs); err != nil {
			return errors.Wrap(err, "mark")
		}
	}

	expr, err := filterexpr.Parse(markFilter)
	if err != nil {
		return errors.Wrap(err, "mark")
	}

	var acted, refused int
	n := pkgs.Len()
	for pid := uint32(0); pid < uint32(n); pid++ {
		name := pkgs.CanonicalName(pid)
		if !expr.Match(pkgs.Status(pid), name) {
			continue
		}
		var ok bool
		switch {
		case markUndo && markRec:
			ok = pkgs.UndeleteRec(pid)
		case markUndo:
			ok = pkgs.Undelete(pid, false)
		case markRec:
			ok = pkgs.DeleteRec(pid)
		default:
			ok = pkgs.Delete(pid, false)
		}
		if ok {
			acted++
		} else {
			refused++
			l.debugf("mark: refused %s\n", name)
		}
	}
	l.Out.Printf("mark: %d package(s) updated, %d refused\n", acted, refused)

	if markSel != "" {
		if err := selection.Save(markSel, pkgs); err != nil {
			return errors.Wrap(err, "mark")
		}
	}
	return nil
}
