package main

import (
	"flag"
	"strings"

	"github.com/pkg/errors"

	"pkgreaper/filterexpr"
	"pkgreaper/pkgdb"
	"pkgreaper/rpmlike"
	"pkgreaper/selection"
)

var listCmd = &command{
	name:      "list",
	argsHelp:  "-db <dir> [-f <expr>] [-sel <file>]",
	shortHelp: "list packages and their derived status",
	longHelp: "Loads the package database fragments under -db, optionally applies a " +
		"previously saved selection, optionally narrows the output with a " +
		"search-and-filter expression, and prints one status-letter line per package.",
	register: func(fs *flag.FlagSet) {
		fs.StringVar(&listDB, "db", ".", "package database fragment directory")
		fs.StringVar(&listFilter, "f", "", "search/filter expression")
		fs.StringVar(&listSel, "sel", "", "selection file to apply before listing")
	},
	run: runList,
}

var (
	listDB     string
	listFilter string
	listSel    string
)

func statusLetters(s pkgdb.Status) string {
	var b strings.Builder
	put := func(c byte, bit pkgdb.Status) {
		if s&bit != 0 {
			b.WriteByte(c)
		} else {
			b.WriteByte('.')
		}
	}
	put('L', pkgdb.Leaf)
	put('l', pkgdb.Partleaf)
	put('B', pkgdb.Broken)
	put('b', pkgdb.Tobebroken)
	put('D', pkgdb.Deleted)
	put('d', pkgdb.Delete)
	put('o', pkgdb.Inloop)
	return b.String()
}

func runList(l *Loggers, args []string) error {
	pkgs := pkgdb.New()
	if err := rpmlike.Load(listDB, pkgs); err != nil {
		return errors.Wrap(err, "list")
	}
	if listSel != "" {
		if err := selection.Load(listSel, pkgs); err != nil {
			return errors.Wrap(err, "list")
		}
	}

	var expr *filterexpr.Expr
	if listFilter != "" {
		e, err := filterexpr.Parse(listFilter)
		if err != nil {
			return errors.Wrap(err, "list")
		}
		expr = e
	}

	n := pkgs.Len()
	for pid := uint32(0); pid < uint32(n); pid++ {
		status := pkgs.Status(pid)
		name := pkgs.CanonicalName(pid)
		if expr != nil && !expr.Match(status, name) {
			continue
		}
		l.Out.Printf("%s %s\n", statusLetters(status), name)
	}
	return nil
}
