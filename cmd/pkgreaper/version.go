package main

import (
	"fmt"
	"runtime"

	"github.com/Masterminds/semver"
)

// VERSION is the tool's own release version, set at build time via
// -ldflags. It is kept distinct from rpm-style version comparison:
// this is an ordinary semver string describing the pkgreaper binary
// itself, not a package being analyzed.
var VERSION = "0.0.0-dev"

// GITCOMMIT is the git hash the binary was built from.
var GITCOMMIT string

var versionCmd = &command{
	name:      "version",
	shortHelp: "print the pkgreaper version",
	longHelp:  "Prints the version, git commit, and runtime OS/ARCH.",
	run:       runVersion,
}

func runVersion(l *Loggers, args []string) error {
	v, err := semver.NewVersion(VERSION)
	if err != nil {
		return fmt.Errorf("version: malformed build version %q: %w", VERSION, err)
	}
	l.Out.Printf("pkgreaper %s %s %s/%s\n", v, GITCOMMIT, runtime.GOOS, runtime.GOARCH)
	return nil
}
