// Copyright 2016 The Go Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Command pkgreaper analyzes an installed package database and lets you
// mark packages for removal while it maintains leaf/broken/loop
// classifications incrementally.
package main

import (
	"bytes"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"text/tabwriter"
)

// command describes one pkgreaper subcommand.
type command struct {
	name      string
	argsHelp  string
	shortHelp string
	longHelp  string
	register  func(*flag.FlagSet)
	run       func(*Loggers, []string) error
}

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	commands := []*command{listCmd, markCmd, removeCmd, versionCmd}

	outLogger := log.New(stdout, "", 0)
	errLogger := log.New(stderr, "", 0)

	usage := func() {
		errLogger.Println("pkgreaper analyzes an installed package database and plans its pruning")
		errLogger.Println()
		errLogger.Println("Usage: pkgreaper <command>")
		errLogger.Println()
		errLogger.Println("Commands:")
		errLogger.Println()
		w := tabwriter.NewWriter(stderr, 0, 4, 2, ' ', 0)
		for _, cmd := range commands {
			fmt.Fprintf(w, "\t%s\t%s\n", cmd.name, cmd.shortHelp)
		}
		w.Flush()
		errLogger.Println()
		errLogger.Println(`Use "pkgreaper help <command>" for more information about a command.`)
	}

	cmdName, printCmdHelp, exit := parseArgs(args)
	if exit {
		usage()
		return 1
	}

	for _, cmd := range commands {
		if cmd.name != cmdName {
			continue
		}

		fs := flag.NewFlagSet(cmdName, flag.ContinueOnError)
		fs.SetOutput(stderr)
		verbose := fs.Bool("v", false, "enable verbose logging")
		if cmd.register != nil {
			cmd.register(fs)
		}
		resetUsage(errLogger, fs, cmdName, cmd.argsHelp, cmd.longHelp)

		if printCmdHelp {
			fs.Usage()
			return 1
		}
		if err := fs.Parse(args[2:]); err != nil {
			return 1
		}

		l := &Loggers{Out: outLogger, Err: errLogger, Verbose: *verbose}
		if err := cmd.run(l, fs.Args()); err != nil {
			errLogger.Printf("%v\n", err)
			return 1
		}
		return 0
	}

	errLogger.Printf("pkgreaper: %s: no such command\n", cmdName)
	usage()
	return 1
}

func resetUsage(logger *log.Logger, fs *flag.FlagSet, name, argsHelp, longHelp string) {
	var (
		hasFlags   bool
		flagBlock  bytes.Buffer
		flagWriter = tabwriter.NewWriter(&flagBlock, 0, 4, 2, ' ', 0)
	)
	fs.VisitAll(func(f *flag.Flag) {
		hasFlags = true
		defValue := f.DefValue
		if defValue == "" {
			defValue = "<none>"
		}
		fmt.Fprintf(flagWriter, "\t-%s\t%s (default: %s)\n", f.Name, f.Usage, defValue)
	})
	flagWriter.Flush()
	fs.Usage = func() {
		logger.Printf("Usage: pkgreaper %s %s\n", name, argsHelp)
		logger.Println()
		logger.Println(strings.TrimSpace(longHelp))
		logger.Println()
		if hasFlags {
			logger.Println("Flags:")
			logger.Println()
			logger.Println(flagBlock.String())
		}
	}
}

// parseArgs determines the subcommand name and whether the user asked for
// help to be printed.
func parseArgs(args []string) (cmdName string, printCmdUsage bool, exit bool) {
	isHelpArg := func() bool {
		return strings.Contains(strings.ToLower(args[1]), "help") || strings.ToLower(args[1]) == "-h"
	}

	switch len(args) {
	case 0, 1:
		exit = true
	case 2:
		if isHelpArg() {
			exit = true
		}
		cmdName = args[1]
	default:
		if isHelpArg() {
			cmdName = args[2]
			printCmdUsage = true
		} else {
			cmdName = args[1]
		}
	}
	return cmdName, printCmdUsage, exit
}
