package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestParseArgs(t *testing.T) {
	cases := []struct {
		args        []string
		wantCmd     string
		wantCmdHelp bool
		wantExit    bool
	}{
		{[]string{"pkgreaper"}, "", false, true},
		{[]string{"pkgreaper", "list"}, "list", false, false},
		{[]string{"pkgreaper", "-h"}, "-h", false, true},
		{[]string{"pkgreaper", "help"}, "help", false, true},
		{[]string{"pkgreaper", "help", "list"}, "list", true, false},
		{[]string{"pkgreaper", "list", "-db", "."}, "list", false, false},
	}
	for _, c := range cases {
		cmd, cmdHelp, exit := parseArgs(c.args)
		if cmd != c.wantCmd || cmdHelp != c.wantCmdHelp || exit != c.wantExit {
			t.Errorf("parseArgs(%v) = (%q, %v, %v), want (%q, %v, %v)",
				c.args, cmd, cmdHelp, exit, c.wantCmd, c.wantCmdHelp, c.wantExit)
		}
	}
}

func TestRunListEndToEnd(t *testing.T) {
	dir := t.TempDir()
	frag := `
name = "app"
version = "1"
release = "1"

[[requires]]
name = "libfoo"
`
	if err := os.WriteFile(filepath.Join(dir, "app.toml"), []byte(frag), 0o644); err != nil {
		t.Fatal(err)
	}
	libfrag := `
name = "libfoo"
version = "1"
release = "1"

[[provides]]
name = "libfoo"
`
	if err := os.WriteFile(filepath.Join(dir, "libfoo.toml"), []byte(libfrag), 0o644); err != nil {
		t.Fatal(err)
	}

	var stdout, stderr bytes.Buffer
	code := run([]string{"pkgreaper", "list", "-db", dir}, &stdout, &stderr)
	if code != 0 {
		t.Fatalf("run(list) exited %d, stderr: %s", code, stderr.String())
	}
	if stdout.Len() == 0 {
		t.Error("run(list) should have printed a status line per package")
	}
}

func TestRunUnknownCommand(t *testing.T) {
	var stdout, stderr bytes.Buffer
	code := run([]string{"pkgreaper", "bogus"}, &stdout, &stderr)
	if code != 1 {
		t.Errorf("run with an unknown command should exit 1, got %d", code)
	}
}
