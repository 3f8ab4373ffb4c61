package main

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"sync"
	"time"
)

// watchedCmd runs the external removal command and kills it if it stops
// making progress. rpm prints a progress hash per package, so a run that
// goes quiet for a whole idle window is stuck on a prompt or a wedged
// scriptlet, and waiting longer would only hold the database lock.
type watchedCmd struct {
	cmd  *exec.Cmd
	idle time.Duration
	out  progressBuffer
}

// newWatchedCmd wires both of cmd's output streams into one progress
// buffer; rpm interleaves per-package progress and diagnostics across
// stdout and stderr, and either counts as a sign of life.
func newWatchedCmd(cmd *exec.Cmd, idle time.Duration) *watchedCmd {
	w := &watchedCmd{cmd: cmd, idle: idle}
	cmd.Stdout = &w.out
	cmd.Stderr = &w.out
	return w
}

// run starts the command and waits for it to finish, killing it when ctx
// is canceled or nothing has been written for the idle window. Whatever
// output was gathered before the kill is returned alongside the error so
// the caller can show what the command printed before it died.
func (w *watchedCmd) run(ctx context.Context) ([]byte, error) {
	// Starting counts as activity: a command gets the full idle window
	// to produce its first byte.
	w.out.touch()
	if err := w.cmd.Start(); err != nil {
		return nil, err
	}
	done := make(chan error, 1)
	go func() { done <- w.cmd.Wait() }()

	check := time.NewTicker(w.idle / 2)
	defer check.Stop()

	for {
		select {
		case <-check.C:
			if !w.out.quietFor(w.idle) {
				continue
			}
			if err := w.cmd.Process.Kill(); err != nil {
				return w.out.bytes(), fmt.Errorf("killing stalled command: %s", err)
			}
			<-done
			return w.out.bytes(), &idleTimeoutError{name: w.cmd.Path, idle: w.idle}
		case <-ctx.Done():
			if err := w.cmd.Process.Kill(); err != nil {
				return w.out.bytes(), fmt.Errorf("killing canceled command: %s", err)
			}
			<-done
			return w.out.bytes(), ctx.Err()
		case err := <-done:
			return w.out.bytes(), err
		}
	}
}

// progressBuffer collects interleaved command output and remembers when
// the last write happened, so the watchdog can tell a slow removal from
// a stuck one.
type progressBuffer struct {
	mu   sync.Mutex
	buf  bytes.Buffer
	last time.Time
}

func (b *progressBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.last = time.Now()
	return b.buf.Write(p)
}

func (b *progressBuffer) touch() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.last = time.Now()
}

func (b *progressBuffer) quietFor(d time.Duration) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return time.Since(b.last) > d
}

func (b *progressBuffer) bytes() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]byte(nil), b.buf.Bytes()...)
}

type idleTimeoutError struct {
	name string
	idle time.Duration
}

func (e *idleTimeoutError) Error() string {
	return fmt.Sprintf("%s produced no output for %s and was killed", e.name, e.idle)
}
