package main

import (
	"context"
	"os/exec"
	"strings"
	"testing"
	"time"
)

func TestWatchedCmdReturnsOutputOnSuccess(t *testing.T) {
	cmd := exec.Command("echo", "3 packages removed")
	w := newWatchedCmd(cmd, time.Minute)
	out, err := w.run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if !strings.Contains(string(out), "3 packages removed") {
		t.Errorf("output = %q, want the command's stdout", out)
	}
}

func TestWatchedCmdPropagatesExitError(t *testing.T) {
	cmd := exec.Command("false")
	w := newWatchedCmd(cmd, time.Minute)
	if _, err := w.run(context.Background()); err == nil {
		t.Error("a failing command should surface its exit error")
	}
}

func TestWatchedCmdKilledWhenIdle(t *testing.T) {
	cmd := exec.Command("sleep", "30")
	w := newWatchedCmd(cmd, 100*time.Millisecond)
	start := time.Now()
	_, err := w.run(context.Background())
	if _, ok := err.(*idleTimeoutError); !ok {
		t.Fatalf("run returned %v, want an idleTimeoutError", err)
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Errorf("idle kill took %s, the process was not killed promptly", elapsed)
	}
}

func TestWatchedCmdKilledOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cmd := exec.Command("sleep", "30")
	w := newWatchedCmd(cmd, time.Minute)
	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()
	start := time.Now()
	_, err := w.run(ctx)
	if err != context.Canceled {
		t.Fatalf("run returned %v, want context.Canceled", err)
	}
	if elapsed := time.Since(start); elapsed > 10*time.Second {
		t.Errorf("cancel kill took %s, the process was not killed promptly", elapsed)
	}
}

func TestWatchedCmdKeepsOutputProducedBeforeKill(t *testing.T) {
	cmd := exec.Command("sh", "-c", "echo partial; exec sleep 30")
	w := newWatchedCmd(cmd, 200*time.Millisecond)
	out, err := w.run(context.Background())
	if err == nil {
		t.Fatal("expected the stalled command to be killed")
	}
	if !strings.Contains(string(out), "partial") {
		t.Errorf("output = %q, want what the command printed before the kill", out)
	}
}
