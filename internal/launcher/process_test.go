package launcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	stdruntime "runtime"
	"syscall"
	"testing"
	"time"
)

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "amman")
	script := "#!/bin/sh\n" + body + "\n"
	if err := os.WriteFile(path, []byte(script), 0o755); err != nil {
		t.Fatalf("write script: %v", err)
	}
	return path
}

func TestStartAndKill(t *testing.T) {
	if stdruntime.GOOS == "windows" {
		t.Skip("process launcher tests skipped on windows")
	}

	exe := writeScript(t, "sleep 30")
	t.Setenv(EnvExecutable, exe)

	handle, err := NewProcess().Start(context.Background(), StartSpec{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	pid := handle.Pid()
	if pid <= 0 {
		t.Fatalf("expected positive pid, got %d", pid)
	}

	if err := handle.Kill(context.Background()); err != nil {
		t.Fatalf("Kill returned error: %v", err)
	}

	// After Kill the process must be reaped: signalling it should fail.
	if err := syscall.Kill(pid, 0); err == nil {
		t.Fatalf("process %d still signalable after kill", pid)
	}
}

func TestStartPassesConfigArgument(t *testing.T) {
	if stdruntime.GOOS == "windows" {
		t.Skip("process launcher tests skipped on windows")
	}

	marker := filepath.Join(t.TempDir(), "seen-args")
	exe := writeScript(t, `echo "$@" > `+marker)
	t.Setenv(EnvExecutable, exe)

	handle, err := NewProcess().Start(context.Background(), StartSpec{ConfigPath: "/tmp/cfg.yaml"})
	if err != nil {
		t.Fatalf("Start returned error: %v", err)
	}
	defer handle.Kill(context.Background())

	waitForFile(t, marker)
	data, err := os.ReadFile(marker)
	if err != nil {
		t.Fatalf("read marker: %v", err)
	}
	if got := string(data); got != "start /tmp/cfg.yaml\n" {
		t.Fatalf("unexpected arguments %q", got)
	}
}

func TestStopExternalRunsStopSubcommand(t *testing.T) {
	if stdruntime.GOOS == "windows" {
		t.Skip("process launcher tests skipped on windows")
	}

	marker := filepath.Join(t.TempDir(), "stopped")
	exe := writeScript(t, `[ "$1" = stop ] && touch `+marker)
	t.Setenv(EnvExecutable, exe)

	if err := NewProcess().StopExternal(context.Background()); err != nil {
		t.Fatalf("StopExternal returned error: %v", err)
	}
	if _, err := os.Stat(marker); err != nil {
		t.Fatalf("stop subcommand did not run: %v", err)
	}
}

func TestStartMissingExecutable(t *testing.T) {
	t.Setenv(EnvExecutable, filepath.Join(t.TempDir(), "does-not-exist"))

	_, err := NewProcess().Start(context.Background(), StartSpec{})
	if err == nil {
		t.Fatalf("expected error for missing executable")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Logf("error does not wrap ErrNotExist: %v", err)
	}
}

func waitForFile(t *testing.T, path string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := os.Stat(path); err == nil {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", path)
		}
		time.Sleep(10 * time.Millisecond)
	}
}
