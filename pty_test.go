package coreterm

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"
)

func TestSpawnPTYRunsCommand(t *testing.T) {
	opts := NewSpawnOptions("/bin/echo", 24, 80, WithArgs("hello-coreterm"))

	proc, err := spawnPTY(opts)
	if err != nil {
		t.Fatalf("spawnPTY failed: %v", err)
	}
	defer proc.master.Close()

	if proc.pid <= 0 {
		t.Fatalf("expected a positive pid, got %d", proc.pid)
	}

	proc.master.SetReadDeadline(time.Now().Add(2 * time.Second))

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, proc.master)

	if !bytes.Contains(buf.Bytes(), []byte("hello-coreterm")) {
		t.Errorf("expected output to contain 'hello-coreterm', got %q", buf.String())
	}
}

func TestSpawnPTYMissingExecutable(t *testing.T) {
	opts := NewSpawnOptions("/nonexistent/binary/coreterm-test", 24, 80)

	_, err := spawnPTY(opts)
	if err == nil {
		t.Fatal("expected an error for a missing executable")
	}
	if !errors.Is(err, ErrFork) {
		t.Errorf("expected ErrFork, got %v", err)
	}
}

func TestNewSpawnOptionsDefaults(t *testing.T) {
	opts := NewSpawnOptions("/bin/sh", 24, 80)
	if opts.CellWidth != 1 || opts.CellHeight != 1 {
		t.Errorf("expected default cell size 1x1, got %dx%d", opts.CellWidth, opts.CellHeight)
	}
}

func TestWithEnvDoesNotInheritProcessEnvironment(t *testing.T) {
	opts := NewSpawnOptions("/bin/sh", 24, 80, WithEnv("ONLY=set"))
	if len(opts.Env) != 1 || opts.Env[0] != "ONLY=set" {
		t.Errorf("expected exactly the supplied env, got %v", opts.Env)
	}
}
