// Command democore spawns a shell on a PTY, feeds it a short scripted
// session, and prints the resulting sparse grid snapshot. It exists to
// exercise coreterm end to end the way go-headless-term's own
// examples/basic exercises the embedded emulator alone.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/coreterm/coreterm"
)

func main() {
	shellFlag := flag.String("shell", "", "command to run instead of $SHELL")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	events := make(chan string, 64)
	post := func(s string) {
		// Never block the reader goroutine on a slow consumer.
		select {
		case events <- s:
		default:
		}
	}
	cb := func(ctx any, evt coreterm.EventType, str string, intVal int32) {
		switch evt {
		case coreterm.EventTitle:
			post(fmt.Sprintf("title: %s", str))
		case coreterm.EventBell:
			post("bell")
		case coreterm.EventChildExit:
			post(fmt.Sprintf("child exited: %d", intVal))
		case coreterm.EventDirectoryChange:
			post(fmt.Sprintf("cwd: %s", str))
		case coreterm.EventProgress:
			post(fmt.Sprintf("progress: state=%d progress=%d", intVal>>8, int8(intVal&0xFF)))
		}
	}

	shell := *shellFlag
	if shell == "" {
		shell = os.Getenv("SHELL")
	}
	if shell == "" {
		shell = "/bin/sh"
	}

	opts := coreterm.NewSpawnOptions(shell, 80, 24,
		coreterm.WithArgs(),
		coreterm.WithEnv("TERM=xterm-256color", "PATH="+os.Getenv("PATH")),
		coreterm.WithWorkingDir(mustGetwd()),
		coreterm.WithCellSize(8, 16),
	)

	h, err := coreterm.Create(opts, cb)
	if err != nil {
		logger.Error("failed to start terminal", slog.String("err", err.Error()))
		os.Exit(1)
	}
	defer h.Destroy()

	logger.Info("spawned shell", slog.Int("pid", h.ShellPid()))

	h.WriteString("printf '\\033]0;democore\\007'\r\n")
	h.WriteString("echo hello from coreterm\r\n")
	h.WriteString("exit\r\n")

	timeout := time.After(2 * time.Second)
drain:
	for {
		select {
		case ev := <-events:
			logger.Info("event", slog.String("detail", ev))
		case <-timeout:
			break drain
		}
	}

	snap := h.Snapshot()
	fmt.Printf("=== grid %dx%d, %d live cells ===\n", snap.Cols, snap.Rows, len(snap.Cells))

	lines := make([][]rune, snap.Rows)
	for i := range lines {
		lines[i] = make([]rune, snap.Cols)
		for c := range lines[i] {
			lines[i][c] = ' '
		}
	}
	for _, cell := range snap.Cells {
		if int(cell.Row) < len(lines) && int(cell.Col) < len(lines[cell.Row]) && cell.Codepoint != 0 {
			lines[cell.Row][cell.Col] = cell.Codepoint
		}
	}
	for _, line := range lines {
		fmt.Println(string(line))
	}
}

func mustGetwd() string {
	dir, err := os.Getwd()
	if err != nil {
		return "/"
	}
	return dir
}
