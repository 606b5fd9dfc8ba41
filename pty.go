package coreterm

import (
	"fmt"
	"os"
	"os/exec"
	"syscall"

	"github.com/creack/pty"
)

// SpawnOptions describes the child process to attach to a new PTY. Env is
// the child's entire environment; it is never merged with the spawning
// process's own environment.
type SpawnOptions struct {
	Executable string
	Args       []string
	Env        []string // "KEY=VALUE" pairs, exactly as supplied
	WorkingDir string
	Cols, Rows int
	CellWidth  int
	CellHeight int
}

// spawnOption mutates SpawnOptions; see WithEnv, WithWorkingDir, WithArgs.
type spawnOption func(*SpawnOptions)

func WithArgs(args ...string) spawnOption { return func(o *SpawnOptions) { o.Args = args } }

func WithEnv(env ...string) spawnOption { return func(o *SpawnOptions) { o.Env = env } }

func WithWorkingDir(dir string) spawnOption { return func(o *SpawnOptions) { o.WorkingDir = dir } }
func WithCellSize(w, h int) spawnOption {
	return func(o *SpawnOptions) { o.CellWidth, o.CellHeight = w, h }
}

// NewSpawnOptions builds SpawnOptions for executable at the given size,
// applying any functional options over the defaults.
func NewSpawnOptions(executable string, cols, rows int, opts ...spawnOption) SpawnOptions {
	o := SpawnOptions{
		Executable: executable,
		Cols:       cols,
		Rows:       rows,
		CellWidth:  1,
		CellHeight: 1,
	}
	for _, apply := range opts {
		apply(&o)
	}
	return o
}

// spawnedProcess is the result of starting the child on a PTY.
type spawnedProcess struct {
	master *os.File
	cmd    *exec.Cmd
	pid    int
}

// spawnPTY opens a PTY pair and execs opts.Executable attached to its user
// side. The child runs in a new session with the PTY as its controlling TTY
// and fds 0/1/2 bound to it; its environment is built from exactly opts.Env
// (no inheritance from this process), and its working directory is
// opts.WorkingDir. The two failure classes stay distinct: a PTY allocation
// failure returns ErrPtySetup, a child start failure returns ErrFork.
func spawnPTY(opts SpawnOptions) (*spawnedProcess, error) {
	master, tty, err := pty.Open()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPtySetup, err)
	}
	defer tty.Close()

	// TIOCSWINSZ on the user side before the child starts, so the program
	// sees the right size from its very first ioctl.
	_ = pty.Setsize(tty, &pty.Winsize{
		Rows: uint16(opts.Rows),
		Cols: uint16(opts.Cols),
		X:    uint16(opts.Cols * opts.CellWidth),
		Y:    uint16(opts.Rows * opts.CellHeight),
	})

	cmd := exec.Command(opts.Executable, opts.Args...)
	cmd.Dir = opts.WorkingDir
	cmd.Env = append([]string{}, opts.Env...)
	cmd.Stdin = tty
	cmd.Stdout = tty
	cmd.Stderr = tty
	// Setctty with the default Ctty of 0 acquires stdin (the PTY user side)
	// as the controlling TTY inside the new session.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true, Setctty: true}

	if err := cmd.Start(); err != nil {
		master.Close()
		return nil, fmt.Errorf("%w: %v", ErrFork, err)
	}

	return &spawnedProcess{master: master, cmd: cmd, pid: cmd.Process.Pid}, nil
}

// setWinsize sends TIOCSWINSZ to the PTY master, notifying the child of a
// new terminal size without touching the emulator's own grid.
func setWinsize(master *os.File, cols, rows, cellWidth, cellHeight int) error {
	return pty.Setsize(master, &pty.Winsize{
		Rows: uint16(rows),
		Cols: uint16(cols),
		X:    uint16(cols * cellWidth),
		Y:    uint16(rows * cellHeight),
	})
}
