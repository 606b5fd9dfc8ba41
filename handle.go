package coreterm

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"syscall"
	"unicode/utf8"

	headlessterm "github.com/danielgatis/go-headless-term"
	"golang.org/x/sys/unix"
)

// Handle is the root entity of the engine: it owns the PTY master, the
// child process, the reader goroutine, and the embedded emulator, and
// exposes every public operation of the core.
type Handle struct {
	term *headlessterm.Terminal
	mu   *fairMutex // guards term; shared with the reader goroutine

	master *os.File
	pid    int

	shutdown   atomic.Bool
	readerDone chan struct{}
	listener   *listener

	paletteMu sync.Mutex
	palette   Palette

	searchMu sync.Mutex
	search   searchState

	viewMu        sync.Mutex
	displayOffset int

	selMu     sync.Mutex
	selection selectionState

	cache rowCache
}

// Create spawns a child process on a new PTY and starts the emulator and
// reader goroutine. On any setup failure it returns a nil Handle.
func Create(opts SpawnOptions, cb EventCallback) (*Handle, error) {
	proc, err := spawnPTY(opts)
	if err != nil {
		return nil, err
	}

	term := headlessterm.New(
		headlessterm.WithSize(opts.Rows, opts.Cols),
		headlessterm.WithResponse(proc.master),
		headlessterm.WithScrollback(newMemoryScrollback(defaultMaxScrollback)),
	)

	h := &Handle{
		term:       term,
		mu:         newFairMutex(),
		master:     proc.master,
		pid:        proc.pid,
		readerDone: make(chan struct{}),
		listener:   newListener(cb),
		palette:    DefaultPalette(),
	}
	term.SetBellProvider(bellAdapter{h})
	term.SetTitleProvider(titleAdapter{h})

	// Fd() puts h.master into blocking mode for the remainder of its life,
	// which is fine: writes and ioctls on the master are expected to block
	// occasionally, and the reader goroutine below gets its own dup'd fd and
	// never touches h.master directly.
	readerFD, err := unix.Dup(int(h.master.Fd()))
	if err != nil {
		h.master.Close()
		killChild(proc.pid)
		go func() { _, _ = proc.cmd.Process.Wait() }() // reap
		return nil, fmt.Errorf("%w: %v", ErrThreadSpawn, err)
	}

	go runReader(h, readerFD)

	go waitChild(h, proc)

	return h, nil
}

// waitChild blocks until the child process exits and reports a ChildExit
// event. Waiting here rather than inferring death from the reader's EOF
// also reaps the process so it does not linger as a zombie.
func waitChild(h *Handle, proc *spawnedProcess) {
	state, err := proc.cmd.Process.Wait()
	if err != nil || state == nil {
		h.listener.childExit(-1)
		return
	}
	h.listener.childExit(state.ExitCode())
}

func killChild(pid int) {
	_ = syscall.Kill(pid, syscall.SIGKILL)
}

// Destroy tears the handle down: it sets the shutdown flag, sends SIGHUP to
// the child so the reader's blocking read unblocks, waits for the reader to
// exit, then closes the owned master fd. The ordering is load-bearing:
// without the SIGHUP the reader blocks forever in read() and this method
// would never return.
func (h *Handle) Destroy() {
	h.shutdown.Store(true)
	_ = syscall.Kill(h.pid, syscall.SIGHUP)
	<-h.readerDone
	h.master.Close()
}

// Write sends raw bytes to the child's PTY. Transient write errors (the TTY
// may already be gone) are swallowed; the host will learn about child death
// via a ChildExit event instead.
func (h *Handle) Write(data []byte) {
	_, _ = h.master.Write(data)
}

// WriteString writes a UTF-8 string to the PTY. Invalid UTF-8 is a no-op.
func (h *Handle) WriteString(s string) {
	if !utf8.ValidString(s) {
		return
	}
	h.Write([]byte(s))
}

// ShellPid returns the child process's pid.
func (h *Handle) ShellPid() int {
	return h.pid
}

// SetEventContext atomically replaces the opaque value passed to the event
// callback on future deliveries.
func (h *Handle) SetEventContext(ctx any) {
	h.listener.setContext(ctx)
}

// Resize resizes the emulator grid and notifies the child of the new
// terminal size (TIOCSWINSZ).
func (h *Handle) Resize(cols, rows, cellWidth, cellHeight int) {
	h.ResizeGrid(cols, rows)
	h.NotifyPTYSize(cols, rows, cellWidth, cellHeight)
}

// ResizeGrid resizes the emulator grid, reflowing content where the
// embedded Grid dependency supports it. The dependency's only resize
// primitive is pad/truncate (no rewrap), so this currently behaves
// identically to ResizeGridNoReflow; the two remain distinct entry points
// so a Grid dependency with real reflow support only changes this body.
func (h *Handle) ResizeGrid(cols, rows int) {
	h.mu.Lock()
	h.term.Resize(rows, cols)
	h.mu.Unlock()
	h.resetViewport()
}

// ResizeGridNoReflow resizes the emulator grid without reflowing content.
func (h *Handle) ResizeGridNoReflow(cols, rows int) {
	h.mu.Lock()
	h.term.Resize(rows, cols)
	h.mu.Unlock()
	h.resetViewport()
}

// NotifyPTYSize sends TIOCSWINSZ to the master without touching the
// emulator grid.
func (h *Handle) NotifyPTYSize(cols, rows, cellWidth, cellHeight int) {
	_ = setWinsize(h.master, cols, rows, cellWidth, cellHeight)
}

// SetColors replaces the color palette used at snapshot time. It never
// mutates emulator state, so a SetColors(P); SetColors(P) pair is a no-op
// with respect to anything the emulator can observe.
func (h *Handle) SetColors(p Palette) {
	h.paletteMu.Lock()
	h.palette = p
	h.paletteMu.Unlock()
}

func (h *Handle) currentPalette() Palette {
	h.paletteMu.Lock()
	defer h.paletteMu.Unlock()
	return h.palette
}

// bellAdapter forwards the embedded Terminal's bell notifications to the
// handle's event listener. Grounded on providers.go's BellProvider
// interface and NoopBellProvider idiom.
type bellAdapter struct{ h *Handle }

func (b bellAdapter) Ring() { b.h.listener.bell() }

// titleAdapter forwards title changes the same way.
type titleAdapter struct{ h *Handle }

func (t titleAdapter) SetTitle(title string) { t.h.listener.title(title) }
func (t titleAdapter) PushTitle() {}
func (t titleAdapter) PopTitle()  {}
