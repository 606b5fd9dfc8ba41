package coreterm

import (
	"log/slog"

	"golang.org/x/sys/unix"
)

// batchLimit is the maximum number of pending bytes the reader will
// accumulate before feeding them to the VT parser, even if more data is
// still immediately available.
const batchLimit = 1024 * 1024

const readChunk = 64 * 1024

// runReader is the reader goroutine's body. It owns fd (a dup of the PTY
// master's file descriptor, obtained once by the caller so teardown can
// close this copy independently of the handle's own master file) and feeds
// every batch it reads to h's emulator under the fair mutex, after running
// it past the OSC sniffers.
//
// It operates on the raw fd via golang.org/x/sys/unix throughout, rather
// than through an *os.File, so the blocking read() and the zero-timeout
// poll() below see one consistent underlying descriptor state.
//
// Each iteration: blocking read, poll-drain while under batchLimit, OSC
// scan, a single lock/feed/unlock of the emulator, wakeup event. EOF or a
// non-EINTR error ends the loop.
func runReader(h *Handle, fd int) {
	defer func() {
		if r := recover(); r != nil {
			slog.Error("coreterm: reader goroutine panicked", slog.Any("panic", r))
		}
		unix.Close(fd)
		close(h.readerDone)
	}()

	osc7 := newOSC7Scanner()
	osc94 := newOSC94Scanner()
	pending := make([]byte, 0, readChunk)

	for {
		if h.shutdown.Load() {
			return
		}

		n, err := readInto(fd, &pending)
		if err != nil {
			if err == unix.EINTR {
				continue
			}
			slog.Debug("coreterm: pty read ended", slog.String("err", err.Error()))
			return
		}
		if n == 0 {
			return // EOF
		}

		for len(pending) < batchLimit && pollReadable(fd) {
			if _, err := readInto(fd, &pending); err != nil {
				break
			}
		}

		osc7.scanBatch(pending, func(url string) {
			h.listener.directoryChange(url)
		})
		osc94.scanBatch(pending, func(ev progressEvent) {
			h.listener.progress(ev.State, ev.Progress)
		})

		h.mu.Lock()
		if _, err := h.term.Write(pending); err != nil {
			slog.Debug("coreterm: vt parser write failed", slog.String("err", err.Error()))
		}
		h.mu.Unlock()

		h.listener.wakeup()
		pending = pending[:0]
	}
}

// readInto performs one blocking read(2), appending directly into buf's
// spare capacity and growing it if necessary, then trimming buf to the
// bytes actually read. On error the buffer's prior contents
// (already-accumulated bytes from earlier reads in this batch) are
// preserved.
func readInto(fd int, buf *[]byte) (int, error) {
	b := *buf
	if cap(b)-len(b) < readChunk {
		grown := make([]byte, len(b), len(b)+readChunk)
		copy(grown, b)
		b = grown
	}
	start := len(b)
	n, err := unix.Read(fd, b[start:start+readChunk])
	if n > 0 {
		*buf = b[:start+n]
	} else {
		*buf = b[:start]
	}
	if err != nil {
		return n, err
	}
	return n, nil
}

// pollReadable reports whether fd has data available right now, using a
// zero-timeout poll(2), so the drain loop never blocks between reads.
func pollReadable(fd int) bool {
	fds := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
	n, err := unix.Poll(fds, 0)
	if err != nil || n <= 0 {
		return false
	}
	return fds[0].Revents&unix.POLLIN != 0
}
