package coreterm

import (
	"testing"
	"time"

	"golang.org/x/sys/unix"
)

func newPipeHandle(t *testing.T) (*Handle, int, int) {
	t.Helper()
	var fds [2]int
	if err := unix.Pipe(fds[:]); err != nil {
		t.Fatalf("pipe: %v", err)
	}

	h := newTestHandle(5, 20)
	h.readerDone = make(chan struct{})
	h.listener = newListener(nil)
	return h, fds[0], fds[1]
}

func TestRunReaderFeedsVTParserAndSignalsWakeup(t *testing.T) {
	h, readFD, writeFD := newPipeHandle(t)

	var gotWakeup bool
	h.listener = newListener(func(ctx any, evt EventType, str string, intVal int32) {
		if evt == EventWakeup {
			gotWakeup = true
		}
	})

	go runReader(h, readFD)

	unix.Write(writeFD, []byte("hi"))
	unix.Close(writeFD) // EOF ends the reader loop

	select {
	case <-h.readerDone:
	case <-time.After(2 * time.Second):
		t.Fatal("reader did not exit after EOF")
	}

	if !gotWakeup {
		t.Error("expected a wakeup event after data was read")
	}

	h.mu.Lock()
	content := h.term.LineContent(0)
	h.mu.Unlock()
	if content != "hi" {
		t.Errorf("expected 'hi' written to the emulator, got %q", content)
	}
}

func TestRunReaderReportsDirectoryChange(t *testing.T) {
	h, readFD, writeFD := newPipeHandle(t)

	urlCh := make(chan string, 1)
	h.listener = newListener(func(ctx any, evt EventType, str string, intVal int32) {
		if evt == EventDirectoryChange {
			urlCh <- str
		}
	})

	go runReader(h, readFD)

	unix.Write(writeFD, []byte("\x1b]7;file:///home/user\x07"))
	unix.Close(writeFD)

	select {
	case url := <-urlCh:
		if url != "file:///home/user" {
			t.Errorf("expected file:///home/user, got %q", url)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected a directory change event")
	}

	<-h.readerDone
}

func TestRunReaderMixedTextAndOSC(t *testing.T) {
	h, readFD, writeFD := newPipeHandle(t)

	urlCh := make(chan string, 1)
	h.listener = newListener(func(ctx any, evt EventType, str string, intVal int32) {
		if evt == EventDirectoryChange {
			urlCh <- str
		}
	})

	go runReader(h, readFD)

	unix.Write(writeFD, []byte("hello\x1b]7;file:///tmp\x07world"))
	unix.Close(writeFD)

	select {
	case url := <-urlCh:
		if url != "file:///tmp" {
			t.Errorf("expected file:///tmp, got %q", url)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("expected a directory change event")
	}
	<-h.readerDone

	snap := h.Snapshot()
	got := string(cellRunes(snap, 0))
	if got != "helloworld" {
		t.Errorf("expected the surrounding text to reach the grid, got %q", got)
	}
}

func cellRunes(snap *GridSnapshot, row uint16) []rune {
	var out []rune
	for _, c := range snap.Cells {
		if c.Row == row {
			out = append(out, c.Codepoint)
		}
	}
	return out
}

func TestRunReaderStopsOnShutdownFlag(t *testing.T) {
	h, readFD, writeFD := newPipeHandle(t)
	defer unix.Close(writeFD)

	h.shutdown.Store(true)
	runReader(h, readFD)

	select {
	case <-h.readerDone:
	default:
		t.Error("expected readerDone to be closed when shutdown was already set")
	}
}
