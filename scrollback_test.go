package coreterm

import (
	"testing"

	headlessterm "github.com/danielgatis/go-headless-term"
)

func makeLine(s string) []headlessterm.Cell {
	line := make([]headlessterm.Cell, len(s))
	for i, r := range s {
		line[i] = headlessterm.NewCell()
		line[i].Char = r
	}
	return line
}

func TestMemoryScrollbackPushAndLine(t *testing.T) {
	s := newMemoryScrollback(100)
	s.Push(makeLine("first"))
	s.Push(makeLine("second"))

	if s.Len() != 2 {
		t.Fatalf("expected 2 lines, got %d", s.Len())
	}
	if s.Line(0)[0].Char != 'f' {
		t.Errorf("expected oldest line at index 0")
	}
	if s.Line(1)[0].Char != 's' {
		t.Errorf("expected newest line at index 1")
	}
	if s.Line(2) != nil || s.Line(-1) != nil {
		t.Errorf("expected nil for out-of-range indices")
	}
}

func TestMemoryScrollbackCopiesPushedLines(t *testing.T) {
	s := newMemoryScrollback(100)
	line := makeLine("x")
	s.Push(line)
	line[0].Char = 'y'

	if s.Line(0)[0].Char != 'x' {
		t.Errorf("expected scrollback to own a copy of the pushed line")
	}
}

func TestMemoryScrollbackTrimsOldestBeyondMax(t *testing.T) {
	s := newMemoryScrollback(2)
	s.Push(makeLine("a"))
	s.Push(makeLine("b"))
	s.Push(makeLine("c"))

	if s.Len() != 2 {
		t.Fatalf("expected 2 lines after trim, got %d", s.Len())
	}
	if s.Line(0)[0].Char != 'b' {
		t.Errorf("expected the oldest line to be dropped")
	}
}

func TestMemoryScrollbackSetMaxLinesTrims(t *testing.T) {
	s := newMemoryScrollback(10)
	for _, l := range []string{"a", "b", "c", "d"} {
		s.Push(makeLine(l))
	}
	s.SetMaxLines(2)

	if s.Len() != 2 {
		t.Fatalf("expected 2 lines, got %d", s.Len())
	}
	if s.Line(0)[0].Char != 'c' {
		t.Errorf("expected trimming to keep the newest lines")
	}
}

func TestScrollbackAccumulatesFromLiveOutput(t *testing.T) {
	h := newTestHandle(3, 20)
	h.term.WriteString("one\r\ntwo\r\nthree\r\nfour\r\nfive")

	if got := h.term.ScrollbackLen(); got == 0 {
		t.Fatal("expected lines scrolled off the top to land in scrollback")
	}

	cell := h.cellAt(-1, 0)
	if cell == nil {
		t.Fatal("expected the most recent scrollback line to be addressable at row -1")
	}
}
