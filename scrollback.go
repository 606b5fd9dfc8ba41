package coreterm

import headlessterm "github.com/danielgatis/go-headless-term"

// defaultMaxScrollback bounds how many lines of history a handle retains.
const defaultMaxScrollback = 10000

// memoryScrollback is an in-memory ScrollbackProvider for the embedded
// emulator. The emulator's built-in provider discards every line pushed to
// it, which would leave Scroll, history search, and history selection with
// nothing to read, so each handle installs one of these at construction.
type memoryScrollback struct {
	lines    [][]headlessterm.Cell
	maxLines int
}

func newMemoryScrollback(maxLines int) *memoryScrollback {
	return &memoryScrollback{maxLines: maxLines}
}

func (s *memoryScrollback) Push(line []headlessterm.Cell) {
	copied := make([]headlessterm.Cell, len(line))
	copy(copied, line)
	s.lines = append(s.lines, copied)
	s.trim()
}

func (s *memoryScrollback) Len() int {
	return len(s.lines)
}

func (s *memoryScrollback) Line(index int) []headlessterm.Cell {
	if index < 0 || index >= len(s.lines) {
		return nil
	}
	return s.lines[index]
}

func (s *memoryScrollback) Clear() {
	s.lines = nil
}

func (s *memoryScrollback) SetMaxLines(max int) {
	s.maxLines = max
	s.trim()
}

func (s *memoryScrollback) MaxLines() int {
	return s.maxLines
}

func (s *memoryScrollback) trim() {
	if s.maxLines <= 0 {
		return
	}
	if excess := len(s.lines) - s.maxLines; excess > 0 {
		s.lines = append(s.lines[:0], s.lines[excess:]...)
	}
}

var _ headlessterm.ScrollbackProvider = (*memoryScrollback)(nil)
