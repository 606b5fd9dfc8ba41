package coreterm

import headlessterm "github.com/danielgatis/go-headless-term"

// Absolute-row addressing over the embedded emulator's split live/scrollback
// storage. The dependency only exposes an indexed scrollback ring
// (ScrollbackLen/ScrollbackLine) with no notion of a unified address space or
// a display offset of its own, so the handle synthesizes both here:
//
//   - absolute row < 0  -> scrollback row at index (scrollbackLen + row)
//   - absolute row >= 0 -> live buffer row
//   - viewport row v (0..rows-1) maps to absolute row (v - displayOffset)
//
// displayOffset is clamped to [0, scrollbackLen]; 0 means the viewport shows
// the live screen (no scrollback visible).

// resetViewport snaps the viewport back to the live screen. Called after any
// resize: scroll position is discarded rather than trying to preserve a
// scrollback anchor across a reflow.
func (h *Handle) resetViewport() {
	h.viewMu.Lock()
	h.displayOffset = 0
	h.viewMu.Unlock()
}

// Scroll adjusts the display offset by delta (positive scrolls back into
// history, negative scrolls toward the live screen) and clamps it to the
// available scrollback depth. It returns the resulting offset.
func (h *Handle) Scroll(delta int) int {
	h.mu.Lock()
	maxOffset := h.term.ScrollbackLen()
	h.mu.Unlock()

	h.viewMu.Lock()
	defer h.viewMu.Unlock()
	h.displayOffset += delta
	if h.displayOffset < 0 {
		h.displayOffset = 0
	}
	if h.displayOffset > maxOffset {
		h.displayOffset = maxOffset
	}
	return h.displayOffset
}

// ScrollToTop scrolls all the way back.
func (h *Handle) ScrollToTop() int {
	h.mu.Lock()
	maxOffset := h.term.ScrollbackLen()
	h.mu.Unlock()

	h.viewMu.Lock()
	defer h.viewMu.Unlock()
	h.displayOffset = maxOffset
	return h.displayOffset
}

// ScrollToBottom returns to the live screen.
func (h *Handle) ScrollToBottom() int {
	h.viewMu.Lock()
	defer h.viewMu.Unlock()
	h.displayOffset = 0
	return h.displayOffset
}

func (h *Handle) currentOffset() int {
	h.viewMu.Lock()
	defer h.viewMu.Unlock()
	return h.displayOffset
}

// viewportToAbsolute converts a viewport row (0..rows-1, top of the visible
// screen first) to an absolute row under the addressing rules above.
func viewportToAbsolute(viewportRow, displayOffset int) int {
	return viewportRow - displayOffset
}

// absoluteToViewport is the inverse of viewportToAbsolute.
func absoluteToViewport(absoluteRow, displayOffset int) int {
	return absoluteRow + displayOffset
}

// cellAt resolves the cell at an absolute row/col, reading from scrollback
// or the live buffer as appropriate. Callers must hold h.mu. Returns nil if
// the row or column is out of range.
func (h *Handle) cellAt(absoluteRow, col int) *headlessterm.Cell {
	if absoluteRow < 0 {
		idx := h.term.ScrollbackLen() + absoluteRow
		if idx < 0 {
			return nil
		}
		line := h.term.ScrollbackLine(idx)
		if col < 0 || col >= len(line) {
			return nil
		}
		return &line[col]
	}
	if absoluteRow >= h.term.Rows() || col < 0 || col >= h.term.Cols() {
		return nil
	}
	return h.term.Cell(absoluteRow, col)
}
