package coreterm

import "strings"

// Side identifies which half of a cell a selection endpoint landed on, used
// by the host to decide whether a click anchors before or after the
// character under the pointer.
type Side int

const (
	SideLeft Side = iota
	SideRight
)

// Kind selects the shape a drag gesture produces. The embedded emulator only
// implements a flat rectangular range (its own Selection type), so Block and
// Semantic degrade to Simple here; Kind is still stored on the selection so
// a richer Grid dependency has somewhere to plug in.
type Kind int

const (
	KindSimple Kind = iota
	KindBlock
	KindSemantic
	KindLines
)

// SelectionPoint is an endpoint of a selection, together with which side of
// the cell it anchors. At the public boundary Row is viewport-relative
// (0 = top visible line, negative rows address history); the handle converts
// it to an absolute row (see viewport.go) on entry, so a stored selection
// keeps its absolute row when the viewport is later scrolled.
type SelectionPoint struct {
	Row  int
	Col  int
	Side Side
}

type selectionState struct {
	active     bool
	kind       Kind
	start, end SelectionPoint
}

// SelectionStart begins a new selection anchored at pt (viewport-relative).
func (h *Handle) SelectionStart(pt SelectionPoint, kind Kind) {
	pt.Row = viewportToAbsolute(pt.Row, h.currentOffset())
	h.selMu.Lock()
	defer h.selMu.Unlock()
	h.selection = selectionState{active: true, kind: kind, start: pt, end: pt}
}

// SelectionUpdate extends the in-progress selection to pt
// (viewport-relative). No-op if no selection is active.
func (h *Handle) SelectionUpdate(pt SelectionPoint) {
	pt.Row = viewportToAbsolute(pt.Row, h.currentOffset())
	h.selMu.Lock()
	defer h.selMu.Unlock()
	if !h.selection.active {
		return
	}
	h.selection.end = pt
}

// SelectionClear drops the current selection.
func (h *Handle) SelectionClear() {
	h.selMu.Lock()
	defer h.selMu.Unlock()
	h.selection = selectionState{}
}

// HasSelection reports whether a selection is active.
func (h *Handle) HasSelection() bool {
	h.selMu.Lock()
	defer h.selMu.Unlock()
	return h.selection.active
}

// normalized returns the selection's endpoints in reading order
// (top-to-bottom, left-to-right), matching the embedded Terminal's own
// SetSelection normalization.
func (s selectionState) normalized() (SelectionPoint, SelectionPoint) {
	start, end := s.start, s.end
	if end.Row < start.Row || (end.Row == start.Row && end.Col < start.Col) {
		start, end = end, start
	}
	return start, end
}

// IsSelected reports whether the cell at the viewport-relative (row, col)
// falls within the active selection. Block and Semantic use the same
// reading-order range as Simple (see Kind); Lines covers every column of
// each row from the start row through the end row.
func (h *Handle) IsSelected(row, col int) bool {
	row = viewportToAbsolute(row, h.currentOffset())
	h.selMu.Lock()
	sel := h.selection
	h.selMu.Unlock()
	if !sel.active {
		return false
	}
	start, end := sel.normalized()

	if sel.kind == KindLines {
		return row >= start.Row && row <= end.Row
	}

	if row < start.Row || row > end.Row {
		return false
	}
	if row == start.Row && col < start.Col {
		return false
	}
	if row == end.Row && col > end.Col {
		return false
	}
	return true
}

// SelectedText renders the active selection's text, reading characters from
// both scrollback and the live buffer via cellAt. Trailing blanks on each
// selected row are trimmed, matching the embedded Terminal's own
// GetSelectedText behavior.
func (h *Handle) SelectedText() string {
	h.selMu.Lock()
	sel := h.selection
	h.selMu.Unlock()
	if !sel.active {
		return ""
	}
	start, end := sel.normalized()

	h.mu.Lock()
	defer h.mu.Unlock()

	var b strings.Builder
	cols := h.term.Cols()

	for row := start.Row; row <= end.Row; row++ {
		startCol := 0
		endCol := cols - 1
		if sel.kind != KindLines {
			if row == start.Row {
				startCol = start.Col
			}
			if row == end.Row {
				endCol = end.Col
			}
		}

		var line []rune
		for col := startCol; col <= endCol; col++ {
			cell := h.cellAt(row, col)
			if cell == nil {
				break
			}
			if cell.Char == 0 {
				line = append(line, ' ')
			} else {
				line = append(line, cell.Char)
			}
		}
		b.WriteString(strings.TrimRight(string(line), " "))
		if row < end.Row {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
