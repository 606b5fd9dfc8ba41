package coreterm

import "testing"

func TestSnapshotDimensions(t *testing.T) {
	h := newTestHandle(10, 30)
	snap := h.Snapshot()

	if snap.Rows != 10 || snap.Cols != 30 {
		t.Errorf("expected 10x30, got %dx%d", snap.Rows, snap.Cols)
	}
}

func TestSnapshotEmitsWrittenCells(t *testing.T) {
	h := newTestHandle(5, 20)
	h.term.WriteString("Hi")

	snap := h.Snapshot()

	var found [2]bool
	for _, c := range snap.Cells {
		if c.Row == 0 && c.Col == 0 && c.Codepoint == 'H' {
			found[0] = true
		}
		if c.Row == 0 && c.Col == 1 && c.Codepoint == 'i' {
			found[1] = true
		}
	}
	if !found[0] || !found[1] {
		t.Errorf("expected cells for 'H' and 'i', got %d cells", len(snap.Cells))
	}
}

func TestSnapshotSkipsBlankDefaultCells(t *testing.T) {
	h := newTestHandle(3, 5)
	snap := h.Snapshot()

	if len(snap.Cells) != 0 {
		t.Errorf("expected no cells on a blank grid, got %d", len(snap.Cells))
	}
}

func TestSnapshotCursorPosition(t *testing.T) {
	h := newTestHandle(5, 20)
	h.term.WriteString("abc")

	snap := h.Snapshot()
	if snap.Cursor.Col != 3 || snap.Cursor.Row != 0 {
		t.Errorf("expected cursor at (0,3), got (%d,%d)", snap.Cursor.Row, snap.Cursor.Col)
	}
	if !snap.Cursor.Visible {
		t.Error("expected cursor to be visible by default")
	}
}

func TestSnapshotIncrementalReuseAfterNoChanges(t *testing.T) {
	h := newTestHandle(5, 20)
	h.term.WriteString("steady")

	first := h.Snapshot()
	second := h.Snapshot()

	if len(first.Cells) != len(second.Cells) {
		t.Errorf("expected identical cell counts across unchanged snapshots, got %d vs %d", len(first.Cells), len(second.Cells))
	}
}

func TestSnapshotSelectionFlag(t *testing.T) {
	h := newTestHandle(5, 20)
	h.term.WriteString("hello")
	h.SelectionStart(SelectionPoint{Row: 0, Col: 0}, KindSimple)
	h.SelectionUpdate(SelectionPoint{Row: 0, Col: 4})

	snap := h.Snapshot()
	var sawSelected bool
	for _, c := range snap.Cells {
		if c.Row == 0 && c.Col == 0 {
			if c.Flags&FlagSelected != 0 {
				sawSelected = true
			}
		}
	}
	if !sawSelected {
		t.Error("expected the selected cell to carry FlagSelected")
	}
}

func TestSnapshotShrinkThenGrowResetsCache(t *testing.T) {
	h := newTestHandle(24, 80)
	h.term.WriteString("before")
	h.Snapshot()

	h.ResizeGridNoReflow(40, 24)
	h.Snapshot()
	h.ResizeGridNoReflow(80, 24)

	snap := h.Snapshot()
	if snap.Rows != 24 || snap.Cols != 80 {
		t.Errorf("expected 24x80 after growing back, got %dx%d", snap.Rows, snap.Cols)
	}
	if len(h.cache.rows) != 24 {
		t.Errorf("expected the row cache to track the current height, got %d rows", len(h.cache.rows))
	}
}

func TestSnapshotRebuildsAfterResize(t *testing.T) {
	h := newTestHandle(5, 20)
	h.term.WriteString("hello")
	h.Snapshot()

	h.ResizeGrid(40, 10)
	snap := h.Snapshot()

	if snap.Rows != 10 || snap.Cols != 40 {
		t.Errorf("expected 10x40 after resize, got %dx%d", snap.Rows, snap.Cols)
	}
}
