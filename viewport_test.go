package coreterm

import "testing"

func TestViewportToAbsoluteNoScroll(t *testing.T) {
	if got := viewportToAbsolute(3, 0); got != 3 {
		t.Errorf("expected 3, got %d", got)
	}
}

func TestViewportToAbsoluteScrolledBack(t *testing.T) {
	if got := viewportToAbsolute(0, 5); got != -5 {
		t.Errorf("expected -5, got %d", got)
	}
}

func TestAbsoluteViewportRoundTrip(t *testing.T) {
	for _, offset := range []int{0, 1, 10} {
		for _, row := range []int{-5, 0, 3} {
			v := absoluteToViewport(row, offset)
			back := viewportToAbsolute(v, offset)
			if back != row {
				t.Errorf("round trip failed for row=%d offset=%d: got %d", row, offset, back)
			}
		}
	}
}

func TestScrollClampsToScrollbackDepth(t *testing.T) {
	h := newTestHandle(5, 20)
	// No scrollback has accumulated yet, so any positive delta clamps to 0.
	got := h.Scroll(10)
	if got != 0 {
		t.Errorf("expected scroll to clamp to 0 with no scrollback, got %d", got)
	}
}

func TestScrollNeverGoesNegative(t *testing.T) {
	h := newTestHandle(5, 20)
	got := h.Scroll(-100)
	if got != 0 {
		t.Errorf("expected scroll to clamp at 0, got %d", got)
	}
}

func TestResetViewportReturnsToLive(t *testing.T) {
	h := newTestHandle(5, 20)
	h.displayOffset = 7
	h.resetViewport()
	if h.currentOffset() != 0 {
		t.Errorf("expected offset 0 after reset, got %d", h.currentOffset())
	}
}

func TestCellAtLiveRow(t *testing.T) {
	h := newTestHandle(5, 20)
	h.term.WriteString("X")

	cell := h.cellAt(0, 0)
	if cell == nil {
		t.Fatal("expected a cell at (0,0)")
	}
	if cell.Char != 'X' {
		t.Errorf("expected 'X', got %q", cell.Char)
	}
}

func TestCellAtOutOfRange(t *testing.T) {
	h := newTestHandle(5, 20)
	if h.cellAt(100, 0) != nil {
		t.Error("expected nil for an out-of-range row")
	}
	if h.cellAt(0, 100) != nil {
		t.Error("expected nil for an out-of-range column")
	}
}
