package coreterm

import (
	"image/color"

	ansicode "github.com/danielgatis/go-ansicode"
	headlessterm "github.com/danielgatis/go-headless-term"
)

// CellRecord is one non-trivial grid cell, addressed by viewport position.
type CellRecord struct {
	Row, Col      uint16
	Codepoint     rune
	FgR, FgG, FgB uint8
	BgR, BgG, BgB uint8
	Flags         uint16
}

// Cell flag bits carried in CellRecord.Flags. The bit assignments are part
// of the external contract and must not be renumbered.
const (
	FlagBold        uint16 = 0x01
	FlagItalic      uint16 = 0x02
	FlagUnderline   uint16 = 0x04
	FlagStrike      uint16 = 0x08
	FlagDim         uint16 = 0x10
	FlagInverse     uint16 = 0x20
	FlagWideChar    uint16 = 0x40
	FlagWideSpacer  uint16 = 0x80
	FlagHidden      uint16 = 0x100
	FlagSelected    uint16 = 0x200
	FlagSearchMatch uint16 = 0x400
)

// Cursor shapes reported in CursorInfo.Shape.
const (
	CursorShapeBlock       uint8 = 0
	CursorShapeUnderline   uint8 = 1
	CursorShapeBeam        uint8 = 2
	CursorShapeHidden      uint8 = 3
	CursorShapeHollowBlock uint8 = 4 // reserved; the embedded emulator never produces it
)

// CursorInfo describes the cursor as of the last snapshot.
type CursorInfo struct {
	Row, Col uint32
	Shape    uint8
	Visible  bool
}

// GridSnapshot is a complete, sparse view of the visible grid: only
// non-trivial cells are included, with explicit positions, plus cursor and
// mode state and a sampled padding background.
type GridSnapshot struct {
	Cells      []CellRecord
	Rows, Cols uint32
	Cursor     CursorInfo
	ModeFlags  uint32
	PaddingBG  [3]uint8
}

// Release is a documented no-op kept for ABI-contract symmetry with hosts
// that expect to free a snapshot explicitly. Go's garbage collector reclaims
// the underlying slice once the snapshot is no longer referenced.
func (s *GridSnapshot) Release() {}

// rowCache is the persistent per-row cell storage backing incremental
// snapshots: undamaged rows are never reprocessed.
type rowCache struct {
	rows       [][]CellRecord
	totalCells int
	gridRows   int
	gridCols   int
	lastOffset int
	built      bool

	// Palette, selection and search match the cached rows were built with;
	// a change to any of them invalidates every cached row.
	palette             Palette
	selStart, selEnd    SelectionPoint
	selActive, hasMatch bool
	selKind             Kind
	match               SearchMatch
}

// Snapshot takes an incremental sparse snapshot of the currently visible
// grid (live screen or scrolled-back view, per the handle's display
// offset). Only rows reported dirty by the embedded emulator since the last
// snapshot are rebuilt; everything else is served from the cache. A resize
// or a change in scroll position forces a full rebuild, since damage
// tracking from go-headless-term only covers the live buffer and a changed
// offset changes which absolute row each viewport row maps to. A change of
// palette, selection or current search match also forces a full rebuild,
// since those alter cell colors and flags without any grid damage.
func (h *Handle) Snapshot() *GridSnapshot {
	selStart, selEnd, selActive, selKind := h.selectionSnapshot()
	match, hasMatch := h.currentSearchMatch()
	palette := h.currentPalette()
	offset := h.currentOffset()

	h.mu.Lock()
	defer h.mu.Unlock()

	rows := h.term.Rows()
	cols := h.term.Cols()

	dimensionsChanged := h.cache.gridRows != rows || h.cache.gridCols != cols
	offsetChanged := h.cache.lastOffset != offset
	// Dirty tracking only covers the live buffer. While scrolled back, each
	// line the child scrolls off shifts which history line every viewport row
	// shows, with no damage signal at all, so cached rows can only be trusted
	// when the viewport is pinned to live output.
	inputsChanged := h.cache.palette != palette || h.cache.selStart != selStart || h.cache.selEnd != selEnd ||
		h.cache.selActive != selActive || h.cache.selKind != selKind || h.cache.hasMatch != hasMatch || h.cache.match != match
	fullRebuild := !h.cache.built || dimensionsChanged || offsetChanged || offset != 0 || inputsChanged

	if dimensionsChanged || !h.cache.built {
		h.cache.rows = make([][]CellRecord, rows)
		h.cache.gridRows = rows
		h.cache.gridCols = cols
		h.cache.totalCells = 0
	}

	damagedRows := make(map[int]bool)
	if h.term.HasDirty() {
		for _, p := range h.term.DirtyCells() {
			damagedRows[p.Row] = true
		}
	}

	selFn := func(absRow, col int) bool {
		if !selActive {
			return false
		}
		return pointInSelection(selStart, selEnd, selKind, absRow, col)
	}
	matchFn := func(absRow, col int) bool {
		if !hasMatch {
			return false
		}
		return absRow == match.Row && col >= match.StartCol && col < match.EndCol
	}

	rebuildRow := func(viewportRow int) {
		absRow := viewportToAbsolute(viewportRow, offset)
		old := h.cache.rows[viewportRow]
		h.cache.totalCells -= len(old)
		newRow := h.processRow(viewportRow, absRow, cols, &palette, selFn, matchFn)
		h.cache.totalCells += len(newRow)
		h.cache.rows[viewportRow] = newRow
	}

	if fullRebuild {
		h.cache.totalCells = 0
		for v := 0; v < rows; v++ {
			absRow := viewportToAbsolute(v, offset)
			newRow := h.processRow(v, absRow, cols, &palette, selFn, matchFn)
			h.cache.totalCells += len(newRow)
			h.cache.rows[v] = newRow
		}
	} else {
		for v := range damagedRows {
			if v >= 0 && v < rows {
				rebuildRow(v)
			}
		}
	}
	h.cache.lastOffset = offset
	h.cache.built = true
	h.cache.palette, h.cache.selStart, h.cache.selEnd = palette, selStart, selEnd
	h.cache.selActive, h.cache.selKind, h.cache.hasMatch, h.cache.match = selActive, selKind, hasMatch, match
	h.term.ClearDirty()

	cells := make([]CellRecord, 0, h.cache.totalCells)
	for _, row := range h.cache.rows {
		cells = append(cells, row...)
	}

	cursorRow, cursorCol := h.term.CursorPos()
	// A cursor parked on the spacer half of a wide character reports the
	// leading cell instead, so the host highlights the full glyph.
	if c := h.term.Cell(cursorRow, cursorCol); c != nil && c.IsWideSpacer() && cursorCol > 0 {
		cursorCol--
	}
	viewportCursorRow := absoluteToViewport(cursorRow, offset)
	if viewportCursorRow < 0 {
		viewportCursorRow = 0
	}
	if viewportCursorRow >= rows {
		viewportCursorRow = rows - 1
	}

	visible := h.term.CursorVisible() && h.term.HasMode(headlessterm.ModeShowCursor)
	shape := CursorShapeHidden
	if visible {
		shape = cursorShapeID(h.term.CursorStyle())
	}

	paddingRow := h.cellAt(viewportToAbsolute(rows-1, offset), 0)
	var paddingBG [3]uint8
	if paddingRow != nil {
		bg := resolveColor(effectiveBG(paddingRow), &palette, false)
		paddingBG = [3]uint8{bg.R, bg.G, bg.B}
	} else {
		paddingBG = [3]uint8{palette.BG.R, palette.BG.G, palette.BG.B}
	}

	return &GridSnapshot{
		Cells: cells,
		Rows:  uint32(rows),
		Cols:  uint32(cols),
		Cursor: CursorInfo{
			Row:     uint32(viewportCursorRow),
			Col:     uint32(cursorCol),
			Shape:   shape,
			Visible: visible,
		},
		ModeFlags: modeFlags(h.term),
		PaddingBG: paddingBG,
	}
}

func (h *Handle) selectionSnapshot() (SelectionPoint, SelectionPoint, bool, Kind) {
	h.selMu.Lock()
	defer h.selMu.Unlock()
	if !h.selection.active {
		return SelectionPoint{}, SelectionPoint{}, false, KindSimple
	}
	start, end := h.selection.normalized()
	return start, end, true, h.selection.kind
}

func pointInSelection(start, end SelectionPoint, kind Kind, row, col int) bool {
	if kind == KindLines {
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

func (h *Handle) currentSearchMatch() (SearchMatch, bool) {
	h.searchMu.Lock()
	defer h.searchMu.Unlock()
	if h.search.current < 0 || h.search.current >= len(h.search.matches) {
		return SearchMatch{}, false
	}
	return h.search.matches[h.search.current], true
}

// processRow builds the sparse cell list for one viewport row. Blank cells
// with a default background, not selected and not a search match, are
// skipped.
func (h *Handle) processRow(viewportRow, absRow, cols int, palette *Palette, selected, searchMatch func(row, col int) bool) []CellRecord {
	var out []CellRecord
	for col := 0; col < cols; col++ {
		cell := h.cellAt(absRow, col)
		if cell == nil {
			continue
		}

		isSelected := selected(absRow, col)
		isMatch := searchMatch(absRow, col)
		isWide := cell.Flags&(headlessterm.CellFlagWideChar|headlessterm.CellFlagWideCharSpacer) != 0
		isBlank := cell.Char == 0 || cell.Char == ' ' || cell.Char == 0x7F

		if isBlank && isDefaultBG(cell) && !isSelected && !isMatch && !isWide {
			continue
		}

		var fgColor, bgColor color.Color
		if cell.Flags&headlessterm.CellFlagReverse != 0 {
			fgColor, bgColor = cell.Bg, cell.Fg
		} else {
			fgColor, bgColor = cell.Fg, cell.Bg
		}

		fg := resolveColor(fgColor, palette, true)
		bg := resolveColor(bgColor, palette, false)

		if cell.Flags&headlessterm.CellFlagDim != 0 {
			fg = rgb{halveChannel(fg.R), halveChannel(fg.G), halveChannel(fg.B)}
		}

		flags := mapFlags(cell.Flags)
		if isSelected {
			flags |= FlagSelected
		}
		if isMatch {
			flags |= FlagSearchMatch
		}

		rec := CellRecord{
			Row:       uint16(viewportRow),
			Col:       uint16(col),
			Codepoint: cell.Char,
			Flags:     flags,
		}
		rec.FgR, rec.FgG, rec.FgB = fg.R, fg.G, fg.B
		rec.BgR, rec.BgG, rec.BgB = bg.R, bg.G, bg.B
		out = append(out, rec)
	}
	return out
}

func mapFlags(f headlessterm.CellFlags) uint16 {
	var out uint16
	if f&headlessterm.CellFlagBold != 0 {
		out |= FlagBold
	}
	if f&headlessterm.CellFlagItalic != 0 {
		out |= FlagItalic
	}
	if f&(headlessterm.CellFlagUnderline|headlessterm.CellFlagDoubleUnderline|headlessterm.CellFlagCurlyUnderline|headlessterm.CellFlagDottedUnderline|headlessterm.CellFlagDashedUnderline) != 0 {
		out |= FlagUnderline
	}
	if f&headlessterm.CellFlagStrike != 0 {
		out |= FlagStrike
	}
	if f&headlessterm.CellFlagDim != 0 {
		out |= FlagDim
	}
	if f&headlessterm.CellFlagReverse != 0 {
		out |= FlagInverse
	}
	if f&headlessterm.CellFlagWideChar != 0 {
		out |= FlagWideChar
	}
	if f&headlessterm.CellFlagWideCharSpacer != 0 {
		out |= FlagWideSpacer
	}
	if f&headlessterm.CellFlagHidden != 0 {
		out |= FlagHidden
	}
	return out
}

// effectiveBG returns the color that visually acts as a cell's background,
// accounting for the inverse flag swapping fg/bg at render time.
func effectiveBG(cell *headlessterm.Cell) color.Color {
	if cell.Flags&headlessterm.CellFlagReverse != 0 {
		return cell.Fg
	}
	return cell.Bg
}

// isDefaultBG reports whether a cell's effective background is the
// terminal's default background (nil, or an explicit NamedColorBackground).
func isDefaultBG(cell *headlessterm.Cell) bool {
	switch v := effectiveBG(cell).(type) {
	case nil:
		return true
	case *headlessterm.NamedColor:
		return v.Name == int(ansicode.NamedColorBackground)
	default:
		return false
	}
}

func cursorShapeID(style headlessterm.CursorStyle) uint8 {
	switch style {
	case headlessterm.CursorStyleBlinkingBlock, headlessterm.CursorStyleSteadyBlock:
		return CursorShapeBlock
	case headlessterm.CursorStyleBlinkingUnderline, headlessterm.CursorStyleSteadyUnderline:
		return CursorShapeUnderline
	case headlessterm.CursorStyleBlinkingBar, headlessterm.CursorStyleSteadyBar:
		return CursorShapeBeam
	default:
		return CursorShapeBlock
	}
}

// modeFlags packs the subset of TerminalMode bits the host needs to render
// correctly (cursor keys, origin mode, line wrap, bracketed paste, and so
// on) into a single bitmask, in the same bit order as go-headless-term's
// own TerminalMode constants.
func modeFlags(t *headlessterm.Terminal) uint32 {
	var out uint32
	modes := []headlessterm.TerminalMode{
		headlessterm.ModeCursorKeys,
		headlessterm.ModeColumnMode,
		headlessterm.ModeInsert,
		headlessterm.ModeOrigin,
		headlessterm.ModeLineWrap,
		headlessterm.ModeBlinkingCursor,
		headlessterm.ModeLineFeedNewLine,
		headlessterm.ModeShowCursor,
		headlessterm.ModeReportMouseClicks,
		headlessterm.ModeReportCellMouseMotion,
		headlessterm.ModeReportAllMouseMotion,
		headlessterm.ModeReportFocusInOut,
		headlessterm.ModeUTF8Mouse,
		headlessterm.ModeSGRMouse,
		headlessterm.ModeAlternateScroll,
		headlessterm.ModeUrgencyHints,
		headlessterm.ModeSwapScreenAndSetRestoreCursor,
		headlessterm.ModeBracketedPaste,
		headlessterm.ModeKeypadApplication,
	}
	for i, m := range modes {
		if t.HasMode(m) {
			out |= 1 << uint(i)
		}
	}
	return out
}
