package coreterm

import (
	"regexp"
	"unicode/utf8"
)

// SearchMatch is one regex match found by SearchSet, addressed in the same
// absolute-row coordinates as viewport.go (negative rows are scrollback).
type SearchMatch struct {
	Row      int
	StartCol int
	EndCol   int
}

type searchState struct {
	re      *regexp.Regexp
	matches []SearchMatch
	current int // index into matches, -1 if none selected
}

// The embedded Terminal's own Search/SearchScrollback only do a literal
// substring scan, so pattern search is implemented here with the standard
// library's regexp package over lines assembled by lineTextAt (LineContent
// for live rows, ScrollbackLine cells for history) instead of delegating to
// them.

// SearchSet compiles pattern, scans the live screen and all of scrollback
// for matches, selects the first match at or after the cursor (wrapping to
// the very first match if none lie at or after it), and auto-scrolls the
// viewport toward that match when it is not already visible. Returns the
// match count. An invalid pattern clears the search and returns an error.
func (h *Handle) SearchSet(pattern string) (int, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		h.searchMu.Lock()
		h.search = searchState{}
		h.searchMu.Unlock()
		return 0, err
	}

	h.mu.Lock()
	scrollbackLen := h.term.ScrollbackLen()
	rows := h.term.Rows()
	cursorRow, cursorCol := h.term.CursorPos()

	var matches []SearchMatch
	for row := -scrollbackLen; row < rows; row++ {
		line := h.lineTextAt(row)
		if line == "" {
			continue
		}
		for _, loc := range re.FindAllStringIndex(line, -1) {
			startCol := utf8.RuneCountInString(line[:loc[0]])
			endCol := startCol + utf8.RuneCountInString(line[loc[0]:loc[1]])
			matches = append(matches, SearchMatch{Row: row, StartCol: startCol, EndCol: endCol})
		}
	}
	h.mu.Unlock()

	current := firstMatchAtOrAfter(matches, cursorRow, cursorCol)

	h.searchMu.Lock()
	h.search = searchState{re: re, matches: matches, current: current}
	h.searchMu.Unlock()

	if current >= 0 {
		h.scrollToMatch(matches[current])
	}

	return len(matches), nil
}

// firstMatchAtOrAfter returns the index of the first match at or after
// (row, col) in reading order, wrapping to 0 if none qualifies; -1 if
// matches is empty.
func firstMatchAtOrAfter(matches []SearchMatch, row, col int) int {
	if len(matches) == 0 {
		return -1
	}
	for i, m := range matches {
		if m.Row > row || (m.Row == row && m.StartCol >= col) {
			return i
		}
	}
	return 0
}

// scrollToMatch leaves the viewport alone when the match is already within
// the visible range; otherwise it applies the centering formula
// (target = max(0, -matchRow + screenLines/2)) so the match line lands near
// the vertical middle of the viewport, clamped to the scrollback depth.
func (h *Handle) scrollToMatch(match SearchMatch) {
	h.mu.Lock()
	screenLines := h.term.Rows()
	maxOffset := h.term.ScrollbackLen()
	h.mu.Unlock()

	h.viewMu.Lock()
	defer h.viewMu.Unlock()

	top := -h.displayOffset
	if match.Row >= top && match.Row < top+screenLines {
		return
	}

	target := -match.Row + screenLines/2
	if target < 0 {
		target = 0
	}
	if target > maxOffset {
		target = maxOffset
	}
	h.displayOffset = target
}

// lineTextAt reconstructs the text of absolute row as a plain string.
// Callers must hold h.mu.
func (h *Handle) lineTextAt(row int) string {
	if row >= 0 {
		return h.term.LineContent(row)
	}
	idx := h.term.ScrollbackLen() + row
	if idx < 0 {
		return ""
	}
	line := h.term.ScrollbackLine(idx)
	runes := make([]rune, 0, len(line))
	for i := range line {
		cell := &line[i]
		if cell.IsWideSpacer() {
			continue
		}
		if cell.Char == 0 {
			runes = append(runes, ' ')
			continue
		}
		runes = append(runes, cell.Char)
	}
	return string(runes)
}

// SearchClear drops the active search.
func (h *Handle) SearchClear() {
	h.searchMu.Lock()
	h.search = searchState{}
	h.searchMu.Unlock()
}

// SearchAdvance moves the current match selection forward (or backward),
// wrapping at either end, and returns the newly selected match along with
// the display offset after any auto-scroll toward it.
func (h *Handle) SearchAdvance(forward bool) (SearchMatch, int, bool) {
	h.searchMu.Lock()
	defer h.searchMu.Unlock()

	if len(h.search.matches) == 0 {
		return SearchMatch{}, 0, false
	}

	if forward {
		h.search.current++
	} else {
		h.search.current--
	}
	n := len(h.search.matches)
	h.search.current = ((h.search.current % n) + n) % n

	match := h.search.matches[h.search.current]
	h.scrollToMatch(match)

	return match, h.currentOffset(), true
}
