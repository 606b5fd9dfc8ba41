package coreterm

import (
	"bytes"
	"strconv"
	"strings"
	"unicode/utf8"
)

// oscPayloadCap is the maximum bytes collected for a single OSC payload
// (and the cap on each scanner's cross-batch continuation buffer). Exceeding
// it abandons the in-flight sequence.
const oscPayloadCap = 4096

// osc7State is the OSC 7 scanner's finite state machine position.
type osc7State int

const (
	osc7Ground osc7State = iota
	osc7Esc
	osc7OscStart
	osc7Osc7
	osc7OscSemi
	osc7Payload
	osc7PayloadEsc
)

// osc7Scanner recognizes `ESC ] 7 ; <url> (BEL | ESC \)`.
type osc7Scanner struct {
	state   osc7State
	payload []byte
}

func newOSC7Scanner() *osc7Scanner {
	return &osc7Scanner{state: osc7Ground}
}

// feed advances the scanner by one byte, returning a completed URL when the
// terminator is reached. Invalid UTF-8 payloads are dropped silently.
func (s *osc7Scanner) feed(b byte) (string, bool) {
	switch s.state {
	case osc7Ground:
		if b == 0x1b {
			s.state = osc7Esc
		}
	case osc7Esc:
		switch b {
		case ']':
			s.state = osc7OscStart
		case 0x1b:
			// stay in Esc
		default:
			s.state = osc7Ground
		}
	case osc7OscStart:
		if b == '7' {
			s.state = osc7Osc7
		} else {
			s.state = osc7Ground
		}
	case osc7Osc7:
		if b == ';' {
			s.state = osc7OscSemi
		} else {
			s.state = osc7Ground
		}
	case osc7OscSemi:
		s.payload = s.payload[:0]
		s.state = osc7Payload
		return s.feedPayload(b)
	case osc7Payload, osc7PayloadEsc:
		return s.feedPayload(b)
	}
	return "", false
}

func (s *osc7Scanner) feedPayload(b byte) (string, bool) {
	if s.state == osc7PayloadEsc {
		if b == '\\' {
			return s.complete()
		}
		// Not a valid ST continuation; drop back into payload collection,
		// treating the ESC byte itself as (already consumed) payload noise.
		s.state = osc7Payload
	}

	switch b {
	case 0x07:
		return s.complete()
	case 0x1b:
		s.state = osc7PayloadEsc
		return "", false
	default:
		if len(s.payload) >= oscPayloadCap {
			s.reset()
			return "", false
		}
		s.payload = append(s.payload, b)
		return "", false
	}
}

func (s *osc7Scanner) complete() (string, bool) {
	defer s.reset()
	if !utf8Valid(s.payload) {
		return "", false
	}
	return string(s.payload), true
}

func (s *osc7Scanner) reset() {
	s.state = osc7Ground
	s.payload = s.payload[:0]
}

// scanBatch scans data for OSC 7 sequences, invoking onURL for each
// completed one, in left-to-right terminator order. The scanner is owned by
// the reader goroutine and reused across batches (see reader.go), so a
// payload left unterminated at the end of one batch is still present in
// s.state/s.payload when the next batch arrives, capped by feedPayload at
// oscPayloadCap. While in ground state it skips ahead with bytes.IndexByte,
// whose per-architecture assembly makes long stretches of plain output
// nearly free to pass over.
func (s *osc7Scanner) scanBatch(data []byte, onURL func(string)) {
	i := 0
	for i < len(data) {
		if s.state == osc7Ground {
			idx := bytes.IndexByte(data[i:], 0x1b)
			if idx < 0 {
				return
			}
			i += idx
		}
		if url, ok := s.feed(data[i]); ok {
			onURL(url)
		}
		i++
	}
}

// osc94State mirrors osc7State but for `ESC ] 9 ; 4 ; <state>[;<progress>]`.
type osc94State int

const (
	osc94Ground osc94State = iota
	osc94Esc
	osc94OscStart
	osc94Nine
	osc94SemiFour
	osc94Four
	osc94Semi2
	osc94Payload
	osc94PayloadEsc
)

// progressEvent is a completed OSC 9;4 notification.
type progressEvent struct {
	State    int
	Progress int
}

type osc94Scanner struct {
	state   osc94State
	payload []byte
}

func newOSC94Scanner() *osc94Scanner {
	return &osc94Scanner{state: osc94Ground}
}

func (s *osc94Scanner) feed(b byte) (progressEvent, bool) {
	switch s.state {
	case osc94Ground:
		if b == 0x1b {
			s.state = osc94Esc
		}
	case osc94Esc:
		switch b {
		case ']':
			s.state = osc94OscStart
		case 0x1b:
		default:
			s.state = osc94Ground
		}
	case osc94OscStart:
		if b == '9' {
			s.state = osc94Nine
		} else {
			s.state = osc94Ground
		}
	case osc94Nine:
		if b == ';' {
			s.state = osc94SemiFour
		} else {
			s.state = osc94Ground
		}
	case osc94SemiFour:
		if b == '4' {
			s.state = osc94Four
		} else {
			s.state = osc94Ground
		}
	case osc94Four:
		if b == ';' {
			s.state = osc94Semi2
		} else {
			s.state = osc94Ground
		}
	case osc94Semi2:
		s.payload = s.payload[:0]
		s.state = osc94Payload
		return s.feedPayload(b)
	case osc94Payload, osc94PayloadEsc:
		return s.feedPayload(b)
	}
	return progressEvent{}, false
}

func (s *osc94Scanner) feedPayload(b byte) (progressEvent, bool) {
	if s.state == osc94PayloadEsc {
		if b == '\\' {
			return s.complete()
		}
		s.state = osc94Payload
	}

	switch b {
	case 0x07:
		return s.complete()
	case 0x1b:
		s.state = osc94PayloadEsc
		return progressEvent{}, false
	default:
		if len(s.payload) >= oscPayloadCap {
			s.reset()
			return progressEvent{}, false
		}
		s.payload = append(s.payload, b)
		return progressEvent{}, false
	}
}

func (s *osc94Scanner) complete() (progressEvent, bool) {
	defer s.reset()
	return parseProgressPayload(s.payload)
}

// parseProgressPayload parses an OSC 9;4 payload: `<state>` or
// `<state>;<progress>`, state in 0..4, progress a signed integer defaulting
// to -1 when absent. Anything else drops the event.
func parseProgressPayload(payload []byte) (progressEvent, bool) {
	parts := strings.SplitN(string(payload), ";", 2)
	state, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil || state < 0 || state > 4 {
		return progressEvent{}, false
	}
	progress := -1
	if len(parts) == 2 {
		p, err := strconv.Atoi(strings.TrimSpace(parts[1]))
		if err != nil {
			return progressEvent{}, false
		}
		progress = p
	}
	return progressEvent{State: state, Progress: progress}, true
}

func (s *osc94Scanner) reset() {
	s.state = osc94Ground
	s.payload = s.payload[:0]
}

func (s *osc94Scanner) scanBatch(data []byte, onProgress func(progressEvent)) {
	i := 0
	for i < len(data) {
		if s.state == osc94Ground {
			idx := bytes.IndexByte(data[i:], 0x1b)
			if idx < 0 {
				return
			}
			i += idx
		}
		if ev, ok := s.feed(data[i]); ok {
			onProgress(ev)
		}
		i++
	}
}

func utf8Valid(b []byte) bool {
	return utf8.Valid(b)
}
