package coreterm

import "errors"

// Sentinel errors returned by Create. Apart from SearchSet, which returns
// the regexp compile error for an invalid pattern, everything else the core
// encounters is recovered locally and surfaced, if at all, as an event
// rather than an error (see the EventType table in events.go).
var (
	// ErrPtySetup is returned when allocating the PTY master/slave pair fails.
	ErrPtySetup = errors.New("coreterm: pty setup failed")
	// ErrFork is returned when starting the child process fails.
	ErrFork = errors.New("coreterm: failed to start child process")
	// ErrThreadSpawn is returned when the reader goroutine cannot be started.
	ErrThreadSpawn = errors.New("coreterm: failed to start reader")
)
