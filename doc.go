// Package coreterm provides the concurrent core of an embeddable terminal
// emulator: it spawns a child process on a PTY, reads its output on a
// dedicated goroutine, sniffs OSC 7 / OSC 9;4 out-of-band notifications
// ahead of the VT parser, and produces incremental sparse snapshots of the
// grid for a host UI to render.
//
// coreterm does not parse ANSI/VT escape sequences itself; that is handled
// by the embedded github.com/danielgatis/go-headless-term Terminal. This
// package owns everything around it: process lifecycle, the reader
// goroutine, the fair mutex guarding shared access, viewport scrolling,
// selection, regex search, and the snapshot engine.
//
// # Quick Start
//
// Spawn a shell and take snapshots as it produces output:
//
//	h, err := coreterm.Create(coreterm.SpawnOptions{
//	    Executable: "/bin/bash",
//	    Cols:       80,
//	    Rows:       24,
//	}, func(ctx any, evt coreterm.EventType, s string, i int32) {
//	    // handle Wakeup, Title, Bell, ChildExit, DirectoryChange, Progress
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer h.Destroy()
//
//	h.WriteString("ls\n")
//	snap := h.Snapshot()
//
// # Architecture
//
// The package is organized around these types:
//
//   - [Handle]: the root entity; owns the PTY, the reader goroutine, and
//     every public operation.
//   - [GridSnapshot]: an immutable, sparse, flat view of the visible grid.
//   - the OSC 7 / OSC 9;4 scanners: byte-level side-channel scanners run
//     ahead of the VT parser on every reader batch.
//   - the fair mutex: the FIFO-fair lock guarding the embedded Terminal.
package coreterm
