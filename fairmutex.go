package coreterm

import (
	"context"

	"golang.org/x/sync/semaphore"
)

// fairMutex is a FIFO-fair lock guarding the embedded Terminal, so a host
// thread taking snapshots is never starved by the reader goroutine under
// heavy output. Go's sync.Mutex makes no fairness guarantee under
// contention, so this wraps a weighted semaphore of size 1, whose Acquire
// calls queue in arrival order.
type fairMutex struct {
	sem *semaphore.Weighted
}

func newFairMutex() *fairMutex {
	return &fairMutex{sem: semaphore.NewWeighted(1)}
}

// Lock blocks until the mutex is held. Acquire only fails if its context is
// canceled; context.Background() never is, so the error is always nil.
func (m *fairMutex) Lock() {
	_ = m.sem.Acquire(context.Background(), 1)
}

func (m *fairMutex) Unlock() {
	m.sem.Release(1)
}
