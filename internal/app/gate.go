package app

import (
	"context"
	"sync"
)

// Gate is the one-shot bootstrap gate. It starts closed and transitions to
// open exactly once; it never reverts. All cycles and command operations
// block on Wait until the cold-start import has finished.
type Gate struct {
	once  sync.Once
	ready chan struct{}
}

// NewGate creates a closed gate.
func NewGate() *Gate {
	return &Gate{ready: make(chan struct{})}
}

// Open opens the gate. Idempotent.
func (g *Gate) Open() {
	g.once.Do(func() {
		close(g.ready)
	})
}

// Ready reports whether the gate is open without blocking.
func (g *Gate) Ready() bool {
	select {
	case <-g.ready:
		return true
	default:
		return false
	}
}

// Wait blocks until the gate opens or ctx is done.
func (g *Gate) Wait(ctx context.Context) error {
	select {
	case <-g.ready:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
