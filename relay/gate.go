package relay

import (
	"context"
	"fmt"

	"golang.org/x/sync/semaphore"
)

// NewGate limits next to n concurrent calls. Callers beyond the limit wait
// for a free slot until their context is done. If n <= 0, calls are not limited.
func NewGate(next Relayer, n int64) *Gate {
	g := &Gate{next: next}
	if n > 0 {
		g.sem = semaphore.NewWeighted(n)
	}
	return g
}

// Gate caps the number of concurrent calls to another Relayer.
type Gate struct {
	next Relayer
	sem  *semaphore.Weighted
}

// Relay waits for a free slot, then relays the message with the wrapped Relayer.
func (g *Gate) Relay(ctx context.Context, message string) (r Result, err error) {
	if g.sem == nil {
		return g.next.Relay(ctx, message)
	}
	if err = g.sem.Acquire(ctx, 1); err != nil {
		return r, fmt.Errorf("relay: failed to acquire slot: %w", err)
	}
	defer g.sem.Release(1)
	return g.next.Relay(ctx, message)
}
