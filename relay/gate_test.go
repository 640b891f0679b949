package relay_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/a-h/chatbridge/relay"
)

type slowRelayer struct {
	inFlight    atomic.Int64
	maxInFlight atomic.Int64
	release     chan struct{}
}

func (s *slowRelayer) Relay(ctx context.Context, message string) (relay.Result, error) {
	n := s.inFlight.Add(1)
	defer s.inFlight.Add(-1)
	for {
		m := s.maxInFlight.Load()
		if n <= m || s.maxInFlight.CompareAndSwap(m, n) {
			break
		}
	}
	if s.release != nil {
		<-s.release
	} else {
		time.Sleep(20 * time.Millisecond)
	}
	return relay.Result{Reply: message}, nil
}

func TestGateLimitsConcurrency(t *testing.T) {
	next := &slowRelayer{}
	g := relay.NewGate(next, 2)

	const n = 10
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func() {
			defer wg.Done()
			if _, err := g.Relay(context.Background(), "hi"); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if m := next.maxInFlight.Load(); m > 2 {
		t.Errorf("expected at most 2 concurrent calls, got %d", m)
	}
}

func TestGateWaitRespectsContext(t *testing.T) {
	next := &slowRelayer{release: make(chan struct{})}
	g := relay.NewGate(next, 1)

	// Hold the only slot.
	done := make(chan struct{})
	go func() {
		defer close(done)
		g.Relay(context.Background(), "first")
	}()
	for next.inFlight.Load() == 0 {
		time.Sleep(time.Millisecond)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := g.Relay(ctx, "second")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("expected context canceled, got %v", err)
	}
	close(next.release)
	<-done
}

func TestGateWithoutLimit(t *testing.T) {
	for _, n := range []int64{0, -1} {
		next := &slowRelayer{}
		g := relay.NewGate(next, n)

		const calls = 4
		var wg sync.WaitGroup
		wg.Add(calls)
		for i := 0; i < calls; i++ {
			go func() {
				defer wg.Done()
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				r, err := g.Relay(ctx, "hi")
				if err != nil {
					t.Errorf("n=%d: unexpected error: %v", n, err)
					return
				}
				if r.Reply != "hi" {
					t.Errorf("n=%d: expected %q, got %q", n, "hi", r.Reply)
				}
			}()
		}
		wg.Wait()
	}
}
