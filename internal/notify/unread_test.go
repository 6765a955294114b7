package notify

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func waitForCount(t *testing.T, p *UnreadPoller, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if p.Count() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("count = %d, want %d", p.Count(), want)
}

func TestUnreadPoller_PublishesImmediately(t *testing.T) {
	p := NewUnreadPoller(time.Hour, func() bool { return true }, func(ctx context.Context) (int, error) {
		return 3, nil
	}, nil)
	p.Start()
	defer p.Stop()

	waitForCount(t, p, 3)
}

func TestUnreadPoller_UnauthenticatedSynthesizesZero(t *testing.T) {
	var fetches int32
	p := NewUnreadPoller(5*time.Millisecond, func() bool { return false }, func(ctx context.Context) (int, error) {
		atomic.AddInt32(&fetches, 1)
		return 9, nil
	}, nil)
	p.Start()
	time.Sleep(50 * time.Millisecond)
	p.Stop()

	if p.Count() != 0 {
		t.Errorf("count = %d, want 0", p.Count())
	}
	if n := atomic.LoadInt32(&fetches); n != 0 {
		t.Errorf("fetches = %d, want 0 without authentication", n)
	}
}

func TestUnreadPoller_FailedFetchKeepsPriorValue(t *testing.T) {
	var calls int32
	p := NewUnreadPoller(10*time.Millisecond, func() bool { return true }, func(ctx context.Context) (int, error) {
		n := atomic.AddInt32(&calls, 1)
		if n == 1 {
			return 5, nil
		}
		return 0, errors.New("transient")
	}, nil)
	p.Start()
	defer p.Stop()

	waitForCount(t, p, 5)

	// Later failing ticks keep polling but never reset the value
	deadline := time.Now().Add(time.Second)
	for atomic.LoadInt32(&calls) < 3 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if p.Count() != 5 {
		t.Errorf("count = %d, want 5 preserved across failures", p.Count())
	}
}

func TestUnreadPoller_StaleResponseNeverOverwritesNewer(t *testing.T) {
	// First fetch resolves only after the second already published;
	// its value must be discarded even though it ignores cancellation.
	release := make(chan struct{})
	var calls int32
	p := NewUnreadPoller(10*time.Millisecond, func() bool { return true }, func(ctx context.Context) (int, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			<-release
			return 111, nil
		}
		return 2, nil
	}, nil)
	p.Start()
	defer p.Stop()

	waitForCount(t, p, 2)

	close(release)
	time.Sleep(50 * time.Millisecond)

	if p.Count() != 2 {
		t.Errorf("count = %d, want 2; stale slow response must not win", p.Count())
	}
}

func TestUnreadPoller_CancelsPreviousInFlightRequest(t *testing.T) {
	var cancelled int32
	var calls int32
	p := NewUnreadPoller(10*time.Millisecond, func() bool { return true }, func(ctx context.Context) (int, error) {
		if atomic.AddInt32(&calls, 1) == 1 {
			<-ctx.Done()
			atomic.AddInt32(&cancelled, 1)
			return 0, ctx.Err()
		}
		return 1, nil
	}, nil)
	p.Start()
	defer p.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for atomic.LoadInt32(&cancelled) == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if atomic.LoadInt32(&cancelled) == 0 {
		t.Fatal("first in-flight request was never cancelled by the next tick")
	}
}

func TestUnreadPoller_StopSilencesCallbacks(t *testing.T) {
	var mu sync.Mutex
	published := 0

	p := NewUnreadPoller(5*time.Millisecond, func() bool { return true }, func(ctx context.Context) (int, error) {
		return 1, nil
	}, func(int) {
		mu.Lock()
		published++
		mu.Unlock()
	})
	p.Start()
	waitForCount(t, p, 1)
	p.Stop()

	mu.Lock()
	before := published
	mu.Unlock()

	time.Sleep(30 * time.Millisecond)

	mu.Lock()
	after := published
	mu.Unlock()
	if after != before {
		t.Errorf("callbacks after Stop: %d -> %d", before, after)
	}
}
