package notify

import (
	"context"
	"sync"
	"time"
)

// DefaultUnreadInterval is how often the unread badge refreshes
const DefaultUnreadInterval = 60 * time.Second

// UnreadPoller continuously refreshes the unread-notification count.
// Unauthenticated ticks synthesize zero without a network call. When
// ticks overlap, the value published is always the one from the most
// recently issued tick: each tick cancels the previous in-flight request
// and a generation counter discards any stale response that resolves
// late anyway.
type UnreadPoller struct {
	interval time.Duration
	authed   func() bool
	fetch    func(ctx context.Context) (int, error)
	onChange func(count int)

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu         sync.Mutex
	gen        uint64
	cancelPrev context.CancelFunc
	count      int
}

// NewUnreadPoller creates an unread-count poller. onChange may be nil.
func NewUnreadPoller(interval time.Duration, authed func() bool, fetch func(ctx context.Context) (int, error), onChange func(int)) *UnreadPoller {
	if interval <= 0 {
		interval = DefaultUnreadInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &UnreadPoller{
		interval: interval,
		authed:   authed,
		fetch:    fetch,
		onChange: onChange,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Start begins polling; the first tick fires immediately
func (p *UnreadPoller) Start() {
	go func() {
		defer close(p.done)

		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		p.tick()
		for {
			select {
			case <-p.ctx.Done():
				return
			case <-ticker.C:
				p.tick()
			}
		}
	}()
}

// Stop cancels the ticker and any in-flight request; it returns only
// after the polling goroutine has exited and any running callback has
// finished, so nothing fires afterward.
func (p *UnreadPoller) Stop() {
	p.cancel()
	<-p.done
	// Synchronize with a publish that may be mid-callback
	p.mu.Lock()
	defer p.mu.Unlock()
}

// Count returns the last published count
func (p *UnreadPoller) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}

func (p *UnreadPoller) tick() {
	p.mu.Lock()
	p.gen++
	gen := p.gen
	if p.cancelPrev != nil {
		p.cancelPrev()
	}
	tickCtx, cancel := context.WithCancel(p.ctx)
	p.cancelPrev = cancel
	p.mu.Unlock()

	if !p.authed() {
		p.publish(gen, 0)
		return
	}

	go func() {
		count, err := p.fetch(tickCtx)
		if err != nil {
			// Keep the prior value; the next tick proceeds unaffected
			return
		}
		p.publish(gen, count)
	}()
}

// publish records a resolved count. The callback runs under the lock so
// Stop can synchronize with it; onChange must not call back into the
// poller.
func (p *UnreadPoller) publish(gen uint64, count int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if gen != p.gen || p.ctx.Err() != nil {
		// A newer tick was issued, or the poller stopped
		return
	}
	p.count = count
	if p.onChange != nil {
		p.onChange(count)
	}
}
