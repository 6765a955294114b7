package notify

import (
	"context"
	"strconv"
	"sync"
	"time"

	"github.com/GoldenPanda1104/moodle-wrapper-assistant/internal/domain"
)

// DefaultBootstrapInterval is how often the auth gate is re-checked
const DefaultBootstrapInterval = 2 * time.Second

// ConfigFetcher supplies the push-channel configuration and the user's
// identity. internal/api.Client satisfies it.
type ConfigFetcher interface {
	NotificationConfig(ctx context.Context) (*domain.NotificationConfig, error)
	Profile(ctx context.Context) (*domain.UserProfile, error)
}

// Pusher is the push-notification collaborator contract. All three calls
// are fire-and-forget and idempotent; Login and Logout are no-ops before
// Init.
type Pusher interface {
	Init(appID, origin string)
	Login(userID string)
	Logout()
}

// Bootstrapper polls the authentication gate and, the first time it
// observes an authenticated session, performs the one-time enrichment:
// push-channel init plus identity binding. The bootstrapped flag never
// resets for the poller's lifetime, so re-login in the same process does
// not re-run it.
type Bootstrapper struct {
	interval time.Duration
	authed   func() bool
	fetcher  ConfigFetcher
	pusher   Pusher

	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}

	mu           sync.Mutex
	bootstrapped bool
}

// NewBootstrapper creates a bootstrapper. interval <= 0 falls back to the
// default.
func NewBootstrapper(interval time.Duration, authed func() bool, fetcher ConfigFetcher, pusher Pusher) *Bootstrapper {
	if interval <= 0 {
		interval = DefaultBootstrapInterval
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Bootstrapper{
		interval: interval,
		authed:   authed,
		fetcher:  fetcher,
		pusher:   pusher,
		ctx:      ctx,
		cancel:   cancel,
		done:     make(chan struct{}),
	}
}

// Start begins polling. The first check happens immediately.
func (b *Bootstrapper) Start() {
	go func() {
		defer close(b.done)

		ticker := time.NewTicker(b.interval)
		defer ticker.Stop()

		b.tick()
		for {
			select {
			case <-b.ctx.Done():
				return
			case <-ticker.C:
				b.tick()
			}
		}
	}()
}

// Stop cancels the poller and any in-flight fetch. It does not return
// until the polling goroutine has exited.
func (b *Bootstrapper) Stop() {
	b.cancel()
	<-b.done
}

// Bootstrapped reports whether the one-time enrichment has run
func (b *Bootstrapper) Bootstrapped() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.bootstrapped
}

func (b *Bootstrapper) tick() {
	if !b.authed() {
		return
	}

	b.mu.Lock()
	if b.bootstrapped {
		b.mu.Unlock()
		return
	}
	b.bootstrapped = true
	b.mu.Unlock()

	// Best-effort enrichment: a failed config or profile fetch is
	// swallowed, with no retry.
	cfg, err := b.fetcher.NotificationConfig(b.ctx)
	if err != nil || cfg.PushAppID == "" {
		return
	}

	b.pusher.Init(cfg.PushAppID, cfg.PushWebOrigin)

	profile, err := b.fetcher.Profile(b.ctx)
	if err != nil {
		return
	}
	b.pusher.Login(strconv.Itoa(profile.ID))
}
