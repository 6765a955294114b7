package pipeline

import (
	"context"
	"sync"
	"time"

	"github.com/GoldenPanda1104/moodle-wrapper-assistant/internal/domain"
)

// User-visible error strings. Raw errors never reach the view.
const (
	msgStartFailed  = "Unable to start pipeline."
	msgDisconnected = "Pipeline stream disconnected."
)

// Starter starts a server-side run and returns its identifier
type Starter interface {
	StartPipeline(ctx context.Context, kind domain.RunKind) (string, error)
}

// Dialer opens the log stream for a run identifier
type Dialer interface {
	DialStream(runID string) (Subscription, error)
}

// Snapshot is a consistent read of the controller for rendering
type Snapshot struct {
	State   domain.RunState
	Kind    domain.RunKind
	RunID   string
	Err     string
	Entries []domain.LogEntry
}

// Controller owns the run lifecycle: it starts a run, attaches to its log
// stream, feeds the bounded buffer, and transitions
// Idle -> Starting -> Streaming -> {Done | Failed}. Done and Failed return
// to a startable state by calling Start again.
type Controller struct {
	starter Starter
	dialer  Dialer
	onEvent func()

	mu     sync.Mutex
	state  domain.RunState
	handle domain.RunHandle
	errMsg string
	buf    *Buffer
	bufCap int
	sub    Subscription
	gen    uint64
	ctx    context.Context
	cancel context.CancelFunc
}

// NewController creates a controller. onEvent is invoked after every
// observable change (state transition or appended entry) and may be nil;
// it must not call back into the controller.
func NewController(starter Starter, dialer Dialer, bufferCapacity int, onEvent func()) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		starter: starter,
		dialer:  dialer,
		onEvent: onEvent,
		state:   domain.RunIdle,
		buf:     NewBuffer(bufferCapacity),
		bufCap:  bufferCapacity,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Start begins a new run. It is a no-op while a run is starting or
// streaming, guarding against rapid repeated invocations. Any prior
// stream subscription is severed before the new run begins.
func (c *Controller) Start(kind domain.RunKind) {
	c.mu.Lock()
	if c.state == domain.RunStarting || c.state == domain.RunStreaming {
		c.mu.Unlock()
		return
	}
	if c.sub != nil {
		c.sub.Close()
		c.sub = nil
	}
	c.buf = NewBuffer(c.bufCap)
	c.errMsg = ""
	c.handle = domain.RunHandle{Kind: kind, State: domain.RunStarting, CreatedAt: time.Now()}
	c.state = domain.RunStarting
	c.gen++
	gen := c.gen
	c.mu.Unlock()
	c.notify()

	go c.run(gen, kind)
}

func (c *Controller) run(gen uint64, kind domain.RunKind) {
	runID, err := c.starter.StartPipeline(c.ctx, kind)
	if err != nil {
		c.fail(gen, msgStartFailed)
		return
	}

	sub, err := c.dialer.DialStream(runID)
	if err != nil {
		c.fail(gen, msgDisconnected)
		return
	}

	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		sub.Close()
		return
	}
	c.sub = sub
	c.handle.RunID = runID
	c.handle.State = domain.RunStreaming
	c.state = domain.RunStreaming
	c.mu.Unlock()
	c.notify()

	for entry := range sub.Events() {
		c.mu.Lock()
		if gen != c.gen {
			c.mu.Unlock()
			return
		}
		c.buf.Append(entry)
		if entry.Event == domain.EventDone {
			// The server may keep the channel open; only our own
			// state flips here.
			c.state = domain.RunDone
			c.handle.State = domain.RunDone
		}
		c.mu.Unlock()
		c.notify()
	}

	if sub.Err() != nil {
		c.mu.Lock()
		streaming := gen == c.gen && c.state == domain.RunStreaming
		c.mu.Unlock()
		if streaming {
			c.fail(gen, msgDisconnected)
		}
	}
}

func (c *Controller) fail(gen uint64, msg string) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	c.state = domain.RunFailed
	c.handle.State = domain.RunFailed
	c.errMsg = msg
	c.mu.Unlock()
	c.notify()
}

// Snapshot returns a consistent view of the current run
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		State:   c.state,
		Kind:    c.handle.Kind,
		RunID:   c.handle.RunID,
		Err:     c.errMsg,
		Entries: c.buf.Entries(),
	}
}

// Shutdown severs any open subscription and freezes the controller.
// No state transition happens after Shutdown returns.
func (c *Controller) Shutdown() {
	c.mu.Lock()
	c.gen++
	if c.sub != nil {
		c.sub.Close()
		c.sub = nil
	}
	c.mu.Unlock()
	c.cancel()
}

func (c *Controller) notify() {
	if c.onEvent != nil {
		c.onEvent()
	}
}
