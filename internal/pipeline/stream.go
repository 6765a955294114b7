package pipeline

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/GoldenPanda1104/moodle-wrapper-assistant/internal/domain"
)

// ErrStreamClosed is the single terminal failure signal emitted when the
// server-push channel drops. There is no automatic reconnect; the user
// starts a new run instead.
var ErrStreamClosed = errors.New("pipeline stream closed")

// Subscription is one live log stream scoped to a run identifier.
// Events is closed after the terminal condition; Err distinguishes a
// channel-level failure from a consumer-initiated Close.
type Subscription interface {
	Events() <-chan domain.LogEntry
	Err() error
	Close()
}

// StreamClient opens server-push log streams for pipeline runs
type StreamClient struct {
	baseURL string
	http    *http.Client
	token   func() string
}

// NewStreamClient creates a stream client. token is read at dial time and
// attached as a query credential, since EventSource-style channels cannot
// carry headers; it may return "".
func NewStreamClient(baseURL string, httpClient *http.Client, token func() string) *StreamClient {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &StreamClient{baseURL: baseURL, http: httpClient, token: token}
}

// DialStream opens the log stream for one run
func (c *StreamClient) DialStream(runID string) (Subscription, error) {
	streamURL := c.baseURL + "/moodle/pipeline/stream/" + url.PathEscape(runID)
	if c.token != nil {
		if tok := c.token(); tok != "" {
			streamURL += "?token=" + url.QueryEscape(tok)
		}
	}

	req, err := http.NewRequest(http.MethodGet, streamURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("stream returned status %d", resp.StatusCode)
	}

	sub := &sseSubscription{
		body:   resp.Body,
		events: make(chan domain.LogEntry),
		done:   make(chan struct{}),
	}
	go sub.readLoop()
	return sub, nil
}

// sseSubscription reads text/event-stream frames from one response body
type sseSubscription struct {
	body   io.ReadCloser
	events chan domain.LogEntry

	done      chan struct{}
	closeOnce sync.Once

	mu  sync.Mutex
	err error
}

func (s *sseSubscription) Events() <-chan domain.LogEntry {
	return s.events
}

// Err reports the terminal stream error. Valid once Events is closed;
// nil means the consumer closed the subscription itself.
func (s *sseSubscription) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}

// Close severs the underlying channel. No entry is delivered after Close
// returns, even if one was already in flight.
func (s *sseSubscription) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
		s.body.Close()
	})
}

func (s *sseSubscription) readLoop() {
	defer close(s.events)

	scanner := bufio.NewScanner(s.body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var data []string
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" {
			if len(data) > 0 {
				if !s.emit(strings.Join(data, "\n")) {
					return
				}
				data = nil
			}
			continue
		}
		if rest, ok := strings.CutPrefix(line, "data:"); ok {
			data = append(data, strings.TrimPrefix(rest, " "))
		}
		// event:/id:/retry: fields are ignored; the payload carries
		// its own event name
	}

	// The channel dropped. Consumer-initiated Close is not a failure;
	// anything else is terminal exactly once.
	select {
	case <-s.done:
	default:
		s.mu.Lock()
		s.err = ErrStreamClosed
		s.mu.Unlock()
		s.body.Close()
	}
}

// emit decodes one frame and delivers it. A payload that is not a valid
// log entry is downgraded to a raw log line, never dropped and never
// treated as a stream failure.
func (s *sseSubscription) emit(payload string) bool {
	var entry domain.LogEntry
	if err := json.Unmarshal([]byte(payload), &entry); err != nil {
		entry = domain.LogEntry{Event: "log", Message: payload}
	}

	select {
	case s.events <- entry:
		return true
	case <-s.done:
		return false
	}
}
