package pipeline

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/GoldenPanda1104/moodle-wrapper-assistant/internal/domain"
)

// sseHandler writes the given frames as an SSE response, then returns
// (closing the channel from the server side).
func sseHandler(t *testing.T, frames []string) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		flusher, ok := w.(http.Flusher)
		if !ok {
			t.Fatal("response writer does not support flushing")
		}
		for _, frame := range frames {
			fmt.Fprintf(w, "data: %s\n\n", frame)
			flusher.Flush()
		}
	}
}

func collect(t *testing.T, sub Subscription, want int) []domain.LogEntry {
	t.Helper()
	var entries []domain.LogEntry
	timeout := time.After(2 * time.Second)
	for len(entries) < want {
		select {
		case entry, ok := <-sub.Events():
			if !ok {
				t.Fatalf("stream closed after %d entries, want %d", len(entries), want)
			}
			entries = append(entries, entry)
		case <-timeout:
			t.Fatalf("timed out after %d entries, want %d", len(entries), want)
		}
	}
	return entries
}

func TestStream_DecodesStructuredEntries(t *testing.T) {
	server := httptest.NewServer(sseHandler(t, []string{
		`{"event":"progress","message":"step 1","level":"info"}`,
	}))
	defer server.Close()

	client := NewStreamClient(server.URL, nil, nil)
	sub, err := client.DialStream("abc")
	if err != nil {
		t.Fatalf("DialStream failed: %v", err)
	}
	defer sub.Close()

	entries := collect(t, sub, 1)
	if entries[0].Event != "progress" || entries[0].Message != "step 1" || entries[0].Level != "info" {
		t.Errorf("entry = %+v, want progress/step 1/info", entries[0])
	}
}

func TestStream_MalformedPayloadBecomesRawLogLine(t *testing.T) {
	server := httptest.NewServer(sseHandler(t, []string{"not json"}))
	defer server.Close()

	client := NewStreamClient(server.URL, nil, nil)
	sub, err := client.DialStream("abc")
	if err != nil {
		t.Fatalf("DialStream failed: %v", err)
	}
	defer sub.Close()

	entries := collect(t, sub, 1)
	want := domain.LogEntry{Event: "log", Message: "not json"}
	if entries[0] != want {
		t.Errorf("entry = %+v, want %+v", entries[0], want)
	}
}

func TestStream_ServerDropIsTerminalError(t *testing.T) {
	server := httptest.NewServer(sseHandler(t, []string{`{"event":"progress","message":"one"}`}))
	defer server.Close()

	client := NewStreamClient(server.URL, nil, nil)
	sub, err := client.DialStream("abc")
	if err != nil {
		t.Fatalf("DialStream failed: %v", err)
	}

	collect(t, sub, 1)

	// Handler returned, so the server closed the channel
	select {
	case _, ok := <-sub.Events():
		if ok {
			t.Fatal("unexpected extra entry")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("events channel never closed")
	}

	if sub.Err() != ErrStreamClosed {
		t.Errorf("Err = %v, want ErrStreamClosed", sub.Err())
	}
}

func TestStream_ConsumerCloseIsNotAnError(t *testing.T) {
	blocker := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprint(w, "data: {\"event\":\"progress\",\"message\":\"one\"}\n\n")
		w.(http.Flusher).Flush()
		<-blocker
	}))
	defer server.Close()
	defer close(blocker)

	client := NewStreamClient(server.URL, nil, nil)
	sub, err := client.DialStream("abc")
	if err != nil {
		t.Fatalf("DialStream failed: %v", err)
	}

	collect(t, sub, 1)
	sub.Close()

	select {
	case _, ok := <-sub.Events():
		if ok {
			t.Fatal("entry delivered after Close")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("events channel never closed after Close")
	}

	if sub.Err() != nil {
		t.Errorf("Err = %v, want nil after consumer close", sub.Err())
	}
}

func TestStream_TokenAttachedAsQueryCredential(t *testing.T) {
	var gotToken string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.URL.Query().Get("token")
		w.Header().Set("Content-Type", "text/event-stream")
	}))
	defer server.Close()

	client := NewStreamClient(server.URL, nil, func() string { return "tok-1" })
	sub, err := client.DialStream("abc")
	if err != nil {
		t.Fatalf("DialStream failed: %v", err)
	}
	sub.Close()

	if gotToken != "tok-1" {
		t.Errorf("token = %q, want tok-1", gotToken)
	}
}

func TestStream_NonOKStatusFailsDial(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no such run", http.StatusNotFound)
	}))
	defer server.Close()

	client := NewStreamClient(server.URL, nil, nil)
	if _, err := client.DialStream("missing"); err == nil {
		t.Fatal("expected dial error for 404 response")
	}
}
