package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/GoldenPanda1104/moodle-wrapper-assistant/internal/domain"
	"github.com/GoldenPanda1104/moodle-wrapper-assistant/internal/session"
)

type mapStorage map[string]string

func (m mapStorage) Get(key string) (string, error) { return m[key], nil }
func (m mapStorage) Set(key, value string) error    { m[key] = value; return nil }
func (m mapStorage) Delete(key string) error        { delete(m, key); return nil }

func TestClient_AttachesBearerToken(t *testing.T) {
	var gotAuth, gotRequestID string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		json.NewEncoder(w).Encode([]domain.Task{})
	}))
	defer server.Close()

	store := session.NewStore(mapStorage{})
	store.SetTokens("tok-1", "ref-1")

	client := New(server.URL, store, nil)
	if _, err := client.Tasks(context.Background()); err != nil {
		t.Fatalf("Tasks failed: %v", err)
	}

	if gotAuth != "Bearer tok-1" {
		t.Errorf("Authorization = %q, want Bearer tok-1", gotAuth)
	}
	if gotRequestID == "" {
		t.Error("X-Request-ID header missing")
	}
}

func TestClient_NoHeaderWithoutToken(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]domain.Task{})
	}))
	defer server.Close()

	client := New(server.URL, session.NewStore(mapStorage{}), nil)
	client.Tasks(context.Background())

	if gotAuth != "" {
		t.Errorf("Authorization = %q, want empty", gotAuth)
	}
}

func TestClient_TokenReReadAtSendTime(t *testing.T) {
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode([]domain.Task{})
	}))
	defer server.Close()

	store := session.NewStore(mapStorage{})
	store.SetTokens("tok-old", "ref")
	client := New(server.URL, store, nil)

	// The token changes between client construction and the request;
	// the transport must see the new one.
	store.SetTokens("tok-new", "ref")
	client.Tasks(context.Background())

	if gotAuth != "Bearer tok-new" {
		t.Errorf("Authorization = %q, want Bearer tok-new", gotAuth)
	}
}

func TestClient_401ClearsSessionAndFiresHook(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "expired", http.StatusUnauthorized)
	}))
	defer server.Close()

	store := session.NewStore(mapStorage{})
	store.SetTokens("expired-tok", "ref")

	hookCalls := 0
	client := New(server.URL, store, func() { hookCalls++ })

	_, err := client.Tasks(context.Background())
	if err == nil {
		t.Fatal("expected error from 401 response")
	}

	if store.IsAuthenticated() {
		t.Error("401 must clear the session store")
	}
	if hookCalls != 1 {
		t.Errorf("onUnauthorized calls = %d, want 1", hookCalls)
	}
}

func TestClient_StartPipeline(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/moodle/pipeline/run" {
			t.Errorf("path = %s, want /moodle/pipeline/run", r.URL.Path)
		}
		if kind := r.URL.Query().Get("kind"); kind != "full" {
			t.Errorf("kind = %q, want full", kind)
		}
		json.NewEncoder(w).Encode(map[string]string{"run_id": "abc"})
	}))
	defer server.Close()

	client := New(server.URL, session.NewStore(mapStorage{}), nil)
	runID, err := client.StartPipeline(context.Background(), domain.RunFull)
	if err != nil {
		t.Fatalf("StartPipeline failed: %v", err)
	}
	if runID != "abc" {
		t.Errorf("runID = %q, want abc", runID)
	}
}

func TestClient_UnreadCount(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]int{"count": 7})
	}))
	defer server.Close()

	client := New(server.URL, session.NewStore(mapStorage{}), nil)
	count, err := client.UnreadCount(context.Background())
	if err != nil {
		t.Fatalf("UnreadCount failed: %v", err)
	}
	if count != 7 {
		t.Errorf("count = %d, want 7", count)
	}
}
