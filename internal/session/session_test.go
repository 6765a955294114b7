package session

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

// mapStorage is an in-memory Storage for tests
type mapStorage map[string]string

func (m mapStorage) Get(key string) (string, error) { return m[key], nil }
func (m mapStorage) Set(key, value string) error    { m[key] = value; return nil }
func (m mapStorage) Delete(key string) error        { delete(m, key); return nil }

func TestStore_IsAuthenticated(t *testing.T) {
	store := NewStore(mapStorage{})

	if store.IsAuthenticated() {
		t.Error("empty store should not be authenticated")
	}

	store.SetTokens("access", "refresh")
	if !store.IsAuthenticated() {
		t.Error("store with access token should be authenticated")
	}

	store.Clear()
	if store.IsAuthenticated() {
		t.Error("cleared store should not be authenticated")
	}
}

func TestAuthClient_Login(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/auth/login" {
			t.Errorf("path = %s, want /auth/login", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]string{
			"access_token":  "acc-1",
			"refresh_token": "ref-1",
			"token_type":    "bearer",
		})
	}))
	defer server.Close()

	store := NewStore(mapStorage{})
	client := NewAuthClient(server.URL, store)

	if err := client.Login(context.Background(), "user@example.com", "secret"); err != nil {
		t.Fatalf("Login failed: %v", err)
	}

	if store.AccessToken() != "acc-1" {
		t.Errorf("access token = %q, want acc-1", store.AccessToken())
	}
	if store.RefreshToken() != "ref-1" {
		t.Errorf("refresh token = %q, want ref-1", store.RefreshToken())
	}
}

func TestAuthClient_LoginRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad credentials", http.StatusUnauthorized)
	}))
	defer server.Close()

	store := NewStore(mapStorage{})
	client := NewAuthClient(server.URL, store)

	err := client.Login(context.Background(), "user@example.com", "wrong")
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Login error = %v, want *AuthError", err)
	}
	if store.IsAuthenticated() {
		t.Error("failed login must not store tokens")
	}
}

func TestAuthClient_RefreshWithoutToken(t *testing.T) {
	store := NewStore(mapStorage{})
	store.SetTokens("acc-only", "")

	client := NewAuthClient("http://unreachable.invalid", store)

	err := client.Refresh(context.Background())
	var authErr *AuthError
	if !errors.As(err, &authErr) {
		t.Fatalf("Refresh error = %v, want *AuthError", err)
	}

	// Stored tokens unchanged
	if store.AccessToken() != "acc-only" {
		t.Errorf("access token = %q, want acc-only", store.AccessToken())
	}
}

func TestAuthClient_RefreshReplacesBothTokens(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		if body["refresh_token"] != "ref-old" {
			t.Errorf("refresh_token = %q, want ref-old", body["refresh_token"])
		}
		json.NewEncoder(w).Encode(map[string]string{
			"access_token":  "acc-new",
			"refresh_token": "ref-new",
		})
	}))
	defer server.Close()

	store := NewStore(mapStorage{})
	store.SetTokens("acc-old", "ref-old")

	client := NewAuthClient(server.URL, store)
	if err := client.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	if store.AccessToken() != "acc-new" || store.RefreshToken() != "ref-new" {
		t.Errorf("tokens = (%q, %q), want (acc-new, ref-new)", store.AccessToken(), store.RefreshToken())
	}
}

func TestAuthClient_LogoutClearsBeforeRequest(t *testing.T) {
	var sentToken string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		json.NewDecoder(r.Body).Decode(&body)
		sentToken = body["refresh_token"]
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	store := NewStore(mapStorage{})
	store.SetTokens("acc", "ref")

	client := NewAuthClient(server.URL, store)
	client.Logout(context.Background())

	if store.IsAuthenticated() {
		t.Error("logout must clear local tokens")
	}
	if sentToken != "ref" {
		t.Errorf("server saw refresh_token %q, want ref", sentToken)
	}
}

func TestAuthClient_LogoutEffectiveWhenServerUnreachable(t *testing.T) {
	store := NewStore(mapStorage{})
	store.SetTokens("acc", "ref")

	client := NewAuthClient("http://unreachable.invalid", store)
	client.Logout(context.Background())

	if store.IsAuthenticated() {
		t.Error("logout must clear local tokens even if the server call fails")
	}
}
