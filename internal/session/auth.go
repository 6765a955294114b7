package session

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

// AuthError covers invalid credentials, a missing refresh token, or a
// rejected token. Recovery is always the same: clear the session and send
// the user back to the login boundary.
type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string {
	return "auth: " + e.Reason
}

// authResponse is the token pair returned by login and refresh
type authResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	TokenType    string `json:"token_type"`
}

// AuthClient talks to the authentication endpoints and keeps the
// session store in sync with their results.
type AuthClient struct {
	baseURL string
	http    *http.Client
	store   *Store
}

// NewAuthClient creates an auth client for the given API base URL
func NewAuthClient(baseURL string, store *Store) *AuthClient {
	return &AuthClient{
		baseURL: baseURL,
		http:    &http.Client{},
		store:   store,
	}
}

// Login exchanges credentials for a token pair and stores it
func (c *AuthClient) Login(ctx context.Context, email, password string) error {
	resp, err := c.post(ctx, "/auth/login", map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return &AuthError{Reason: err.Error()}
	}
	return c.store.SetTokens(resp.AccessToken, resp.RefreshToken)
}

// Register creates a new account; it does not log in
func (c *AuthClient) Register(ctx context.Context, email, password string) error {
	_, err := c.post(ctx, "/auth/register", map[string]string{
		"email":    email,
		"password": password,
	})
	return err
}

// Refresh exchanges the stored refresh token for a fresh pair.
// Without a refresh token it fails and leaves the stored tokens untouched.
func (c *AuthClient) Refresh(ctx context.Context) error {
	refreshToken := c.store.RefreshToken()
	if refreshToken == "" {
		return &AuthError{Reason: "no refresh token available"}
	}
	resp, err := c.post(ctx, "/auth/refresh", map[string]string{
		"refresh_token": refreshToken,
	})
	if err != nil {
		return &AuthError{Reason: err.Error()}
	}
	return c.store.SetTokens(resp.AccessToken, resp.RefreshToken)
}

// Logout clears the local tokens first, so logout is effective even when
// the network call fails, then best-effort notifies the server with
// whatever refresh token existed.
func (c *AuthClient) Logout(ctx context.Context) error {
	refreshToken := c.store.RefreshToken()
	c.store.Clear()
	_, err := c.post(ctx, "/auth/logout", map[string]string{
		"refresh_token": refreshToken,
	})
	return err
}

func (c *AuthClient) post(ctx context.Context, path string, body map[string]string) (*authResponse, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s returned status %d", path, resp.StatusCode)
	}

	var out authResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		// Logout and register return bodies we do not care about
		return &authResponse{}, nil
	}
	return &out, nil
}
