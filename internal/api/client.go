package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/GoldenPanda1104/moodle-wrapper-assistant/internal/session"
	"github.com/google/uuid"
)

// Client talks to the assistant backend. Plain request/response JSON
// endpoints only; the pipeline log stream lives in internal/pipeline.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates an API client. onUnauthorized is invoked once per 401
// response, after the session store has been cleared; callers use it to
// route the user back to the login boundary. It may be nil.
func New(baseURL string, store *session.Store, onUnauthorized func()) *Client {
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Transport: &authTransport{
				store:          store,
				onUnauthorized: onUnauthorized,
				base:           http.DefaultTransport,
			},
		},
	}
}

// HTTPClient exposes the authenticated client for other transports
// (the SSE stream dial reuses it).
func (c *Client) HTTPClient() *http.Client {
	return c.http
}

// BaseURL returns the configured API base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// authTransport attaches credentials to every outgoing request and
// handles token rejection as a cross-cutting concern.
type authTransport struct {
	store          *session.Store
	onUnauthorized func()
	base           http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Re-read the token at send time; it may have been cleared by a
	// concurrent request's 401 path since this request was built.
	if token := t.store.AccessToken(); token != "" {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized {
		t.store.Clear()
		if t.onUnauthorized != nil {
			t.onUnauthorized()
		}
	}

	return resp, nil
}

func (c *Client) getJSON(ctx context.Context, path string, params url.Values, out any) error {
	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return err
	}

	return c.do(req, out)
}

func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) putJSON(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%s %s returned status %d", req.Method, req.URL.Path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
