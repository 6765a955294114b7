// Package push implements the push-notification side channel: a
// per-user websocket subscription on the push origin that surfaces
// server-sent notifications on the desktop. The whole surface is
// fire-and-forget; a failed dial or dropped connection is logged and
// otherwise ignored.
package push

import (
	"encoding/json"
	"log"
	"net/url"
	"strings"
	"sync"

	"github.com/gorilla/websocket"
)

// pushMessage is one notification frame from the push origin
type pushMessage struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Client binds the authenticated user to the push channel.
// Init configures it once; Login and Logout are idempotent and safe to
// call before Init (they no-op while uninitialized).
type Client struct {
	notifier Notifier

	mu          sync.Mutex
	initialized bool
	appID       string
	origin      string
	conn        *websocket.Conn
}

// NewClient creates a push client dispatching to the given notifier
func NewClient(notifier Notifier) *Client {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &Client{notifier: notifier}
}

// Init configures the push channel. Repeated calls and calls with an
// empty app id are no-ops.
func (c *Client) Init(appID, origin string) {
	if appID == "" {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.initialized {
		return
	}
	c.appID = appID
	c.origin = origin
	c.initialized = true
}

// Login subscribes the websocket channel for the given user. Any prior
// subscription is replaced. The dial happens in the background; failures
// are swallowed.
func (c *Client) Login(userID string) {
	c.mu.Lock()
	if !c.initialized {
		c.mu.Unlock()
		return
	}
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	channelURL := c.channelURL(userID)
	c.mu.Unlock()

	go c.subscribe(channelURL)
}

// Logout drops the subscription. No-op while uninitialized or not
// logged in.
func (c *Client) Logout() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized || c.conn == nil {
		return
	}
	c.conn.Close()
	c.conn = nil
}

func (c *Client) channelURL(userID string) string {
	scheme := "ws"
	origin := c.origin
	if rest, ok := strings.CutPrefix(origin, "https://"); ok {
		scheme = "wss"
		origin = rest
	} else {
		origin = strings.TrimPrefix(origin, "http://")
	}

	params := url.Values{}
	params.Set("app_id", c.appID)
	params.Set("user_id", userID)
	return scheme + "://" + origin + "/push/ws?" + params.Encode()
}

func (c *Client) subscribe(channelURL string) {
	conn, _, err := websocket.DefaultDialer.Dial(channelURL, nil)
	if err != nil {
		log.Printf("push: dial failed: %v", err)
		return
	}

	c.mu.Lock()
	if c.conn != nil {
		// A newer Login raced us; keep that one
		c.mu.Unlock()
		conn.Close()
		return
	}
	c.conn = conn
	c.mu.Unlock()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var msg pushMessage
		if err := json.Unmarshal(message, &msg); err != nil {
			log.Printf("push: invalid message: %v", err)
			continue
		}
		if err := c.notifier.Notify(msg.Title, msg.Body); err != nil {
			log.Printf("push: notify failed: %v", err)
		}
	}
}
