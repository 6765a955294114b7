package domain

// Task is an aggregated academic task surfaced on the dashboard
type Task struct {
	ID          int          `json:"id"`
	Title       string       `json:"title"`
	Source      string       `json:"source"`
	Category    string       `json:"category"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	Deadline    string       `json:"deadline,omitempty"`
	ActionURL   string       `json:"action_url,omitempty"`
	ActionLabel string       `json:"action_label,omitempty"`
}

// EventLog is one entry of the server-side activity feed
type EventLog struct {
	ID        int    `json:"id"`
	EventType string `json:"event_type"`
	Source    string `json:"source"`
	Payload   any    `json:"payload"`
	CreatedAt string `json:"created_at"`
}
