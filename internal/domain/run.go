package domain

import "time"

// RunHandle identifies one pipeline invocation owned by the run controller
type RunHandle struct {
	RunID     string
	Kind      RunKind
	State     RunState
	CreatedAt time.Time
}

// LogEntry is one progress entry delivered on a run's log stream
type LogEntry struct {
	Event     string `json:"event"`
	Message   string `json:"message"`
	Level     string `json:"level,omitempty"`
	Timestamp string `json:"ts,omitempty"`
	URL       string `json:"url,omitempty"`
}

// EventDone marks the terminal entry of a successful run
const EventDone = "done"
