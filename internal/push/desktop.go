package push

import (
	"os/exec"
	"runtime"
)

// Notifier displays an inbound push notification to the user
type Notifier interface {
	Notify(title, body string) error
}

// DesktopNotifier shows native desktop notifications
type DesktopNotifier struct {
	enabled bool
}

// NewDesktopNotifier creates a new desktop notifier
func NewDesktopNotifier(enabled bool) *DesktopNotifier {
	return &DesktopNotifier{enabled: enabled}
}

// Notify shows a desktop notification
func (d *DesktopNotifier) Notify(title, body string) error {
	if !d.enabled {
		return nil
	}

	switch runtime.GOOS {
	case "darwin":
		script := `display notification "` + body + `" with title "` + title + `"`
		return exec.Command("osascript", "-e", script).Run()
	case "linux":
		return exec.Command("notify-send", title, body).Run()
	default:
		return nil // Unsupported
	}
}

// NoopNotifier does nothing (for testing or disabled notifications)
type NoopNotifier struct{}

func (NoopNotifier) Notify(title, body string) error { return nil }
