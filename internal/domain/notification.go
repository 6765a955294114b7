package domain

// Notification is one in-app notification
type Notification struct {
	ID        int            `json:"id"`
	UserID    int            `json:"user_id"`
	Title     string         `json:"title"`
	Body      string         `json:"body"`
	Type      string         `json:"notification_type"`
	Source    string         `json:"source"`
	Payload   map[string]any `json:"payload,omitempty"`
	ReadAt    string         `json:"read_at,omitempty"`
	CreatedAt string         `json:"created_at"`
}

// NotificationPreferences holds per-user delivery settings
type NotificationPreferences struct {
	InAppEnabled       bool   `json:"in_app_enabled"`
	EmailEnabled       bool   `json:"email_enabled"`
	PushEnabled        bool   `json:"push_enabled"`
	DailyDigestEnabled bool   `json:"daily_digest_enabled"`
	Timezone           string `json:"timezone,omitempty"`
	DigestHour         int    `json:"digest_hour"`
}

// NotificationConfig is the push-channel configuration served to clients
type NotificationConfig struct {
	PushAppID     string `json:"onesignal_app_id"`
	PushWebOrigin string `json:"onesignal_web_origin"`
	PushEnabled   bool   `json:"onesignal_enabled"`
}

// UserProfile is the authenticated user's identity
type UserProfile struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
}
