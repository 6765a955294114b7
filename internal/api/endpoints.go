package api

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/GoldenPanda1104/moodle-wrapper-assistant/internal/domain"
)

// Tasks returns all aggregated academic tasks
func (c *Client) Tasks(ctx context.Context) ([]domain.Task, error) {
	var tasks []domain.Task
	err := c.getJSON(ctx, "/tasks/", nil, &tasks)
	return tasks, err
}

// RecentEvents returns the latest entries of the activity feed
func (c *Client) RecentEvents(ctx context.Context, limit int) ([]domain.EventLog, error) {
	params := url.Values{}
	params.Set("limit", strconv.Itoa(limit))
	var events []domain.EventLog
	err := c.getJSON(ctx, "/events/", params, &events)
	return events, err
}

// Courses returns all scraped Moodle courses
func (c *Client) Courses(ctx context.Context) ([]domain.Course, error) {
	var courses []domain.Course
	err := c.getJSON(ctx, "/moodle/courses", nil, &courses)
	return courses, err
}

// Modules returns all scraped course modules
func (c *Client) Modules(ctx context.Context) ([]domain.Module, error) {
	var modules []domain.Module
	err := c.getJSON(ctx, "/moodle/modules", nil, &modules)
	return modules, err
}

// Grades returns grade items, optionally filtered by course.
// courseID <= 0 means no filter.
func (c *Client) Grades(ctx context.Context, courseID int) ([]domain.GradeItem, error) {
	var params url.Values
	if courseID > 0 {
		params = url.Values{}
		params.Set("course_id", strconv.Itoa(courseID))
	}
	var items []domain.GradeItem
	err := c.getJSON(ctx, "/moodle/grades", params, &items)
	return items, err
}

// Surveys returns all known module surveys
func (c *Client) Surveys(ctx context.Context) ([]domain.Survey, error) {
	var surveys []domain.Survey
	err := c.getJSON(ctx, "/moodle/surveys", nil, &surveys)
	return surveys, err
}

// CompleteSurvey asks the server to auto-complete one survey
func (c *Client) CompleteSurvey(ctx context.Context, surveyID int) error {
	return c.postJSON(ctx, fmt.Sprintf("/moodle/surveys/complete/%d", surveyID), struct{}{}, nil)
}

// CompleteCourseSurveys asks the server to auto-complete every pending
// survey of one course
func (c *Client) CompleteCourseSurveys(ctx context.Context, courseID int) error {
	return c.postJSON(ctx, fmt.Sprintf("/moodle/courses/%d/surveys/complete-all", courseID), struct{}{}, nil)
}

// NotificationOptions filters the notification list
type NotificationOptions struct {
	Skip       int
	Limit      int
	UnreadOnly bool
	Type       string
}

// Notifications returns in-app notifications
func (c *Client) Notifications(ctx context.Context, opts NotificationOptions) ([]domain.Notification, error) {
	params := url.Values{}
	if opts.Skip > 0 {
		params.Set("skip", strconv.Itoa(opts.Skip))
	}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.UnreadOnly {
		params.Set("unread_only", "true")
	}
	if opts.Type != "" {
		params.Set("notification_type", opts.Type)
	}
	var items []domain.Notification
	err := c.getJSON(ctx, "/notifications/", params, &items)
	return items, err
}

// UnreadCount returns the number of unread notifications
func (c *Client) UnreadCount(ctx context.Context) (int, error) {
	var out struct {
		Count int `json:"count"`
	}
	err := c.getJSON(ctx, "/notifications/unread-count", nil, &out)
	return out.Count, err
}

// MarkRead marks one notification as read
func (c *Client) MarkRead(ctx context.Context, notificationID int) error {
	return c.postJSON(ctx, fmt.Sprintf("/notifications/%d/read", notificationID), struct{}{}, nil)
}

// MarkAllRead marks every notification as read
func (c *Client) MarkAllRead(ctx context.Context) error {
	return c.postJSON(ctx, "/notifications/read-all", struct{}{}, nil)
}

// Preferences returns the user's notification delivery settings
func (c *Client) Preferences(ctx context.Context) (*domain.NotificationPreferences, error) {
	var prefs domain.NotificationPreferences
	err := c.getJSON(ctx, "/notifications/preferences", nil, &prefs)
	return &prefs, err
}

// UpdatePreferences replaces the user's notification delivery settings
func (c *Client) UpdatePreferences(ctx context.Context, prefs *domain.NotificationPreferences) error {
	return c.putJSON(ctx, "/notifications/preferences", prefs, nil)
}

// NotificationConfig returns the push-channel configuration
func (c *Client) NotificationConfig(ctx context.Context) (*domain.NotificationConfig, error) {
	var cfg domain.NotificationConfig
	err := c.getJSON(ctx, "/notifications/config", nil, &cfg)
	return &cfg, err
}

// Profile returns the authenticated user's identity
func (c *Client) Profile(ctx context.Context) (*domain.UserProfile, error) {
	var profile domain.UserProfile
	err := c.getJSON(ctx, "/auth/me", nil, &profile)
	return &profile, err
}

// VaultStatus reports whether Moodle credentials are stored server-side
func (c *Client) VaultStatus(ctx context.Context) (*domain.VaultStatus, error) {
	var status domain.VaultStatus
	err := c.getJSON(ctx, "/vault/status", nil, &status)
	return &status, err
}

// StoreVaultCredentials stores Moodle credentials in the server vault
func (c *Client) StoreVaultCredentials(ctx context.Context, username, password, appPassword string) (*domain.VaultStatus, error) {
	var status domain.VaultStatus
	err := c.postJSON(ctx, "/vault/store", map[string]string{
		"moodle_username": username,
		"moodle_password": password,
		"app_password":    appPassword,
	}, &status)
	return &status, err
}

// EnableVaultCron enables scheduled server-side pipeline runs
func (c *Client) EnableVaultCron(ctx context.Context, appPassword string) (*domain.VaultStatus, error) {
	var status domain.VaultStatus
	err := c.postJSON(ctx, "/vault/enable-cron", map[string]string{
		"app_password": appPassword,
	}, &status)
	return &status, err
}

// DisableVaultCron disables scheduled server-side pipeline runs
func (c *Client) DisableVaultCron(ctx context.Context) (*domain.VaultStatus, error) {
	var status domain.VaultStatus
	err := c.postJSON(ctx, "/vault/disable-cron", struct{}{}, &status)
	return &status, err
}

// StartPipeline starts a server-side synchronization run and returns its
// run identifier
func (c *Client) StartPipeline(ctx context.Context, kind domain.RunKind) (string, error) {
	var out struct {
		RunID string `json:"run_id"`
	}
	err := c.postJSON(ctx, "/moodle/pipeline/run?kind="+url.QueryEscape(string(kind)), struct{}{}, &out)
	if err != nil {
		return "", err
	}
	return out.RunID, nil
}
