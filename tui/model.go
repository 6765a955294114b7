package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/GoldenPanda1104/moodle-wrapper-assistant/internal/agenda"
	"github.com/GoldenPanda1104/moodle-wrapper-assistant/internal/api"
	"github.com/GoldenPanda1104/moodle-wrapper-assistant/internal/domain"
	"github.com/GoldenPanda1104/moodle-wrapper-assistant/internal/pipeline"
)

// DataSource loads dashboard data from the backend
type DataSource interface {
	Tasks(ctx context.Context) ([]domain.Task, error)
	Surveys(ctx context.Context) ([]domain.Survey, error)
	Courses(ctx context.Context) ([]domain.Course, error)
	Grades(ctx context.Context, courseID int) ([]domain.GradeItem, error)
	Notifications(ctx context.Context, opts api.NotificationOptions) ([]domain.Notification, error)
	MarkRead(ctx context.Context, notificationID int) error
	MarkAllRead(ctx context.Context) error
}

// RunController drives pipeline runs and exposes their state
type RunController interface {
	Start(kind domain.RunKind)
	Snapshot() pipeline.Snapshot
}

// Model is the TUI application model
type Model struct {
	source DataSource
	runner RunController

	// Data
	digest        agenda.Digest
	tasks         []domain.Task
	calendarItems []agenda.Item
	notifications []domain.Notification
	unread        int
	run           pipeline.Snapshot
	loadErr       string

	// UI state
	width       int
	height      int
	activeTab   int
	selectedRow int
	logScroll   int
	viewMonth   time.Time

	// Refresh
	refreshEvery time.Duration
	loading      bool
	lastRefresh  time.Time
}

// ModelConfig holds collaborators and initial data for the TUI model
type ModelConfig struct {
	Source       DataSource
	Runner       RunController
	RefreshEvery time.Duration
	Unread       int
}

// NewModel creates a new TUI model
func NewModel(cfg ModelConfig) Model {
	refresh := cfg.RefreshEvery
	if refresh <= 0 {
		refresh = 30 * time.Second
	}

	now := time.Now()
	return Model{
		source:       cfg.Source,
		runner:       cfg.Runner,
		unread:       cfg.Unread,
		refreshEvery: refresh,
		activeTab:    0,
		viewMonth:    time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()),
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadCmd(),
		tickCmd(m.refreshEvery),
	)
}

// TickMsg triggers a periodic refresh
type TickMsg time.Time

func tickCmd(every time.Duration) tea.Cmd {
	return tea.Tick(every, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// DataMsg carries a completed dashboard load
type DataMsg struct {
	Digest        agenda.Digest
	Tasks         []domain.Task
	CalendarItems []agenda.Item
	Notifications []domain.Notification
	Err           error
}

// UnreadMsg carries a fresh unread notification count
type UnreadMsg int

// RunChangedMsg signals that the pipeline run state or log advanced
type RunChangedMsg struct{}
