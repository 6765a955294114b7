package tui

import (
	"context"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/sync/errgroup"

	"github.com/GoldenPanda1104/moodle-wrapper-assistant/internal/agenda"
	"github.com/GoldenPanda1104/moodle-wrapper-assistant/internal/api"
	"github.com/GoldenPanda1104/moodle-wrapper-assistant/internal/domain"
)

const loadTimeout = 15 * time.Second

// markedReadMsg is sent after a mark-read request finishes
type markedReadMsg struct {
	err error
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case TickMsg:
		if m.runner != nil {
			m.run = m.runner.Snapshot()
		}
		cmds := []tea.Cmd{tickCmd(m.refreshEvery)}
		if !m.loading {
			m.loading = true
			cmds = append(cmds, m.loadCmd())
		}
		return m, tea.Batch(cmds...)

	case DataMsg:
		m.loading = false
		m.lastRefresh = time.Now()
		if msg.Err != nil {
			m.loadErr = msg.Err.Error()
			return m, nil
		}
		m.loadErr = ""
		m.digest = msg.Digest
		m.tasks = msg.Tasks
		m.calendarItems = msg.CalendarItems
		m.notifications = msg.Notifications
		m.clampSelection()
		return m, nil

	case UnreadMsg:
		m.unread = int(msg)
		return m, nil

	case RunChangedMsg:
		if m.runner != nil {
			m.run = m.runner.Snapshot()
		}
		return m, nil

	case markedReadMsg:
		if msg.err != nil {
			m.loadErr = msg.err.Error()
			return m, nil
		}
		m.loading = true
		return m, m.loadCmd()
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "r":
		if m.loading {
			return m, nil
		}
		m.loading = true
		return m, m.loadCmd()

	case "tab":
		m.activeTab = (m.activeTab + 1) % 5
		m.selectedRow = 0
		m.logScroll = 0

	case "j", "down":
		switch m.activeTab {
		case tabPipeline:
			m.logScroll++
		case tabNotifications:
			if m.selectedRow < len(m.notifications)-1 {
				m.selectedRow++
			}
		default:
			m.selectedRow++
		}

	case "k", "up":
		switch m.activeTab {
		case tabPipeline:
			if m.logScroll > 0 {
				m.logScroll--
			}
		default:
			if m.selectedRow > 0 {
				m.selectedRow--
			}
		}

	case "h", "left":
		if m.activeTab == tabCalendar {
			m.viewMonth = m.viewMonth.AddDate(0, -1, 0)
		}

	case "l", "right":
		if m.activeTab == tabCalendar {
			m.viewMonth = m.viewMonth.AddDate(0, 1, 0)
		}

	case "s":
		if m.runner != nil {
			m.runner.Start(domain.RunFull)
			m.run = m.runner.Snapshot()
			m.activeTab = tabPipeline
			m.logScroll = 0
		}

	case "p":
		if m.runner != nil {
			m.runner.Start(domain.RunPartial)
			m.run = m.runner.Snapshot()
			m.activeTab = tabPipeline
			m.logScroll = 0
		}

	case "enter":
		if m.activeTab == tabNotifications && m.selectedRow < len(m.notifications) {
			n := m.notifications[m.selectedRow]
			if n.ReadAt == "" {
				return m, m.markReadCmd(n.ID)
			}
		}

	case "a":
		if m.activeTab == tabNotifications && len(m.notifications) > 0 {
			return m, m.markAllReadCmd()
		}
	}

	return m, nil
}

func (m *Model) clampSelection() {
	if m.activeTab == tabNotifications && m.selectedRow >= len(m.notifications) {
		m.selectedRow = len(m.notifications) - 1
		if m.selectedRow < 0 {
			m.selectedRow = 0
		}
	}
}

// loadCmd fetches all dashboard data concurrently and shapes it for
// rendering. Grades are fanned out per course after the course list
// arrives.
func (m Model) loadCmd() tea.Cmd {
	source := m.source
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()

		var (
			tasks   []domain.Task
			surveys []domain.Survey
			courses []domain.Course
			notifs  []domain.Notification
		)

		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			tasks, err = source.Tasks(gctx)
			return err
		})
		g.Go(func() error {
			var err error
			surveys, err = source.Surveys(gctx)
			return err
		})
		g.Go(func() error {
			var err error
			courses, err = source.Courses(gctx)
			return err
		})
		g.Go(func() error {
			var err error
			notifs, err = source.Notifications(gctx, api.NotificationOptions{Limit: 50})
			return err
		})
		if err := g.Wait(); err != nil {
			return DataMsg{Err: err}
		}

		var mu sync.Mutex
		var grades []domain.GradeItem
		gg, ggctx := errgroup.WithContext(ctx)
		gg.SetLimit(4)
		for _, course := range courses {
			course := course
			gg.Go(func() error {
				items, err := source.Grades(ggctx, course.ID)
				if err != nil {
					return err
				}
				mu.Lock()
				grades = append(grades, items...)
				mu.Unlock()
				return nil
			})
		}
		if err := gg.Wait(); err != nil {
			return DataMsg{Err: err}
		}

		now := time.Now()
		return DataMsg{
			Digest:        agenda.BuildDigest(now, tasks, surveys, grades),
			Tasks:         tasks,
			CalendarItems: agenda.BuildCalendarItems(tasks, grades),
			Notifications: notifs,
		}
	}
}

func (m Model) markReadCmd(id int) tea.Cmd {
	source := m.source
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		return markedReadMsg{err: source.MarkRead(ctx, id)}
	}
}

func (m Model) markAllReadCmd() tea.Cmd {
	source := m.source
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		return markedReadMsg{err: source.MarkAllRead(ctx)}
	}
}

// SetUnread updates the unread counter
func (m *Model) SetUnread(count int) {
	m.unread = count
}
