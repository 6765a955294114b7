package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/GoldenPanda1104/moodle-wrapper-assistant/internal/agenda"
	"github.com/GoldenPanda1104/moodle-wrapper-assistant/internal/domain"
)

// Tab indexes
const (
	tabDashboard = iota
	tabTasks
	tabCalendar
	tabPipeline
	tabNotifications
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			Padding(0, 1)

	headerStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("255")).
			Padding(0, 1)

	sectionStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	activeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("42"))

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("244"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("196"))

	statusBarStyle = lipgloss.NewStyle().
			Background(lipgloss.Color("236")).
			Foreground(lipgloss.Color("255"))

	tabActiveStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			Underline(true)

	tabInactiveStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("244"))

	selectedStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("39"))

	todayStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205"))

	outMonthStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240"))
)

// View renders the TUI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	var b strings.Builder

	header := fmt.Sprintf(" Moodle Assistant │ Unread: %d │ Pipeline: %s ",
		m.unread, runStateLabel(m.run.State))
	b.WriteString(headerStyle.Width(m.width).Render(header))
	b.WriteString("\n")

	b.WriteString(m.renderTabs())
	b.WriteString("\n")

	var content string
	switch m.activeTab {
	case tabDashboard:
		content = m.renderDashboard()
	case tabTasks:
		content = m.renderTasks()
	case tabCalendar:
		content = m.renderCalendar()
	case tabPipeline:
		content = m.renderPipeline()
	case tabNotifications:
		content = m.renderNotifications()
	}
	b.WriteString(sectionStyle.Width(m.width - 2).Render(content))
	b.WriteString("\n")

	if m.loadErr != "" {
		b.WriteString(errorStyle.Width(m.width).Render(" " + m.loadErr + " "))
		b.WriteString("\n")
	}

	b.WriteString(statusBarStyle.Width(m.width).Render(m.statusBar()))

	return b.String()
}

func (m Model) renderTabs() string {
	tabs := []string{"Dashboard", "Tasks", "Calendar", "Pipeline", "Notifications"}
	var parts []string

	for i, tab := range tabs {
		label := fmt.Sprintf(" %s ", tab)
		if i == tabNotifications && m.unread > 0 {
			label = fmt.Sprintf(" %s (%d) ", tab, m.unread)
		}
		if i == m.activeTab {
			parts = append(parts, tabActiveStyle.Render(label))
		} else {
			parts = append(parts, tabInactiveStyle.Render(label))
		}
	}

	return strings.Join(parts, "│")
}

func (m Model) statusBar() string {
	switch m.activeTab {
	case tabCalendar:
		return " [tab]switch [h/l]month [s]ync [p]artial sync [r]efresh [q]uit "
	case tabPipeline:
		return " [tab]switch [j/k]scroll [s]ync [p]artial sync [q]uit "
	case tabNotifications:
		return " [tab]switch [j/k]navigate [enter]mark read [a]ll read [q]uit "
	default:
		return " [tab]switch [j/k]navigate [s]ync [p]artial sync [r]efresh [q]uit "
	}
}

func (m Model) renderDashboard() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("TODAY"))
	b.WriteString("\n")
	if len(m.digest.TodayTasks) == 0 {
		b.WriteString(dimStyle.Render("  Nothing pending"))
		b.WriteString("\n")
	}
	for _, task := range m.digest.TodayTasks {
		line := fmt.Sprintf("  ● %-40s %s", truncate(task.Title, 40), formatWhen(task.Deadline))
		b.WriteString(priorityStyle(task.Priority).Render(line))
		b.WriteString("\n")
	}

	if len(m.digest.BlockedTasks) > 0 {
		b.WriteString(titleStyle.Render("BLOCKED"))
		b.WriteString("\n")
		for _, task := range m.digest.BlockedTasks {
			line := fmt.Sprintf("  ▪ %-40s %s", truncate(task.Title, 40), task.Category)
			b.WriteString(warningStyle.Render(line))
			b.WriteString("\n")
		}
	}

	b.WriteString(titleStyle.Render("PENDING SURVEYS"))
	b.WriteString("\n")
	if len(m.digest.PendingSurveys) == 0 {
		b.WriteString(dimStyle.Render("  None"))
		b.WriteString("\n")
	}
	for _, survey := range m.digest.PendingSurveys {
		line := fmt.Sprintf("  ○ %-40s %s", truncate(survey.Title, 40), courseName(survey.Course))
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString(titleStyle.Render("ASSIGNMENTS"))
	b.WriteString("\n")
	b.WriteString(m.renderGradeItems(m.digest.PendingAssignments))

	b.WriteString(titleStyle.Render("QUIZZES"))
	b.WriteString("\n")
	b.WriteString(m.renderGradeItems(m.digest.PendingQuizzes))

	upcoming := append(append([]domain.GradeItem{}, m.digest.UpcomingAssignments...), m.digest.UpcomingQuizzes...)
	if len(upcoming) > 0 {
		b.WriteString(titleStyle.Render("DUE THIS WEEK"))
		b.WriteString("\n")
		b.WriteString(m.renderGradeItems(upcoming))
		b.WriteString(dimStyle.Render("  " + dueSparkline(m.digest.DueCounts(time.Now(), 7))))
		b.WriteString("\n")
	}

	if !m.lastRefresh.IsZero() {
		b.WriteString(dimStyle.Render(fmt.Sprintf("  Updated %s", humanize.Time(m.lastRefresh))))
	}

	return b.String()
}

func (m Model) renderGradeItems(items []domain.GradeItem) string {
	var b strings.Builder
	if len(items) == 0 {
		b.WriteString(dimStyle.Render("  None"))
		b.WriteString("\n")
		return b.String()
	}
	for _, item := range items {
		due := formatWhen(item.DueAt)
		line := fmt.Sprintf("  ▸ %-40s %-24s %s",
			truncate(item.Title, 40), truncate(courseName(item.Course), 24), due)
		if isOverdue(item.DueAt) {
			b.WriteString(errorStyle.Render(line))
		} else {
			b.WriteString(line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderTasks() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("ALL TASKS"))
	b.WriteString("\n")

	if len(m.tasks) == 0 {
		b.WriteString(dimStyle.Render("  No tasks"))
		return b.String()
	}

	for i, task := range m.tasks {
		marker := " "
		if i == m.selectedRow {
			marker = ">"
		}
		line := fmt.Sprintf(" %s %-8s %-40s %-10s %s",
			marker, task.Status, truncate(task.Title, 40), task.Priority, formatWhen(task.Deadline))
		if i == m.selectedRow {
			b.WriteString(selectedStyle.Render(line))
		} else {
			b.WriteString(priorityStyle(task.Priority).Render(line))
		}
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) renderCalendar() string {
	var b strings.Builder

	today := time.Now()
	days := agenda.MonthGrid(m.viewMonth, today, m.calendarItems)

	b.WriteString(titleStyle.Render(m.viewMonth.Format("January 2006")))
	b.WriteString("\n")

	for _, name := range []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"} {
		b.WriteString(fmt.Sprintf(" %-5s", name))
	}
	b.WriteString("\n")

	for week := 0; week < len(days)/7; week++ {
		for col := 0; col < 7; col++ {
			day := days[week*7+col]
			cell := fmt.Sprintf("%2d", day.Date.Day())
			if len(day.Items) > 0 {
				cell += fmt.Sprintf("·%d", len(day.Items))
			}
			cell = fmt.Sprintf(" %-5s", cell)
			switch {
			case day.IsToday:
				b.WriteString(todayStyle.Render(cell))
			case !day.InMonth:
				b.WriteString(outMonthStyle.Render(cell))
			case len(day.Items) > 0:
				b.WriteString(activeStyle.Render(cell))
			default:
				b.WriteString(cell)
			}
		}
		b.WriteString("\n")
	}

	// Items of the current month, listed under the grid
	b.WriteString("\n")
	shown := 0
	for _, day := range days {
		if !day.InMonth || len(day.Items) == 0 {
			continue
		}
		for _, item := range day.Items {
			if shown >= 10 {
				b.WriteString(dimStyle.Render("  ..."))
				b.WriteString("\n")
				return b.String()
			}
			line := fmt.Sprintf("  %s  %-10s %s",
				day.Date.Format("Jan 02"), item.Type, truncate(item.Title, 44))
			b.WriteString(line)
			b.WriteString("\n")
			shown++
		}
	}

	return b.String()
}

func (m Model) renderPipeline() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("PIPELINE"))
	b.WriteString("\n")

	state := fmt.Sprintf("  State: %s", runStateLabel(m.run.State))
	if m.run.RunID != "" {
		state += fmt.Sprintf("   Run: %s (%s)", m.run.RunID, m.run.Kind)
	}
	switch m.run.State {
	case domain.RunStreaming, domain.RunStarting:
		b.WriteString(activeStyle.Render(state))
	case domain.RunFailed:
		b.WriteString(errorStyle.Render(state))
	default:
		b.WriteString(state)
	}
	b.WriteString("\n")

	if m.run.Err != "" {
		b.WriteString(errorStyle.Render("  " + m.run.Err))
		b.WriteString("\n")
	}

	entries := m.run.Entries
	if len(entries) == 0 {
		b.WriteString(dimStyle.Render("  No log output. Press [s] to start a sync."))
		return b.String()
	}

	visible := m.height - 10
	if visible < 5 {
		visible = 5
	}
	start := len(entries) - visible - m.logScroll
	if start < 0 {
		start = 0
	}
	end := start + visible
	if end > len(entries) {
		end = len(entries)
	}

	for _, entry := range entries[start:end] {
		line := "  " + formatLogEntry(entry)
		switch entry.Level {
		case "error":
			b.WriteString(errorStyle.Render(line))
		case "warning":
			b.WriteString(warningStyle.Render(line))
		default:
			b.WriteString(line)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func (m Model) renderNotifications() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("NOTIFICATIONS"))
	b.WriteString("\n")

	if len(m.notifications) == 0 {
		b.WriteString(dimStyle.Render("  No notifications"))
		return b.String()
	}

	for i, n := range m.notifications {
		marker := " "
		if i == m.selectedRow {
			marker = ">"
		}
		bullet := "○"
		if n.ReadAt == "" {
			bullet = "●"
		}
		line := fmt.Sprintf(" %s %s %-40s %-20s %s",
			marker, bullet, truncate(n.Title, 40), truncate(n.Source, 20), formatWhen(n.CreatedAt))
		switch {
		case i == m.selectedRow:
			b.WriteString(selectedStyle.Render(line))
		case n.ReadAt != "":
			b.WriteString(dimStyle.Render(line))
		default:
			b.WriteString(line)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func priorityStyle(p domain.TaskPriority) lipgloss.Style {
	switch p {
	case domain.PriorityCritical, domain.PriorityHigh:
		return errorStyle
	case domain.PriorityLow:
		return dimStyle
	default:
		return lipgloss.NewStyle()
	}
}

func runStateLabel(s domain.RunState) string {
	if s == "" {
		return string(domain.RunIdle)
	}
	return string(s)
}

func courseName(c *domain.Course) string {
	if c == nil {
		return ""
	}
	return c.Name
}

func formatLogEntry(e domain.LogEntry) string {
	if e.Event == domain.EventDone {
		return "✓ " + e.Message
	}
	return e.Message
}

// dueSparkline renders per-day due counts for the coming week, one
// column per day starting today
func dueSparkline(counts []int) string {
	var b strings.Builder
	b.WriteString("next 7 days:")
	for _, n := range counts {
		if n == 0 {
			b.WriteString(" ·")
		} else {
			fmt.Fprintf(&b, " %d", n)
		}
	}
	return b.String()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}

// formatWhen renders a backend timestamp as a relative time
func formatWhen(raw string) string {
	if raw == "" {
		return ""
	}
	t, ok := parseStamp(raw)
	if !ok {
		return raw
	}
	return humanize.Time(t)
}

func isOverdue(raw string) bool {
	t, ok := parseStamp(raw)
	return ok && t.Before(time.Now())
}

func parseStamp(raw string) (time.Time, bool) {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
