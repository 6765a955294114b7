// Package agenda shapes raw backend data into the dashboard and
// calendar views: pending/upcoming work selections, due-date histograms
// and the month grid. Everything here is pure data transformation.
package agenda

import (
	"sort"
	"strings"
	"time"

	"github.com/GoldenPanda1104/moodle-wrapper-assistant/internal/domain"
)

// sectionLimit caps every dashboard section at a handful of entries
const sectionLimit = 6

// upcomingWindow is how far ahead the "upcoming" sections look
const upcomingWindow = 7 * 24 * time.Hour

// Digest is the shaped dashboard data
type Digest struct {
	TodayTasks          []domain.Task
	BlockedTasks        []domain.Task
	PendingSurveys      []domain.Survey
	PendingAssignments  []domain.GradeItem
	PendingQuizzes      []domain.GradeItem
	UpcomingAssignments []domain.GradeItem
	UpcomingQuizzes     []domain.GradeItem
}

// BuildDigest shapes tasks, surveys and grade items into the dashboard
// sections. now anchors the upcoming window.
func BuildDigest(now time.Time, tasks []domain.Task, surveys []domain.Survey, grades []domain.GradeItem) Digest {
	d := Digest{}

	for _, task := range tasks {
		switch task.Status {
		case domain.TaskReady, domain.TaskPending:
			d.TodayTasks = append(d.TodayTasks, task)
		case domain.TaskBlocked:
			d.BlockedTasks = append(d.BlockedTasks, task)
		}
	}

	for _, survey := range surveys {
		if survey.CompletedAt == "" {
			d.PendingSurveys = append(d.PendingSurveys, survey)
		}
	}
	sort.SliceStable(d.PendingSurveys, func(i, j int) bool {
		return d.PendingSurveys[i].LastSeenAt > d.PendingSurveys[j].LastSeenAt
	})
	d.PendingSurveys = limit(d.PendingSurveys)

	cutoff := now.Add(upcomingWindow)
	for _, item := range grades {
		switch item.ItemType {
		case domain.ItemAssignment:
			if !isSubmitted(item) {
				d.PendingAssignments = append(d.PendingAssignments, item)
				if due, ok := parseTime(item.DueAt); ok && !due.Before(now) && !due.After(cutoff) {
					d.UpcomingAssignments = append(d.UpcomingAssignments, item)
				}
			}
		case domain.ItemQuiz:
			if item.GradeValue == nil {
				d.PendingQuizzes = append(d.PendingQuizzes, item)
				if due, ok := parseTime(item.DueAt); ok && !due.Before(now) && !due.After(cutoff) {
					d.UpcomingQuizzes = append(d.UpcomingQuizzes, item)
				}
			}
		}
	}

	sortByDue(d.PendingAssignments)
	sortByDue(d.PendingQuizzes)
	sortByDueAsc(d.UpcomingAssignments)
	sortByDueAsc(d.UpcomingQuizzes)

	d.PendingAssignments = limit(d.PendingAssignments)
	d.PendingQuizzes = limit(d.PendingQuizzes)
	d.UpcomingAssignments = limit(d.UpcomingAssignments)
	d.UpcomingQuizzes = limit(d.UpcomingQuizzes)

	return d
}

// DueCounts returns, for each of the next days starting at now, how many
// upcoming assignments and quizzes fall due on that date
func (d Digest) DueCounts(now time.Time, days int) []int {
	counts := make([]int, days)
	for i := range counts {
		day := now.AddDate(0, 0, i)
		counts[i] = countDueOn(d.UpcomingAssignments, day) + countDueOn(d.UpcomingQuizzes, day)
	}
	return counts
}

func countDueOn(items []domain.GradeItem, day time.Time) int {
	n := 0
	for _, item := range items {
		if due, ok := parseTime(item.DueAt); ok && sameDate(due, day) {
			n++
		}
	}
	return n
}

// isSubmitted checks the scraped submission status; the Moodle instance
// reports it in Spanish ("Enviado para calificar")
func isSubmitted(item domain.GradeItem) bool {
	return strings.Contains(strings.ToLower(item.SubmissionStatus), "enviado")
}

func limit[T any](items []T) []T {
	if len(items) > sectionLimit {
		return items[:sectionLimit]
	}
	return items
}

// sortByDue orders by due date ascending with undated items last, ties
// broken by most recently seen
func sortByDue(items []domain.GradeItem) {
	sort.SliceStable(items, func(i, j int) bool {
		di, iOK := parseTime(items[i].DueAt)
		dj, jOK := parseTime(items[j].DueAt)
		if iOK != jOK {
			return iOK
		}
		if iOK && !di.Equal(dj) {
			return di.Before(dj)
		}
		return items[i].LastSeenAt > items[j].LastSeenAt
	})
}

func sortByDueAsc(items []domain.GradeItem) {
	sort.SliceStable(items, func(i, j int) bool {
		di, _ := parseTime(items[i].DueAt)
		dj, _ := parseTime(items[j].DueAt)
		return di.Before(dj)
	})
}

// parseTime parses the backend's timestamp strings
func parseTime(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func sameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
