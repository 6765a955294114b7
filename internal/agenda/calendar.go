package agenda

import (
	"sort"
	"time"

	"github.com/GoldenPanda1104/moodle-wrapper-assistant/internal/domain"
)

// ItemType classifies a calendar entry
type ItemType string

const (
	ItemTypeAssignment ItemType = "assignment"
	ItemTypeQuiz       ItemType = "quiz"
	ItemTypeTask       ItemType = "task"
)

// Item is one dated entry on the calendar
type Item struct {
	Title  string
	Type   ItemType
	Date   time.Time
	URL    string
	Status string
}

// Day is one cell of the month grid
type Day struct {
	Date    time.Time
	InMonth bool
	IsToday bool
	Items   []Item
}

// gridCells is a fixed six-week grid, enough for any month layout
const gridCells = 42

// BuildCalendarItems collects dated tasks and grade items into calendar
// entries. Tasks without a deadline and grade items without either a due
// or an available date are skipped.
func BuildCalendarItems(tasks []domain.Task, grades []domain.GradeItem) []Item {
	var items []Item

	for _, task := range tasks {
		deadline, ok := parseTime(task.Deadline)
		if !ok {
			continue
		}
		items = append(items, Item{
			Title:  task.Title,
			Type:   ItemTypeTask,
			Date:   deadline,
			URL:    task.ActionURL,
			Status: string(task.Status),
		})
	}

	for _, item := range grades {
		date, ok := parseTime(item.DueAt)
		if !ok {
			if date, ok = parseTime(item.AvailableAt); !ok {
				continue
			}
		}

		itemType := ItemTypeAssignment
		if item.ItemType == domain.ItemQuiz {
			itemType = ItemTypeQuiz
		}

		status := item.SubmissionStatus
		if status == "" {
			if item.GradeValue == nil {
				status = "pendiente"
			} else {
				status = "calificado"
			}
		}

		items = append(items, Item{
			Title:  item.Title,
			Type:   itemType,
			Date:   date,
			URL:    item.URL,
			Status: status,
		})
	}

	return items
}

// MonthGrid builds the 42-cell month view around viewDate: six full
// weeks starting on the Monday on or before the first of the month.
func MonthGrid(viewDate, today time.Time, items []Item) []Day {
	year, month, _ := viewDate.Date()
	startOfMonth := time.Date(year, month, 1, 0, 0, 0, 0, viewDate.Location())
	offset := (int(startOfMonth.Weekday()) + 6) % 7
	start := startOfMonth.AddDate(0, 0, -offset)

	days := make([]Day, 0, gridCells)
	for i := 0; i < gridCells; i++ {
		date := start.AddDate(0, 0, i)

		var dayItems []Item
		for _, item := range items {
			if sameDate(item.Date, date) {
				dayItems = append(dayItems, item)
			}
		}
		sort.SliceStable(dayItems, func(a, b int) bool {
			return dayItems[a].Date.Before(dayItems[b].Date)
		})

		days = append(days, Day{
			Date:    date,
			InMonth: date.Month() == month,
			IsToday: sameDate(date, today),
			Items:   dayItems,
		})
	}
	return days
}
