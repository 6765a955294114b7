package schedule

import (
	"testing"
	"time"

	"github.com/GoldenPanda1104/moodle-wrapper-assistant/internal/config"
)

func TestParseCron(t *testing.T) {
	tests := []struct {
		expr    string
		wantErr bool
	}{
		{"0 3 * * *", false},    // 3 AM daily
		{"0 12 * * 1-5", false}, // noon weekdays
		{"*/15 * * * *", false}, // every 15 minutes
		{"invalid", true},
	}

	for _, tt := range tests {
		_, err := ParseCron(tt.expr)
		if (err != nil) != tt.wantErr {
			t.Errorf("ParseCron(%q) error = %v, wantErr %v", tt.expr, err, tt.wantErr)
		}
	}
}

func TestValidate(t *testing.T) {
	entry := config.ScheduleConfig{
		Name: "nightly",
		Cron: "0 3 * * *",
		Kind: "full",
	}

	if err := Validate(entry); err != nil {
		t.Errorf("Valid entry should not error: %v", err)
	}

	entry.Name = ""
	if err := Validate(entry); err == nil {
		t.Error("Empty name should error")
	}

	entry.Name = "nightly"
	entry.Kind = "bogus"
	if err := Validate(entry); err == nil {
		t.Error("Unknown run kind should error")
	}
}

func TestScheduler_NextRun(t *testing.T) {
	entry := config.ScheduleConfig{
		Name: "nightly",
		Cron: "0 3 * * *",
		Kind: "full",
	}

	sched, err := NewScheduler([]config.ScheduleConfig{entry})
	if err != nil {
		t.Fatal(err)
	}

	next := sched.NextRun("nightly")
	if next.IsZero() {
		t.Error("NextRun should return a time")
	}

	// Should be in the future
	if !next.After(time.Now()) {
		t.Error("NextRun should be in the future")
	}
}

func TestScheduler_ShouldRun(t *testing.T) {
	entry := config.ScheduleConfig{
		Name: "refresh",
		Cron: "* * * * *", // Every minute
		Kind: "partial",
	}

	sched, err := NewScheduler([]config.ScheduleConfig{entry})
	if err != nil {
		t.Fatal(err)
	}

	// Mark as last run two minutes ago
	sched.lastRun["refresh"] = time.Now().Add(-2 * time.Minute)

	if !sched.ShouldRun("refresh") {
		t.Error("Should run after cron interval passed")
	}
}

func TestScheduler_RunningBlocksRerun(t *testing.T) {
	entry := config.ScheduleConfig{
		Name: "refresh",
		Cron: "* * * * *",
		Kind: "partial",
	}

	sched, err := NewScheduler([]config.ScheduleConfig{entry})
	if err != nil {
		t.Fatal(err)
	}

	sched.lastRun["refresh"] = time.Now().Add(-2 * time.Minute)
	sched.MarkRunning("refresh")

	if sched.ShouldRun("refresh") {
		t.Error("Running schedule should not be due again")
	}

	sched.MarkComplete("refresh")
	if sched.ShouldRun("refresh") {
		t.Error("Just-completed schedule should not be due immediately")
	}
}
