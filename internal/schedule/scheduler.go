package schedule

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/GoldenPanda1104/moodle-wrapper-assistant/internal/config"
	"github.com/GoldenPanda1104/moodle-wrapper-assistant/internal/domain"
)

// Scheduler triggers pipeline runs from client-side cron schedules.
type Scheduler struct {
	entries  map[string]config.ScheduleConfig
	parser   cron.Parser
	lastRun  map[string]time.Time
	running  map[string]bool
	mu       sync.RWMutex
	stopChan chan struct{}
}

// NewScheduler creates a scheduler from the configured pipeline schedules
func NewScheduler(entries []config.ScheduleConfig) (*Scheduler, error) {
	s := &Scheduler{
		entries:  make(map[string]config.ScheduleConfig),
		parser:   cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow),
		lastRun:  make(map[string]time.Time),
		running:  make(map[string]bool),
		stopChan: make(chan struct{}),
	}

	for _, e := range entries {
		if err := Validate(e); err != nil {
			return nil, err
		}
		s.entries[e.Name] = e
	}

	return s, nil
}

// Validate checks a schedule entry for a usable name, cron expression and run kind
func Validate(e config.ScheduleConfig) error {
	if e.Name == "" {
		return fmt.Errorf("schedule name is required")
	}
	if e.Cron == "" {
		return fmt.Errorf("cron expression is required")
	}
	if _, err := ParseCron(e.Cron); err != nil {
		return fmt.Errorf("invalid cron expression: %w", err)
	}
	switch domain.RunKind(e.Kind) {
	case domain.RunFull, domain.RunPartial, "":
	default:
		return fmt.Errorf("unknown run kind %q", e.Kind)
	}
	return nil
}

// ParseCron parses a cron expression
func ParseCron(expr string) (cron.Schedule, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	return parser.Parse(expr)
}

// NextRun returns the next scheduled run time for a schedule
func (s *Scheduler) NextRun(name string) time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[name]
	if !ok {
		return time.Time{}
	}

	sched, err := s.parser.Parse(e.Cron)
	if err != nil {
		return time.Time{}
	}

	return sched.Next(time.Now())
}

// ShouldRun returns true if a schedule is due now
func (s *Scheduler) ShouldRun(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[name]
	if !ok {
		return false
	}

	if s.running[name] {
		return false
	}

	sched, err := s.parser.Parse(e.Cron)
	if err != nil {
		return false
	}

	lastRun := s.lastRun[name]
	if lastRun.IsZero() {
		lastRun = time.Now().Add(-24 * time.Hour)
	}

	nextRun := sched.Next(lastRun)
	return time.Now().After(nextRun)
}

// MarkRunning marks a schedule as currently running
func (s *Scheduler) MarkRunning(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running[name] = true
}

// MarkComplete marks a schedule as complete
func (s *Scheduler) MarkComplete(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.running[name] = false
	s.lastRun[name] = time.Now()
}

// Get returns the entry for a schedule
func (s *Scheduler) Get(name string) (config.ScheduleConfig, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[name]
	return e, ok
}

// List returns all schedule names
func (s *Scheduler) List() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, 0, len(s.entries))
	for name := range s.entries {
		names = append(names, name)
	}
	return names
}

// Start begins the scheduler loop, calling runFunc for each due schedule.
// Blocks until Stop is called.
func (s *Scheduler) Start(runFunc func(config.ScheduleConfig) error) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopChan:
			return
		case <-ticker.C:
			for name := range s.entries {
				if s.ShouldRun(name) {
					e, _ := s.Get(name)
					s.MarkRunning(name)
					go func(e config.ScheduleConfig) {
						if err := runFunc(e); err != nil {
							log.Printf("schedule %s failed: %v", e.Name, err)
						}
						s.MarkComplete(e.Name)
					}(e)
				}
			}
		}
	}
}

// Stop stops the scheduler
func (s *Scheduler) Stop() {
	close(s.stopChan)
}
