package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/GoldenPanda1104/moodle-wrapper-assistant/internal/config"
	"github.com/GoldenPanda1104/moodle-wrapper-assistant/internal/domain"
	"github.com/GoldenPanda1104/moodle-wrapper-assistant/internal/pipeline"
	"github.com/GoldenPanda1104/moodle-wrapper-assistant/internal/schedule"
)

var runKind string

func init() {
	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Start a sync pipeline run and stream its log",
		RunE:  runPipeline,
	}
	runCmd.Flags().StringVar(&runKind, "kind", "full", "run kind: full or partial")
	rootCmd.AddCommand(runCmd)

	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "Run configured pipeline schedules until interrupted",
		RunE:  runSchedule,
	}
	rootCmd.AddCommand(scheduleCmd)
}

func runPipeline(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	kind := domain.RunKind(runKind)
	if kind != domain.RunFull && kind != domain.RunPartial {
		return fmt.Errorf("unknown run kind %q, use full or partial", runKind)
	}

	ctx, cancel := requestContext()
	defer cancel()

	runID, err := app.api.StartPipeline(ctx, kind)
	if err != nil {
		return fmt.Errorf("starting pipeline: %w", err)
	}
	fmt.Printf("Run %s started (%s)\n", runID, kind)

	return streamRun(app, runID)
}

// streamRun follows a run's log stream on stdout until the run reports
// done or the stream drops
func streamRun(app *app, runID string) error {
	stream := pipeline.NewStreamClient(app.cfg.Server.BaseURL, app.api.HTTPClient(), app.session.AccessToken)
	sub, err := stream.DialStream(runID)
	if err != nil {
		return fmt.Errorf("attaching to log stream: %w", err)
	}
	defer sub.Close()

	for entry := range sub.Events() {
		if entry.Event == domain.EventDone {
			fmt.Printf("✓ %s\n", entry.Message)
			return nil
		}
		if entry.Level != "" {
			fmt.Printf("[%s] %s\n", entry.Level, entry.Message)
		} else {
			fmt.Println(entry.Message)
		}
	}

	if err := sub.Err(); err != nil {
		return fmt.Errorf("stream ended: %w", err)
	}
	return nil
}

func runSchedule(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if len(app.cfg.Pipeline.Schedules) == 0 {
		return fmt.Errorf("no schedules configured")
	}

	runEntry := func(e config.ScheduleConfig) error {
		kind := domain.RunKind(e.Kind)
		if kind == "" {
			kind = domain.RunFull
		}
		ctx, cancel := requestContext()
		defer cancel()
		runID, err := app.api.StartPipeline(ctx, kind)
		if err != nil {
			return err
		}
		log.Printf("schedule %s: run %s started", e.Name, runID)
		return streamRun(app, runID)
	}

	var mu sync.Mutex
	var current *schedule.Scheduler

	startScheduler := func(entries []config.ScheduleConfig) error {
		sched, err := schedule.NewScheduler(entries)
		if err != nil {
			return err
		}
		mu.Lock()
		if current != nil {
			current.Stop()
		}
		current = sched
		mu.Unlock()
		go sched.Start(runEntry)
		return nil
	}

	if err := startScheduler(app.cfg.Pipeline.Schedules); err != nil {
		return err
	}

	for _, e := range app.cfg.Pipeline.Schedules {
		log.Printf("schedule %s: cron %q kind %q", e.Name, e.Cron, e.Kind)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Reload schedules when the config file changes
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	watcher, err := config.NewWatcher(path, func(cfg *config.Config) {
		if err := startScheduler(cfg.Pipeline.Schedules); err != nil {
			log.Printf("config reload: %v", err)
		} else {
			log.Printf("config reload: %d schedules active", len(cfg.Pipeline.Schedules))
		}
	})
	if err != nil {
		log.Printf("config watcher unavailable: %v", err)
	} else {
		watcher.Start(ctx)
		defer watcher.Stop()
	}

	<-ctx.Done()

	mu.Lock()
	current.Stop()
	mu.Unlock()

	fmt.Println("Scheduler stopped")
	return nil
}
