package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/GoldenPanda1104/moodle-wrapper-assistant/internal/notify"
	"github.com/GoldenPanda1104/moodle-wrapper-assistant/internal/pipeline"
	"github.com/GoldenPanda1104/moodle-wrapper-assistant/internal/push"
	"github.com/GoldenPanda1104/moodle-wrapper-assistant/tui"
)

func init() {
	dashboardCmd := &cobra.Command{
		Use:   "dashboard",
		Short: "Launch the interactive dashboard",
		RunE:  runDashboard,
	}
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if !app.session.IsAuthenticated() {
		return fmt.Errorf("not logged in, run 'assistant login' first")
	}

	var program *tea.Program

	stream := pipeline.NewStreamClient(app.cfg.Server.BaseURL, app.api.HTTPClient(), app.session.AccessToken)
	controller := pipeline.NewController(app.api, stream, app.cfg.Pipeline.LogBufferSize, func() {
		program.Send(tui.RunChangedMsg{})
	})
	defer controller.Shutdown()

	model := tui.NewModel(tui.ModelConfig{
		Source: app.api,
		Runner: controller,
	})
	program = tea.NewProgram(model, tea.WithAltScreen())

	// Background workers: one-time push bootstrap and the unread counter.
	// Both gate on the session and push into the running program.
	pusher := push.NewClient(push.NewDesktopNotifier(app.cfg.Notifications.Desktop))
	bootstrapper := notify.NewBootstrapper(app.cfg.AuthCheckInterval(), app.session.IsAuthenticated, app.api, pusher)
	bootstrapper.Start()
	defer func() {
		bootstrapper.Stop()
		pusher.Logout()
	}()

	unread := notify.NewUnreadPoller(app.cfg.UnreadCountInterval(), app.session.IsAuthenticated, app.api.UnreadCount, func(count int) {
		program.Send(tui.UnreadMsg(count))
	})
	unread.Start()
	defer unread.Stop()

	_, err = program.Run()
	return err
}
