package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/GoldenPanda1104/moodle-wrapper-assistant/internal/api"
	"github.com/GoldenPanda1104/moodle-wrapper-assistant/internal/config"
	"github.com/GoldenPanda1104/moodle-wrapper-assistant/internal/localstore"
	"github.com/GoldenPanda1104/moodle-wrapper-assistant/internal/session"
)

var (
	outputFormat  string
	gradesCourse  int
	surveysCourse int
	eventsLimit   int
	unreadOnly    bool

	prefInApp      string
	prefEmail      string
	prefPush       string
	prefDigest     string
	prefDigestHour int
)

const requestTimeout = 30 * time.Second

func init() {
	// status command
	statusCmd := &cobra.Command{
		Use:   "status",
		Short: "Show session and vault status",
		RunE:  runStatus,
	}
	rootCmd.AddCommand(statusCmd)

	// tasks command
	tasksCmd := &cobra.Command{
		Use:   "tasks",
		Short: "List aggregated academic tasks",
		RunE:  runTasks,
	}
	addFormatFlag(tasksCmd)
	rootCmd.AddCommand(tasksCmd)

	// courses command
	coursesCmd := &cobra.Command{
		Use:   "courses",
		Short: "List scraped courses",
		RunE:  runCourses,
	}
	addFormatFlag(coursesCmd)
	rootCmd.AddCommand(coursesCmd)

	// modules command
	modulesCmd := &cobra.Command{
		Use:   "modules",
		Short: "List course modules",
		RunE:  runModules,
	}
	addFormatFlag(modulesCmd)
	rootCmd.AddCommand(modulesCmd)

	// grades command
	gradesCmd := &cobra.Command{
		Use:   "grades",
		Short: "List grade items for a course",
		RunE:  runGrades,
	}
	gradesCmd.Flags().IntVar(&gradesCourse, "course", 0, "course id")
	gradesCmd.MarkFlagRequired("course")
	addFormatFlag(gradesCmd)
	rootCmd.AddCommand(gradesCmd)

	// surveys command group
	surveysCmd := &cobra.Command{
		Use:   "surveys",
		Short: "List module surveys",
		RunE:  runSurveys,
	}
	addFormatFlag(surveysCmd)
	surveysCmd.AddCommand(&cobra.Command{
		Use:   "complete ID",
		Short: "Complete one survey",
		Args:  cobra.ExactArgs(1),
		RunE:  runSurveyComplete,
	})
	completeAllCmd := &cobra.Command{
		Use:   "complete-all",
		Short: "Complete every pending survey of a course",
		RunE:  runSurveyCompleteAll,
	}
	completeAllCmd.Flags().IntVar(&surveysCourse, "course", 0, "course id")
	completeAllCmd.MarkFlagRequired("course")
	surveysCmd.AddCommand(completeAllCmd)
	rootCmd.AddCommand(surveysCmd)

	// prefs command
	prefsCmd := &cobra.Command{
		Use:   "prefs",
		Short: "Show or change notification preferences",
		RunE:  runPrefs,
	}
	prefsCmd.Flags().StringVar(&prefInApp, "in-app", "", "enable in-app notifications (true/false)")
	prefsCmd.Flags().StringVar(&prefEmail, "email", "", "enable email notifications (true/false)")
	prefsCmd.Flags().StringVar(&prefPush, "push", "", "enable push notifications (true/false)")
	prefsCmd.Flags().StringVar(&prefDigest, "daily-digest", "", "enable the daily digest (true/false)")
	prefsCmd.Flags().IntVar(&prefDigestHour, "digest-hour", -1, "hour of day for the digest")
	rootCmd.AddCommand(prefsCmd)

	// events command
	eventsCmd := &cobra.Command{
		Use:   "events",
		Short: "Show the recent activity feed",
		RunE:  runEvents,
	}
	eventsCmd.Flags().IntVar(&eventsLimit, "limit", 20, "number of events")
	addFormatFlag(eventsCmd)
	rootCmd.AddCommand(eventsCmd)

	// notifications command
	notificationsCmd := &cobra.Command{
		Use:   "notifications",
		Short: "List in-app notifications",
		RunE:  runNotifications,
	}
	notificationsCmd.Flags().BoolVar(&unreadOnly, "unread", false, "only unread notifications")
	addFormatFlag(notificationsCmd)
	rootCmd.AddCommand(notificationsCmd)

	// vault command group
	vaultCmd := &cobra.Command{
		Use:   "vault",
		Short: "Manage server-side Moodle credentials",
	}
	vaultCmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Show vault status",
		RunE:  runVaultStatus,
	})
	vaultCmd.AddCommand(&cobra.Command{
		Use:   "store USERNAME",
		Short: "Store Moodle credentials in the vault",
		Args:  cobra.ExactArgs(1),
		RunE:  runVaultStore,
	})
	vaultCmd.AddCommand(&cobra.Command{
		Use:   "cron {enable|disable}",
		Short: "Toggle the server-side sync cron",
		Args:  cobra.ExactArgs(1),
		RunE:  runVaultCron,
	})
	rootCmd.AddCommand(vaultCmd)
}

func addFormatFlag(cmd *cobra.Command) {
	cmd.Flags().StringVar(&outputFormat, "format", "table", "output format: table, json or yaml")
}

// app bundles the client-side state every command needs
type app struct {
	cfg     *config.Config
	local   *localstore.Store
	session *session.Store
	auth    *session.AuthClient
	api     *api.Client
}

func newApp() (*app, error) {
	path := configPath
	if path == "" {
		path = config.DefaultConfigPath()
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	local, err := localstore.Open(cfg.Server.StatePath)
	if err != nil {
		return nil, fmt.Errorf("opening state store: %w", err)
	}

	sess := session.NewStore(local)
	return &app{
		cfg:     cfg,
		local:   local,
		session: sess,
		auth:    session.NewAuthClient(cfg.Server.BaseURL, sess),
		api:     api.New(cfg.Server.BaseURL, sess, nil),
	}, nil
}

func (a *app) Close() {
	a.local.Close()
}

func requestContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), requestTimeout)
}

// render writes rows either as a table, or marshals the raw value for
// json/yaml output
func render(value any, table func(w *tabwriter.Writer)) error {
	switch outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(value)
	case "yaml":
		return yaml.NewEncoder(os.Stdout).Encode(value)
	default:
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		table(w)
		return w.Flush()
	}
}

func runStatus(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	if !app.session.IsAuthenticated() {
		fmt.Println("Not logged in")
		return nil
	}

	ctx, cancel := requestContext()
	defer cancel()

	profile, err := app.api.Profile(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Logged in as %s\n", profile.Email)

	vault, err := app.api.VaultStatus(ctx)
	if err != nil {
		return err
	}
	fmt.Printf("Vault: credentials=%v cron=%v\n", vault.HasCredentials, vault.CronEnabled)

	return nil
}

func runTasks(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := requestContext()
	defer cancel()

	tasks, err := app.api.Tasks(ctx)
	if err != nil {
		return err
	}

	return render(tasks, func(w *tabwriter.Writer) {
		fmt.Fprintln(w, "ID\tTITLE\tSTATUS\tPRIORITY\tDEADLINE")
		for _, t := range tasks {
			deadline := t.Deadline
			if deadline == "" {
				deadline = "-"
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", t.ID, t.Title, t.Status, t.Priority, deadline)
		}
	})
}

func runCourses(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := requestContext()
	defer cancel()

	courses, err := app.api.Courses(ctx)
	if err != nil {
		return err
	}

	return render(courses, func(w *tabwriter.Writer) {
		fmt.Fprintln(w, "ID\tNAME\tLAST SEEN")
		for _, c := range courses {
			fmt.Fprintf(w, "%d\t%s\t%s\n", c.ID, c.Name, c.LastSeenAt)
		}
	})
}

func runModules(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := requestContext()
	defer cancel()

	modules, err := app.api.Modules(ctx)
	if err != nil {
		return err
	}

	return render(modules, func(w *tabwriter.Writer) {
		fmt.Fprintln(w, "ID\tCOURSE\tTITLE\tVISIBLE\tBLOCKED\tSURVEY")
		for _, m := range modules {
			fmt.Fprintf(w, "%d\t%d\t%s\t%v\t%v\t%v\n",
				m.ID, m.CourseID, m.Title, m.Visible, m.Blocked, m.HasSurvey)
		}
	})
}

func runGrades(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := requestContext()
	defer cancel()

	grades, err := app.api.Grades(ctx, gradesCourse)
	if err != nil {
		return err
	}

	return render(grades, func(w *tabwriter.Writer) {
		fmt.Fprintln(w, "ID\tTYPE\tTITLE\tGRADE\tDUE")
		for _, g := range grades {
			grade := g.GradeDisplay
			if grade == "" && g.GradeValue != nil {
				grade = strconv.FormatFloat(*g.GradeValue, 'f', 2, 64)
			}
			if grade == "" {
				grade = "-"
			}
			due := g.DueAt
			if due == "" {
				due = "-"
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", g.ID, g.ItemType, g.Title, grade, due)
		}
	})
}

func runSurveys(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := requestContext()
	defer cancel()

	surveys, err := app.api.Surveys(ctx)
	if err != nil {
		return err
	}

	return render(surveys, func(w *tabwriter.Writer) {
		fmt.Fprintln(w, "ID\tCOURSE\tTITLE\tCOMPLETED")
		for _, s := range surveys {
			completed := s.CompletedAt
			if completed == "" {
				completed = "-"
			}
			fmt.Fprintf(w, "%d\t%d\t%s\t%s\n", s.ID, s.CourseID, s.Title, completed)
		}
	})
}

func runEvents(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := requestContext()
	defer cancel()

	events, err := app.api.RecentEvents(ctx, eventsLimit)
	if err != nil {
		return err
	}

	return render(events, func(w *tabwriter.Writer) {
		fmt.Fprintln(w, "ID\tTYPE\tSOURCE\tCREATED")
		for _, e := range events {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", e.ID, e.EventType, e.Source, e.CreatedAt)
		}
	})
}

func runNotifications(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := requestContext()
	defer cancel()

	notifications, err := app.api.Notifications(ctx, api.NotificationOptions{
		Limit:      50,
		UnreadOnly: unreadOnly,
	})
	if err != nil {
		return err
	}

	return render(notifications, func(w *tabwriter.Writer) {
		fmt.Fprintln(w, "ID\tTITLE\tSOURCE\tREAD\tCREATED")
		for _, n := range notifications {
			read := "no"
			if n.ReadAt != "" {
				read = "yes"
			}
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", n.ID, n.Title, n.Source, read, n.CreatedAt)
		}
	})
}

func runSurveyComplete(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	surveyID, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("invalid survey id %q", args[0])
	}

	ctx, cancel := requestContext()
	defer cancel()

	if err := app.api.CompleteSurvey(ctx, surveyID); err != nil {
		return err
	}
	fmt.Printf("Survey %d completed\n", surveyID)
	return nil
}

func runSurveyCompleteAll(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := requestContext()
	defer cancel()

	if err := app.api.CompleteCourseSurveys(ctx, surveysCourse); err != nil {
		return err
	}
	fmt.Printf("Pending surveys of course %d completed\n", surveysCourse)
	return nil
}

// parseBoolFlag applies a "true"/"false" flag value onto dst and reports
// whether it changed anything
func parseBoolFlag(value string, dst *bool) (bool, error) {
	if value == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("invalid boolean %q", value)
	}
	*dst = v
	return true, nil
}

func runPrefs(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := requestContext()
	defer cancel()

	prefs, err := app.api.Preferences(ctx)
	if err != nil {
		return err
	}

	changed := false
	for _, f := range []struct {
		value string
		dst   *bool
	}{
		{prefInApp, &prefs.InAppEnabled},
		{prefEmail, &prefs.EmailEnabled},
		{prefPush, &prefs.PushEnabled},
		{prefDigest, &prefs.DailyDigestEnabled},
	} {
		did, err := parseBoolFlag(f.value, f.dst)
		if err != nil {
			return err
		}
		changed = changed || did
	}
	if prefDigestHour >= 0 {
		prefs.DigestHour = prefDigestHour
		changed = true
	}

	if changed {
		if err := app.api.UpdatePreferences(ctx, prefs); err != nil {
			return err
		}
		fmt.Println("Preferences updated")
	}

	fmt.Printf("In-app:       %v\n", prefs.InAppEnabled)
	fmt.Printf("Email:        %v\n", prefs.EmailEnabled)
	fmt.Printf("Push:         %v\n", prefs.PushEnabled)
	fmt.Printf("Daily digest: %v (hour %d)\n", prefs.DailyDigestEnabled, prefs.DigestHour)
	return nil
}

func runVaultStatus(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := requestContext()
	defer cancel()

	status, err := app.api.VaultStatus(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Credentials stored: %v\n", status.HasCredentials)
	fmt.Printf("Cron enabled:       %v\n", status.CronEnabled)
	return nil
}

func runVaultStore(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	password, err := promptSecret("Moodle password: ")
	if err != nil {
		return err
	}
	appPassword, err := promptSecret("App password (for scheduled syncs, optional): ")
	if err != nil {
		return err
	}

	ctx, cancel := requestContext()
	defer cancel()

	status, err := app.api.StoreVaultCredentials(ctx, args[0], password, appPassword)
	if err != nil {
		return err
	}

	fmt.Printf("Credentials stored (cron enabled: %v)\n", status.CronEnabled)
	return nil
}

func runVaultCron(cmd *cobra.Command, args []string) error {
	app, err := newApp()
	if err != nil {
		return err
	}
	defer app.Close()

	ctx, cancel := requestContext()
	defer cancel()

	switch args[0] {
	case "enable":
		appPassword, err := promptSecret("App password: ")
		if err != nil {
			return err
		}
		status, err := app.api.EnableVaultCron(ctx, appPassword)
		if err != nil {
			return err
		}
		fmt.Printf("Cron enabled: %v\n", status.CronEnabled)
	case "disable":
		status, err := app.api.DisableVaultCron(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("Cron enabled: %v\n", status.CronEnabled)
	default:
		return fmt.Errorf("unknown cron action %q, use enable or disable", args[0])
	}

	return nil
}
