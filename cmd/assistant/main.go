package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	rootCmd    = &cobra.Command{
		Use:   "assistant",
		Short: "Moodle Assistant - course dashboard and sync client",
		Long: `Moodle Assistant is a client for the Moodle assistant backend.
It aggregates courses, assignments, quizzes and surveys into a dashboard,
follows synchronization pipeline runs live, and keeps notification counts
up to date in the background.`,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
