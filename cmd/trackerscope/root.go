// Package main provides the entry point for the trackerscope CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command for trackerscope.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "trackerscope",
		Short: "Tracker network summarizer and privacy grader for web pages",
		Long: `Trackerscope fetches web pages, identifies the third-party tracker
networks they load, and assigns each page a privacy grade.

Tracker sightings are recorded in a local store so that, after enough
browsing has been summarized, a cross-site leaderboard of the most
prevalent networks can be shown.`,
		Version:       getVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")

	// Add subcommands
	cmd.AddCommand(NewSummarizeCmd())
	cmd.AddCommand(NewLeaderboardCmd())
	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
