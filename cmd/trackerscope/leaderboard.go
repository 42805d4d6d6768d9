package main

import (
	"fmt"

	"github.com/nao1215/trackerscope/internal/config"
	"github.com/nao1215/trackerscope/internal/database"
	"github.com/nao1215/trackerscope/internal/report"
	"github.com/spf13/cobra"
)

// NewLeaderboardCmd creates the leaderboard command.
func NewLeaderboardCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "leaderboard",
		Short: "Show the most prevalent tracker networks across your browsing",
		Long: fmt.Sprintf(`Leaderboard ranks the tracker networks seen across every site you have
summarized, ordered by how many distinct sites each network was seen on.

The leaderboard is hidden until enough browsing has been recorded to
make the ranking meaningful: at least %d summarized sites and %d
distinct tracker networks.

Examples:
  # Show the top networks
  trackerscope leaderboard

  # Show more entries
  trackerscope leaderboard --top 25

  # Output JSON
  trackerscope leaderboard --json`, database.MinSitesVisited, database.MinNetworks),
		Args: cobra.NoArgs,
		RunE: runLeaderboardCmd,
	}

	cmd.Flags().IntP("top", "n", config.DefaultLeaderboardSize,
		"Number of networks to show")
	cmd.Flags().String("db-dir", "",
		"Directory of the leaderboard store (default: XDG data directory)")
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON instead of the ranked list")

	return cmd
}

// runLeaderboardCmd executes the leaderboard command.
func runLeaderboardCmd(cmd *cobra.Command, _ []string) error {
	top, err := cmd.Flags().GetInt("top")
	if err != nil {
		return err
	}
	if top <= 0 {
		return config.ErrInvalidLeaderboardSize
	}

	dbDir, err := cmd.Flags().GetString("db-dir")
	if err != nil {
		return err
	}
	if dbDir == "" {
		dbDir = config.XDGDataDir()
	}

	asJSON, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}

	// The leaderboard never creates an empty store; an absent store
	// just means nothing has been summarized yet.
	opts := database.DefaultOptions()
	opts.CreateIfNotExists = false

	db, err := database.Open(dbDir, opts)
	if err != nil {
		return fmt.Errorf("no leaderboard store found (run \"trackerscope summarize\" first): %w", err)
	}
	defer db.Close()

	ctx := cmd.Context()

	// Hide the board until it can say something meaningful
	show, err := db.ShouldShow(ctx)
	if err != nil {
		return fmt.Errorf("failed to check leaderboard thresholds: %w", err)
	}
	if !show {
		sites, err := db.SitesVisited(ctx)
		if err != nil {
			return err
		}
		networks, err := db.NetworkCount(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(),
			"Leaderboard not yet available: %d of %d sites summarized, %d of %d networks seen.\n",
			sites, database.MinSitesVisited, networks, database.MinNetworks)
		fmt.Fprintln(cmd.OutOrStdout(),
			"Keep summarizing sites to unlock the leaderboard.")
		return nil
	}

	entries, err := db.TopNetworks(ctx, top)
	if err != nil {
		return fmt.Errorf("failed to read leaderboard: %w", err)
	}

	var writer report.Writer
	if asJSON {
		writer = report.NewJSONWriter(cmd.OutOrStdout(), report.WithPrettyPrint())
	} else {
		writer = report.NewSimpleWriter(cmd.OutOrStdout())
	}

	_, err = writer.WriteLeaderboard(entries)
	return err
}
