package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/nao1215/trackerscope/internal/config"
	"github.com/nao1215/trackerscope/internal/database"
	"github.com/nao1215/trackerscope/internal/log"
	"github.com/nao1215/trackerscope/internal/pipeline"
	"github.com/nao1215/trackerscope/internal/report"
	"github.com/nao1215/trackerscope/internal/trackerdata"
	"github.com/spf13/cobra"
)

// NewSummarizeCmd creates the summarize command.
func NewSummarizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "summarize [url...]",
		Short: "Summarize the tracker networks a web page loads",
		Long: `Summarize fetches one or more web pages and reports on the third-party
tracker networks they load.

For each page it shows:
- Which tracker networks were detected and how many requests each made
- Which requests were blocked and which were allowed to load
- A privacy grade (A-D) for the page
- Whether the connection was upgraded to HTTPS

Sightings are recorded in a local store so the leaderboard command can
show the most prevalent networks across your browsing.

Examples:
  # Summarize a single page
  trackerscope summarize news.example

  # Summarize multiple pages concurrently
  trackerscope summarize site1.example site2.example site3.example

  # Output JSON report
  trackerscope summarize --json news.example

  # Allow a tracker domain to load for this run
  trackerscope summarize --allow cdn.example-assets.com news.example

  # Use a custom configuration file
  trackerscope summarize -c myconfig.yaml news.example

Configuration file (.trackerscope) example:
  sites:
    news.example:
      allowlist:
        - metrics.news.example
    shop.example:
      protectionsDisabled: true`,
		Args: cobra.ArbitraryArgs,
		RunE: runSummarizeCmd,
	}

	// Fetch behavior flags
	cmd.Flags().DurationP("timeout", "t", config.DefaultTimeout,
		"Connection timeout for each page fetch")
	cmd.Flags().StringP("user-agent", "u", config.DefaultUserAgent,
		"User-Agent header sent with page fetches")
	cmd.Flags().Bool("no-https-upgrade", false,
		"Do not try HTTPS before falling back to HTTP")

	// Detection flags
	cmd.Flags().StringP("dataset", "D", "",
		"Tracker dataset file path (default: built-in dataset)")
	cmd.Flags().StringSliceP("allow", "a", nil,
		"Third-party domains to allow even when the dataset says to block")
	cmd.Flags().Bool("no-protections", false,
		"Detect and count trackers without blocking any of them")

	// Batch summarization flags
	cmd.Flags().IntP("batch", "b", config.DefaultBatchSize,
		"Number of concurrent summarizations")

	// Configuration file
	cmd.Flags().StringP("config", "c", "",
		"Configuration file path (default: .trackerscope in current or home directory)")

	// Report flags
	cmd.Flags().BoolP("json", "j", false,
		"Output JSON report (mutually exclusive with --markdown)")
	cmd.Flags().BoolP("markdown", "m", false,
		"Output Markdown report (mutually exclusive with --json)")
	cmd.Flags().StringP("output", "o", "",
		"Write report to specified file path (creates directories if needed)")

	// Store flags
	cmd.Flags().String("db-dir", "",
		"Directory for the leaderboard store (default: XDG data directory)")
	cmd.Flags().Bool("no-store", false,
		"Do not record sightings in the leaderboard store")

	return cmd
}

// runSummarizeCmd executes the summarize command.
func runSummarizeCmd(cmd *cobra.Command, args []string) error {
	// Build config from flags
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	// Set up structured logging. The privacy logger strips query
	// strings from logged URLs; tracker URLs routinely carry user
	// identifiers in their parameters.
	logger := log.NewPrivacyLogger(os.Stderr, cfg.Verbose)
	slog.SetDefault(logger)

	// Set up context with signal handling for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle interrupt signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal, cancelling...")
		cancel()
	}()

	return runSummarize(ctx, cfg, logger)
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

// buildConfig creates a Config from cobra command flags.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	cfg.Verbose = getVerboseFlag(cmd)

	// Get flag values
	var err error

	cfg.Timeout, err = cmd.Flags().GetDuration("timeout")
	if err != nil {
		return nil, err
	}

	cfg.UserAgent, err = cmd.Flags().GetString("user-agent")
	if err != nil {
		return nil, err
	}

	cfg.NoHTTPSUpgrade, err = cmd.Flags().GetBool("no-https-upgrade")
	if err != nil {
		return nil, err
	}

	cfg.DatasetPath, err = cmd.Flags().GetString("dataset")
	if err != nil {
		return nil, err
	}

	allowlist, err := cmd.Flags().GetStringSlice("allow")
	if err != nil {
		return nil, err
	}

	cfg.ProtectionsDisabled, err = cmd.Flags().GetBool("no-protections")
	if err != nil {
		return nil, err
	}

	cfg.BatchSize, err = cmd.Flags().GetInt("batch")
	if err != nil {
		return nil, err
	}

	cfg.ConfigFilePath, err = cmd.Flags().GetString("config")
	if err != nil {
		return nil, err
	}

	// Load site-specific configurations from config file.
	// If user explicitly specified a config file path, error if not found.
	// If no path specified, silently use empty config if no file found.
	explicitConfigPath := cfg.ConfigFilePath != ""
	configPath := config.FindConfigFile(cfg.ConfigFilePath)

	if configPath != "" {
		cfg.SiteConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	} else if explicitConfigPath {
		// User explicitly specified a config file that doesn't exist
		return nil, fmt.Errorf("configuration file not found: %s", cfg.ConfigFilePath)
	} else {
		// Use empty config if no file found and user didn't explicitly specify one
		cfg.SiteConfigs = &config.File{
			Sites: make(map[string]config.SiteConfig),
		}
	}

	// The --allow flag extends the config file's default allowlist for
	// this run.
	if len(allowlist) > 0 {
		cfg.SiteConfigs.Defaults.Allowlist = append(cfg.SiteConfigs.Defaults.Allowlist, allowlist...)
	}

	cfg.JSONReport, err = cmd.Flags().GetBool("json")
	if err != nil {
		return nil, err
	}

	cfg.MarkdownReport, err = cmd.Flags().GetBool("markdown")
	if err != nil {
		return nil, err
	}

	cfg.ReportFile, err = cmd.Flags().GetString("output")
	if err != nil {
		return nil, err
	}

	cfg.DBDir, err = cmd.Flags().GetString("db-dir")
	if err != nil {
		return nil, err
	}
	if cfg.DBDir == "" {
		cfg.DBDir = config.XDGDataDir()
	}

	noStore, err := cmd.Flags().GetBool("no-store")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noStore

	// Get positional arguments (site URLs)
	cfg.Targets = args

	return cfg, nil
}

// runSummarize executes the summarization.
func runSummarize(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	if len(cfg.Targets) == 0 {
		return errors.New("no targets provided (specify one or more site URLs as arguments)")
	}

	logger.Info("starting summarization",
		"targets", cfg.Targets,
		"batchSize", cfg.BatchSize,
		"saveToDB", cfg.SaveToDB,
	)

	// Load the tracker dataset
	dataset, err := loadDataset(cfg)
	if err != nil {
		return err
	}

	// Open the leaderboard store if recording is enabled
	var db *database.LeaderboardDB
	if cfg.SaveToDB {
		db, err = database.Open(cfg.DBDir, database.DefaultOptions())
		if err != nil {
			return fmt.Errorf("failed to open leaderboard store: %w", err)
		}
		defer db.Close()
		logger.Info("leaderboard store opened", "dir", cfg.DBDir)
	}

	// Use batch processor for parallel summarization if multiple targets
	if len(cfg.Targets) > 1 && cfg.BatchSize > 1 {
		return runBatchSummarize(ctx, cfg, dataset, db, logger)
	}

	// Single target or sequential summarization
	return runSequentialSummarize(ctx, cfg, dataset, db, logger)
}

// loadDataset loads the tracker dataset from the configured path, or
// falls back to the built-in dataset.
func loadDataset(cfg *config.Config) (*trackerdata.Dataset, error) {
	if cfg.DatasetPath == "" {
		return trackerdata.Builtin(), nil
	}
	dataset, err := trackerdata.Load(cfg.DatasetPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load tracker dataset %s: %w", cfg.DatasetPath, err)
	}
	return dataset, nil
}

// runSequentialSummarize summarizes targets one at a time.
func runSequentialSummarize(ctx context.Context, cfg *config.Config, dataset *trackerdata.Dataset, db *database.LeaderboardDB, logger *slog.Logger) error {
	for _, target := range cfg.Targets {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		// Get site-specific configuration
		siteConfig := getSiteConfig(cfg, target)

		// Create pipeline with site-specific options
		p := createPipelineForTarget(dataset, logger, cfg, db, siteConfig)

		summary := pipeline.NewSummary(target)

		fmt.Printf("Summarizing %s...\n", target)
		startTime := time.Now()

		// Execute the pipeline
		if err := p.Execute(ctx, summary); err != nil {
			logger.Error("summarization failed", "target", target, "error", err)
			fmt.Fprintf(os.Stderr, "Summarization error for %s: %v\n", target, err)
			continue
		}

		elapsed := time.Since(startTime)
		fmt.Printf("Summarization completed in %s\n\n", elapsed.Round(time.Millisecond))

		// Generate and output report
		if err := outputReport(cfg, summary); err != nil {
			logger.Error("report failed", "target", target, "error", err)
		}
	}

	return nil
}

// runBatchSummarize summarizes multiple targets concurrently using
// BatchProcessor.
func runBatchSummarize(ctx context.Context, cfg *config.Config, dataset *trackerdata.Dataset, db *database.LeaderboardDB, logger *slog.Logger) error {
	fmt.Printf("Starting batch summarization of %d targets (concurrency: %d)...\n\n",
		len(cfg.Targets), cfg.BatchSize)

	startTime := time.Now()

	// Warn user about batch processing limitation
	if cfg.SiteConfigs != nil && len(cfg.SiteConfigs.Sites) > 0 {
		logger.Warn("batch processing uses default site config only; site-specific configs (allowlists, protection toggles) are ignored",
			"siteCount", len(cfg.SiteConfigs.Sites))
		fmt.Fprintf(os.Stderr, "Warning: Site-specific configurations are ignored in batch mode. Use sequential mode (--batch 1) to apply per-site settings.\n\n")
	}

	// Create batch processor with pipeline factory
	bp := pipeline.NewBatchProcessor(
		func() *pipeline.Pipeline {
			// Note: For batch processing, we use default site config.
			// Site-specific configs would require per-target pipeline creation.
			var siteConfig config.SiteConfig
			if cfg.SiteConfigs != nil {
				siteConfig = cfg.SiteConfigs.Defaults
			}
			return createPipelineForTarget(dataset, logger, cfg, db, siteConfig)
		},
		pipeline.WithConcurrency(cfg.BatchSize),
		pipeline.WithBatchLogger(logger),
	)

	// Process with callback for streaming output
	var mu sync.Mutex
	err := bp.ProcessBatchWithCallback(ctx, cfg.Targets, func(summary *pipeline.Summary, index int) {
		mu.Lock()
		defer mu.Unlock()

		fmt.Printf("[%d/%d] Summarization completed: %s\n", index+1, len(cfg.Targets), summary.Target)

		if summary.Err != nil {
			fmt.Fprintf(os.Stderr, "Summarization error for %s: %v\n", summary.Target, summary.Err)
			return
		}

		// Generate and output report
		if err := outputReport(cfg, summary); err != nil {
			logger.Error("report failed", "target", summary.Target, "error", err)
		}
	})

	elapsed := time.Since(startTime)
	fmt.Printf("\nBatch summarization completed in %s\n", elapsed.Round(time.Millisecond))

	return err
}

// getSiteConfig returns the site-specific configuration for a target.
// Falls back to defaults if no site-specific config exists.
func getSiteConfig(cfg *config.Config, target string) config.SiteConfig {
	if cfg.SiteConfigs == nil {
		return config.SiteConfig{}
	}
	return cfg.SiteConfigs.GetSiteConfig(targetDomain(target))
}

// targetDomain reduces a target URL to the bare domain used as the
// site-config lookup key.
func targetDomain(target string) string {
	domain := target
	for _, prefix := range []string{"http://", "https://"} {
		domain = strings.TrimPrefix(domain, prefix)
	}
	if idx := strings.IndexAny(domain, "/?#"); idx >= 0 {
		domain = domain[:idx]
	}
	return domain
}

// createPipelineForTarget creates a pipeline with the given configuration.
func createPipelineForTarget(dataset *trackerdata.Dataset, logger *slog.Logger, cfg *config.Config, db *database.LeaderboardDB, siteConfig config.SiteConfig) *pipeline.Pipeline {
	pipelineOpts := []pipeline.Option{
		pipeline.WithLogger(logger),
		pipeline.WithContinueOnError(true),
	}

	// Determine User-Agent (site-specific overrides global)
	userAgent := cfg.UserAgent
	if siteConfig.UserAgent != "" {
		userAgent = siteConfig.UserAgent
	}

	configOpts := []pipeline.DefaultPipelineOption{
		pipeline.WithPipelineTimeout(cfg.Timeout),
		pipeline.WithPipelineUserAgent(userAgent),
		pipeline.WithPipelineMaxBodySize(cfg.MaxBodySize),
		pipeline.WithPipelineHTTPSUpgradeDisabled(cfg.NoHTTPSUpgrade),
	}

	// Add allowlisted domains if configured
	if len(siteConfig.Allowlist) > 0 {
		configOpts = append(configOpts, pipeline.WithPipelineAllowlist(siteConfig.Allowlist))
	}

	// Protections off if disabled globally or for this site
	if cfg.ProtectionsDisabled || siteConfig.ProtectionsDisabled {
		configOpts = append(configOpts, pipeline.WithPipelineProtectionsDisabled(true))
	}

	// Record sightings when a store is open
	if db != nil {
		configOpts = append(configOpts, pipeline.WithPipelineLeaderboard(db))
	}

	return pipeline.DefaultPipeline(dataset, pipelineOpts, configOpts...)
}

// outputReport outputs the summarization report in the requested format.
func outputReport(cfg *config.Config, summary *pipeline.Summary) error {
	if summary.State == nil {
		return fmt.Errorf("no view state produced for %s", summary.Target)
	}

	// Determine output destination
	var output *os.File
	if cfg.ReportFile != "" {
		// Create directories if they don't exist
		dir := filepath.Dir(cfg.ReportFile)
		if dir != "" && dir != "." {
			if err := os.MkdirAll(dir, 0750); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}
		}

		// Create/overwrite the output file with owner-only permissions.
		// Reports list the exact URLs a user visited.
		f, err := os.OpenFile(cfg.ReportFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		output = f
	} else {
		output = os.Stdout
	}

	// JSON output (full state with version envelope)
	if cfg.JSONReport {
		writer := report.NewFullJSONWriter(output, getVersion(), report.WithPrettyPrint())
		_, err := writer.Write(summary.State)
		return err
	}

	// Markdown output
	if cfg.MarkdownReport {
		writer := report.NewMarkdownWriter(output)
		_, err := writer.Write(summary.State)
		return err
	}

	// Human-readable report (default)
	writer := report.NewSimpleWriter(output, report.WithVerbose(cfg.Verbose))
	_, err := writer.Write(summary.State)
	return err
}
