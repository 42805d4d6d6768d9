package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nao1215/trackerscope/internal/dashboard"
	"github.com/nao1215/trackerscope/internal/detector"
	"github.com/nao1215/trackerscope/internal/trackerdata"
)

// FetchStep downloads the target page.
// This step resolves the target to a URL, fetches it (upgrading to
// HTTPS when possible), and stores the page in the summary.
//
// Design decision: Fetching is a separate step because:
// 1. It's the only step that touches the network
// 2. Its failure means there is nothing for later steps to analyze
// 3. Can be replaced with a stub when summarizing saved pages
type FetchStep struct {
	// fetcher downloads pages with retry and HTTPS-upgrade handling.
	fetcher *detector.Fetcher

	// logger for structured logging.
	logger *slog.Logger
}

// FetchStepOption configures a FetchStep.
type FetchStepOption func(*FetchStep)

// WithFetchLogger sets a custom logger for the fetch step.
func WithFetchLogger(logger *slog.Logger) FetchStepOption {
	return func(s *FetchStep) {
		s.logger = logger
	}
}

// NewFetchStep creates a new page fetching step.
func NewFetchStep(fetcher *detector.Fetcher, opts ...FetchStepOption) *FetchStep {
	s := &FetchStep{
		fetcher: fetcher,
		logger:  slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *FetchStep) Name() string {
	return "fetch"
}

// Do executes the fetch step.
func (s *FetchStep) Do(ctx context.Context, summary *Summary) error {
	target := summary.Target
	if !strings.Contains(target, "://") {
		target = "http://" + target
	}

	page, err := s.fetcher.Fetch(ctx, target)
	if err != nil {
		return fmt.Errorf("failed to fetch %s: %w", summary.Target, err)
	}

	summary.Page = page
	s.logger.Debug("page fetched",
		"url", page.URL,
		"status", page.StatusCode,
		"https_upgraded", page.HTTPSUpgraded,
	)

	return nil
}

// DetectStep extracts third-party resource requests from the fetched
// page and matches them against the tracker dataset.
//
// Design decision: Detection is separate from fetching because:
// 1. It is pure computation on the page body, no network access
// 2. It carries site policy state (allowlist, protections toggle)
// 3. The same page can be re-analyzed with different policies
type DetectStep struct {
	// detector matches resource requests against the tracker dataset.
	detector *detector.Detector

	// logger for structured logging.
	logger *slog.Logger
}

// DetectStepOption configures a DetectStep.
type DetectStepOption func(*DetectStep)

// WithDetectLogger sets a custom logger for the detect step.
func WithDetectLogger(logger *slog.Logger) DetectStepOption {
	return func(s *DetectStep) {
		s.logger = logger
	}
}

// NewDetectStep creates a new tracker detection step.
func NewDetectStep(d *detector.Detector, opts ...DetectStepOption) *DetectStep {
	s := &DetectStep{
		detector: d,
		logger:   slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *DetectStep) Name() string {
	return "detect"
}

// Do executes the detect step.
func (s *DetectStep) Do(_ context.Context, summary *Summary) error {
	if summary.Page == nil {
		s.logger.Debug("skipping detection, no page fetched")
		return nil
	}

	resources, err := detector.ExtractResources(summary.Page.URL, summary.Page.Body)
	if err != nil {
		return fmt.Errorf("failed to extract resources from %s: %w", summary.Page.URL, err)
	}

	summary.Resources = resources
	summary.Snapshot = s.detector.Snapshot(summary.Page, resources)

	s.logger.Debug("detection completed",
		"resources", len(resources),
		"events", len(summary.Snapshot.Events),
	)

	return nil
}

// AggregateStep publishes the site snapshot through the dashboard view
// model and stores the resulting view state in the summary.
//
// Design decision: Aggregation goes through the view model rather than
// calling the fold directly so that anything subscribed to the view
// model (report writers, the leaderboard recorder in watch mode) sees
// the same state the summary carries.
type AggregateStep struct {
	// viewModel publishes view states. When nil, a fresh view model is
	// created per execution so state never leaks between targets.
	viewModel *dashboard.ViewModel

	// logger for structured logging.
	logger *slog.Logger
}

// AggregateStepOption configures an AggregateStep.
type AggregateStepOption func(*AggregateStep)

// WithViewModel sets a shared view model for the aggregate step.
func WithViewModel(vm *dashboard.ViewModel) AggregateStepOption {
	return func(s *AggregateStep) {
		s.viewModel = vm
	}
}

// WithAggregateLogger sets a custom logger for the aggregate step.
func WithAggregateLogger(logger *slog.Logger) AggregateStepOption {
	return func(s *AggregateStep) {
		s.logger = logger
	}
}

// NewAggregateStep creates a new aggregation step.
func NewAggregateStep(opts ...AggregateStepOption) *AggregateStep {
	s := &AggregateStep{
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *AggregateStep) Name() string {
	return "aggregate"
}

// Do executes the aggregate step.
func (s *AggregateStep) Do(_ context.Context, summary *Summary) error {
	if summary.Snapshot == nil {
		s.logger.Debug("skipping aggregation, no snapshot")
		return nil
	}

	vm := s.viewModel
	if vm == nil {
		vm = dashboard.NewViewModel(dashboard.WithLogger(s.logger))
	}

	summary.State = vm.SetSnapshot(summary.Snapshot)

	s.logger.Debug("view state published",
		"domain", summary.State.Domain,
		"trackers", len(summary.State.Trackers),
		"blocked", summary.State.TrackersBlocked,
		"grade", summary.State.Grade,
	)

	return nil
}

// LeaderboardStep records the published view state in the leaderboard
// store so prevalence builds up across runs.
//
// Design decision: Recording is a pipeline step rather than a view model
// subscriber because the CLI only wants one record per completed target,
// not one per intermediate state change.
type LeaderboardStep struct {
	// store accumulates per-network sightings across runs.
	store dashboard.Leaderboard

	// logger for structured logging.
	logger *slog.Logger
}

// LeaderboardStepOption configures a LeaderboardStep.
type LeaderboardStepOption func(*LeaderboardStep)

// WithLeaderboardLogger sets a custom logger for the leaderboard step.
func WithLeaderboardLogger(logger *slog.Logger) LeaderboardStepOption {
	return func(s *LeaderboardStep) {
		s.logger = logger
	}
}

// NewLeaderboardStep creates a new leaderboard recording step.
func NewLeaderboardStep(store dashboard.Leaderboard, opts ...LeaderboardStepOption) *LeaderboardStep {
	s := &LeaderboardStep{
		store:  store,
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Name returns the step name.
func (s *LeaderboardStep) Name() string {
	return "leaderboard"
}

// Do executes the leaderboard step.
func (s *LeaderboardStep) Do(ctx context.Context, summary *Summary) error {
	if summary.State == nil {
		s.logger.Debug("skipping leaderboard, no view state")
		return nil
	}

	if err := s.store.RecordSummary(ctx, summary.State); err != nil {
		return fmt.Errorf("failed to record leaderboard entry: %w", err)
	}

	return nil
}

// DefaultPipelineConfig holds configuration for the default pipeline.
type DefaultPipelineConfig struct {
	// Timeout bounds each page fetch.
	Timeout time.Duration

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Responses larger than this are truncated to prevent memory exhaustion.
	MaxBodySize int64

	// HTTPSUpgradeDisabled keeps http:// targets on plain HTTP instead
	// of trying HTTPS first.
	HTTPSUpgradeDisabled bool

	// Allowlist lists sites whose trackers load unblocked.
	Allowlist []string

	// ProtectionsDisabled turns off blocking entirely; trackers are
	// still detected and reported.
	ProtectionsDisabled bool

	// Leaderboard, when non-nil, enables the leaderboard recording step.
	Leaderboard dashboard.Leaderboard
}

// DefaultPipelineOption configures a DefaultPipelineConfig.
type DefaultPipelineOption func(*DefaultPipelineConfig)

// WithPipelineTimeout sets the per-fetch timeout for the pipeline.
func WithPipelineTimeout(d time.Duration) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Timeout = d
	}
}

// WithPipelineUserAgent sets the User-Agent header for HTTP requests.
func WithPipelineUserAgent(userAgent string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.UserAgent = userAgent
	}
}

// WithPipelineMaxBodySize sets the maximum response body size in bytes.
// Responses larger than this are truncated to prevent memory exhaustion.
func WithPipelineMaxBodySize(maxBodySize int64) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.MaxBodySize = maxBodySize
	}
}

// WithPipelineHTTPSUpgradeDisabled keeps http:// targets on plain HTTP
// instead of trying HTTPS first.
func WithPipelineHTTPSUpgradeDisabled(disabled bool) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.HTTPSUpgradeDisabled = disabled
	}
}

// WithPipelineAllowlist sets the sites whose trackers load unblocked.
func WithPipelineAllowlist(domains []string) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Allowlist = domains
	}
}

// WithPipelineProtectionsDisabled turns tracker blocking off while
// keeping detection and reporting on.
func WithPipelineProtectionsDisabled(disabled bool) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.ProtectionsDisabled = disabled
	}
}

// WithPipelineLeaderboard enables leaderboard recording with the given store.
func WithPipelineLeaderboard(store dashboard.Leaderboard) DefaultPipelineOption {
	return func(c *DefaultPipelineConfig) {
		c.Leaderboard = store
	}
}

// DefaultPipeline creates a pipeline with all default steps configured.
// This is the standard fetch, detect, aggregate sequence for
// summarizing one site, plus leaderboard recording when a store is set.
//
// Design decision: We provide a default pipeline because:
// 1. Most users want the full sequence
// 2. Reduces boilerplate in CLI
// 3. Ensures consistent ordering
//
// The first variadic parameter accepts pipeline options (WithLogger, etc).
// The second accepts pipeline config options (WithPipelineTimeout, etc).
func DefaultPipeline(dataset *trackerdata.Dataset, pipelineOpts []Option, configOpts ...DefaultPipelineOption) *Pipeline {
	p := New(pipelineOpts...)

	cfg := &DefaultPipelineConfig{
		Timeout:     detector.DefaultFetchTimeout,
		UserAgent:   detector.DefaultUserAgent,
		MaxBodySize: detector.DefaultMaxBodySize,
	}
	for _, opt := range configOpts {
		opt(cfg)
	}

	fetcher := detector.NewFetcher(
		detector.WithTimeout(cfg.Timeout),
		detector.WithUserAgent(cfg.UserAgent),
		detector.WithMaxBodySize(cfg.MaxBodySize),
		detector.WithHTTPSUpgrade(!cfg.HTTPSUpgradeDisabled),
	)

	detectorOpts := []detector.DetectorOption{
		detector.WithProtectionsDisabled(cfg.ProtectionsDisabled),
	}
	if len(cfg.Allowlist) > 0 {
		detectorOpts = append(detectorOpts, detector.WithAllowlist(cfg.Allowlist))
	}
	det := detector.NewDetector(dataset, detectorOpts...)

	// Add steps in logical order
	p.AddSteps(
		NewFetchStep(fetcher, WithFetchLogger(p.logger)),
		NewDetectStep(det, WithDetectLogger(p.logger)),
		NewAggregateStep(WithAggregateLogger(p.logger)),
	)

	if cfg.Leaderboard != nil {
		p.AddStep(NewLeaderboardStep(cfg.Leaderboard, WithLeaderboardLogger(p.logger)))
	}

	return p
}
