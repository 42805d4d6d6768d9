package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
// These values are chosen based on typical clearnet page-load
// characteristics and the browser dashboard behavior they mirror.
const (
	// DefaultTimeout is set to 30 seconds because page fetches ride over
	// the open internet. Most pages respond within a few seconds; a page
	// that takes longer than 30 is effectively down for summarization.
	DefaultTimeout = 30 * time.Second

	// DefaultBatchSize of 10 concurrent targets balances throughput with
	// resource usage. Higher values may trigger rate limiting on sites
	// behind shared CDNs. Lower values are safer but slower for large
	// target lists.
	DefaultBatchSize = 10

	// AppName is the application name used for XDG directory paths.
	AppName = "trackerscope"

	// DefaultUserAgent identifies trackerscope in HTTP requests.
	// Using a descriptive User-Agent is good practice and allows operators
	// to identify summarizer traffic in their logs.
	DefaultUserAgent = "trackerscope/1.0 (+https://github.com/nao1215/trackerscope)"

	// DefaultMaxBodySize limits the maximum response body size to read.
	// 5MB is sufficient for most HTML pages while preventing memory
	// exhaustion from unexpectedly large responses.
	DefaultMaxBodySize = 5 * 1024 * 1024 // 5MB

	// DefaultLeaderboardSize is how many networks the leaderboard shows.
	DefaultLeaderboardSize = 10
)

// Config holds all configuration options for trackerscope.
// This struct is designed to be populated from CLI flags and passed through
// the application via dependency injection rather than global state.
//
// Design decision: We use a single flat struct instead of nested structs
// (e.g., FetchConfig, ReportConfig) for simplicity. The number of options
// is manageable, and nesting would add complexity without significant benefit.
// If the configuration grows significantly, consider refactoring into sub-structs.
type Config struct {
	// Targets is the list of site URLs or hostnames to summarize.
	// Must contain at least one target.
	Targets []string

	// DatasetPath is the path to a YAML tracker dataset file.
	// When empty, the compiled-in dataset is used.
	DatasetPath string

	// Timeout is the fetch timeout for each target page.
	// This applies to individual page loads including retries.
	Timeout time.Duration

	// UserAgent is the User-Agent header sent with HTTP requests.
	// A descriptive User-Agent helps site operators identify summarizer traffic.
	UserAgent string

	// MaxBodySize is the maximum response body size in bytes to read.
	// Responses larger than this are truncated to prevent memory exhaustion.
	// Set to 0 to use the default (5MB).
	MaxBodySize int64

	// BatchSize is the number of concurrent fetches when processing
	// multiple targets. Higher values increase throughput but may
	// overwhelm system resources.
	BatchSize int

	// Verbose enables detailed log output using slog.LevelDebug.
	// When false, only warnings and errors are logged.
	Verbose bool

	// NoHTTPSUpgrade disables trying HTTPS first for plain-HTTP targets.
	// The upgrade is on by default because the dashboard reports on it.
	NoHTTPSUpgrade bool

	// ProtectionsDisabled turns tracker blocking off globally. Trackers
	// are still detected and reported, matching the dashboard's
	// protections toggle. Per-site overrides live in SiteConfigs.
	ProtectionsDisabled bool

	// JSONReport enables JSON output instead of human-readable format.
	// When true, outputs the full view state as JSON.
	// When false, outputs a human-readable summary (default).
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport enables Markdown output instead of human-readable format.
	// When true, outputs GitHub Flavored Markdown with tables, alerts, and
	// pie charts. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output file path for the summary.
	// When set, the summary is written to this file instead of stdout.
	// Directories are created automatically if they don't exist.
	ReportFile string

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches for .trackerscope in the current
	// directory and then in the user's home directory.
	ConfigFilePath string

	// SiteConfigs holds site-specific configurations loaded from the
	// config file. This is populated by LoadConfigFile and consulted
	// per target during summarization.
	SiteConfigs *File

	// DBDir is the directory path for storing the SQLite leaderboard
	// database. When set, per-network sightings accumulate across runs.
	// When empty, nothing is persisted.
	// Defaults to XDG data directory (~/.local/share/trackerscope on Linux).
	DBDir string

	// SaveToDB indicates whether to record sightings in the leaderboard
	// database. This is automatically set to true when DBDir is configured.
	SaveToDB bool

	// LeaderboardSize is how many networks the leaderboard command shows.
	LeaderboardSize int
}

// NewConfig creates a new Config with default values.
// All fields are set to safe, sensible defaults that work for most use cases.
// Users can override specific values after creation.
//
// Design decision: We use a constructor function instead of relying on
// zero values because many defaults are non-zero (e.g., timeout, batch size).
// This also serves as documentation of what the defaults are.
func NewConfig() *Config {
	return &Config{
		Timeout:         DefaultTimeout,
		BatchSize:       DefaultBatchSize,
		UserAgent:       DefaultUserAgent,
		MaxBodySize:     DefaultMaxBodySize,
		LeaderboardSize: DefaultLeaderboardSize,
	}
}

// XDGDataDir returns the XDG data directory for trackerscope.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.local/share/trackerscope
// On macOS: ~/Library/Application Support/trackerscope
// On Windows: %LOCALAPPDATA%\trackerscope
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for trackerscope.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.config/trackerscope
// On macOS: ~/Library/Application Support/trackerscope
// On Windows: %APPDATA%\trackerscope
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for trackerscope.
// This follows the XDG Base Directory Specification.
// On Linux: ~/.cache/trackerscope
// On macOS: ~/Library/Caches/trackerscope
// On Windows: %LOCALAPPDATA%\trackerscope\cache
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns a specific error describing what is invalid.
//
// Design decision: We validate at the config level rather than at each
// point of use to fail fast and provide clear error messages upfront.
// This is called once after CLI parsing, before any fetching begins.
//
// We chose to return the first error found rather than collecting all errors
// because fixing one error often makes others irrelevant.
func (c *Config) Validate() error {
	// We must have at least one target to summarize
	if len(c.Targets) == 0 {
		return ErrNoTarget
	}

	// Timeout must be positive; zero timeout would cause immediate failures
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}

	// BatchSize must be positive; zero would mean no processing
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}

	// JSONReport and MarkdownReport are mutually exclusive
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	// MaxBodySize must be non-negative; zero means use the default
	if c.MaxBodySize < 0 {
		return ErrInvalidMaxBodySize
	}

	// LeaderboardSize must be positive
	if c.LeaderboardSize <= 0 {
		return ErrInvalidLeaderboardSize
	}

	return nil
}
