package database

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/nao1215/trackerscope/internal/dashboard"
)

// Leaderboard display thresholds.
//
// The leaderboard is only statistically meaningful after enough
// browsing has been observed; with a handful of sites the "top
// networks" are noise. These gates mirror the dashboard's display
// policy of hiding the board until it can say something useful.
const (
	// MinSitesVisited is the minimum number of distinct sites that must
	// have been summarized before the leaderboard is shown.
	MinSitesVisited = 30

	// MinNetworks is the minimum number of distinct tracker networks
	// that must have been seen before the leaderboard is shown.
	MinNetworks = 3
)

// LeaderboardDB provides SQLite-based storage for tracker-network
// sightings. It implements dashboard.Leaderboard.
//
// Design decision: We store one row per (network, site) pair and derive
// per-network totals with GROUP BY rather than maintaining running
// counters, so "sites seen" stays a distinct count even when the same
// site is summarized repeatedly.
type LeaderboardDB struct {
	// db is the underlying SQL database connection.
	db *sql.DB

	// dbPath is the path to the SQLite database file.
	dbPath string
}

// Options configures LeaderboardDB behavior.
type Options struct {
	// CreateIfNotExists creates the database file if it doesn't exist.
	CreateIfNotExists bool

	// EnableWAL enables Write-Ahead Logging for better concurrent
	// performance. This is recommended for most use cases.
	EnableWAL bool
}

// DefaultOptions returns the default database options.
func DefaultOptions() Options {
	return Options{
		CreateIfNotExists: true,
		EnableWAL:         true,
	}
}

// Open opens or creates a LeaderboardDB at the specified directory.
// If CreateIfNotExists is false and the database doesn't exist, an
// error is returned instead of creating an empty store.
func Open(dbDir string, opts Options) (*LeaderboardDB, error) {
	dbPath := filepath.Join(dbDir, "trackerscope.db")

	if !opts.CreateIfNotExists {
		if _, err := os.Stat(dbPath); os.IsNotExist(err) {
			return nil, fmt.Errorf("leaderboard database not found at %s (use CreateIfNotExists option to create)", dbPath)
		} else if err != nil {
			return nil, fmt.Errorf("failed to check database path: %w", err)
		}
	} else {
		if err := os.MkdirAll(dbDir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	// modernc.org/sqlite connection string: mode=rw prevents creating
	// new files, mode=rwc allows creation.
	dsn := dbPath + "?mode=rw"
	if opts.CreateIfNotExists {
		dsn = dbPath + "?mode=rwc"
	}

	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer; a single pooled connection
	// avoids lock contention entirely.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(time.Hour)

	ldb := &LeaderboardDB{db: db, dbPath: dbPath}

	if opts.EnableWAL {
		if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if err := ldb.createTables(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return ldb, nil
}

// Close closes the database connection.
func (ldb *LeaderboardDB) Close() error {
	return ldb.db.Close()
}

// createTables creates the database schema if it doesn't exist.
func (ldb *LeaderboardDB) createTables() error {
	schema := `
	-- Visits track distinct summarized sites.
	CREATE TABLE IF NOT EXISTS visits (
		domain TEXT PRIMARY KEY,
		visit_count INTEGER NOT NULL DEFAULT 1,
		first_visit DATETIME DEFAULT CURRENT_TIMESTAMP,
		last_visit DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	-- Sightings track per-network, per-site event totals.
	CREATE TABLE IF NOT EXISTS network_sightings (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		network TEXT NOT NULL,
		domain TEXT NOT NULL,
		events_total INTEGER NOT NULL DEFAULT 0,
		events_blocked INTEGER NOT NULL DEFAULT 0,
		prevalence REAL NOT NULL DEFAULT 0,
		last_seen DATETIME DEFAULT CURRENT_TIMESTAMP,
		UNIQUE(network, domain)
	);

	CREATE INDEX IF NOT EXISTS idx_sightings_network ON network_sightings(network);
	CREATE INDEX IF NOT EXISTS idx_sightings_domain ON network_sightings(domain);
	`

	_, err := ldb.db.ExecContext(context.Background(), schema)
	return err
}

// RecordSummary folds one published view state into the store.
// A state with no domain (no site loaded) is ignored.
func (ldb *LeaderboardDB) RecordSummary(ctx context.Context, state *dashboard.ViewState) error {
	if state == nil || state.Domain == "" {
		return nil
	}

	visitQuery := `
	INSERT INTO visits (domain) VALUES (?)
	ON CONFLICT(domain) DO UPDATE SET
		visit_count = visit_count + 1,
		last_visit = CURRENT_TIMESTAMP
	`
	if _, err := ldb.db.ExecContext(ctx, visitQuery, state.Domain); err != nil {
		return fmt.Errorf("failed to record visit: %w", err)
	}

	sightingQuery := `
	INSERT INTO network_sightings (network, domain, events_total, events_blocked, prevalence)
	VALUES (?, ?, ?, ?, ?)
	ON CONFLICT(network, domain) DO UPDATE SET
		events_total = events_total + excluded.events_total,
		events_blocked = events_blocked + excluded.events_blocked,
		prevalence = excluded.prevalence,
		last_seen = CURRENT_TIMESTAMP
	`
	for _, view := range state.Trackers {
		blocked := 0
		for _, outcome := range view.URLs {
			if outcome.Blocked {
				blocked++
			}
		}
		if _, err := ldb.db.ExecContext(ctx, sightingQuery,
			view.DisplayName,
			state.Domain,
			view.Count,
			blocked,
			view.Prevalence,
		); err != nil {
			return fmt.Errorf("failed to record sighting for %s: %w", view.DisplayName, err)
		}
	}

	return nil
}

// TopNetworks returns the n tracker networks seen on the most distinct
// sites, best first.
func (ldb *LeaderboardDB) TopNetworks(ctx context.Context, n int) ([]dashboard.NetworkEntry, error) {
	query := `
	SELECT network,
	       COUNT(DISTINCT domain) AS sites_seen,
	       SUM(events_total) AS events_total,
	       SUM(events_blocked) AS events_blocked,
	       MAX(prevalence) AS prevalence
	FROM network_sightings
	GROUP BY network
	ORDER BY sites_seen DESC, events_total DESC, network ASC
	LIMIT ?
	`

	rows, err := ldb.db.QueryContext(ctx, query, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query top networks: %w", err)
	}
	defer rows.Close()

	var entries []dashboard.NetworkEntry
	for rows.Next() {
		var e dashboard.NetworkEntry
		if err := rows.Scan(&e.Network, &e.SitesSeen, &e.EventsTotal, &e.EventsBlocked, &e.Prevalence); err != nil {
			return nil, fmt.Errorf("failed to scan network entry: %w", err)
		}
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// SitesVisited returns the number of distinct summarized sites.
func (ldb *LeaderboardDB) SitesVisited(ctx context.Context) (int, error) {
	var count int
	err := ldb.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM visits`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count visits: %w", err)
	}
	return count, nil
}

// NetworkCount returns the number of distinct tracker networks seen.
func (ldb *LeaderboardDB) NetworkCount(ctx context.Context) (int, error) {
	var count int
	err := ldb.db.QueryRowContext(ctx, `SELECT COUNT(DISTINCT network) FROM network_sightings`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count networks: %w", err)
	}
	return count, nil
}

// ShouldShow reports whether the accumulated data passes the display
// thresholds: at least MinSitesVisited distinct sites and MinNetworks
// distinct networks.
func (ldb *LeaderboardDB) ShouldShow(ctx context.Context) (bool, error) {
	sites, err := ldb.SitesVisited(ctx)
	if err != nil {
		return false, err
	}
	if sites < MinSitesVisited {
		return false, nil
	}

	networks, err := ldb.NetworkCount(ctx)
	if err != nil {
		return false, err
	}
	return networks >= MinNetworks, nil
}
