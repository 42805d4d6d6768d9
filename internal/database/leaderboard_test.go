package database

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/nao1215/trackerscope/internal/dashboard"
)

// setupTestDB creates a temporary leaderboard database for testing.
func setupTestDB(t *testing.T) *LeaderboardDB {
	t.Helper()

	db, err := Open(t.TempDir(), DefaultOptions())
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	return db
}

// stateFor builds a minimal view state with one tracker network.
func stateFor(domain, network string, blocked, total int) *dashboard.ViewState {
	urls := make(map[string]dashboard.URLOutcome)
	for i := 0; i < total; i++ {
		urls["https://"+network+".example/r"+strconv.Itoa(i)] = dashboard.URLOutcome{
			Blocked:    i < blocked,
			Categories: []string{},
		}
	}
	return &dashboard.ViewState{
		URL:    "https://" + domain + "/",
		Domain: domain,
		Trackers: map[string]*dashboard.TrackerView{
			network: {
				DisplayName: network,
				Prevalence:  0.4,
				URLs:        urls,
				Count:       total,
			},
		},
	}
}

// TestOpen tests database opening and creation.
func TestOpen(t *testing.T) {
	t.Parallel()

	t.Run("creates database in new directory", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "newdir", "subdir")
		db, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to open database: %v", err)
		}
		defer db.Close()

		if _, err := os.Stat(filepath.Join(dbDir, "trackerscope.db")); os.IsNotExist(err) {
			t.Error("database file was not created")
		}
	})

	t.Run("CreateIfNotExists=false returns error when database does not exist", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "nonexistent")
		_, err := Open(dbDir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err == nil {
			t.Fatal("expected error when database does not exist")
		}
	})

	t.Run("CreateIfNotExists=false opens existing database", func(t *testing.T) {
		t.Parallel()

		dbDir := filepath.Join(t.TempDir(), "existing")
		db1, err := Open(dbDir, DefaultOptions())
		if err != nil {
			t.Fatalf("failed to create database: %v", err)
		}
		_ = db1.Close()

		db2, err := Open(dbDir, Options{CreateIfNotExists: false, EnableWAL: true})
		if err != nil {
			t.Fatalf("failed to open existing database: %v", err)
		}
		defer db2.Close()
	})
}

// TestRecordSummary tests sighting accumulation.
func TestRecordSummary(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("records visits and sightings", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		if err := db.RecordSummary(ctx, stateFor("example.com", "Acme", 2, 3)); err != nil {
			t.Fatalf("failed to record summary: %v", err)
		}

		sites, err := db.SitesVisited(ctx)
		if err != nil {
			t.Fatalf("failed to count sites: %v", err)
		}
		if sites != 1 {
			t.Errorf("got %d sites, expected 1", sites)
		}

		entries, err := db.TopNetworks(ctx, 10)
		if err != nil {
			t.Fatalf("failed to query top networks: %v", err)
		}
		if len(entries) != 1 {
			t.Fatalf("got %d entries, expected 1", len(entries))
		}
		if entries[0].Network != "Acme" {
			t.Errorf("got network %q, expected %q", entries[0].Network, "Acme")
		}
		if entries[0].EventsTotal != 3 || entries[0].EventsBlocked != 2 {
			t.Errorf("got totals %d/%d, expected 3/2",
				entries[0].EventsBlocked, entries[0].EventsTotal)
		}
	})

	t.Run("repeat visit to the same site keeps sites_seen distinct", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		for i := 0; i < 3; i++ {
			if err := db.RecordSummary(ctx, stateFor("example.com", "Acme", 1, 1)); err != nil {
				t.Fatalf("failed to record summary: %v", err)
			}
		}

		entries, err := db.TopNetworks(ctx, 10)
		if err != nil {
			t.Fatalf("failed to query top networks: %v", err)
		}
		if entries[0].SitesSeen != 1 {
			t.Errorf("got sites seen %d, expected 1", entries[0].SitesSeen)
		}
		if entries[0].EventsTotal != 3 {
			t.Errorf("got events total %d, expected accumulated 3", entries[0].EventsTotal)
		}
	})

	t.Run("orders networks by distinct sites seen", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		for _, domain := range []string{"a.example", "b.example", "c.example"} {
			if err := db.RecordSummary(ctx, stateFor(domain, "Everywhere", 1, 1)); err != nil {
				t.Fatalf("failed to record summary: %v", err)
			}
		}
		if err := db.RecordSummary(ctx, stateFor("a.example", "Rare", 1, 1)); err != nil {
			t.Fatalf("failed to record summary: %v", err)
		}

		entries, err := db.TopNetworks(ctx, 10)
		if err != nil {
			t.Fatalf("failed to query top networks: %v", err)
		}
		if len(entries) != 2 {
			t.Fatalf("got %d entries, expected 2", len(entries))
		}
		if entries[0].Network != "Everywhere" {
			t.Errorf("got first network %q, expected %q", entries[0].Network, "Everywhere")
		}
	})

	t.Run("empty state is ignored", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		if err := db.RecordSummary(ctx, &dashboard.ViewState{}); err != nil {
			t.Fatalf("expected empty state to be a no-op, got: %v", err)
		}

		sites, err := db.SitesVisited(ctx)
		if err != nil {
			t.Fatalf("failed to count sites: %v", err)
		}
		if sites != 0 {
			t.Errorf("got %d sites, expected 0", sites)
		}
	})
}

// TestShouldShow tests the leaderboard display thresholds.
func TestShouldShow(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("hidden with too few sites", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		if err := db.RecordSummary(ctx, stateFor("a.example", "Acme", 1, 1)); err != nil {
			t.Fatalf("failed to record summary: %v", err)
		}

		show, err := db.ShouldShow(ctx)
		if err != nil {
			t.Fatalf("ShouldShow failed: %v", err)
		}
		if show {
			t.Error("expected leaderboard to stay hidden below the site threshold")
		}
	})

	t.Run("hidden with enough sites but too few networks", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		for i := 0; i < MinSitesVisited; i++ {
			domain := "site" + strconv.Itoa(i) + ".example"
			if err := db.RecordSummary(ctx, stateFor(domain, "OnlyOne", 1, 1)); err != nil {
				t.Fatalf("failed to record summary: %v", err)
			}
		}

		show, err := db.ShouldShow(ctx)
		if err != nil {
			t.Fatalf("ShouldShow failed: %v", err)
		}
		if show {
			t.Error("expected leaderboard to stay hidden below the network threshold")
		}
	})

	t.Run("shown past both thresholds", func(t *testing.T) {
		t.Parallel()

		db := setupTestDB(t)
		networks := []string{"Acme", "Trackly", "Pixelry"}
		for i := 0; i < MinSitesVisited; i++ {
			domain := "site" + strconv.Itoa(i) + ".example"
			network := networks[i%len(networks)]
			if err := db.RecordSummary(ctx, stateFor(domain, network, 1, 1)); err != nil {
				t.Fatalf("failed to record summary: %v", err)
			}
		}

		show, err := db.ShouldShow(ctx)
		if err != nil {
			t.Fatalf("ShouldShow failed: %v", err)
		}
		if !show {
			t.Error("expected leaderboard to be shown past both thresholds")
		}
	})
}
