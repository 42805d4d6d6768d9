package trackerdata

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// testDataset returns a small dataset for lookup tests.
func testDataset() *Dataset {
	return &Dataset{
		Entities: map[string]EntityDef{
			"Acme Inc": {DisplayName: "Acme", Prevalence: 0.4},
			"trackly":  {Prevalence: 0.02},
		},
		Domains: map[string]DomainRule{
			"tracker.example":     {Entity: "Acme Inc", Categories: []string{"Advertising"}},
			"cdn.acme.example":    {Entity: "Acme Inc", Categories: []string{"CDN"}, Action: ActionIgnore},
			"trackly.example":     {Entity: "trackly"},
			"orphan.example":      {Entity: "Unknown Entity"},
		},
	}
}

// TestDatasetFindEntity tests domain lookup.
func TestDatasetFindEntity(t *testing.T) {
	t.Parallel()

	ds := testDataset()

	t.Run("exact domain matches", func(t *testing.T) {
		t.Parallel()

		m := ds.FindEntity("tracker.example")
		if m == nil {
			t.Fatal("expected a match")
		}
		if m.Entity.DisplayName != "Acme" {
			t.Errorf("got %q, expected %q", m.Entity.DisplayName, "Acme")
		}
		if m.Entity.Prevalence != 0.4 {
			t.Errorf("got prevalence %v, expected 0.4", m.Entity.Prevalence)
		}
		if m.Action != ActionBlock {
			t.Errorf("got action %q, expected default block", m.Action)
		}
	})

	t.Run("subdomain matches via parent-label walk", func(t *testing.T) {
		t.Parallel()

		m := ds.FindEntity("a.b.tracker.example")
		if m == nil {
			t.Fatal("expected a match for subdomain")
		}
		if m.Entity.DisplayName != "Acme" {
			t.Errorf("got %q, expected %q", m.Entity.DisplayName, "Acme")
		}
	})

	t.Run("lookup is case-insensitive", func(t *testing.T) {
		t.Parallel()

		if ds.FindEntity("Tracker.Example") == nil {
			t.Error("expected a case-insensitive match")
		}
	})

	t.Run("unknown host returns nil", func(t *testing.T) {
		t.Parallel()

		if m := ds.FindEntity("unrelated.example"); m != nil {
			t.Errorf("expected nil, got match for %q", m.Entity.Name)
		}
	})

	t.Run("ignore action is preserved", func(t *testing.T) {
		t.Parallel()

		m := ds.FindEntity("cdn.acme.example")
		if m == nil {
			t.Fatal("expected a match")
		}
		if m.Action != ActionIgnore {
			t.Errorf("got action %q, expected %q", m.Action, ActionIgnore)
		}
	})

	t.Run("missing display name falls back to title-cased key", func(t *testing.T) {
		t.Parallel()

		m := ds.FindEntity("trackly.example")
		if m == nil {
			t.Fatal("expected a match")
		}
		if m.Entity.DisplayName != "Trackly" {
			t.Errorf("got %q, expected %q", m.Entity.DisplayName, "Trackly")
		}
	})

	t.Run("rule with unknown entity degrades to zero prevalence", func(t *testing.T) {
		t.Parallel()

		m := ds.FindEntity("orphan.example")
		if m == nil {
			t.Fatal("expected a match")
		}
		if m.Entity.Prevalence != 0 {
			t.Errorf("got prevalence %v, expected 0", m.Entity.Prevalence)
		}
		if m.Entity.DisplayName == "" {
			t.Error("expected a display-name fallback")
		}
	})
}

// TestLoad tests dataset file loading.
func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("loads a valid dataset", func(t *testing.T) {
		t.Parallel()

		content := `
entities:
  Acme Inc:
    displayName: Acme
    prevalence: 0.4
domains:
  tracker.example:
    entity: Acme Inc
    categories: [Advertising]
`
		path := filepath.Join(t.TempDir(), "dataset.yaml")
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write dataset: %v", err)
		}

		ds, err := Load(path)
		if err != nil {
			t.Fatalf("failed to load dataset: %v", err)
		}
		m := ds.FindEntity("tracker.example")
		if m == nil || m.Entity.DisplayName != "Acme" {
			t.Error("expected loaded dataset to resolve tracker.example to Acme")
		}
	})

	t.Run("missing file returns ErrDatasetNotFound", func(t *testing.T) {
		t.Parallel()

		_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
		if !errors.Is(err, ErrDatasetNotFound) {
			t.Errorf("got %v, expected ErrDatasetNotFound", err)
		}
	})

	t.Run("malformed YAML returns an error", func(t *testing.T) {
		t.Parallel()

		path := filepath.Join(t.TempDir(), "broken.yaml")
		if err := os.WriteFile(path, []byte("entities: [not a map"), 0600); err != nil {
			t.Fatalf("failed to write dataset: %v", err)
		}

		if _, err := Load(path); err == nil {
			t.Error("expected an error for malformed YAML")
		}
	})
}

// TestBuiltin sanity-checks the compiled-in dataset.
func TestBuiltin(t *testing.T) {
	t.Parallel()

	ds := Builtin()

	t.Run("every domain rule references a defined entity", func(t *testing.T) {
		t.Parallel()

		for domain, rule := range ds.Domains {
			if _, ok := ds.Entities[rule.Entity]; !ok {
				t.Errorf("domain %q references undefined entity %q", domain, rule.Entity)
			}
		}
	})

	t.Run("resolves a well-known analytics host", func(t *testing.T) {
		t.Parallel()

		m := ds.FindEntity("www.google-analytics.com")
		if m == nil {
			t.Fatal("expected a match for google-analytics.com")
		}
		if m.Entity.DisplayName != "Google" {
			t.Errorf("got %q, expected %q", m.Entity.DisplayName, "Google")
		}
		if m.Action != ActionBlock {
			t.Errorf("got action %q, expected block", m.Action)
		}
	})

	t.Run("prevalence scores stay in range", func(t *testing.T) {
		t.Parallel()

		for name, def := range ds.Entities {
			if def.Prevalence < 0 || def.Prevalence > 1 {
				t.Errorf("entity %q has out-of-range prevalence %v", name, def.Prevalence)
			}
		}
	})
}
