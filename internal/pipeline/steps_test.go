package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nao1215/trackerscope/internal/dashboard"
	"github.com/nao1215/trackerscope/internal/detector"
	"github.com/nao1215/trackerscope/internal/trackerdata"
)

// testDataset returns a small dataset with one blocking tracker network.
func testDataset() *trackerdata.Dataset {
	return &trackerdata.Dataset{
		Entities: map[string]trackerdata.EntityDef{
			"Pixelry": {DisplayName: "Pixelry", Prevalence: 0.3},
		},
		Domains: map[string]trackerdata.DomainRule{
			"pixelry.net": {Entity: "Pixelry", Action: trackerdata.ActionBlock, Categories: []string{"Advertising"}},
		},
	}
}

// recordingStore implements dashboard.Leaderboard for tests.
type recordingStore struct {
	recorded []*dashboard.ViewState
	err      error
}

func (r *recordingStore) RecordSummary(_ context.Context, state *dashboard.ViewState) error {
	if r.err != nil {
		return r.err
	}
	r.recorded = append(r.recorded, state)
	return nil
}

func (r *recordingStore) TopNetworks(_ context.Context, _ int) ([]dashboard.NetworkEntry, error) {
	return nil, nil
}

func (r *recordingStore) ShouldShow(_ context.Context) (bool, error) {
	return false, nil
}

// TestFetchStep tests the page fetching step.
func TestFetchStep(t *testing.T) {
	t.Parallel()

	t.Run("returns step name", func(t *testing.T) {
		t.Parallel()

		step := NewFetchStep(detector.NewFetcher())
		if step.Name() != "fetch" {
			t.Errorf("expected name 'fetch', got %q", step.Name())
		}
	})

	t.Run("stores fetched page in summary", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "text/html")
			_, _ = w.Write([]byte("<html><body>hello</body></html>"))
		}))
		defer server.Close()

		fetcher := detector.NewFetcher(detector.WithHTTPSUpgrade(false))
		step := NewFetchStep(fetcher)

		summary := NewSummary(server.URL)
		if err := step.Do(context.Background(), summary); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if summary.Page == nil {
			t.Fatal("expected page to be stored in summary")
		}
		if summary.Page.StatusCode != http.StatusOK {
			t.Errorf("got status %d, expected 200", summary.Page.StatusCode)
		}
		if len(summary.Page.Body) == 0 {
			t.Error("expected non-empty page body")
		}
	})

	t.Run("returns error for unreachable target", func(t *testing.T) {
		t.Parallel()

		fetcher := detector.NewFetcher(detector.WithHTTPSUpgrade(false))
		step := NewFetchStep(fetcher)

		summary := NewSummary("http://127.0.0.1:1/unreachable")
		if err := step.Do(context.Background(), summary); err == nil {
			t.Error("expected error for unreachable target")
		}
	})
}

// TestDetectStep tests the tracker detection step.
func TestDetectStep(t *testing.T) {
	t.Parallel()

	t.Run("returns step name", func(t *testing.T) {
		t.Parallel()

		step := NewDetectStep(detector.NewDetector(testDataset()))
		if step.Name() != "detect" {
			t.Errorf("expected name 'detect', got %q", step.Name())
		}
	})

	t.Run("extracts resources and builds snapshot", func(t *testing.T) {
		t.Parallel()

		step := NewDetectStep(detector.NewDetector(testDataset()))

		summary := NewSummary("news.example")
		summary.Page = &detector.Page{
			URL:  "https://news.example/",
			Body: []byte(`<html><body><script src="https://cdn.pixelry.net/tag.js"></script></body></html>`),
		}

		if err := step.Do(context.Background(), summary); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(summary.Resources) != 1 {
			t.Fatalf("expected 1 resource, got %d", len(summary.Resources))
		}
		if summary.Snapshot == nil {
			t.Fatal("expected snapshot to be built")
		}
		if len(summary.Snapshot.Events) != 1 {
			t.Fatalf("expected 1 tracking event, got %d", len(summary.Snapshot.Events))
		}
		if summary.Snapshot.Events[0].Entity == nil ||
			summary.Snapshot.Events[0].Entity.DisplayName != "Pixelry" {
			t.Errorf("expected event attributed to Pixelry, got %+v", summary.Snapshot.Events[0].Entity)
		}
	})

	t.Run("skips when no page was fetched", func(t *testing.T) {
		t.Parallel()

		step := NewDetectStep(detector.NewDetector(testDataset()))

		summary := NewSummary("news.example")
		if err := step.Do(context.Background(), summary); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if summary.Snapshot != nil {
			t.Error("expected no snapshot without a page")
		}
	})
}

// TestAggregateStep tests the dashboard aggregation step.
func TestAggregateStep(t *testing.T) {
	t.Parallel()

	t.Run("returns step name", func(t *testing.T) {
		t.Parallel()

		step := NewAggregateStep()
		if step.Name() != "aggregate" {
			t.Errorf("expected name 'aggregate', got %q", step.Name())
		}
	})

	t.Run("publishes view state from snapshot", func(t *testing.T) {
		t.Parallel()

		det := detector.NewDetector(testDataset())
		page := &detector.Page{
			URL:  "https://news.example/",
			Body: []byte(`<html><body><script src="https://cdn.pixelry.net/tag.js"></script></body></html>`),
		}
		resources, err := detector.ExtractResources(page.URL, page.Body)
		if err != nil {
			t.Fatalf("failed to extract resources: %v", err)
		}

		summary := NewSummary("news.example")
		summary.Page = page
		summary.Snapshot = det.Snapshot(page, resources)

		step := NewAggregateStep()
		if err := step.Do(context.Background(), summary); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if summary.State == nil {
			t.Fatal("expected view state to be published")
		}
		if summary.State.Domain != "news.example" {
			t.Errorf("got domain %q, expected %q", summary.State.Domain, "news.example")
		}
		if _, ok := summary.State.Trackers["Pixelry"]; !ok {
			t.Errorf("expected Pixelry view row, got %v", summary.State.Trackers)
		}
	})

	t.Run("skips when no snapshot", func(t *testing.T) {
		t.Parallel()

		step := NewAggregateStep()
		summary := NewSummary("news.example")

		if err := step.Do(context.Background(), summary); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if summary.State != nil {
			t.Error("expected no view state without a snapshot")
		}
	})

	t.Run("uses shared view model when set", func(t *testing.T) {
		t.Parallel()

		vm := dashboard.NewViewModel()
		notified := 0
		sub := vm.Subscribe(func(_ *dashboard.ViewState) { notified++ })
		defer sub.Unsubscribe()

		det := detector.NewDetector(testDataset())
		page := &detector.Page{URL: "https://news.example/", Body: []byte("<html></html>")}

		summary := NewSummary("news.example")
		summary.Page = page
		summary.Snapshot = det.Snapshot(page, nil)

		step := NewAggregateStep(WithViewModel(vm))
		if err := step.Do(context.Background(), summary); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if notified != 1 {
			t.Errorf("expected 1 subscriber notification, got %d", notified)
		}
		if vm.State().Domain != "news.example" {
			t.Errorf("expected shared view model to hold the published state, got %q", vm.State().Domain)
		}
	})
}

// TestLeaderboardStep tests the leaderboard recording step.
func TestLeaderboardStep(t *testing.T) {
	t.Parallel()

	t.Run("returns step name", func(t *testing.T) {
		t.Parallel()

		step := NewLeaderboardStep(&recordingStore{})
		if step.Name() != "leaderboard" {
			t.Errorf("expected name 'leaderboard', got %q", step.Name())
		}
	})

	t.Run("records published view state", func(t *testing.T) {
		t.Parallel()

		store := &recordingStore{}
		step := NewLeaderboardStep(store)

		summary := NewSummary("news.example")
		summary.State = &dashboard.ViewState{Domain: "news.example"}

		if err := step.Do(context.Background(), summary); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(store.recorded) != 1 {
			t.Fatalf("expected 1 recorded state, got %d", len(store.recorded))
		}
		if store.recorded[0].Domain != "news.example" {
			t.Errorf("got domain %q, expected %q", store.recorded[0].Domain, "news.example")
		}
	})

	t.Run("skips when no view state", func(t *testing.T) {
		t.Parallel()

		store := &recordingStore{}
		step := NewLeaderboardStep(store)

		summary := NewSummary("news.example")
		if err := step.Do(context.Background(), summary); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(store.recorded) != 0 {
			t.Errorf("expected no recorded states, got %d", len(store.recorded))
		}
	})

	t.Run("propagates store errors", func(t *testing.T) {
		t.Parallel()

		store := &recordingStore{err: errors.New("store unavailable")}
		step := NewLeaderboardStep(store)

		summary := NewSummary("news.example")
		summary.State = &dashboard.ViewState{Domain: "news.example"}

		if err := step.Do(context.Background(), summary); err == nil {
			t.Error("expected error from failing store")
		}
	})
}

// TestDefaultPipeline tests the default pipeline assembly.
func TestDefaultPipeline(t *testing.T) {
	t.Parallel()

	t.Run("assembles fetch, detect, aggregate", func(t *testing.T) {
		t.Parallel()

		p := DefaultPipeline(testDataset(), nil)

		names := p.StepNames()
		expected := []string{"fetch", "detect", "aggregate"}
		if len(names) != len(expected) {
			t.Fatalf("expected %d steps, got %d (%v)", len(expected), len(names), names)
		}
		for i, name := range expected {
			if names[i] != name {
				t.Errorf("step %d: got %q, expected %q", i, names[i], name)
			}
		}
	})

	t.Run("appends leaderboard step when store is set", func(t *testing.T) {
		t.Parallel()

		p := DefaultPipeline(testDataset(), nil, WithPipelineLeaderboard(&recordingStore{}))

		names := p.StepNames()
		if len(names) != 4 {
			t.Fatalf("expected 4 steps, got %d (%v)", len(names), names)
		}
		if names[3] != "leaderboard" {
			t.Errorf("expected last step 'leaderboard', got %q", names[3])
		}
	})
}
