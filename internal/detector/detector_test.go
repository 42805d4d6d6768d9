package detector

import (
	"testing"

	"github.com/nao1215/trackerscope/internal/model"
	"github.com/nao1215/trackerscope/internal/trackerdata"
)

// testDataset returns a small dataset for detection tests.
func testDataset() *trackerdata.Dataset {
	return &trackerdata.Dataset{
		Entities: map[string]trackerdata.EntityDef{
			"Acme Inc": {DisplayName: "Acme", Prevalence: 0.4},
		},
		Domains: map[string]trackerdata.DomainRule{
			"tracker.example.org": {Entity: "Acme Inc", Categories: []string{"Advertising"}},
			"cdn.example.org":     {Entity: "Acme Inc", Categories: []string{"CDN"}, Action: trackerdata.ActionIgnore},
		},
	}
}

// TestDetectorEvents tests resource classification.
func TestDetectorEvents(t *testing.T) {
	t.Parallel()

	t.Run("first-party resources yield nil-entity events", func(t *testing.T) {
		t.Parallel()

		d := NewDetector(testDataset())
		events := d.Events("www.example.com", []Resource{
			{URL: "https://static.example.com/app.js", Tag: "script"},
		})

		if len(events) != 1 {
			t.Fatalf("got %d events, expected 1", len(events))
		}
		if events[0].Entity != nil {
			t.Error("expected no entity for a first-party resource")
		}
		if events[0].Blocked {
			t.Error("expected first-party resource to load")
		}
		if events[0].Reason != model.ReasonFirstParty {
			t.Errorf("got reason %q, expected %q", events[0].Reason, model.ReasonFirstParty)
		}
	})

	t.Run("matched tracker is blocked and attributed", func(t *testing.T) {
		t.Parallel()

		d := NewDetector(testDataset())
		events := d.Events("example.com", []Resource{
			{URL: "https://sub.tracker.example.org/pixel.gif", Tag: "img"},
		})

		ev := events[0]
		if ev.Entity == nil || ev.Entity.DisplayName != "Acme" {
			t.Fatal("expected the event to be attributed to Acme")
		}
		if !ev.Blocked {
			t.Error("expected a matched tracker to be blocked")
		}
		if ev.Reason != model.ReasonMatchedDataset {
			t.Errorf("got reason %q, expected %q", ev.Reason, model.ReasonMatchedDataset)
		}
		if len(ev.Categories) != 1 || ev.Categories[0] != "Advertising" {
			t.Error("expected dataset categories on the event")
		}
	})

	t.Run("ignore-action tracker is attributed but loaded", func(t *testing.T) {
		t.Parallel()

		d := NewDetector(testDataset())
		events := d.Events("example.com", []Resource{
			{URL: "https://cdn.example.org/lib.js", Tag: "script"},
		})

		ev := events[0]
		if ev.Entity == nil {
			t.Fatal("expected attribution for ignore-action tracker")
		}
		if ev.Blocked {
			t.Error("expected ignore-action tracker to load")
		}
	})

	t.Run("allowlisted tracker loads with allowlist reason", func(t *testing.T) {
		t.Parallel()

		d := NewDetector(testDataset(), WithAllowlist([]string{"tracker.example.org"}))
		events := d.Events("example.com", []Resource{
			{URL: "https://tracker.example.org/t.js", Tag: "script"},
		})

		ev := events[0]
		if ev.Blocked {
			t.Error("expected allowlisted tracker to load")
		}
		if ev.Reason != model.ReasonAllowlisted {
			t.Errorf("got reason %q, expected %q", ev.Reason, model.ReasonAllowlisted)
		}
		if ev.Entity == nil {
			t.Error("expected allowlisted tracker to stay attributed")
		}
	})

	t.Run("disabled protections load everything with the disabled reason", func(t *testing.T) {
		t.Parallel()

		d := NewDetector(testDataset(), WithProtectionsDisabled(true))
		events := d.Events("example.com", []Resource{
			{URL: "https://tracker.example.org/t.js", Tag: "script"},
		})

		ev := events[0]
		if ev.Blocked {
			t.Error("expected no blocking with protections disabled")
		}
		if ev.Reason != model.ReasonProtectionsDisabled {
			t.Errorf("got reason %q, expected %q", ev.Reason, model.ReasonProtectionsDisabled)
		}
	})

	t.Run("unmatched third party yields nil-entity event", func(t *testing.T) {
		t.Parallel()

		d := NewDetector(testDataset())
		events := d.Events("example.com", []Resource{
			{URL: "https://unknown.example.net/w.js", Tag: "script"},
		})

		ev := events[0]
		if ev.Entity != nil {
			t.Error("expected no attribution for unmatched third party")
		}
		if ev.Reason != model.ReasonNoMatch {
			t.Errorf("got reason %q, expected %q", ev.Reason, model.ReasonNoMatch)
		}
	})

	t.Run("subdomain of the page is first party", func(t *testing.T) {
		t.Parallel()

		d := NewDetector(testDataset())
		events := d.Events("www.example.com", []Resource{
			{URL: "https://assets.example.com/a.css", Tag: "link"},
		})

		if events[0].Reason != model.ReasonFirstParty {
			t.Error("expected a sibling subdomain to count as first party")
		}
	})
}

// TestDetectorSnapshot tests snapshot assembly.
func TestDetectorSnapshot(t *testing.T) {
	t.Parallel()

	t.Run("assembles display fields and events", func(t *testing.T) {
		t.Parallel()

		d := NewDetector(testDataset())
		page := &Page{
			URL:           "https://example.com/",
			HTTPSUpgraded: true,
		}
		resources := []Resource{
			{URL: "https://tracker.example.org/t.js", Tag: "script"},
		}

		snapshot := d.Snapshot(page, resources)

		if snapshot.URL != page.URL {
			t.Errorf("got URL %q, expected %q", snapshot.URL, page.URL)
		}
		if !snapshot.HTTPSUpgraded {
			t.Error("expected HTTPSUpgraded to be carried over")
		}
		if len(snapshot.Events) != 1 {
			t.Fatalf("got %d events, expected 1", len(snapshot.Events))
		}
		if snapshot.Entity != nil {
			t.Error("expected no parent entity for an unknown site")
		}
	})

	t.Run("site owned by a tracker network gets a parent entity", func(t *testing.T) {
		t.Parallel()

		d := NewDetector(testDataset())
		page := &Page{URL: "https://tracker.example.org/"}

		snapshot := d.Snapshot(page, nil)

		if snapshot.Entity == nil || snapshot.Entity.DisplayName != "Acme" {
			t.Error("expected the page's own entity to be resolved")
		}
	})
}
