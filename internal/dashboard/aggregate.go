package dashboard

import (
	"github.com/nao1215/trackerscope/internal/model"
)

// URLOutcome records the block decision for a single resource URL.
type URLOutcome struct {
	// Blocked is the event's block flag, copied verbatim.
	Blocked bool `json:"blocked"`

	// Reason is the block reason recorded with the event.
	Reason string `json:"reason,omitempty"`

	// Categories is the event's tracker category set. Always non-nil;
	// an absent set degrades to an empty one.
	Categories []string `json:"categories"`
}

// TrackerView is one dashboard row per distinct entity display name:
// the per-entity rollup of tracking events for display.
type TrackerView struct {
	// DisplayName is the entity display name this row aggregates.
	DisplayName string `json:"display_name"`

	// Prevalence is copied from the first event's entity.
	Prevalence float64 `json:"prevalence"`

	// URLs maps each resource URL folded into this row to its outcome.
	// A URL seen twice keeps the later event's outcome (last-write-wins).
	URLs map[string]URLOutcome `json:"urls"`

	// Count is the running number of events folded into this row.
	// Because colliding URLs overwrite their outcome while the count
	// still increments, Count can exceed len(URLs). This mirrors the
	// displayed totals of the original dashboard and is preserved
	// deliberately rather than silently corrected.
	Count int `json:"count"`
}

// Aggregate folds tracking events into one TrackerView per distinct
// entity display name. Events with no entity are excluded: first-party
// loads and unmatched third parties are not attributable to a tracker
// network. The input slice is never mutated.
func Aggregate(events []model.TrackingEvent) map[string]*TrackerView {
	views := make(map[string]*TrackerView)
	for i := range events {
		if events[i].Entity == nil {
			continue
		}
		// The nil-entity filter above guarantees the fold cannot fail.
		_ = foldEvent(views, &events[i])
	}
	return views
}

// foldEvent merges one entity-bearing event into the aggregate map.
// Callers must never pass an event lacking an entity; doing so returns
// ErrMissingEntity rather than silently producing an unnamed row.
func foldEvent(views map[string]*TrackerView, ev *model.TrackingEvent) error {
	if ev.Entity == nil {
		return ErrMissingEntity
	}

	outcome := URLOutcome{
		Blocked:    ev.Blocked,
		Reason:     ev.Reason,
		Categories: copyCategories(ev.Categories),
	}

	view, ok := views[ev.Entity.DisplayName]
	if !ok {
		views[ev.Entity.DisplayName] = &TrackerView{
			DisplayName: ev.Entity.DisplayName,
			Prevalence:  ev.Entity.Prevalence,
			URLs:        map[string]URLOutcome{ev.URL: outcome},
			Count:       1,
		}
		return nil
	}

	// Last write wins for a colliding URL; the count still increments.
	view.URLs[ev.URL] = outcome
	view.Count++
	return nil
}

// copyCategories returns a non-nil copy of the event's category set so
// the aggregate never aliases or depends on the input snapshot.
func copyCategories(categories []string) []string {
	out := make([]string, len(categories))
	copy(out, categories)
	return out
}
