package dashboard

import (
	"github.com/nao1215/trackerscope/internal/model"
)

// ViewState is the immutable, UI-ready summary of one site snapshot.
// It is built in full by NewViewState and never mutated afterwards,
// which is what allows it to be handed to subscribers without locking.
type ViewState struct {
	// URL is the page URL being summarized. Empty when no site is loaded.
	URL string `json:"url"`

	// Domain is the page's first-party domain.
	Domain string `json:"domain"`

	// HTTPSUpgraded is true if the page load was upgraded to HTTPS.
	HTTPSUpgraded bool `json:"https_upgraded"`

	// ParentEntity describes the network that owns the site itself,
	// when known (e.g., the page is operated by a major tracker network).
	ParentEntity *model.Entity `json:"parent_entity,omitempty"`

	// Certificate is the site's TLS certificate display info, if any.
	Certificate *model.CertInfo `json:"certificate,omitempty"`

	// Trackers maps entity display name to its aggregated row.
	Trackers map[string]*TrackerView `json:"trackers"`

	// TrackersBlocked is the number of entity-bearing events that were
	// blocked.
	TrackersBlocked int `json:"trackers_blocked"`

	// TrackersTotal is the number of entity-bearing events observed.
	// First-party and unmatched events are not counted.
	TrackersTotal int `json:"trackers_total"`

	// Grade is the privacy grade computed from the fields above.
	Grade Grade `json:"grade"`
}

// NewViewState computes the dashboard view for a snapshot.
// A nil snapshot means "no site loaded" and yields the empty state:
// no URL, no trackers, zero tallies.
func NewViewState(snapshot *model.SiteSnapshot) *ViewState {
	state := &ViewState{
		Trackers: make(map[string]*TrackerView),
	}
	if snapshot == nil {
		state.Grade = GradeFor(state)
		return state
	}

	state.URL = snapshot.URL
	state.Domain = snapshot.Domain
	state.HTTPSUpgraded = snapshot.HTTPSUpgraded
	state.ParentEntity = snapshot.Entity
	state.Certificate = snapshot.Certificate
	state.Trackers = Aggregate(snapshot.Events)

	for i := range snapshot.Events {
		if snapshot.Events[i].Entity == nil {
			continue
		}
		state.TrackersTotal++
		if snapshot.Events[i].Blocked {
			state.TrackersBlocked++
		}
	}

	state.Grade = GradeFor(state)
	return state
}
