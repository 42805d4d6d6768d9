package dashboard

import "context"

// Leaderboard is the external store that accumulates tracker-network
// sightings across visited sites. The dashboard treats it as an opaque
// data source: it records each published summary and asks whether the
// leaderboard has enough data to be worth rendering.
type Leaderboard interface {
	// RecordSummary folds one published view state into the store:
	// the visited domain and, per tracker network on the page, its
	// blocked/total event counts.
	RecordSummary(ctx context.Context, state *ViewState) error

	// TopNetworks returns the n tracker networks seen on the most
	// distinct sites, best first.
	TopNetworks(ctx context.Context, n int) ([]NetworkEntry, error)

	// ShouldShow reports whether enough browsing data has accumulated
	// for the leaderboard to be statistically meaningful to display.
	ShouldShow(ctx context.Context) (bool, error)
}

// NetworkEntry is one leaderboard row: cross-site totals for a single
// tracker network.
type NetworkEntry struct {
	// Network is the entity display name.
	Network string `json:"network"`

	// SitesSeen is the number of distinct visited sites the network
	// appeared on.
	SitesSeen int `json:"sites_seen"`

	// EventsTotal is the total number of events attributed to the
	// network across all sites.
	EventsTotal int `json:"events_total"`

	// EventsBlocked is how many of those events were blocked.
	EventsBlocked int `json:"events_blocked"`

	// Prevalence is the network's dataset prevalence score.
	Prevalence float64 `json:"prevalence"`
}
