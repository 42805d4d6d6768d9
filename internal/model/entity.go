package model

// MajorNetworkPrevalence is the prevalence score at or above which an
// entity is treated as a major tracker network. Prevalence is the
// fraction of sites (0.0-1.0) on which the entity's trackers appear,
// so 0.25 means the network is present on a quarter of the web. Major
// networks weigh more heavily in the privacy grade because a single
// operator can correlate a large share of a user's browsing.
const MajorNetworkPrevalence = 0.25

// Entity is an organization identified as operating a tracker network.
// Multiple tracking events may reference the same entity by display name;
// the dashboard aggregates on that key.
type Entity struct {
	// Name is the canonical entity name used as the dataset key
	// (e.g., "Google LLC").
	Name string `json:"name"`

	// DisplayName is the name shown in the dashboard
	// (e.g., "Google"). Aggregation is keyed by this field.
	DisplayName string `json:"display_name"`

	// Prevalence is a 0.0-1.0 score indicating how widely the entity's
	// trackers appear across sites.
	Prevalence float64 `json:"prevalence"`
}

// IsMajorNetwork reports whether the entity's prevalence meets the
// major-network threshold.
func (e *Entity) IsMajorNetwork() bool {
	return e.Prevalence >= MajorNetworkPrevalence
}
