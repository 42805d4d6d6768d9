package model

// Block reason strings recorded with each tracking event.
// The dashboard copies the reason verbatim into the per-URL outcome,
// so these must be stable, human-readable values.
const (
	// ReasonMatchedDataset indicates the resource host matched a tracker
	// in the dataset and the request was blocked.
	ReasonMatchedDataset = "matched tracker dataset"

	// ReasonAllowlisted indicates the resource matched a tracker but the
	// user allowlisted it for this site, so the request was loaded.
	ReasonAllowlisted = "allowlisted by user"

	// ReasonProtectionsDisabled indicates the user disabled protections
	// for the whole site, so matched trackers were loaded anyway.
	ReasonProtectionsDisabled = "protections disabled"

	// ReasonFirstParty indicates the resource belongs to the page's own
	// domain and is never attributed to a tracker network.
	ReasonFirstParty = "first party"

	// ReasonNoMatch indicates a third-party resource with no dataset
	// match; it is loaded and not attributed to an entity.
	ReasonNoMatch = "no tracker match"
)

// TrackingEvent is one observed attempt to load a resource on a page,
// annotated with the block decision and the owning entity.
// Events are immutable once recorded; the dashboard never mutates the
// snapshot it summarizes.
type TrackingEvent struct {
	// URL is the full URL of the resource the page tried to load.
	URL string `json:"url"`

	// Entity is the organization operating the tracker network that owns
	// the resource. Nil for first-party loads and for third-party
	// resources with no dataset match; such events are excluded from the
	// aggregated dashboard view.
	Entity *Entity `json:"entity,omitempty"`

	// Blocked is true if the request was blocked rather than loaded.
	Blocked bool `json:"blocked"`

	// Reason records why the block decision was made.
	// One of the Reason* constants.
	Reason string `json:"reason,omitempty"`

	// Categories are optional tracker category tags from the dataset
	// (e.g., "Advertising", "Analytics"). May be nil; the dashboard
	// degrades a missing set to an empty one.
	Categories []string `json:"categories,omitempty"`
}
