// Package dashboard aggregates a site's tracking events into a
// UI-ready view state: one row per tracker network with per-URL block
// outcomes, blocked/total tallies, and a privacy grade.
//
// The lifecycle is request/response: a new SiteSnapshot supersedes the
// previous one, the view state is recomputed from scratch, and the
// published result is immutable. Subscribers receive each published
// state through explicit subscription objects that must be unsubscribed
// at teardown.
package dashboard
