// Package database provides the SQLite-backed network leaderboard:
// cross-site totals of tracker-network sightings accumulated as pages
// are summarized. The dashboard consumes it through its Leaderboard
// interface and treats the store as an opaque external data source.
package database
