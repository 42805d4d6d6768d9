// Package trackerdata provides the tracker dataset: which domains are
// operated by which entities, how prevalent each entity is, and what
// category of tracking each domain performs.
//
// A compact builtin dataset covers the most common tracker networks so
// the tool works out of the box; a user-supplied YAML dataset replaces
// it entirely when configured.
package trackerdata
