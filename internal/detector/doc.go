// Package detector turns a page load into tracking events: it fetches
// the page, extracts the resources the page references, and matches
// each resource against the tracker dataset to decide whether the load
// would be blocked and which entity it belongs to.
//
// The detector is the upstream collaborator of the dashboard. It never
// executes page scripts; detection is static, based on the resource
// references present in the served HTML.
package detector
