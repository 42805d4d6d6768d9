package dashboard

import "errors"

// Dashboard errors.
//
// Design decision: We use a package-level sentinel error rather than
// creating new error instances at the point of failure. This allows
// callers to use errors.Is() for programmatic error handling while
// still providing a human-readable message.
var (
	// ErrMissingEntity is returned when the per-event fold is handed an
	// event with no owning entity. Aggregate filters such events out
	// before folding, so reaching this error means a caller bypassed the
	// filter and violated the fold's contract.
	ErrMissingEntity = errors.New("missing entity: event has no owning tracker network")
)
