package dashboard

import (
	"strings"

	"github.com/nao1215/trackerscope/internal/model"
)

// Grade is the letter privacy grade shown at the top of the dashboard.
type Grade string

// Privacy grades from best to worst.
const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
)

// Grade score weights and boundaries.
//
// The score starts at zero (best) and accumulates penalty points per
// tracker network observed on the page, weighted by how widely each
// network is deployed. Plain-HTTP pages and pages owned by a major
// network start from a worse position regardless of tracker count.
const (
	// networkPenalty is added once per distinct tracker network.
	networkPenalty = 1

	// majorNetworkPenalty is added instead of networkPenalty for
	// networks at or above the major-network prevalence threshold.
	majorNetworkPenalty = 2

	// insecurePenalty is added when the page loads over plain HTTP
	// without an HTTPS upgrade.
	insecurePenalty = 3

	// parentMajorPenalty is added when the site itself is owned by a
	// major tracker network.
	parentMajorPenalty = 2

	// gradeBBoundary and gradeCBoundary are the inclusive upper score
	// bounds for grades B and C. A score of zero is an A; anything
	// beyond gradeCBoundary is a D.
	gradeBBoundary = 3
	gradeCBoundary = 9
)

// GradeFor computes the privacy grade for a view state.
// The computation is a pure function of the state: equal states always
// grade equally.
func GradeFor(state *ViewState) Grade {
	score := 0

	for _, view := range state.Trackers {
		if view.Prevalence >= model.MajorNetworkPrevalence {
			score += majorNetworkPenalty
		} else {
			score += networkPenalty
		}
	}

	if state.URL != "" && !isHTTPS(state.URL) && !state.HTTPSUpgraded {
		score += insecurePenalty
	}

	if state.ParentEntity != nil && state.ParentEntity.IsMajorNetwork() {
		score += parentMajorPenalty
	}

	switch {
	case score == 0:
		return GradeA
	case score <= gradeBBoundary:
		return GradeB
	case score <= gradeCBoundary:
		return GradeC
	default:
		return GradeD
	}
}

// isHTTPS reports whether the URL uses the https scheme.
func isHTTPS(rawURL string) bool {
	return strings.HasPrefix(strings.ToLower(rawURL), "https://")
}
