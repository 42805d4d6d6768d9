package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/trackerscope/internal/dashboard"
)

// SimpleWriter outputs human-readable text summaries.
// This format is designed for terminal display with an at-a-glance
// grade line and per-network tracker rows.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no trackers are shown.
	showEmpty bool

	// verbose enables per-URL detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with per-URL detail.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
		showEmpty:  false,
		verbose:    false,
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the view state in human-readable format.
func (w *SimpleWriter) Write(state *dashboard.ViewState) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, state)
	w.writeTally(&sb, state)
	w.writeTrackers(&sb, state)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the site header with grade and connection info.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, state *dashboard.ViewState) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                      TRACKERSCOPE SUMMARY\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	if state.URL == "" {
		sb.WriteString("No site loaded.\n\n")
		return
	}

	sb.WriteString(fmt.Sprintf("Site:           %s\n", state.URL))
	sb.WriteString(fmt.Sprintf("Domain:         %s\n", state.Domain))
	sb.WriteString(fmt.Sprintf("Privacy Grade:  %s\n", state.Grade))

	switch {
	case state.HTTPSUpgraded:
		sb.WriteString("Connection:     HTTPS (upgraded from HTTP)\n")
	case isHTTPS(state.URL):
		sb.WriteString("Connection:     HTTPS\n")
	default:
		sb.WriteString("Connection:     HTTP (unencrypted)\n")
	}

	if state.ParentEntity != nil {
		sb.WriteString(fmt.Sprintf("Site Owner:     %s\n", state.ParentEntity.DisplayName))
	}
	if state.Certificate != nil && state.Certificate.CommonName != "" {
		sb.WriteString(fmt.Sprintf("Certificate:    %s\n", state.Certificate.CommonName))
	}

	sb.WriteString("\n")
}

// writeTally writes the blocked/loaded tracker tally section.
func (w *SimpleWriter) writeTally(sb *strings.Builder, state *dashboard.ViewState) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("TRACKING REQUESTS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  BLOCKED:  %d\n", state.TrackersBlocked))
	sb.WriteString(fmt.Sprintf("  LOADED:   %d\n", state.TrackersTotal-state.TrackersBlocked))
	sb.WriteString(fmt.Sprintf("  TOTAL:    %d requests from %d networks\n",
		state.TrackersTotal, len(state.Trackers)))
	sb.WriteString("\n")
}

// writeTrackers writes the per-network tracker rows.
func (w *SimpleWriter) writeTrackers(sb *strings.Builder, state *dashboard.ViewState) {
	if len(state.Trackers) == 0 && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("TRACKER NETWORKS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if len(state.Trackers) == 0 {
		sb.WriteString("  No tracker networks detected\n\n")
		return
	}

	for _, view := range sortedTrackers(state) {
		marker := "+"
		if view.Prevalence >= 0.25 {
			marker = "!"
		}
		sb.WriteString(fmt.Sprintf("  [%s] %s\n", marker, view.DisplayName))
		sb.WriteString(fmt.Sprintf("      Requests: %d  Prevalence: %.1f%%\n",
			view.Count, view.Prevalence*100))

		if w.verbose {
			for _, u := range sortedURLs(view) {
				outcome := view.URLs[u]
				status := "loaded"
				if outcome.Blocked {
					status = "blocked"
				}
				sb.WriteString(fmt.Sprintf("      - %s (%s)\n", u, status))
			}
		}
	}
	sb.WriteString("\n")
}

// WriteLeaderboard outputs the cross-site tracker leaderboard.
func (w *SimpleWriter) WriteLeaderboard(entries []dashboard.NetworkEntry) (int, error) {
	var sb strings.Builder

	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                     TRACKER LEADERBOARD\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	if len(entries) == 0 {
		sb.WriteString("  No tracker networks recorded yet.\n\n")
		return w.output.Write([]byte(sb.String()))
	}

	for i, entry := range entries {
		sb.WriteString(fmt.Sprintf("  %2d. %s\n", i+1, entry.Network))
		sb.WriteString(fmt.Sprintf("      Sites: %d  Requests: %d  Blocked: %d\n",
			entry.SitesSeen, entry.EventsTotal, entry.EventsBlocked))
	}
	sb.WriteString("\n")

	return w.output.Write([]byte(sb.String()))
}

// writeFooter writes the summary footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Summary generated by trackerscope\n")
	sb.WriteString("https://github.com/nao1215/trackerscope\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}

// isHTTPS reports whether the URL uses the https scheme.
func isHTTPS(rawURL string) bool {
	return strings.HasPrefix(strings.ToLower(rawURL), "https://")
}
