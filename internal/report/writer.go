package report

import (
	"io"
	"sort"

	"github.com/nao1215/trackerscope/internal/dashboard"
)

// Writer defines the interface for dashboard output.
// Implementations write published view states in various formats.
//
// Design decision: We use an interface to allow different output formats
// and destinations. This enables writing to files, stdout, or network
// connections with the same API.
type Writer interface {
	// Write outputs a site's view state to the configured destination.
	// Returns the number of bytes written and any error encountered.
	Write(state *dashboard.ViewState) (int, error)

	// WriteLeaderboard outputs the cross-site tracker leaderboard.
	WriteLeaderboard(entries []dashboard.NetworkEntry) (int, error)
}

// MultiWriter writes to multiple Writers simultaneously.
// This is useful for outputting to both terminal and file.
//
// Design decision: We implement this as a separate type rather than
// using io.MultiWriter because our Writer interface is different
// from io.Writer - we write view states, not raw bytes.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the view state to all configured Writers.
// Returns the total bytes written across all writers.
// Stops on first error encountered.
func (m *MultiWriter) Write(state *dashboard.ViewState) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(state)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// WriteLeaderboard outputs the leaderboard to all configured Writers.
func (m *MultiWriter) WriteLeaderboard(entries []dashboard.NetworkEntry) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.WriteLeaderboard(entries)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

// newBaseWriter creates a baseWriter with the given output destination.
func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

// sortedTrackers returns the view rows ordered by event count descending,
// display name ascending for equal counts. Map iteration order would
// otherwise make output non-deterministic.
func sortedTrackers(state *dashboard.ViewState) []*dashboard.TrackerView {
	views := make([]*dashboard.TrackerView, 0, len(state.Trackers))
	for _, view := range state.Trackers {
		views = append(views, view)
	}
	sort.Slice(views, func(i, j int) bool {
		if views[i].Count != views[j].Count {
			return views[i].Count > views[j].Count
		}
		return views[i].DisplayName < views[j].DisplayName
	})
	return views
}

// sortedURLs returns a view row's URLs in lexical order.
func sortedURLs(view *dashboard.TrackerView) []string {
	urls := make([]string, 0, len(view.URLs))
	for u := range view.URLs {
		urls = append(urls, u)
	}
	sort.Strings(urls)
	return urls
}
