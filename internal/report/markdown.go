package report

import (
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
	"github.com/nao1215/trackerscope/internal/dashboard"
)

// MarkdownWriter outputs summaries in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the view state in Markdown format.
func (w *MarkdownWriter) Write(state *dashboard.ViewState) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, state)
	w.writeTally(md, state)
	w.writeTrackers(md, state)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the site header with grade and connection info.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, state *dashboard.ViewState) {
	md.H1("Trackerscope Summary")
	md.PlainText("")

	if state.URL == "" {
		md.PlainText("No site loaded.")
		md.PlainText("")
		return
	}

	rows := [][]string{
		{"Site", "`" + state.URL + "`"},
		{"Domain", state.Domain},
		{"Privacy Grade", w.gradeText(state.Grade)},
		{"Connection", w.connectionText(state)},
	}
	if state.ParentEntity != nil {
		rows = append(rows, []string{"Site Owner", state.ParentEntity.DisplayName})
	}
	if state.Certificate != nil && state.Certificate.CommonName != "" {
		rows = append(rows, []string{"Certificate", "`" + state.Certificate.CommonName + "`"})
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// gradeText returns the grade with a visual indicator.
func (w *MarkdownWriter) gradeText(grade dashboard.Grade) string {
	switch grade {
	case dashboard.GradeA:
		return "🟢 A"
	case dashboard.GradeB:
		return "🟡 B"
	case dashboard.GradeC:
		return "🟠 C"
	case dashboard.GradeD:
		return "🔴 D"
	default:
		return string(grade)
	}
}

// connectionText describes the page's transport security.
func (w *MarkdownWriter) connectionText(state *dashboard.ViewState) string {
	switch {
	case state.HTTPSUpgraded:
		return "✅ HTTPS (upgraded from HTTP)"
	case isHTTPS(state.URL):
		return "✅ HTTPS"
	default:
		return "⚠️ HTTP (unencrypted)"
	}
}

// writeTally writes the blocked/loaded tally with a pie chart.
func (w *MarkdownWriter) writeTally(md *markdown.Markdown, state *dashboard.ViewState) {
	md.H2("Tracking Requests")
	md.PlainText("")

	loaded := state.TrackersTotal - state.TrackersBlocked
	md.Table(markdown.TableSet{
		Header: []string{"Outcome", "Count"},
		Rows: [][]string{
			{"🛑 Blocked", strconv.Itoa(state.TrackersBlocked)},
			{"📡 Loaded", strconv.Itoa(loaded)},
			{"**Total**", "**" + strconv.Itoa(state.TrackersTotal) + "**"},
		},
	})
	md.PlainText("")

	if state.TrackersTotal > 0 {
		w.writePieChart(md, state.TrackersBlocked, loaded)
	}

	w.writeAlert(md, state)
}

// writePieChart writes a mermaid pie chart of blocked vs loaded requests.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, blocked, loaded int) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Tracking Request Outcomes"),
		piechart.WithShowData(true),
	)

	if blocked > 0 {
		chart.LabelAndIntValue("Blocked", uint64(blocked)) //nolint:gosec // Counts are non-negative
	}
	if loaded > 0 {
		chart.LabelAndIntValue("Loaded", uint64(loaded)) //nolint:gosec // Counts are non-negative
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on the page's grade.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, state *dashboard.ViewState) {
	switch state.Grade {
	case dashboard.GradeD:
		md.Cautionf(
			"Heavy tracking detected. %d tracker networks were observed on this page.",
			len(state.Trackers),
		)
	case dashboard.GradeC:
		md.Warningf(
			"Significant tracking detected. %d tracker networks were observed on this page.",
			len(state.Trackers),
		)
	case dashboard.GradeB:
		md.Importantf(
			"Some tracking detected. %d tracker network(s) were observed on this page.",
			len(state.Trackers),
		)
	default:
		md.Tip("No tracker networks detected on this page.")
	}
	md.PlainText("")
}

// writeTrackers writes the per-network tracker table.
func (w *MarkdownWriter) writeTrackers(md *markdown.Markdown, state *dashboard.ViewState) {
	md.H2("Tracker Networks")
	md.PlainText("")

	if len(state.Trackers) == 0 {
		md.PlainText("No tracker networks detected.")
		md.PlainText("")
		return
	}

	views := sortedTrackers(state)
	rows := make([][]string, len(views))
	for i, view := range views {
		blocked := 0
		for _, outcome := range view.URLs {
			if outcome.Blocked {
				blocked++
			}
		}
		rows[i] = []string{
			view.DisplayName,
			strconv.Itoa(view.Count),
			strconv.Itoa(blocked),
			strconv.FormatFloat(view.Prevalence*100, 'f', 1, 64) + "%",
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Network", "Requests", "Blocked URLs", "Prevalence"},
		Rows:   rows,
	})
	md.PlainText("")

	// Per-network URL detail in collapsible sections
	for _, view := range views {
		detail := ""
		for _, u := range sortedURLs(view) {
			outcome := view.URLs[u]
			status := "loaded"
			if outcome.Blocked {
				status = "blocked"
			}
			detail += "- `" + u + "` (" + status + ")\n"
		}
		if detail != "" {
			md.Details(view.DisplayName, detail)
		}
	}
	md.PlainText("")
}

// WriteLeaderboard outputs the cross-site tracker leaderboard in Markdown.
func (w *MarkdownWriter) WriteLeaderboard(entries []dashboard.NetworkEntry) (int, error) {
	md := markdown.NewMarkdown(w.output)

	md.H1("Tracker Leaderboard")
	md.PlainText("")

	if len(entries) == 0 {
		md.PlainText("No tracker networks recorded yet.")
		md.PlainText("")
		w.writeFooter(md)
		return len(md.String()), md.Build()
	}

	rows := make([][]string, len(entries))
	for i, entry := range entries {
		rows[i] = []string{
			strconv.Itoa(i + 1),
			entry.Network,
			strconv.Itoa(entry.SitesSeen),
			strconv.Itoa(entry.EventsTotal),
			strconv.Itoa(entry.EventsBlocked),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Rank", "Network", "Sites", "Requests", "Blocked"},
		Rows:   rows,
	})
	md.PlainText("")

	w.writeFooter(md)
	return len(md.String()), md.Build()
}

// writeFooter writes the summary footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Generated by [trackerscope](https://github.com/nao1215/trackerscope)*")
}
