package report

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/randomizedcoder/show-runtime/internal/stats"
)

// SummaryConfig holds the run details shown above the statistics.
type SummaryConfig struct {
	RunID       string
	Helper      string
	MetricsAddr string
	MetricsFile string
}

// WriteSummary writes a boxed batch summary to w. Colors follow what w
// supports; plain files get no escape sequences.
func WriteSummary(w io.Writer, s stats.Summary, cfg SummaryConfig) error {
	r := lipgloss.NewRenderer(w)

	title := r.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#7C3AED")).
		Render("show-runtime summary")

	muted := r.NewStyle().Foreground(lipgloss.Color("#9CA3AF"))

	var meta []string
	if cfg.RunID != "" {
		meta = append(meta, "Run ID:             "+cfg.RunID)
	}
	if cfg.Helper != "" {
		meta = append(meta, "Helper:             "+cfg.Helper)
	}
	if cfg.MetricsAddr != "" {
		meta = append(meta, "Metrics:            http://"+cfg.MetricsAddr+"/metrics")
	}
	if cfg.MetricsFile != "" {
		meta = append(meta, "Metrics file:       "+cfg.MetricsFile)
	}

	parts := []string{title}
	if len(meta) > 0 {
		parts = append(parts, muted.Render(strings.Join(meta, "\n")))
	}
	parts = append(parts, strings.TrimRight(stats.FormatSummary(s), "\n"))

	box := r.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("#374151")).
		Padding(0, 1).
		Render(strings.Join(parts, "\n\n"))

	_, err := io.WriteString(w, box+"\n")
	return err
}
