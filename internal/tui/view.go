package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/randomizedcoder/show-runtime/internal/stats"
	"github.com/randomizedcoder/show-runtime/internal/task"
)

// =============================================================================
// Main View Rendering
// =============================================================================

// renderSummaryView renders the dashboard.
func (m Model) renderSummaryView() string {
	sections := []string{
		m.renderHeader(),
		m.renderProgress(),
		m.renderResults(),
	}

	if m.summary.Valid > 0 || m.summary.LatencyMax > 0 {
		sections = append(sections, m.renderDistribution())
	}
	if m.running > 0 {
		sections = append(sections, m.renderRunning())
	}
	if len(m.failures) > 0 {
		sections = append(sections, m.renderFailures())
	}

	sections = append(sections, m.renderFooter())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// =============================================================================
// Header
// =============================================================================

func (m Model) renderHeader() string {
	header := fmt.Sprintf(
		" show-runtime │ Shows: %d │ Parallel: %s │ Elapsed: %s ",
		m.total,
		formatParallel(m.parallel, m.total),
		stats.FormatDuration(m.Elapsed()),
	)
	return headerStyle.Width(m.width).Render(header)
}

func formatParallel(parallel, total int) string {
	if parallel <= 0 || parallel >= total {
		return "all"
	}
	return fmt.Sprintf("%d", parallel)
}

// =============================================================================
// Progress
// =============================================================================

func (m Model) renderProgress() string {
	barWidth := m.width - 30
	if barWidth < 20 {
		barWidth = 20
	}

	var status string
	if m.finished >= m.total && m.total > 0 {
		status = statusOK.Render("✓ All shows finished")
	} else {
		status = statusInfo.Render(fmt.Sprintf("Running... %d/%d finished, %d in flight",
			m.finished, m.total, m.running))
	}

	content := lipgloss.JoinVertical(lipgloss.Left,
		sectionHeaderStyle.Render("Progress"),
		RenderProgressBar(m.Progress(), barWidth),
		status,
	)
	return boxStyle.Width(m.width - 2).Render(content)
}

// =============================================================================
// Results
// =============================================================================

func (m Model) renderResults() string {
	valid := m.finished - m.invalid
	failStyle := GetFailureStyle(m.invalid, m.finished)

	lines := []string{
		sectionHeaderStyle.Render("Results"),
		RenderKeyValue("Valid", fmt.Sprintf("%d", valid)),
		lipgloss.JoinHorizontal(lipgloss.Left,
			labelStyle.Render("Invalid:"),
			failStyle.Render(fmt.Sprintf("%d (%s)", m.invalid, stats.FormatPercent(m.invalid, m.finished))),
		),
	}

	for _, reason := range task.Reasons {
		if n := m.summary.ByReason[reason]; n > 0 {
			lines = append(lines, mutedStyle.Render(fmt.Sprintf("  %s: %d", reason, n)))
		}
	}

	return boxStyle.Width(m.width - 2).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) renderDistribution() string {
	s := m.summary
	lines := []string{sectionHeaderStyle.Render("Distribution")}

	if s.Valid > 0 {
		lines = append(lines,
			RenderKeyValue("Runtime min/max", fmt.Sprintf("%dm / %dm", s.RuntimeMin, s.RuntimeMax)),
			RenderKeyValue("Runtime p50/p90", fmt.Sprintf("%.0fm / %.0fm", s.RuntimeP50, s.RuntimeP90)),
		)
	}
	if s.LatencyMax > 0 {
		lines = append(lines,
			RenderKeyValue("Helper p50/p99", fmt.Sprintf("%s / %s", stats.FormatMs(s.LatencyP50), stats.FormatMs(s.LatencyP99))),
		)
	}

	return boxStyle.Width(m.width - 2).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// =============================================================================
// Running and failures
// =============================================================================

func (m Model) renderRunning() string {
	items := m.Running()
	lines := []string{sectionHeaderStyle.Render("Running")}

	for i, item := range items {
		if i == maxRunningShown {
			lines = append(lines, dimStyle.Render(fmt.Sprintf("  … and %d more", len(items)-maxRunningShown)))
			break
		}
		lines = append(lines, "  "+truncate(item, m.width-8))
	}

	return boxStyle.Width(m.width - 2).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

func (m Model) renderFailures() string {
	lines := []string{sectionHeaderStyle.Render("Recent Failures")}

	for _, r := range m.failures {
		msg := r.Reason.String()
		if r.Err != nil {
			msg = r.Err.Error()
		}
		lines = append(lines, statusError.Render("✗ ")+truncate(msg, m.width-10))
	}

	return boxStyle.Width(m.width - 2).Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}

// =============================================================================
// Footer
// =============================================================================

func (m Model) renderFooter() string {
	var parts []string
	if m.helperName != "" {
		parts = append(parts, "helper: "+m.helperName)
	}
	if m.metricsAddr != "" {
		parts = append(parts, "metrics: http://"+m.metricsAddr+"/metrics")
	}
	if m.runID != "" {
		parts = append(parts, "run: "+m.runID)
	}
	if len(parts) == 0 {
		parts = append(parts, "Ctrl+C to interrupt")
	}
	return footerStyle.Render(strings.Join(parts, " │ "))
}

// truncate shortens s to at most n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	if n < 4 {
		n = 4
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
