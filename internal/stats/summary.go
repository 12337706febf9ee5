package stats

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/randomizedcoder/show-runtime/internal/task"
)

// FormatSummary renders a summary as aligned plain text, one fact per line.
func FormatSummary(s Summary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Run Duration:       %s\n", FormatDuration(s.Elapsed))
	fmt.Fprintf(&b, "Shows:              %d\n", s.Total)
	fmt.Fprintf(&b, "Peak In Flight:     %d\n", s.PeakInFlight)
	fmt.Fprintf(&b, "Valid:              %d\n", s.Valid)
	fmt.Fprintf(&b, "Invalid:            %d\n", s.Invalid)

	for _, reason := range task.Reasons {
		if n := s.ByReason[reason]; n > 0 {
			fmt.Fprintf(&b, "  %-17s %d\n", reason.String()+":", n)
		}
	}

	if s.Valid > 0 {
		b.WriteString("\nRuntime (minutes)\n")
		fmt.Fprintf(&b, "  min / max:        %d / %d\n", s.RuntimeMin, s.RuntimeMax)
		fmt.Fprintf(&b, "  mean:             %.1f\n", s.RuntimeMean)
		fmt.Fprintf(&b, "  p50 / p90 / p99:  %.0f / %.0f / %.0f\n", s.RuntimeP50, s.RuntimeP90, s.RuntimeP99)
	}

	if s.LatencyMax > 0 {
		b.WriteString("\nHelper Latency\n")
		fmt.Fprintf(&b, "  min / max:        %s / %s\n", FormatMs(s.LatencyMin), FormatMs(s.LatencyMax))
		fmt.Fprintf(&b, "  p50 / p95 / p99:  %s / %s / %s\n",
			FormatMs(s.LatencyP50), FormatMs(s.LatencyP95), FormatMs(s.LatencyP99))
	}

	if len(s.ExitCodes) > 0 {
		b.WriteString("\nHelper Exit Codes\n")
		for _, code := range sortedCodes(s.ExitCodes) {
			fmt.Fprintf(&b, "  %4d %-10s %d\n", code, exitCodeLabel(code), s.ExitCodes[code])
		}
	}

	return b.String()
}

func sortedCodes(m map[int]int) []int {
	codes := make([]int, 0, len(m))
	for code := range m {
		codes = append(codes, code)
	}
	sort.Ints(codes)
	return codes
}

// exitCodeLabel returns a human-readable label for common helper exit codes.
func exitCodeLabel(code int) string {
	switch code {
	case 0:
		return "(ok)"
	case 1:
		return "(error)"
	case 10:
		return "(not found)"
	case 137:
		return "(SIGKILL)"
	case 143:
		return "(SIGTERM)"
	default:
		return ""
	}
}

// =============================================================================
// Formatting Helper Functions (exported for reuse)
// =============================================================================

// FormatDuration formats a duration as HH:MM:SS.
func FormatDuration(d time.Duration) string {
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// FormatMs formats a duration as milliseconds.
func FormatMs(d time.Duration) string {
	ms := d.Milliseconds()
	if ms == 0 && d > 0 {
		return fmt.Sprintf("%d µs", d.Microseconds())
	}
	return fmt.Sprintf("%d ms", ms)
}

// FormatPercent formats part/total as a percentage. Zero total gives "0.0%".
func FormatPercent(part, total int) string {
	if total <= 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(part)*100/float64(total))
}
