// Package report renders the batch outcome for the user.
package report

import (
	"fmt"
	"io"

	"github.com/randomizedcoder/show-runtime/internal/batch"
)

// FormatRuntime formats minutes as "<H>h <M>m".
func FormatRuntime(minutes int) string {
	return fmt.Sprintf("%dh %dm", minutes/60, minutes%60)
}

// WriteReport writes the two-line shortest/longest report.
func WriteReport(w io.Writer, outcome *batch.Outcome) error {
	_, err := fmt.Fprintf(w,
		"The shortest show: %s (%s)\nThe longest show: %s (%s)\n",
		outcome.Shortest.Item, FormatRuntime(outcome.Shortest.Minutes),
		outcome.Longest.Item, FormatRuntime(outcome.Longest.Minutes),
	)
	return err
}
