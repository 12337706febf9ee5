// Package preflight provides startup validation checks.
package preflight

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/randomizedcoder/show-runtime/internal/process"
)

// Per-task resource estimates. Each helper holds two pipes to the parent
// plus its own stdio.
const (
	fdsPerTask      = 4
	fdOverhead      = 64
	processOverhead = 50
)

// Check represents the result of a single preflight check.
type Check struct {
	Name     string // Name of the check
	Required int    // Required value (if applicable)
	Actual   int    // Actual value found
	Passed   bool   // Whether the check passed
	Warning  bool   // True if it's a warning (non-fatal)
	Message  string // Additional context
}

// Result holds the results of all preflight checks.
type Result struct {
	Checks []Check
	Passed bool

	// HelperPath is the resolved helper path when the helper check passed.
	HelperPath string
}

// String returns a human-readable summary of the check.
func (c Check) String() string {
	status := "✓"
	if !c.Passed {
		status = "✗"
	} else if c.Warning {
		status = "⚠"
	}

	if c.Required > 0 {
		return fmt.Sprintf("  %s %s: %d available (need %d)", status, c.Name, c.Actual, c.Required)
	}
	return fmt.Sprintf("  %s %s: %s", status, c.Name, c.Message)
}

// HasWarnings reports whether any check passed with a warning.
func (r *Result) HasWarnings() bool {
	for _, c := range r.Checks {
		if c.Warning {
			return true
		}
	}
	return false
}

// RunAll executes all preflight checks for a batch running up to
// concurrency helpers at once. Only the helper check can fail the run;
// resource limits produce warnings.
func RunAll(concurrency int, helperPath string) *Result {
	result := &Result{
		Checks: make([]Check, 0, 3),
		Passed: true,
	}

	helperCheck, resolved := checkHelper(helperPath)
	result.Checks = append(result.Checks, helperCheck)
	if !helperCheck.Passed {
		result.Passed = false
	} else {
		result.HelperPath = resolved
	}

	result.Checks = append(result.Checks, checkFileDescriptors(concurrency))
	result.Checks = append(result.Checks, checkProcessLimit(concurrency, "/proc/self/limits"))

	return result
}

// checkHelper verifies the helper exists and is executable.
func checkHelper(path string) (Check, string) {
	resolved, err := process.ResolveBinary(path)
	if err != nil {
		return Check{
			Name:    "helper",
			Passed:  false,
			Message: err.Error(),
		}, ""
	}
	return Check{
		Name:    "helper",
		Passed:  true,
		Message: "found at " + resolved,
	}, resolved
}

// checkFileDescriptors verifies enough file descriptors for the batch.
func checkFileDescriptors(concurrency int) Check {
	required := concurrency*fdsPerTask + fdOverhead

	actual, ok := openFileLimit()
	if !ok {
		return Check{
			Name:    "file_descriptors",
			Passed:  true,
			Warning: true,
			Message: "unable to check on this platform",
		}
	}

	return Check{
		Name:     "file_descriptors",
		Required: required,
		Actual:   actual,
		Passed:   true,
		Warning:  actual < required,
		Message:  fmt.Sprintf("ulimit -n %d (need %d for %d concurrent helpers)", actual, required, concurrency),
	}
}

// checkProcessLimit verifies enough process slots for the batch.
// RLIMIT_NPROC is not exported by syscall, so the limit is read from
// limitsPath (/proc/self/limits on Linux).
func checkProcessLimit(concurrency int, limitsPath string) Check {
	required := concurrency + processOverhead

	data, err := os.ReadFile(limitsPath)
	if err != nil {
		return Check{
			Name:    "process_limit",
			Passed:  true,
			Warning: true,
			Message: "unable to check (non-Linux or restricted)",
		}
	}

	actual := parseMaxProcesses(string(data))
	if actual == 0 {
		return Check{
			Name:    "process_limit",
			Passed:  true,
			Warning: true,
			Message: "unable to determine (assuming OK)",
		}
	}

	return Check{
		Name:     "process_limit",
		Required: required,
		Actual:   actual,
		Passed:   true,
		Warning:  actual < required,
		Message:  fmt.Sprintf("ulimit -u %d (need %d)", actual, required),
	}
}

// parseMaxProcesses returns the soft "Max processes" limit from the
// contents of /proc/self/limits, 1000000 for unlimited, or 0 if absent.
func parseMaxProcesses(limits string) int {
	for _, line := range strings.Split(limits, "\n") {
		if !strings.HasPrefix(line, "Max processes") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return 0
		}
		if fields[2] == "unlimited" {
			return 1000000
		}
		var n int
		fmt.Sscanf(fields[2], "%d", &n)
		return n
	}
	return 0
}

// PrintResults writes the preflight check results to w.
func PrintResults(w io.Writer, result *Result) {
	fmt.Fprintln(w, "Preflight checks:")
	for _, check := range result.Checks {
		fmt.Fprintln(w, check.String())
		if !check.Passed || check.Warning {
			fmt.Fprintf(w, "    Fix: %s\n", suggestFix(check.Name))
		}
	}
	fmt.Fprintln(w)
}

// suggestFix returns a suggestion for fixing a failed check.
func suggestFix(name string) string {
	switch name {
	case "file_descriptors":
		return "ulimit -n 8192, or cap concurrency with -parallel"
	case "process_limit":
		return "ulimit -u 4096, or cap concurrency with -parallel"
	case "helper":
		return "set GET_TVSHOW_TOTAL_LENGTH_BIN (or -helper) to an executable file"
	default:
		return "see documentation"
	}
}
