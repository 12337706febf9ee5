// Package testutil provides a fake runtime helper for tests.
//
// Test binaries re-execute themselves as the helper: TestMain calls
// MaybeRunFakeHelper first, and tests point the helper path at the test
// binary with EnvFakeHelper=1 in the child environment.
package testutil

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/randomizedcoder/show-runtime/internal/process"
)

// EnvFakeHelper switches a test binary into fake helper mode.
const EnvFakeHelper = "SHOW_RUNTIME_FAKE_HELPER"

// Catalog holds the runtimes, in minutes, the fake helper knows by title.
var Catalog = map[string]int{
	"Show A":      90,
	"Show B":      45,
	"Show C":      200,
	"Show D":      45,
	"Show E":      200,
	"Zero Show":   0,
	"Hour Show":   60,
	"Odd Show":    125,
	"The Wire":    3540,
	"Fawlty Tows": 360,
}

// MaybeRunFakeHelper turns the process into the fake helper when
// EnvFakeHelper is set, and exits. Otherwise it returns immediately.
func MaybeRunFakeHelper() {
	if os.Getenv(EnvFakeHelper) != "1" {
		return
	}
	os.Exit(FakeHelper(os.Args[1:], os.Stdout, os.Stderr))
}

// FakeHelper implements the helper contract for args and returns its exit
// status. Titles found in Catalog print their runtime. Other titles select a
// behaviour by prefix:
//
//	ok:<n>              print n, exit 0
//	print:<text>        print text verbatim, exit 0
//	fail:<code>:<msg>   write msg to stderr, exit code
//	sleep:<duration>    sleep, then print 1
//	noisy:<n>           write 1000 stderr lines, print n, exit 0
//
// Anything else behaves like a title the helper cannot find.
func FakeHelper(args []string, stdout, stderr io.Writer) int {
	if len(args) != 1 {
		fmt.Fprintln(stderr, "Incorrect number of arguments.")
		return 1
	}
	title := args[0]

	if minutes, ok := Catalog[title]; ok {
		fmt.Fprintln(stdout, minutes)
		return 0
	}

	verb, rest, _ := strings.Cut(title, ":")
	switch verb {
	case "ok":
		fmt.Fprintln(stdout, rest)
		return 0

	case "print":
		fmt.Fprint(stdout, rest)
		return 0

	case "fail":
		codeText, msg, _ := strings.Cut(rest, ":")
		code, err := strconv.Atoi(codeText)
		if err != nil || code == 0 {
			code = 1
		}
		if msg != "" {
			fmt.Fprintln(stderr, msg)
		}
		return code

	case "sleep":
		d, err := time.ParseDuration(rest)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return 1
		}
		time.Sleep(d)
		fmt.Fprintln(stdout, 1)
		return 0

	case "noisy":
		for i := 0; i < 1000; i++ {
			fmt.Fprintf(stderr, "progress line %d %s\n", i, strings.Repeat(".", 100))
		}
		fmt.Fprintln(stdout, rest)
		return 0
	}

	fmt.Fprintf(stderr, "Could not get info for %s.\n", title)
	return 10
}

// HelperConfig returns a helper configuration running the current test
// binary as the fake helper.
func HelperConfig(t testing.TB) *process.HelperConfig {
	t.Helper()
	return &process.HelperConfig{
		BinaryPath: Executable(t),
		Env:        []string{EnvFakeHelper + "=1"},
		WaitDelay:  time.Second,
	}
}

// Executable returns the absolute path of the running test binary.
func Executable(t testing.TB) string {
	t.Helper()
	exe, err := os.Executable()
	if err != nil {
		t.Fatalf("os.Executable: %v", err)
	}
	return exe
}
