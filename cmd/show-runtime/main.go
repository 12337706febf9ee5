// Package main provides the show-runtime CLI entry point.
//
// show-runtime reads show titles from stdin, one per line, asks the helper
// named by GET_TVSHOW_TOTAL_LENGTH_BIN for each show's total runtime in
// parallel, and prints the shortest and longest show.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/randomizedcoder/show-runtime/internal/batch"
	"github.com/randomizedcoder/show-runtime/internal/config"
	"github.com/randomizedcoder/show-runtime/internal/input"
	"github.com/randomizedcoder/show-runtime/internal/logging"
	"github.com/randomizedcoder/show-runtime/internal/orchestrator"
)

// version is set at build time via ldflags:
//
//	go build -ldflags "-X main.version=1.0.0" ./cmd/show-runtime
var version = "dev"

// Exit codes.
const (
	exitOK          = 0
	exitError       = 1
	exitUsage       = 2
	exitNoItems     = 3
	exitNoValid     = 4
	exitInterrupted = 130
)

func main() {
	os.Exit(run(context.Background(), os.Args[1:], os.Getenv, os.Stdin, os.Stdout, os.Stderr))
}

func run(ctx context.Context, args []string, getenv func(string) string, stdin io.Reader, stdout, stderr io.Writer) int {
	// Handle version flag early (before flag parsing)
	if len(args) > 0 {
		arg := args[0]
		if arg == "-version" || arg == "--version" || arg == "version" {
			fmt.Fprintf(stdout, "show-runtime %s\n", version)
			return exitOK
		}
	}

	cfg, err := config.ParseArgs(args, getenv, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		if errors.Is(err, config.ErrConfigFile) {
			fmt.Fprintf(stderr, "Configuration error: %v\n", err)
			return exitUsage
		}
		fmt.Fprintf(stderr, "Error parsing flags: %v\n", err)
		return exitUsage
	}

	if err := config.Validate(cfg); err != nil {
		if errors.Is(err, config.ErrHelperMissing) {
			fmt.Fprintf(stderr, "Environment variable %s is not set.\n", config.EnvHelperPath)
			return exitUsage
		}
		fmt.Fprintf(stderr, "Configuration error: %v\n", err)
		return exitUsage
	}

	// The dashboard owns the terminal while it runs.
	var logger *slog.Logger
	switch {
	case cfg.TUIEnabled:
		logger = logging.Discard()
	case stderr == io.Writer(os.Stderr):
		logger = logging.NewLogger(cfg.LogFormat, cfg.LogLevel, cfg.Verbose)
	default:
		logger = logging.New(stderr, cfg.LogFormat, cfg.LogLevel, cfg.Verbose)
	}
	logging.SetDefault(logger)

	items, err := input.ReadItems(stdin)
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}

	orch := orchestrator.New(cfg, logger, orchestrator.Options{
		Stdout:  stdout,
		Stderr:  stderr,
		Version: version,
	})

	_, err = orch.Run(ctx, items)
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, batch.ErrNoItems):
		fmt.Fprintln(stderr, "No shows provided.")
		return exitNoItems
	case errors.Is(err, batch.ErrNoValidResults):
		fmt.Fprintln(stderr, "No valid data retrieved.")
		return exitNoValid
	case errors.Is(err, orchestrator.ErrPreflight):
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitUsage
	case errors.Is(err, orchestrator.ErrInterrupted), errors.Is(err, context.Canceled):
		fmt.Fprintln(stderr, "Interrupted.")
		return exitInterrupted
	default:
		logger.Error("run_failed", "error", err)
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return exitError
	}
}
