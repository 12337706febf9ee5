package config

import (
	"flag"
	"fmt"
	"io"
	"strings"
)

// ParseArgs builds a Config from defaults, an optional YAML file (-config),
// the environment and finally the command-line flags, in that order of
// precedence. Usage and flag errors are written to out.
func ParseArgs(args []string, getenv func(string) string, out io.Writer) (*Config, error) {
	// First pass only discovers -config; errors surface in the second pass.
	scratch := DefaultConfig()
	_ = newFlagSet(scratch, io.Discard).Parse(args)

	cfg := DefaultConfig()
	if scratch.ConfigFile != "" {
		if err := LoadFile(scratch.ConfigFile, cfg); err != nil {
			return nil, err
		}
	}
	ApplyEnv(cfg, getenv)

	fs := newFlagSet(cfg, out)
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %s (show titles are read from stdin)", strings.Join(fs.Args(), " "))
	}

	return cfg, nil
}

// newFlagSet binds every command-line flag to a field of cfg.
func newFlagSet(cfg *Config, out io.Writer) *flag.FlagSet {
	fs := flag.NewFlagSet("show-runtime", flag.ContinueOnError)
	fs.SetOutput(out)

	fs.Usage = func() {
		fmt.Fprintf(out, `show-runtime - find the shortest and longest TV show

Usage:
  show-runtime [flags] < titles.txt

Reads one show title per line from stdin, runs the runtime helper once per
title in parallel and prints the shortest and longest show.

Helper:
`)
		printFlagCategory(fs, out, []string{"helper", "timeout", "parallel"})

		fmt.Fprintf(out, "\nOutput:\n")
		printFlagCategory(fs, out, []string{"summary", "tui"})

		fmt.Fprintf(out, "\nObservability:\n")
		printFlagCategory(fs, out, []string{"metrics", "metrics-file", "v", "log-format", "log-level"})

		fmt.Fprintf(out, "\nConfiguration & Diagnostics:\n")
		printFlagCategory(fs, out, []string{"config", "skip-preflight"})

		fmt.Fprintf(out, `
Environment:
  %s    Path to the runtime helper (overridden by -helper)

Examples:
  printf 'Show A\nShow B\n' | show-runtime
  show-runtime -parallel 8 -timeout 30s -summary < shows.txt

`, EnvHelperPath)
	}

	// Helper
	fs.StringVar(&cfg.HelperPath, "helper", cfg.HelperPath, "Path to the runtime helper binary")
	fs.DurationVar(&cfg.Timeout, "timeout", cfg.Timeout, "Per-show helper timeout (0 = none)")
	fs.IntVar(&cfg.Parallel, "parallel", cfg.Parallel, "Maximum helpers running at once (0 = one per show)")

	// Output
	fs.BoolVar(&cfg.Summary, "summary", cfg.Summary, "Print a batch summary to stderr")
	fs.BoolVar(&cfg.TUIEnabled, "tui", cfg.TUIEnabled, "Show a live progress dashboard on stderr")

	// Observability
	fs.StringVar(&cfg.MetricsAddr, "metrics", cfg.MetricsAddr, "Prometheus metrics listen address (empty = disabled)")
	fs.StringVar(&cfg.MetricsFile, "metrics-file", cfg.MetricsFile, "Write Prometheus text metrics to this file on exit")
	fs.BoolVar(&cfg.Verbose, "v", cfg.Verbose, "Verbose logging")
	fs.StringVar(&cfg.LogFormat, "log-format", cfg.LogFormat, `Log format: "json" or "text"`)
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, `Log level: "debug", "info", "warn" or "error"`)

	// Configuration & Diagnostics
	fs.StringVar(&cfg.ConfigFile, "config", cfg.ConfigFile, "YAML configuration file")
	fs.BoolVar(&cfg.SkipPreflight, "skip-preflight", cfg.SkipPreflight, "Skip preflight checks")

	return fs
}

// printFlagCategory prints flags matching the given names (helper for usage).
func printFlagCategory(fs *flag.FlagSet, out io.Writer, names []string) {
	fs.VisitAll(func(f *flag.Flag) {
		for _, name := range names {
			if f.Name == name {
				fmt.Fprintf(out, "  -%s %s\n    \t%s", f.Name, flagType(f), f.Usage)
				if f.DefValue != "" && f.DefValue != "false" && f.DefValue != "0" && f.DefValue != "0s" {
					fmt.Fprintf(out, " (default %s)", f.DefValue)
				}
				fmt.Fprintln(out)
				return
			}
		}
	})
}

// flagType returns a type hint for the flag value.
func flagType(f *flag.Flag) string {
	if getter, ok := f.Value.(flag.Getter); ok {
		switch getter.Get().(type) {
		case bool:
			return ""
		case int, int64:
			return "int"
		case fmt.Stringer:
			// time.Duration
			return "duration"
		}
	}
	return "string"
}
