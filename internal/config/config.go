// Package config provides configuration management for show-runtime.
package config

import "time"

// EnvHelperPath names the environment variable holding the helper binary path.
const EnvHelperPath = "GET_TVSHOW_TOTAL_LENGTH_BIN"

// Config holds all configuration options for a batch run.
type Config struct {
	// Helper
	HelperPath string        `json:"helper_path" yaml:"helper_path"`
	Timeout    time.Duration `json:"timeout" yaml:"timeout"`   // 0 = no per-task timeout
	Parallel   int           `json:"parallel" yaml:"parallel"` // 0 = unbounded

	// Observability
	MetricsAddr string `json:"metrics_addr" yaml:"metrics_addr"` // empty = disabled
	MetricsFile string `json:"metrics_file" yaml:"metrics_file"` // empty = disabled
	Verbose     bool   `json:"verbose" yaml:"verbose"`
	LogFormat   string `json:"log_format" yaml:"log_format"` // json, text
	LogLevel    string `json:"log_level" yaml:"log_level"`

	// Output
	Summary    bool `json:"summary" yaml:"summary"`
	TUIEnabled bool `json:"tui" yaml:"tui"`

	// Diagnostic modes
	SkipPreflight bool `json:"skip_preflight" yaml:"skip_preflight"`

	// ConfigFile is the YAML file the settings above were loaded from, if any.
	ConfigFile string `json:"-" yaml:"-"`
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Timeout:  0,
		Parallel: 0,

		LogFormat: "text",
		LogLevel:  "warn",
	}
}

// Concurrency returns how many helpers may run at once for n items.
func (c *Config) Concurrency(n int) int {
	if c.Parallel > 0 && c.Parallel < n {
		return c.Parallel
	}
	return n
}
