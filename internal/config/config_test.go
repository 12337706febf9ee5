package config

import (
	"bytes"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// envMap returns a getenv function backed by a map.
func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

// =============================================================================
// Tests: DefaultConfig
// =============================================================================

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	tests := []struct {
		name string
		got  interface{}
		want interface{}
	}{
		{"HelperPath", cfg.HelperPath, ""},
		{"Timeout", cfg.Timeout, time.Duration(0)},
		{"Parallel", cfg.Parallel, 0},
		{"LogFormat", cfg.LogFormat, "text"},
		{"LogLevel", cfg.LogLevel, "warn"},
		{"MetricsAddr", cfg.MetricsAddr, ""},
		{"TUIEnabled", cfg.TUIEnabled, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("%s = %v, want %v", tt.name, tt.got, tt.want)
			}
		})
	}
}

func TestConfig_Concurrency(t *testing.T) {
	tests := []struct {
		parallel int
		items    int
		want     int
	}{
		{0, 10, 10},
		{4, 10, 4},
		{20, 10, 10},
		{1, 1, 1},
	}

	for _, tt := range tests {
		cfg := &Config{Parallel: tt.parallel}
		if got := cfg.Concurrency(tt.items); got != tt.want {
			t.Errorf("Concurrency(parallel=%d, items=%d) = %d, want %d", tt.parallel, tt.items, got, tt.want)
		}
	}
}

// =============================================================================
// Tests: ParseArgs
// =============================================================================

func TestParseArgs_EnvHelper(t *testing.T) {
	cfg, err := ParseArgs(nil, envMap(map[string]string{EnvHelperPath: "/opt/bin/tvshow"}), &bytes.Buffer{})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if cfg.HelperPath != "/opt/bin/tvshow" {
		t.Errorf("HelperPath = %q, want /opt/bin/tvshow", cfg.HelperPath)
	}
}

func TestParseArgs_FlagOverridesEnv(t *testing.T) {
	args := []string{"-helper", "/usr/local/bin/other", "-parallel", "3", "-timeout", "5s", "-summary"}
	cfg, err := ParseArgs(args, envMap(map[string]string{EnvHelperPath: "/opt/bin/tvshow"}), &bytes.Buffer{})
	if err != nil {
		t.Fatalf("ParseArgs: %v", err)
	}
	if cfg.HelperPath != "/usr/local/bin/other" {
		t.Errorf("HelperPath = %q, want flag value", cfg.HelperPath)
	}
	if cfg.Parallel != 3 {
		t.Errorf("Parallel = %d, want 3", cfg.Parallel)
	}
	if cfg.Timeout != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", cfg.Timeout)
	}
	if !cfg.Summary {
		t.Error("Summary should be enabled")
	}
}

func TestParseArgs_ConfigFilePrecedence(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "show-runtime.yaml")
	content := `helper_path: /from/file
parallel: 7
timeout: 45s
log_format: json
summary: true
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Run("file_only", func(t *testing.T) {
		cfg, err := ParseArgs([]string{"-config", path}, envMap(nil), &bytes.Buffer{})
		if err != nil {
			t.Fatalf("ParseArgs: %v", err)
		}
		if cfg.HelperPath != "/from/file" {
			t.Errorf("HelperPath = %q, want /from/file", cfg.HelperPath)
		}
		if cfg.Parallel != 7 {
			t.Errorf("Parallel = %d, want 7", cfg.Parallel)
		}
		if cfg.Timeout != 45*time.Second {
			t.Errorf("Timeout = %v, want 45s", cfg.Timeout)
		}
		if cfg.LogFormat != "json" {
			t.Errorf("LogFormat = %q, want json", cfg.LogFormat)
		}
		// Keys absent from the file keep defaults
		if cfg.LogLevel != "warn" {
			t.Errorf("LogLevel = %q, want default warn", cfg.LogLevel)
		}
		if cfg.ConfigFile != path {
			t.Errorf("ConfigFile = %q, want %q", cfg.ConfigFile, path)
		}
	})

	t.Run("env_over_file", func(t *testing.T) {
		cfg, err := ParseArgs([]string{"-config", path}, envMap(map[string]string{EnvHelperPath: "/from/env"}), &bytes.Buffer{})
		if err != nil {
			t.Fatalf("ParseArgs: %v", err)
		}
		if cfg.HelperPath != "/from/env" {
			t.Errorf("HelperPath = %q, want /from/env", cfg.HelperPath)
		}
	})

	t.Run("flag_over_file", func(t *testing.T) {
		cfg, err := ParseArgs([]string{"-config", path, "-parallel", "2"}, envMap(nil), &bytes.Buffer{})
		if err != nil {
			t.Fatalf("ParseArgs: %v", err)
		}
		if cfg.Parallel != 2 {
			t.Errorf("Parallel = %d, want 2", cfg.Parallel)
		}
	})
}

func TestParseArgs_ConfigFileErrors(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing_file", func(t *testing.T) {
		_, err := ParseArgs([]string{"-config", filepath.Join(dir, "nope.yaml")}, envMap(nil), &bytes.Buffer{})
		if !errors.Is(err, ErrConfigFile) {
			t.Fatalf("err = %v, want ErrConfigFile", err)
		}
	})

	t.Run("unknown_key", func(t *testing.T) {
		path := filepath.Join(dir, "bad.yaml")
		if err := os.WriteFile(path, []byte("helper_pth: /typo\n"), 0o644); err != nil {
			t.Fatal(err)
		}
		_, err := ParseArgs([]string{"-config", path}, envMap(nil), &bytes.Buffer{})
		if !errors.Is(err, ErrConfigFile) {
			t.Fatalf("err = %v, want ErrConfigFile", err)
		}
		if !strings.Contains(err.Error(), path) {
			t.Errorf("error should name the file: %v", err)
		}
	})

	t.Run("empty_file", func(t *testing.T) {
		path := filepath.Join(dir, "empty.yaml")
		if err := os.WriteFile(path, nil, 0o644); err != nil {
			t.Fatal(err)
		}
		cfg, err := ParseArgs([]string{"-config", path}, envMap(nil), &bytes.Buffer{})
		if err != nil {
			t.Fatalf("empty file should load: %v", err)
		}
		if cfg.LogFormat != "text" {
			t.Errorf("LogFormat = %q, want default", cfg.LogFormat)
		}
	})
}

func TestParseArgs_Errors(t *testing.T) {
	t.Run("unknown_flag", func(t *testing.T) {
		var out bytes.Buffer
		_, err := ParseArgs([]string{"-nope"}, envMap(nil), &out)
		if err == nil {
			t.Fatal("expected error for unknown flag")
		}
	})

	t.Run("positional_args", func(t *testing.T) {
		_, err := ParseArgs([]string{"Show A"}, envMap(nil), &bytes.Buffer{})
		if err == nil {
			t.Fatal("expected error for positional args")
		}
		if !strings.Contains(err.Error(), "stdin") {
			t.Errorf("error should point at stdin, got: %v", err)
		}
	})

	t.Run("help", func(t *testing.T) {
		var out bytes.Buffer
		_, err := ParseArgs([]string{"-h"}, envMap(nil), &out)
		if !errors.Is(err, flag.ErrHelp) {
			t.Fatalf("err = %v, want flag.ErrHelp", err)
		}
		usage := out.String()
		for _, want := range []string{"-helper", "-parallel", EnvHelperPath} {
			if !strings.Contains(usage, want) {
				t.Errorf("usage missing %q", want)
			}
		}
	})
}

// =============================================================================
// Tests: Validate
// =============================================================================

func validConfig() *Config {
	cfg := DefaultConfig()
	cfg.HelperPath = "/usr/bin/true"
	return cfg
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
		field   string
	}{
		{"valid", func(*Config) {}, false, ""},
		{"missing_helper", func(c *Config) { c.HelperPath = "" }, true, "helper_path"},
		{"blank_helper", func(c *Config) { c.HelperPath = "   " }, true, "helper_path"},
		{"negative_parallel", func(c *Config) { c.Parallel = -1 }, true, "parallel"},
		{"negative_timeout", func(c *Config) { c.Timeout = -time.Second }, true, "timeout"},
		{"bad_log_format", func(c *Config) { c.LogFormat = "xml" }, true, "log_format"},
		{"upper_log_format", func(c *Config) { c.LogFormat = "JSON" }, false, ""},
		{"bad_log_level", func(c *Config) { c.LogLevel = "trace" }, true, "log_level"},
		{"bad_metrics_addr", func(c *Config) { c.MetricsAddr = "localhost" }, true, "metrics_addr"},
		{"good_metrics_addr", func(c *Config) { c.MetricsAddr = "127.0.0.1:9101" }, false, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr && !strings.Contains(err.Error(), tt.field) {
				t.Errorf("error %q should mention %q", err, tt.field)
			}
		})
	}
}

func TestValidate_HelperMissingSentinel(t *testing.T) {
	cfg := validConfig()
	cfg.HelperPath = ""
	cfg.Parallel = -2

	err := Validate(cfg)
	if !errors.Is(err, ErrHelperMissing) {
		t.Fatalf("errors.Is(err, ErrHelperMissing) = false for %v", err)
	}

	var ve ValidationError
	if !errors.As(err, &ve) {
		t.Fatal("expected a ValidationError in the joined error")
	}
}
