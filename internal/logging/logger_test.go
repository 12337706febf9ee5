package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	testCases := []struct {
		input    string
		expected slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"WARN", slog.LevelWarn},
		{"error", slog.LevelError},
		{"", slog.LevelInfo},        // Default
		{"invalid", slog.LevelInfo}, // Default for unknown
	}

	for _, tc := range testCases {
		t.Run(tc.input, func(t *testing.T) {
			result := parseLevel(tc.input)
			if result != tc.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tc.input, result, tc.expected)
			}
		})
	}
}

func TestNewLogger_Formats(t *testing.T) {
	for _, format := range []string{"json", "text", "JSON", "", "invalid"} {
		t.Run(format, func(t *testing.T) {
			if logger := NewLogger(format, "info", false); logger == nil {
				t.Error("NewLogger returned nil")
			}
		})
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer

	logger := New(&buf, "json", "info", false)
	logger.Info("batch_starting", "items", 3)

	output := buf.String()
	if !strings.Contains(output, `"msg":"batch_starting"`) {
		t.Errorf("Expected JSON msg field, got: %s", output)
	}
	if !strings.Contains(output, `"items":3`) {
		t.Errorf("Expected items attribute, got: %s", output)
	}
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer

	logger := NewLoggerWithWriter(&buf, "text", "info")
	logger.Info("batch_complete", "valid", 2)

	output := buf.String()
	if !strings.Contains(output, "msg=batch_complete") {
		t.Errorf("Expected text msg, got: %s", output)
	}
	if !strings.Contains(output, "valid=2") {
		t.Errorf("Expected key=value in output, got: %s", output)
	}
}

func TestNew_LevelFiltering(t *testing.T) {
	t.Run("warn_drops_info", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&buf, "text", "warn", false)

		logger.Info("info msg")
		logger.Warn("warn msg")

		output := buf.String()
		if strings.Contains(output, "info msg") {
			t.Error("Warn level should not log info messages")
		}
		if !strings.Contains(output, "warn msg") {
			t.Error("Warn level should log warn messages")
		}
	})

	t.Run("verbose_overrides_level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := New(&buf, "text", "error", true)

		logger.Debug("debug msg")

		output := buf.String()
		if !strings.Contains(output, "debug msg") {
			t.Error("Verbose logger should log debug messages")
		}
		if !strings.Contains(output, "source=") {
			t.Error("Verbose logger should include source location")
		}
	})
}

func TestDiscard(t *testing.T) {
	logger := Discard()
	if logger == nil {
		t.Fatal("Discard returned nil")
	}
	// Should not panic
	logger.Error("dropped", "key", "value")
}

func TestSetDefault(t *testing.T) {
	original := slog.Default()
	defer slog.SetDefault(original)

	var buf bytes.Buffer
	SetDefault(NewLoggerWithWriter(&buf, "text", "info"))

	slog.Info("via default")
	if !strings.Contains(buf.String(), "via default") {
		t.Error("SetDefault should route slog package calls to the logger")
	}
}
