package config

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// ErrHelperMissing reports that no helper path was configured.
var ErrHelperMissing = errors.New("helper path is not set")

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
	Err     error
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func (e ValidationError) Unwrap() error {
	return e.Err
}

// Validate checks the configuration for errors and inconsistencies.
// Returns nil if valid, or an error describing the problem.
func Validate(cfg *Config) error {
	var errs []error

	// The helper path is the one required setting
	if strings.TrimSpace(cfg.HelperPath) == "" {
		errs = append(errs, ValidationError{
			Field:   "helper_path",
			Message: fmt.Sprintf("set %s or pass -helper", EnvHelperPath),
			Err:     ErrHelperMissing,
		})
	}

	if cfg.Parallel < 0 {
		errs = append(errs, ValidationError{
			Field:   "parallel",
			Message: "must be 0 (unbounded) or positive",
		})
	}

	if cfg.Timeout < 0 {
		errs = append(errs, ValidationError{
			Field:   "timeout",
			Message: "must be 0 (none) or positive",
		})
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[strings.ToLower(cfg.LogFormat)] {
		errs = append(errs, ValidationError{
			Field:   "log_format",
			Message: fmt.Sprintf("must be 'json' or 'text' (got %q)", cfg.LogFormat),
		})
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "warning": true, "error": true}
	if !validLevels[strings.ToLower(cfg.LogLevel)] {
		errs = append(errs, ValidationError{
			Field:   "log_level",
			Message: fmt.Sprintf("must be one of: debug, info, warn, error (got %q)", cfg.LogLevel),
		})
	}

	if cfg.MetricsAddr != "" {
		if _, _, err := net.SplitHostPort(cfg.MetricsAddr); err != nil {
			errs = append(errs, ValidationError{
				Field:   "metrics_addr",
				Message: fmt.Sprintf("must be host:port (got %q)", cfg.MetricsAddr),
			})
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	return nil
}
