package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrConfigFile marks failures to open or decode the -config file.
var ErrConfigFile = errors.New("invalid config file")

// LoadFile overlays the YAML document at path onto cfg.
// Keys absent from the file keep their current values.
func LoadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrConfigFile, err)
	}
	defer f.Close()

	if err := decode(f, cfg); err != nil {
		return fmt.Errorf("%w %s: %w", ErrConfigFile, path, err)
	}
	cfg.ConfigFile = path
	return nil
}

// decode reads one YAML document, rejecting unknown keys.
func decode(r io.Reader, cfg *Config) error {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		if errors.Is(err, io.EOF) {
			// Empty file
			return nil
		}
		return err
	}
	return nil
}

// ApplyEnv overlays settings taken from the environment onto cfg.
func ApplyEnv(cfg *Config, getenv func(string) string) {
	if v := getenv(EnvHelperPath); v != "" {
		cfg.HelperPath = v
	}
}
