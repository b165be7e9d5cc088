// Package config loads the optional YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// FileName is the configuration file name inside the user config directory.
const FileName = "config.yaml"

// Config holds the settings of the command line tool.
// Loaded from config.yaml; defaults are used when the file is missing.
type Config struct {
	// Catalog is the path of the JSON catalog file.
	Catalog string `yaml:"catalog"`

	// LogLevel is one of debug, info, warn or error.
	LogLevel string `yaml:"log_level"`

	// History commits the catalog file to a git repository in its directory
	// after each change.
	History bool `yaml:"history"`

	// Journal is the path of the activity journal. Empty disables it.
	Journal string `yaml:"journal,omitempty"`

	// ConfirmRemove asks before removing a book.
	ConfirmRemove bool `yaml:"confirm_remove"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Catalog:       "biblioteca.json",
		LogLevel:      "info",
		ConfirmRemove: true,
	}
}

// DefaultPath returns the configuration file location, e.g.
// ~/.config/bookshelf/config.yaml. It returns an empty string when the user
// config directory is unknown.
func DefaultPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "bookshelf", FileName)
}

// Load reads the configuration at path on top of the defaults.
//
// A missing file is not an error. Relative catalog and journal paths are
// kept as is, i.e. relative to the working directory. The values are not
// validated; call Validate once command line overrides are applied.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // User-specified config path
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Debug("No config file", "path", path)
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the values are usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Catalog) == "" {
		return errors.New("catalog must not be empty")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Save writes the configuration to path, creating its directory.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", s)
	}
}
