package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	LogLevel    string       `yaml:"log_level"`
	HistoryPath string       `yaml:"history_path"`
	Render      RenderConfig `yaml:"render"`
}

// RenderConfig holds text rendering settings.
type RenderConfig struct {
	FontSize float64      `yaml:"font_size"`
	Fonts    []FontConfig `yaml:"fonts"`
}

// FontConfig registers a font under a label print commands can select.
// Exactly one of Path and Builtin must be set.
type FontConfig struct {
	Label   string `yaml:"label"`
	Path    string `yaml:"path"`
	Builtin string `yaml:"builtin"`
}

// DefaultConfigDir returns the default config directory path.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "ctprint")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.yaml")
}

// Default returns a Config with sensible default values.
func Default() *Config {
	home, _ := os.UserHomeDir()

	return &Config{
		LogLevel:    "info",
		HistoryPath: filepath.Join(home, ".local", "share", "ctprint", "history.db"),
		Render: RenderConfig{
			FontSize: 28,
		},
	}
}

// Load reads and parses a YAML config file. Missing fields are filled
// with defaults. Tilde (~) in paths is expanded to the user's home
// directory.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.HistoryPath = expandTilde(cfg.HistoryPath)
	for i := range cfg.Render.Fonts {
		cfg.Render.Fonts[i].Path = expandTilde(cfg.Render.Fonts[i].Path)
	}

	return cfg, nil
}

// Validate checks the config for invalid values.
func (c *Config) Validate() error {
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log_level must be debug, info, warn, or error, got %q", c.LogLevel)
	}

	if c.HistoryPath == "" {
		return fmt.Errorf("history_path must not be empty")
	}

	if c.Render.FontSize <= 0 {
		return fmt.Errorf("render.font_size must be > 0")
	}

	for i, f := range c.Render.Fonts {
		if f.Label == "" {
			return fmt.Errorf("render.fonts[%d]: label must not be empty", i)
		}
		if (f.Path == "") == (f.Builtin == "") {
			return fmt.Errorf("render.fonts[%d]: exactly one of path and builtin must be set", i)
		}
	}

	return nil
}

// WriteDefault writes a default config file if none exists yet. It
// returns the written path, or an empty string if a config was already
// present.
func WriteDefault() (string, error) {
	dir := DefaultConfigDir()
	if dir == "" {
		return "", fmt.Errorf("cannot determine config directory")
	}
	path := filepath.Join(dir, "config.yaml")

	if _, err := os.Stat(path); err == nil {
		return "", nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(Default())
	if err != nil {
		return "", fmt.Errorf("encoding default config: %w", err)
	}

	header := "# ctprint configuration\n# See the project README for all options.\n\n"
	if err := os.WriteFile(path, append([]byte(header), data...), 0644); err != nil {
		return "", fmt.Errorf("writing default config: %w", err)
	}

	return path, nil
}

// ParseLogLevel maps a config log level to a slog level, defaulting to
// info for unknown values.
func ParseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// expandTilde replaces a leading ~ with the user's home directory.
func expandTilde(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
