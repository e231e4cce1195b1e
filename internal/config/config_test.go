package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.HistoryPath == "" {
		t.Error("HistoryPath should not be empty")
	}
	if cfg.Render.FontSize != 28 {
		t.Errorf("Render.FontSize = %v, want 28", cfg.Render.FontSize)
	}
	if len(cfg.Render.Fonts) != 0 {
		t.Errorf("Render.Fonts = %v, want none", cfg.Render.Fonts)
	}
}

func TestLoad(t *testing.T) {
	yamlContent := `
log_level: debug
history_path: /tmp/test-history.db
render:
  font_size: 36
  fonts:
    - label: heading
      path: /usr/share/fonts/heading.ttf
    - label: mono
      builtin: gomono
`
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if cfg.HistoryPath != "/tmp/test-history.db" {
		t.Errorf("HistoryPath = %q, want %q", cfg.HistoryPath, "/tmp/test-history.db")
	}
	if cfg.Render.FontSize != 36 {
		t.Errorf("Render.FontSize = %v, want 36", cfg.Render.FontSize)
	}
	if len(cfg.Render.Fonts) != 2 {
		t.Fatalf("Render.Fonts length = %d, want 2", len(cfg.Render.Fonts))
	}
	if cfg.Render.Fonts[0].Label != "heading" || cfg.Render.Fonts[0].Path != "/usr/share/fonts/heading.ttf" {
		t.Errorf("Render.Fonts[0] = %+v", cfg.Render.Fonts[0])
	}
	if cfg.Render.Fonts[1].Label != "mono" || cfg.Render.Fonts[1].Builtin != "gomono" {
		t.Errorf("Render.Fonts[1] = %+v", cfg.Render.Fonts[1])
	}
}

func TestLoadExpandsTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("cannot determine home directory")
	}

	yamlContent := `
history_path: ~/printer/history.db
render:
  fonts:
    - label: fancy
      path: ~/fonts/fancy.ttf
`
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte(yamlContent), 0644); err != nil {
		t.Fatalf("failed to write test config: %v", err)
	}

	cfg, err := Load(cfgPath)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if want := filepath.Join(home, "printer/history.db"); cfg.HistoryPath != want {
		t.Errorf("HistoryPath = %q, want %q", cfg.HistoryPath, want)
	}
	if want := filepath.Join(home, "fonts/fancy.ttf"); cfg.Render.Fonts[0].Path != want {
		t.Errorf("Render.Fonts[0].Path = %q, want %q", cfg.Render.Fonts[0].Path, want)
	}
}

func TestLoadFileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/config.yaml")
	if err == nil {
		t.Error("Load() should return error for nonexistent file")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr bool
	}{
		{
			name:    "valid default config",
			modify:  func(c *Config) {},
			wantErr: false,
		},
		{
			name:    "invalid log level",
			modify:  func(c *Config) { c.LogLevel = "invalid" },
			wantErr: true,
		},
		{
			name:    "empty history path",
			modify:  func(c *Config) { c.HistoryPath = "" },
			wantErr: true,
		},
		{
			name:    "zero font size",
			modify:  func(c *Config) { c.Render.FontSize = 0 },
			wantErr: true,
		},
		{
			name: "valid font entry",
			modify: func(c *Config) {
				c.Render.Fonts = []FontConfig{{Label: "mono", Builtin: "gomono"}}
			},
			wantErr: false,
		},
		{
			name: "font without label",
			modify: func(c *Config) {
				c.Render.Fonts = []FontConfig{{Builtin: "gomono"}}
			},
			wantErr: true,
		},
		{
			name: "font with neither path nor builtin",
			modify: func(c *Config) {
				c.Render.Fonts = []FontConfig{{Label: "mono"}}
			},
			wantErr: true,
		},
		{
			name: "font with both path and builtin",
			modify: func(c *Config) {
				c.Render.Fonts = []FontConfig{{Label: "mono", Path: "/x.ttf", Builtin: "gomono"}}
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestWriteDefaultCreatesFile(t *testing.T) {
	tmpHome := t.TempDir()
	t.Setenv("HOME", tmpHome)

	path, err := WriteDefault()
	if err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}

	expectedPath := filepath.Join(tmpHome, ".config", "ctprint", "config.yaml")
	if path != expectedPath {
		t.Errorf("WriteDefault() path = %q, want %q", path, expectedPath)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read written config: %v", err)
	}
	if !strings.HasPrefix(string(data), "# ctprint") {
		t.Error("written config should start with header comment")
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("written config is not valid YAML: %v", err)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("written config LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if cfg.Render.FontSize != 28 {
		t.Errorf("written config Render.FontSize = %v, want 28", cfg.Render.FontSize)
	}
}

func TestWriteDefaultNoOpIfExists(t *testing.T) {
	tmpHome := t.TempDir()
	t.Setenv("HOME", tmpHome)

	configDir := filepath.Join(tmpHome, ".config", "ctprint")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	existingContent := []byte("log_level: error\n")
	configPath := filepath.Join(configDir, "config.yaml")
	if err := os.WriteFile(configPath, existingContent, 0644); err != nil {
		t.Fatalf("failed to write existing config: %v", err)
	}

	path, err := WriteDefault()
	if err != nil {
		t.Fatalf("WriteDefault() error = %v", err)
	}
	if path != "" {
		t.Errorf("WriteDefault() path = %q, want empty string for existing file", path)
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		t.Fatalf("failed to read config: %v", err)
	}
	if string(data) != string(existingContent) {
		t.Error("WriteDefault() should not overwrite existing config file")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"error", slog.LevelError},
		{"unknown", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := ParseLogLevel(tt.input)
			if got != tt.want {
				t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}
