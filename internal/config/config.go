// Package config handles configuration loading from files, defaults, and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config holds the application configuration.
type Config struct {
	Storage  StorageConfig  `toml:"storage"`
	UI       UIConfig       `toml:"ui"`
	Autosave AutosaveConfig `toml:"autosave"`
	Grading  GradingConfig  `toml:"grading"`
	Sessions SessionConfig  `toml:"sessions"`
}

// StorageConfig holds database settings.
type StorageConfig struct {
	DBPath string `toml:"db_path"`
}

// UIConfig holds TUI settings.
type UIConfig struct {
	Theme string `toml:"theme"` // "dark" or "light"
}

// AutosaveConfig holds the debounce windows per grid, in milliseconds.
// Attendance taps save faster than grade typing.
type AutosaveConfig struct {
	GradesWindowMS     int `toml:"grades_window_ms"`
	AttendanceWindowMS int `toml:"attendance_window_ms"`
}

// GradesWindow returns the grade-grid debounce window as a duration.
func (a AutosaveConfig) GradesWindow() time.Duration {
	return time.Duration(a.GradesWindowMS) * time.Millisecond
}

// AttendanceWindow returns the attendance-grid debounce window as a duration.
func (a AutosaveConfig) AttendanceWindow() time.Duration {
	return time.Duration(a.AttendanceWindowMS) * time.Millisecond
}

// BandConfig is one letter-grade threshold: averages at or above Min earn
// Letter. Bands must be listed with strictly descending thresholds.
type BandConfig struct {
	Min    float64 `toml:"min"`
	Letter string  `toml:"letter"`
}

// GradingConfig holds the letter-grade threshold table.
type GradingConfig struct {
	Bands []BandConfig `toml:"bands"`
	Fail  string       `toml:"fail"`
}

// SessionConfig holds the attendance session labels per day, in order.
type SessionConfig struct {
	Labels []string `toml:"labels"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			DBPath: defaultDBPath(),
		},
		UI: UIConfig{
			Theme: "dark",
		},
		Autosave: AutosaveConfig{
			GradesWindowMS:     2000,
			AttendanceWindowMS: 600,
		},
		Grading: GradingConfig{
			Bands: []BandConfig{
				{Min: 90, Letter: "A"},
				{Min: 80, Letter: "B"},
				{Min: 70, Letter: "C"},
				{Min: 50, Letter: "D"},
			},
			Fail: "F",
		},
		Sessions: SessionConfig{
			Labels: []string{"M", "A"},
		},
	}
}

// defaultDBPath returns the default database path.
func defaultDBPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "markbook.db"
	}
	return filepath.Join(home, ".local", "share", "markbook", "markbook.db")
}

// DefaultConfigPath returns the default config file path.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.toml"
	}
	return filepath.Join(home, ".config", "markbook", "config.toml")
}

// Load loads configuration from the default path, merging with defaults and env vars.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigPath())
}

// LoadFrom loads configuration from the specified path.
// It starts with defaults, overlays file config if it exists, then applies env overrides.
func LoadFrom(path string) (*Config, error) {
	cfg := Default()

	// Try to load from file (not an error if it doesn't exist)
	if err := loadFromFile(path, cfg); err != nil {
		return nil, err
	}

	// Apply environment variable overrides
	applyEnvOverrides(cfg)

	// Expand paths
	cfg.Storage.DBPath = expandPath(cfg.Storage.DBPath)

	// Validate
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// loadFromFile loads config from a file if it exists.
func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // File doesn't exist, use defaults
		}
		return fmt.Errorf("reading config file: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config.
// Environment variables take precedence over file config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("MARKBOOK_DB_PATH"); v != "" {
		cfg.Storage.DBPath = v
	}
	if v := os.Getenv("MARKBOOK_UI_THEME"); v != "" {
		cfg.UI.Theme = v
	}
	if v := os.Getenv("MARKBOOK_GRADES_WINDOW_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			cfg.Autosave.GradesWindowMS = ms
		}
	}
	if v := os.Getenv("MARKBOOK_ATTENDANCE_WINDOW_MS"); v != "" {
		if ms, err := strconv.Atoi(v); err == nil {
			cfg.Autosave.AttendanceWindowMS = ms
		}
	}
	if v := os.Getenv("MARKBOOK_SESSIONS"); v != "" {
		cfg.Sessions.Labels = strings.Split(v, ",")
	}
}

// expandPath expands ~ to the user's home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Storage.DBPath == "" {
		return errors.New("db_path must be set")
	}
	if c.UI.Theme != "dark" && c.UI.Theme != "light" {
		return fmt.Errorf("invalid theme: %s", c.UI.Theme)
	}
	if c.Autosave.GradesWindowMS <= 0 {
		return errors.New("grades_window_ms must be positive")
	}
	if c.Autosave.AttendanceWindowMS <= 0 {
		return errors.New("attendance_window_ms must be positive")
	}

	if len(c.Grading.Bands) == 0 {
		return errors.New("at least one grading band must be configured")
	}
	for i, b := range c.Grading.Bands {
		if b.Letter == "" {
			return fmt.Errorf("grading band %d has no letter", i)
		}
		if i > 0 && b.Min >= c.Grading.Bands[i-1].Min {
			return errors.New("grading bands must have strictly descending thresholds")
		}
	}
	if c.Grading.Fail == "" {
		return errors.New("a failing letter must be configured")
	}

	if len(c.Sessions.Labels) == 0 {
		return errors.New("at least one session label must be configured")
	}
	seen := make(map[string]bool)
	for _, l := range c.Sessions.Labels {
		if l == "" {
			return errors.New("session labels cannot be empty")
		}
		if seen[l] {
			return fmt.Errorf("duplicate session label: %s", l)
		}
		seen[l] = true
	}

	return nil
}

// Save writes the configuration to the default path.
func (c *Config) Save() error {
	return c.SaveTo(DefaultConfigPath())
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	// Ensure directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}
