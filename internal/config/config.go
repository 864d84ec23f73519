package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	json "github.com/goccy/go-json"
)

// Environment variables read by the CLI.
const (
	EnvConfig = "FDDPLAN_CONFIG"
	EnvDebug  = "FDDPLAN_DEBUG"
)

// State backends for session memory.
const (
	BackendJSON   = "json"
	BackendBadger = "badger"
)

// Config holds the editor settings.
type Config struct {
	HistoryLimit    int         `json:"historyLimit"`
	WatchDebounceMS int         `json:"watchDebounceMs"`
	StateBackend    string      `json:"stateBackend"`
	StatePath       string      `json:"statePath"`
	RecentLimit     int         `json:"recentLimit"`
	ResequencePaste bool        `json:"resequencePaste"`
	Theme           ThemeConfig `json:"theme"`
}

// ThemeConfig defines output colors
type ThemeConfig struct {
	HighlightColor string `json:"highlightColor"`
	DoneColor      string `json:"doneColor"`
	LateColor      string `json:"lateColor"`
	MutedColor     string `json:"mutedColor"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		HistoryLimit:    100,
		WatchDebounceMS: 300,
		StateBackend:    BackendJSON,
		RecentLimit:     10,
		ResequencePaste: true,
		Theme: ThemeConfig{
			HighlightColor: "#F780E2",
			DoneColor:      "#04B575",
			LateColor:      "#EF4146",
			MutedColor:     "#626262",
		},
	}
}

// DefaultPath returns $FDDPLAN_CONFIG, or config.json under the user's
// config directory.
func DefaultPath() string {
	if p := os.Getenv(EnvConfig); p != "" {
		return p
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "fddplan", "config.json")
}

// Load returns the defaults merged with the file at path. An empty path
// means DefaultPath, and a missing default file is not an error; a missing
// explicit file is.
func Load(path string) (*Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		if err := mergeConfigFile(cfg, path); err != nil {
			if !explicit && errors.Is(err, fs.ErrNotExist) {
				return cfg, cfg.Validate()
			}
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// mergeConfigFile loads a config file and merges its non-zero values into target
func mergeConfigFile(target *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var partial Config
	if err := json.Unmarshal(data, &partial); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	if partial.HistoryLimit != 0 {
		target.HistoryLimit = partial.HistoryLimit
	}
	if partial.WatchDebounceMS > 0 {
		target.WatchDebounceMS = partial.WatchDebounceMS
	}
	if partial.StateBackend != "" {
		target.StateBackend = partial.StateBackend
	}
	if partial.StatePath != "" {
		target.StatePath = partial.StatePath
	}
	if partial.RecentLimit > 0 {
		target.RecentLimit = partial.RecentLimit
	}

	// Bools can't be told apart from unset after decoding, so look again.
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err == nil {
		if _, ok := raw["resequencePaste"]; ok {
			target.ResequencePaste = partial.ResequencePaste
		}
	}

	if partial.Theme.HighlightColor != "" {
		target.Theme.HighlightColor = partial.Theme.HighlightColor
	}
	if partial.Theme.DoneColor != "" {
		target.Theme.DoneColor = partial.Theme.DoneColor
	}
	if partial.Theme.LateColor != "" {
		target.Theme.LateColor = partial.Theme.LateColor
	}
	if partial.Theme.MutedColor != "" {
		target.Theme.MutedColor = partial.Theme.MutedColor
	}
	return nil
}

// Validate checks settings that have a fixed set of values.
func (c *Config) Validate() error {
	switch c.StateBackend {
	case BackendJSON, BackendBadger:
	default:
		return fmt.Errorf("unknown state backend %q", c.StateBackend)
	}
	if c.HistoryLimit < 0 {
		return fmt.Errorf("historyLimit must be >= 0, got %d", c.HistoryLimit)
	}
	return nil
}

// WatchDebounce is the quiet period before an external edit triggers a reload.
func (c *Config) WatchDebounce() time.Duration {
	return time.Duration(c.WatchDebounceMS) * time.Millisecond
}

// ResolvedStatePath returns StatePath, or a backend-specific default under
// the user's config directory.
func (c *Config) ResolvedStatePath() (string, error) {
	if c.StatePath != "" {
		return c.StatePath, nil
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate config directory: %w", err)
	}
	name := "state.json"
	if c.StateBackend == BackendBadger {
		name = "state.badger"
	}
	return filepath.Join(dir, "fddplan", name), nil
}

// GetEnv retrieves an environment variable with an optional fallback value
func GetEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
