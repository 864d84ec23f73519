package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv(EnvConfig, filepath.Join(t.TempDir(), "missing.json"))

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	want := Default()
	if cfg.HistoryLimit != want.HistoryLimit {
		t.Errorf("HistoryLimit = %d, want %d", cfg.HistoryLimit, want.HistoryLimit)
	}
	if cfg.StateBackend != BackendJSON {
		t.Errorf("StateBackend = %q, want %q", cfg.StateBackend, BackendJSON)
	}
	if cfg.WatchDebounce() != 300*time.Millisecond {
		t.Errorf("WatchDebounce() = %v", cfg.WatchDebounce())
	}
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist, got %v", err)
	}
}

func TestLoad_MergesFile(t *testing.T) {
	path := writeConfig(t, `{
		"historyLimit": 20,
		"stateBackend": "badger",
		"resequencePaste": false,
		"theme": {"lateColor": "#FF0000"}
	}`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.HistoryLimit != 20 {
		t.Errorf("HistoryLimit = %d, want 20", cfg.HistoryLimit)
	}
	if cfg.StateBackend != BackendBadger {
		t.Errorf("StateBackend = %q", cfg.StateBackend)
	}
	if cfg.ResequencePaste {
		t.Error("ResequencePaste should be overridden to false")
	}
	if cfg.Theme.LateColor != "#FF0000" {
		t.Errorf("LateColor = %q", cfg.Theme.LateColor)
	}
	if cfg.Theme.DoneColor != Default().Theme.DoneColor {
		t.Errorf("DoneColor should keep its default, got %q", cfg.Theme.DoneColor)
	}
	if cfg.RecentLimit != 10 {
		t.Errorf("RecentLimit = %d, want default 10", cfg.RecentLimit)
	}
}

func TestLoad_EnvPath(t *testing.T) {
	path := writeConfig(t, `{"recentLimit": 3}`)
	t.Setenv(EnvConfig, path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.RecentLimit != 3 {
		t.Errorf("RecentLimit = %d, want 3", cfg.RecentLimit)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"historyLimit": `},
		{"unknown backend", `{"stateBackend": "sqlite"}`},
		{"negative history", `{"historyLimit": -1}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.body)); err == nil {
				t.Error("expected an error")
			}
		})
	}
}

func TestResolvedStatePath(t *testing.T) {
	cfg := Default()
	cfg.StatePath = "/tmp/custom.json"
	got, err := cfg.ResolvedStatePath()
	if err != nil || got != "/tmp/custom.json" {
		t.Errorf("ResolvedStatePath() = %q, %v", got, err)
	}

	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())
	cfg.StatePath = ""
	cfg.StateBackend = BackendBadger
	got, err = cfg.ResolvedStatePath()
	if err != nil {
		t.Fatalf("ResolvedStatePath() error = %v", err)
	}
	if filepath.Base(got) != "state.badger" {
		t.Errorf("ResolvedStatePath() = %q, want a state.badger path", got)
	}
}

func TestGetEnv(t *testing.T) {
	t.Setenv("FDDPLAN_TEST_VALUE", "set")
	if got := GetEnv("FDDPLAN_TEST_VALUE", "fallback"); got != "set" {
		t.Errorf("GetEnv() = %q", got)
	}
	if got := GetEnv("FDDPLAN_TEST_UNSET", "fallback"); got != "fallback" {
		t.Errorf("GetEnv() = %q, want fallback", got)
	}
}
