package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Server.BaseURL == "" {
		t.Error("default base URL is empty")
	}
	if cfg.Polling.AuthCheckSeconds != 2 {
		t.Errorf("auth check interval = %d, want 2", cfg.Polling.AuthCheckSeconds)
	}
	if cfg.Polling.UnreadCountSeconds != 60 {
		t.Errorf("unread interval = %d, want 60", cfg.Polling.UnreadCountSeconds)
	}
	if cfg.Pipeline.LogBufferSize != 200 {
		t.Errorf("log buffer size = %d, want 200", cfg.Pipeline.LogBufferSize)
	}
}

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Polling.AuthCheckSeconds != 2 {
		t.Errorf("auth check interval = %d, want default 2", cfg.Polling.AuthCheckSeconds)
	}
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
[server]
base_url = "https://assistant.example/api/v1"

[polling]
auth_check_seconds = 5

[pipeline]
log_buffer_size = 50

[[pipeline.schedules]]
name = "nightly"
cron = "0 3 * * *"
kind = "full"
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.BaseURL != "https://assistant.example/api/v1" {
		t.Errorf("base URL = %q", cfg.Server.BaseURL)
	}
	if cfg.AuthCheckInterval() != 5*time.Second {
		t.Errorf("auth interval = %v, want 5s", cfg.AuthCheckInterval())
	}
	// Untouched keys keep their defaults
	if cfg.UnreadCountInterval() != 60*time.Second {
		t.Errorf("unread interval = %v, want 60s", cfg.UnreadCountInterval())
	}
	if cfg.Pipeline.LogBufferSize != 50 {
		t.Errorf("log buffer size = %d, want 50", cfg.Pipeline.LogBufferSize)
	}
	if len(cfg.Pipeline.Schedules) != 1 || cfg.Pipeline.Schedules[0].Name != "nightly" {
		t.Errorf("schedules = %+v, want one nightly entry", cfg.Pipeline.Schedules)
	}
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	os.WriteFile(path, []byte("not [valid toml"), 0o644)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for malformed config")
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		in   string
		want string
	}{
		{"~/state.db", filepath.Join(home, "state.db")},
		{"/abs/state.db", "/abs/state.db"},
		{"rel/state.db", "rel/state.db"},
	}

	for _, tt := range tests {
		if got := ExpandPath(tt.in); got != tt.want {
			t.Errorf("ExpandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
