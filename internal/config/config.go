package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig        `toml:"server"`
	Polling       PollingConfig       `toml:"polling"`
	Pipeline      PipelineConfig      `toml:"pipeline"`
	Notifications NotificationsConfig `toml:"notifications"`
}

// ServerConfig holds backend connection settings
type ServerConfig struct {
	BaseURL   string `toml:"base_url"`
	StatePath string `toml:"state_path"`
}

// PollingConfig holds background poller intervals
type PollingConfig struct {
	AuthCheckSeconds   int `toml:"auth_check_seconds"`
	UnreadCountSeconds int `toml:"unread_count_seconds"`
}

// PipelineConfig holds run settings and client-side schedules
type PipelineConfig struct {
	LogBufferSize int              `toml:"log_buffer_size"`
	Schedules     []ScheduleConfig `toml:"schedules"`
}

// ScheduleConfig is one client-side scheduled pipeline run
type ScheduleConfig struct {
	Name string `toml:"name"`
	Cron string `toml:"cron"`
	Kind string `toml:"kind"`
}

// NotificationsConfig holds desktop notification settings
type NotificationsConfig struct {
	Desktop bool `toml:"desktop"`
}

// Default returns a Config with sensible defaults
func Default() *Config {
	home, _ := os.UserHomeDir()
	return &Config{
		Server: ServerConfig{
			BaseURL:   "http://localhost:8000/api/v1",
			StatePath: filepath.Join(home, ".moodle-assistant", "state.db"),
		},
		Polling: PollingConfig{
			AuthCheckSeconds:   2,
			UnreadCountSeconds: 60,
		},
		Pipeline: PipelineConfig{
			LogBufferSize: 200,
		},
		Notifications: NotificationsConfig{
			Desktop: true,
		},
	}
}

// Load reads configuration from a TOML file, falling back to defaults
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.Server.StatePath = ExpandPath(cfg.Server.StatePath)

	return cfg, nil
}

// AuthCheckInterval returns the auth poller interval as a duration
func (c *Config) AuthCheckInterval() time.Duration {
	return time.Duration(c.Polling.AuthCheckSeconds) * time.Second
}

// UnreadCountInterval returns the unread poller interval as a duration
func (c *Config) UnreadCountInterval() time.Duration {
	return time.Duration(c.Polling.UnreadCountSeconds) * time.Second
}

// ExpandPath expands ~ to the user's home directory
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, path[2:])
	}
	return path
}

// DefaultConfigPath returns the default config file location
func DefaultConfigPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "moodle-assistant", "config.toml")
}
