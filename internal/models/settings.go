package models

import "time"

// Settings represents the front-end's persisted preferences.
// This corresponds to ~/.runaway-guard/settings.yaml.
type Settings struct {
	Version int `yaml:"version"`

	// ManageDaemonLifecycle stops the daemon when the front-end exits.
	// When false the daemon keeps running and is adopted on next launch.
	ManageDaemonLifecycle bool `yaml:"manage_daemon_lifecycle"`

	DaemonPath      string        `yaml:"daemon_path,omitempty"` // empty = discover
	AlertLimit      int           `yaml:"alert_limit"`
	RefreshInterval time.Duration `yaml:"refresh_interval"`
}

// NewSettings creates settings with default values.
func NewSettings() *Settings {
	return &Settings{
		Version:               1,
		ManageDaemonLifecycle: true,
		AlertLimit:            50,
		RefreshInterval:       10 * time.Second,
	}
}
