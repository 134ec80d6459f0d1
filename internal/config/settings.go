package config

import (
	"github.com/runaway-guard/runaway-guard/internal/models"
)

// LoadSettings loads the global settings from ~/.runaway-guard/settings.yaml.
// If the file doesn't exist, returns default settings.
func LoadSettings() (*models.Settings, error) {
	path, err := GlobalSettingsFile()
	if err != nil {
		return nil, err
	}
	return LoadYAMLOrDefault(path, models.NewSettings)
}

// SaveSettings saves the global settings to ~/.runaway-guard/settings.yaml.
func SaveSettings(settings *models.Settings) error {
	path, err := GlobalSettingsFile()
	if err != nil {
		return err
	}
	return SaveYAML(path, settings)
}

// SettingsStore reads settings from a fixed file every time they are asked
// for, so edits made by another process take effect without a restart.
type SettingsStore struct {
	path string
}

// NewSettingsStore returns a store for ~/.runaway-guard/settings.yaml.
func NewSettingsStore() (*SettingsStore, error) {
	path, err := GlobalSettingsFile()
	if err != nil {
		return nil, err
	}
	return NewSettingsStoreAt(path), nil
}

// NewSettingsStoreAt returns a store backed by path.
func NewSettingsStoreAt(path string) *SettingsStore {
	return &SettingsStore{path: path}
}

func (s *SettingsStore) Path() string { return s.path }

func (s *SettingsStore) Load() (*models.Settings, error) {
	return LoadYAMLOrDefault(s.path, models.NewSettings)
}

func (s *SettingsStore) Save(settings *models.Settings) error {
	return SaveYAML(s.path, settings)
}

// ManageDaemonLifecycle reports whether the front-end owns the daemon's
// lifetime. Unreadable settings fall back to the default.
func (s *SettingsStore) ManageDaemonLifecycle() bool {
	settings, err := s.Load()
	if err != nil {
		return models.NewSettings().ManageDaemonLifecycle
	}
	return settings.ManageDaemonLifecycle
}

// SetManageDaemonLifecycle persists the lifecycle preference.
func (s *SettingsStore) SetManageDaemonLifecycle(enabled bool) error {
	settings, err := s.Load()
	if err != nil {
		settings = models.NewSettings()
	}
	settings.ManageDaemonLifecycle = enabled
	return s.Save(settings)
}
