package models

// DaemonConfig mirrors the daemon's runtime configuration as exchanged by
// get_config and update_config.
type DaemonConfig struct {
	General   GeneralConfig   `json:"general"`
	Detection DetectionConfig `json:"detection"`
	Learning  LearningConfig  `json:"learning"`
	Rules     []Rule          `json:"rules"`
}

// GeneralConfig holds sampling and notification settings.
type GeneralConfig struct {
	Autostart            bool   `json:"autostart"`
	SampleIntervalNormal uint64 `json:"sample_interval_normal"` // seconds
	SampleIntervalAlert  uint64 `json:"sample_interval_alert"`  // seconds
	NotificationMethod   string `json:"notification_method"`    // "both" | "system" | "popup"
}

// DetectionConfig groups the anomaly detectors.
type DetectionConfig struct {
	CPU     CPUDetectionConfig     `json:"cpu"`
	Hang    HangDetectionConfig    `json:"hang"`
	Memory  MemoryDetectionConfig  `json:"memory"`
	Timeout TimeoutDetectionConfig `json:"timeout"`
}

type CPUDetectionConfig struct {
	Enabled          bool   `json:"enabled"`
	ThresholdPercent uint8  `json:"threshold_percent"`
	DurationSeconds  uint64 `json:"duration_seconds"`
}

type HangDetectionConfig struct {
	Enabled         bool   `json:"enabled"`
	DurationSeconds uint64 `json:"duration_seconds"`
}

type MemoryDetectionConfig struct {
	Enabled       bool   `json:"enabled"`
	GrowthMB      uint64 `json:"growth_mb"`
	WindowMinutes uint64 `json:"window_minutes"`
}

type TimeoutDetectionConfig struct {
	Enabled bool `json:"enabled"`
}

// LearningConfig controls baseline learning in the daemon.
type LearningConfig struct {
	Enabled          bool   `json:"enabled"`
	MinHistoryDays   uint64 `json:"min_history_days"`
	SuggestWhitelist bool   `json:"suggest_whitelist"`
}

// Rule is a per-process override.
type Rule struct {
	Name              string  `json:"name"`
	Pattern           string  `json:"match"`
	MatchType         string  `json:"match_type"`
	MaxRuntimeMinutes *uint64 `json:"max_runtime_minutes,omitempty"`
	Action            *string `json:"action,omitempty"`
}

// NewDaemonConfig returns the daemon's built-in defaults.
func NewDaemonConfig() *DaemonConfig {
	return &DaemonConfig{
		General: GeneralConfig{
			Autostart:            true,
			SampleIntervalNormal: 10,
			SampleIntervalAlert:  2,
			NotificationMethod:   "both",
		},
		Detection: DetectionConfig{
			CPU:     CPUDetectionConfig{Enabled: true, ThresholdPercent: 90, DurationSeconds: 60},
			Hang:    HangDetectionConfig{Enabled: true, DurationSeconds: 30},
			Memory:  MemoryDetectionConfig{Enabled: true, GrowthMB: 500, WindowMinutes: 5},
			Timeout: TimeoutDetectionConfig{Enabled: true},
		},
		Learning: LearningConfig{
			Enabled:          true,
			MinHistoryDays:   7,
			SuggestWhitelist: true,
		},
		Rules: []Rule{},
	}
}
