package models

// Alert is either a pushed alert event or a row of a get_alerts response.
// ID and Timestamp are only set for stored alerts.
type Alert struct {
	ID        int64  `json:"id,omitempty"`
	PID       uint32 `json:"pid"`
	Name      string `json:"name"`
	Reason    string `json:"reason"`   // "cpu_high" | "hang" | "memory_leak" | "timeout"
	Severity  string `json:"severity"` // "warning" | "critical"
	Timestamp string `json:"timestamp,omitempty"`
}

// Status is the daemon's periodic status push.
type Status struct {
	MonitoredCount uint32 `json:"monitored_count"`
	AlertCount     uint32 `json:"alert_count"`
}
