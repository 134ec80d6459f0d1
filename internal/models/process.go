package models

// ProcessInfo is one row of a list_processes response.
type ProcessInfo struct {
	PID            uint32  `json:"pid"`
	Name           string  `json:"name"`
	Cmdline        string  `json:"cmdline"`
	CPUPercent     float64 `json:"cpu_percent"`
	MemoryMB       float64 `json:"memory_mb"`
	RuntimeSeconds uint64  `json:"runtime_seconds"`
	State          string  `json:"state"`
}

// Signal names accepted by kill_process.
const (
	SignalTerm = "SIGTERM"
	SignalKill = "SIGKILL"
	SignalStop = "SIGSTOP"
	SignalCont = "SIGCONT"
)
