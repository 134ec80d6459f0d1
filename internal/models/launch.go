package models

import "time"

// LaunchRecord describes a daemon process started by this front-end.
// This corresponds to ~/.runaway-guard/daemon.yaml.
type LaunchRecord struct {
	Version   int       `yaml:"version"`
	PID       int       `yaml:"pid"`
	Binary    string    `yaml:"binary"`
	Socket    string    `yaml:"socket"`
	StartedAt time.Time `yaml:"started_at"`
}

// NewLaunchRecord creates a launch record stamped with the current time.
func NewLaunchRecord(pid int, binary, socket string) *LaunchRecord {
	return &LaunchRecord{
		Version:   1,
		PID:       pid,
		Binary:    binary,
		Socket:    socket,
		StartedAt: time.Now().UTC(),
	}
}
