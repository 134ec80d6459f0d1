package config

import (
	"os"
	"syscall"

	"github.com/runaway-guard/runaway-guard/internal/models"
)

// LoadLaunchRecord loads ~/.runaway-guard/daemon.yaml.
// Returns nil if the file doesn't exist.
func LoadLaunchRecord() (*models.LaunchRecord, error) {
	path, err := GlobalDaemonFile()
	if err != nil {
		return nil, err
	}

	if !FileExists(path) {
		return nil, nil
	}

	var rec models.LaunchRecord
	if err := LoadYAML(path, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// SaveLaunchRecord records the daemon this front-end just launched.
func SaveLaunchRecord(rec *models.LaunchRecord) error {
	path, err := GlobalDaemonFile()
	if err != nil {
		return err
	}
	return SaveYAML(path, rec)
}

// RemoveLaunchRecord removes the daemon.yaml file.
func RemoveLaunchRecord() error {
	path, err := GlobalDaemonFile()
	if err != nil {
		return err
	}
	return RemoveFile(path)
}

// LaunchedDaemonRunning reports whether the recorded daemon is still alive.
// A record whose PID is gone is removed.
func LaunchedDaemonRunning() (bool, *models.LaunchRecord, error) {
	rec, err := LoadLaunchRecord()
	if err != nil {
		return false, nil, err
	}
	if rec == nil {
		return false, nil, nil
	}

	process, err := os.FindProcess(rec.PID)
	if err != nil {
		return false, rec, nil
	}
	if err := process.Signal(syscall.Signal(0)); err != nil {
		_ = RemoveLaunchRecord()
		return false, rec, nil
	}
	return true, rec, nil
}

// LaunchRecorder persists launch records for the supervisor.
type LaunchRecorder struct{}

func (LaunchRecorder) Launched(pid int, binary, socket string) error {
	return SaveLaunchRecord(models.NewLaunchRecord(pid, binary, socket))
}

func (LaunchRecorder) Exited() error {
	return RemoveLaunchRecord()
}
