// Package config handles configuration loading, saving, and path management.
package config

import (
	"os"
	"path/filepath"
	"strconv"
)

const (
	// GlobalDirName is the name of the per-user RunawayGuard directory.
	GlobalDirName = ".runaway-guard"

	// LogsDirName is the name of the logs directory.
	LogsDirName = "logs"

	// RuntimeRoot holds per-user runtime directories (/run/user/<uid>).
	RuntimeRoot = "/run/user"
)

// File names
const (
	DaemonFileName    = "daemon.yaml"
	SettingsFileName  = "settings.yaml"
	SocketFileName    = "runaway-guard.sock"
	DaemonLogFileName = "daemon.log"
	GUILogFileName    = "gui.log"
)

// GlobalDir returns the path to the global directory (~/.runaway-guard/).
func GlobalDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, GlobalDirName), nil
}

// GlobalDaemonFile returns the path to the daemon.yaml launch record.
func GlobalDaemonFile() (string, error) {
	return inGlobalDir(DaemonFileName)
}

// GlobalSettingsFile returns the path to the settings.yaml file.
func GlobalSettingsFile() (string, error) {
	return inGlobalDir(SettingsFileName)
}

// GlobalLogsDir returns the path to the logs directory.
func GlobalLogsDir() (string, error) {
	return inGlobalDir(LogsDirName)
}

// DaemonLogFile returns the file the launched daemon's output is appended to.
func DaemonLogFile() (string, error) {
	return inGlobalDir(LogsDirName, DaemonLogFileName)
}

// GUILogFile returns the front-end's own log file.
func GUILogFile() (string, error) {
	return inGlobalDir(LogsDirName, GUILogFileName)
}

func inGlobalDir(elem ...string) (string, error) {
	dir, err := GlobalDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{dir}, elem...)...), nil
}

// RuntimeDir returns the current user's runtime directory.
func RuntimeDir() string {
	return filepath.Join(RuntimeRoot, strconv.Itoa(os.Getuid()))
}

// SocketPath returns the daemon's endpoint: /run/user/<uid>/runaway-guard.sock.
func SocketPath() string {
	return filepath.Join(RuntimeDir(), SocketFileName)
}

// EnsureGlobalDir creates the global directory if it doesn't exist.
func EnsureGlobalDir() error {
	dir, err := GlobalDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// EnsureGlobalLogsDir creates the global logs directory if it doesn't exist.
func EnsureGlobalLogsDir() error {
	dir, err := GlobalLogsDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}
