package supervisor

import (
	"errors"
	"os"
	"os/exec"
	"path/filepath"
)

// EnvDaemonPath overrides daemon discovery.
const EnvDaemonPath = "RUNAWAY_DAEMON_PATH"

// ErrDaemonNotFound is returned when no daemon binary could be located.
var ErrDaemonNotFound = errors.New("daemon binary not found")

// Discovery locates the daemon binary. Zero-valued hooks use the OS.
type Discovery struct {
	// Configured is the daemon_path setting; empty means unset.
	Configured string
	// AppDir is the directory of the running front-end binary.
	AppDir string

	Getenv   func(string) string
	LookPath func(string) (string, error)
	IsFile   func(string) bool
}

// NewDiscovery returns a Discovery rooted at the running executable.
func NewDiscovery(configured string) Discovery {
	d := Discovery{Configured: configured}
	if exe, err := os.Executable(); err == nil {
		if resolved, err := filepath.EvalSymlinks(exe); err == nil {
			exe = resolved
		}
		d.AppDir = filepath.Dir(exe)
	}
	return d
}

// Find returns the first existing candidate in priority order: environment
// override, configured path, bundled paths, system paths, $PATH, then
// development build trees.
func (d Discovery) Find() (string, error) {
	getenv, lookPath, isFile := d.hooks()

	var first []string
	if p := getenv(EnvDaemonPath); p != "" {
		first = append(first, p)
	}
	if d.Configured != "" {
		first = append(first, d.Configured)
	}
	first = append(first, d.bundledPaths()...)
	first = append(first, systemPaths...)

	for _, p := range first {
		if isFile(p) {
			return filepath.Clean(p), nil
		}
	}

	if p, err := lookPath(DaemonName); err == nil {
		return p, nil
	}

	for _, p := range d.devPaths() {
		if isFile(p) {
			return filepath.Clean(p), nil
		}
	}
	return "", ErrDaemonNotFound
}

var systemPaths = []string{
	"/usr/local/bin/" + DaemonName,
	"/usr/bin/" + DaemonName,
}

func (d Discovery) bundledPaths() []string {
	if d.AppDir == "" {
		return nil
	}
	return []string{
		filepath.Join(d.AppDir, "..", "libexec", DaemonName),
		filepath.Join(d.AppDir, DaemonName),
		filepath.Join(d.AppDir, "..", "bin", DaemonName),
	}
}

func (d Discovery) devPaths() []string {
	if d.AppDir == "" {
		return nil
	}
	release := filepath.Join("daemon", "target", "release", DaemonName)
	worktree := filepath.Join(".worktrees", "dev", release)
	return []string{
		filepath.Join(d.AppDir, "..", "..", release),
		filepath.Join(d.AppDir, "..", "..", "..", release),
		filepath.Join(d.AppDir, "..", "..", worktree),
		filepath.Join(d.AppDir, "..", "..", "..", worktree),
	}
}

func (d Discovery) hooks() (func(string) string, func(string) (string, error), func(string) bool) {
	getenv, lookPath, isFile := d.Getenv, d.LookPath, d.IsFile
	if getenv == nil {
		getenv = os.Getenv
	}
	if lookPath == nil {
		lookPath = exec.LookPath
	}
	if isFile == nil {
		isFile = func(p string) bool {
			info, err := os.Stat(p)
			return err == nil && info.Mode().IsRegular()
		}
	}
	return getenv, lookPath, isFile
}
