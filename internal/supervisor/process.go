package supervisor

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"time"
)

// DaemonName is the daemon executable's name, used for discovery and for the
// system process lookup.
const DaemonName = "runaway-daemon"

// Process is a launched daemon.
type Process interface {
	Pid() int
	Alive() bool
	Terminate() error
	Kill() error
	// Wait blocks until the process exits or timeout passes and reports
	// whether it exited.
	Wait(timeout time.Duration) bool
	// Done is closed once the process has exited and been reaped.
	Done() <-chan struct{}
}

// Launcher starts the daemon binary.
type Launcher interface {
	Launch(binary string) (Process, error)
}

// ProcessFinder looks up running processes by exact name.
type ProcessFinder interface {
	Running(name string) bool
}

// FS is the slice of the filesystem the supervisor inspects.
type FS interface {
	Exists(path string) bool
	Remove(path string) error
}

// ExecLauncher starts the daemon as a child in its own process group with
// output appended to LogFile.
type ExecLauncher struct {
	LogFile string
}

func (l ExecLauncher) Launch(binary string) (Process, error) {
	cmd := exec.Command(binary)
	cmd.Env = daemonEnv(os.Environ())
	cmd.Stdin = nil
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	var logFile *os.File
	if l.LogFile != "" {
		if err := os.MkdirAll(filepath.Dir(l.LogFile), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(l.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, fmt.Errorf("failed to open daemon log: %w", err)
		}
		logFile = f
		cmd.Stdout = f
		cmd.Stderr = f
	}

	if err := cmd.Start(); err != nil {
		if logFile != nil {
			logFile.Close()
		}
		return nil, fmt.Errorf("failed to start daemon: %w", err)
	}

	p := &execProcess{cmd: cmd, done: make(chan struct{})}
	go func() {
		p.err = cmd.Wait()
		if logFile != nil {
			logFile.Close()
		}
		close(p.done)
	}()
	return p, nil
}

// daemonEnv returns environ with RUST_LOG=info added when it is not set.
func daemonEnv(environ []string) []string {
	for _, kv := range environ {
		if strings.HasPrefix(kv, "RUST_LOG=") {
			return environ
		}
	}
	env := make([]string, len(environ), len(environ)+1)
	copy(env, environ)
	return append(env, "RUST_LOG=info")
}

type execProcess struct {
	cmd  *exec.Cmd
	done chan struct{}
	err  error
}

func (p *execProcess) Pid() int { return p.cmd.Process.Pid }

func (p *execProcess) Alive() bool {
	select {
	case <-p.done:
		return false
	default:
		return true
	}
}

func (p *execProcess) Terminate() error { return p.signal(syscall.SIGTERM) }

func (p *execProcess) Kill() error { return p.signal(syscall.SIGKILL) }

func (p *execProcess) signal(sig syscall.Signal) error {
	if err := p.cmd.Process.Signal(sig); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}

func (p *execProcess) Wait(timeout time.Duration) bool {
	select {
	case <-p.done:
		return true
	case <-time.After(timeout):
		return false
	}
}

func (p *execProcess) Done() <-chan struct{} { return p.done }

// PgrepFinder asks pgrep(1) for an exact process-name match.
type PgrepFinder struct {
	Timeout time.Duration
}

func (f PgrepFinder) Running(name string) bool {
	timeout := f.Timeout
	if timeout <= 0 {
		timeout = time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return exec.CommandContext(ctx, "pgrep", "-x", name).Run() == nil
}

// OSFS is the real filesystem.
type OSFS struct{}

func (OSFS) Exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (OSFS) Remove(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}
