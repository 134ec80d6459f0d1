package cli

import (
	"errors"
	"fmt"
	"os"
	"syscall"
	"time"

	"github.com/runaway-guard/runaway-guard/internal/client"
	"github.com/runaway-guard/runaway-guard/internal/config"
	"github.com/runaway-guard/runaway-guard/internal/models"
	"github.com/runaway-guard/runaway-guard/internal/protocol"
	"github.com/runaway-guard/runaway-guard/internal/supervisor"
)

const probeTimeout = 2 * time.Second

// DaemonStatusInfo contains daemon status information.
type DaemonStatusInfo struct {
	Endpoint     string
	SocketExists bool
	Reachable    bool
	Processes    int
	Alerts       int

	// Launch is set when this front-end launched the daemon and it is alive.
	Launch *models.LaunchRecord
	// Unowned is set when a daemon process runs that was started elsewhere.
	Unowned bool
}

// GetDaemonStatus gathers the launch record, socket state and a live probe.
func GetDaemonStatus() (*DaemonStatusInfo, error) {
	info := &DaemonStatusInfo{Endpoint: config.SocketPath()}

	running, rec, err := config.LaunchedDaemonRunning()
	if err != nil {
		return nil, fmt.Errorf("failed to read launch record: %w", err)
	}
	if running {
		info.Launch = rec
	} else {
		info.Unowned = supervisor.PgrepFinder{}.Running(supervisor.DaemonName)
	}

	_, err = os.Stat(info.Endpoint)
	info.SocketExists = err == nil
	if info.SocketExists {
		probeDaemon(info, probeTimeout)
	}
	return info, nil
}

// probeDaemon connects once and asks for the process and alert lists.
func probeDaemon(info *DaemonStatusInfo, timeout time.Duration) {
	c := client.New(client.Options{DialTimeout: timeout})
	c.SetAutoReconnect(false)

	connected := make(chan bool, 1)
	procs := make(chan int, 1)
	alerts := make(chan int, 1)
	c.OnEvent(func(ev client.Event) {
		switch ev := ev.(type) {
		case client.Connected:
			offer(connected, true)
		case client.ConnectFailed:
			offer(connected, false)
		case client.ProcessListReceived:
			offer(procs, len(ev.Processes))
		case client.AlertListReceived:
			offer(alerts, len(ev.Alerts))
		}
	})
	defer c.Close()

	c.Connect(info.Endpoint)

	deadline := time.After(timeout)
	select {
	case ok := <-connected:
		if !ok {
			return
		}
	case <-deadline:
		return
	}
	info.Reachable = true

	if err := c.RequestProcessList(); err != nil {
		return
	}
	if err := c.RequestAlerts(protocol.DefaultAlertLimit); err != nil {
		return
	}
	for i := 0; i < 2; i++ {
		select {
		case n := <-procs:
			info.Processes = n
		case n := <-alerts:
			info.Alerts = n
		case <-deadline:
			return
		}
	}
}

// offer delivers v unless a value is already waiting.
func offer[T any](ch chan T, v T) {
	select {
	case ch <- v:
	default:
	}
}

// stopLaunchedDaemon terminates the recorded daemon, escalating to SIGKILL
// if it does not exit in time.
func stopLaunchedDaemon(rec *models.LaunchRecord) error {
	process, err := os.FindProcess(rec.PID)
	if err != nil {
		return fmt.Errorf("failed to find daemon process: %w", err)
	}

	if err := process.Signal(syscall.SIGTERM); err != nil {
		if errors.Is(err, os.ErrProcessDone) {
			return cleanupAfterStop(rec)
		}
		return fmt.Errorf("failed to send stop signal: %w", err)
	}

	if !waitForExit(process, supervisor.TerminateWait) {
		if err := process.Signal(syscall.SIGKILL); err != nil && !errors.Is(err, os.ErrProcessDone) {
			return fmt.Errorf("failed to kill daemon: %w", err)
		}
		if !waitForExit(process, supervisor.KillWait) {
			return fmt.Errorf("daemon (PID %d) did not stop", rec.PID)
		}
	}

	return cleanupAfterStop(rec)
}

func waitForExit(process *os.Process, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if err := process.Signal(syscall.Signal(0)); err != nil {
			return true
		}
		time.Sleep(100 * time.Millisecond)
	}
	return false
}

func cleanupAfterStop(rec *models.LaunchRecord) error {
	if rec.Socket != "" {
		if err := config.RemoveFile(rec.Socket); err != nil {
			return fmt.Errorf("failed to remove socket: %w", err)
		}
	}
	return config.RemoveLaunchRecord()
}
