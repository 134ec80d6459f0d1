// Package tray implements the system tray icon and menu.
package tray

import (
	"fmt"
	"sync"

	"github.com/runaway-guard/runaway-guard/internal/client"
	"github.com/runaway-guard/runaway-guard/internal/models"
	"github.com/runaway-guard/runaway-guard/internal/supervisor"
)

// Controller is the part of the supervisor the tray menu drives.
type Controller interface {
	RestartDaemon()
	StopDaemon()
}

// IconLevel selects the tray icon colour.
type IconLevel int

const (
	IconNormal IconLevel = iota
	IconWarning
	IconCritical
)

func (l IconLevel) String() string {
	switch l {
	case IconNormal:
		return "normal"
	case IconWarning:
		return "warning"
	case IconCritical:
		return "critical"
	default:
		return "unknown"
	}
}

// Snapshot is what the tray currently displays.
type Snapshot struct {
	State     supervisor.State
	Connected bool
	Status    models.Status
	LastAlert *models.Alert
	LastError string
}

// Level maps a snapshot to an icon: critical while the daemon is unreachable,
// warning while it reports alerts.
func (s Snapshot) Level() IconLevel {
	if !s.Connected {
		return IconCritical
	}
	if s.Status.AlertCount > 0 {
		return IconWarning
	}
	return IconNormal
}

// StatusText is the first menu line.
func (s Snapshot) StatusText() string {
	switch {
	case s.State == supervisor.StateFailed && s.LastError != "":
		return "Daemon failed: " + s.LastError
	case s.Connected:
		return "Daemon running"
	case s.State == supervisor.StateStarting:
		return "Daemon starting..."
	case s.State == supervisor.StateStopped:
		return "Daemon stopped"
	default:
		return "Daemon not connected"
	}
}

// CountsText is the monitored/alert line.
func (s Snapshot) CountsText() string {
	if !s.Connected {
		return "No data"
	}
	return fmt.Sprintf("%d processes monitored, %d alerts", s.Status.MonitoredCount, s.Status.AlertCount)
}

// AlertText describes the most recent pushed alert, or "" if none.
func (s Snapshot) AlertText() string {
	if s.LastAlert == nil {
		return ""
	}
	a := s.LastAlert
	return fmt.Sprintf("Last alert: %s (%d) %s, %s", a.Name, a.PID, a.Reason, a.Severity)
}

// Tooltip is the hover text for the icon.
func (s Snapshot) Tooltip() string {
	if !s.Connected {
		return "Runaway Guard: " + s.StatusText()
	}
	return fmt.Sprintf("Runaway Guard: %d monitored, %d alerts", s.Status.MonitoredCount, s.Status.AlertCount)
}

// tracker folds client events and supervisor notices into a Snapshot.
type tracker struct {
	mu   sync.Mutex
	snap Snapshot
}

func (t *tracker) snapshot() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snap
}

// applyEvent reports whether the displayed snapshot changed.
func (t *tracker) applyEvent(ev client.Event) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch ev := ev.(type) {
	case client.Connected:
		t.snap.Connected = true
	case client.Disconnected:
		t.snap.Connected = false
		t.snap.Status = models.Status{}
	case client.StatusReceived:
		t.snap.Status = ev.Status
	case client.AlertReceived:
		a := ev.Alert
		t.snap.LastAlert = &a
	default:
		return false
	}
	return true
}

func (t *tracker) applyNotice(n supervisor.Notice) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	switch n := n.(type) {
	case supervisor.StateChanged:
		t.snap.State = n.State
		if n.State != supervisor.StateFailed {
			t.snap.LastError = ""
		}
	case supervisor.ErrorOccurred:
		t.snap.LastError = n.Message
	default:
		return false
	}
	return true
}
