package tray

import (
	"testing"

	"github.com/runaway-guard/runaway-guard/internal/client"
	"github.com/runaway-guard/runaway-guard/internal/models"
	"github.com/runaway-guard/runaway-guard/internal/supervisor"
)

func TestSnapshotLevel(t *testing.T) {
	tests := []struct {
		name string
		snap Snapshot
		want IconLevel
	}{
		{"disconnected", Snapshot{}, IconCritical},
		{"disconnected with stale alerts", Snapshot{Status: models.Status{AlertCount: 3}}, IconCritical},
		{"connected quiet", Snapshot{Connected: true}, IconNormal},
		{"connected with alerts", Snapshot{Connected: true, Status: models.Status{AlertCount: 1}}, IconWarning},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.snap.Level(); got != tt.want {
				t.Errorf("Level() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSnapshotStatusText(t *testing.T) {
	tests := []struct {
		name string
		snap Snapshot
		want string
	}{
		{"failed with reason", Snapshot{State: supervisor.StateFailed, LastError: "boom"}, "Daemon failed: boom"},
		{"running", Snapshot{State: supervisor.StateRunning, Connected: true}, "Daemon running"},
		{"starting", Snapshot{State: supervisor.StateStarting}, "Daemon starting..."},
		{"stopped", Snapshot{State: supervisor.StateStopped}, "Daemon stopped"},
		{"unknown", Snapshot{}, "Daemon not connected"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.snap.StatusText(); got != tt.want {
				t.Errorf("StatusText() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestTrackerFoldsEvents(t *testing.T) {
	var tr tracker

	if !tr.applyEvent(client.Connected{}) {
		t.Fatal("Connected should change the snapshot")
	}
	tr.applyEvent(client.StatusReceived{Status: models.Status{MonitoredCount: 120, AlertCount: 2}})
	tr.applyEvent(client.AlertReceived{Alert: models.Alert{PID: 7, Name: "spin", Reason: "cpu_high", Severity: "critical"}})

	snap := tr.snapshot()
	if snap.Level() != IconWarning {
		t.Errorf("level = %v, want warning", snap.Level())
	}
	if got, want := snap.CountsText(), "120 processes monitored, 2 alerts"; got != want {
		t.Errorf("CountsText() = %q, want %q", got, want)
	}
	if got, want := snap.AlertText(), "Last alert: spin (7) cpu_high, critical"; got != want {
		t.Errorf("AlertText() = %q, want %q", got, want)
	}

	if tr.applyEvent(client.ProcessListReceived{}) {
		t.Error("process list should not change the tray")
	}

	tr.applyEvent(client.Disconnected{})
	snap = tr.snapshot()
	if snap.Connected || snap.Status.AlertCount != 0 {
		t.Errorf("snapshot after disconnect = %+v", snap)
	}
	if snap.Level() != IconCritical {
		t.Errorf("level = %v, want critical", snap.Level())
	}
}

func TestTrackerFoldsNotices(t *testing.T) {
	var tr tracker

	tr.applyNotice(supervisor.ErrorOccurred{Message: "daemon crashed repeatedly"})
	tr.applyNotice(supervisor.StateChanged{State: supervisor.StateFailed})
	if got := tr.snapshot().StatusText(); got != "Daemon failed: daemon crashed repeatedly" {
		t.Errorf("StatusText() = %q", got)
	}

	tr.applyNotice(supervisor.StateChanged{State: supervisor.StateStarting})
	if got := tr.snapshot().LastError; got != "" {
		t.Errorf("LastError = %q after leaving Failed", got)
	}

	if tr.applyNotice(supervisor.DaemonStarted{}) {
		t.Error("DaemonStarted should not change the tray")
	}
}

func TestIconsEmbedded(t *testing.T) {
	for _, level := range []IconLevel{IconNormal, IconWarning, IconCritical} {
		data := iconFor(level)
		if len(data) < 8 || string(data[1:4]) != "PNG" {
			t.Errorf("%v icon is not a PNG", level)
		}
	}
}
