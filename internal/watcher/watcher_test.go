package watcher

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestWatcher(t *testing.T) (*Watcher, string, string) {
	t.Helper()
	dir := t.TempDir()
	endpoint := filepath.Join(dir, "runaway-guard.sock")
	settings := filepath.Join(dir, "settings.yaml")

	w, err := New(Options{Endpoint: endpoint, SettingsFile: settings, Debounce: 50 * time.Millisecond})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(w.Stop)
	return w, endpoint, settings
}

func waitEvent(t *testing.T, w *Watcher) Event {
	t.Helper()
	select {
	case ev := <-w.Events():
		return ev
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for watcher event")
		return Event{}
	}
}

func TestEndpointLifecycle(t *testing.T) {
	w, endpoint, _ := newTestWatcher(t)

	if err := os.WriteFile(endpoint, nil, 0600); err != nil {
		t.Fatal(err)
	}
	ev := waitEvent(t, w)
	if ev.Type != EventEndpointCreated || ev.Path != endpoint {
		t.Errorf("got %v %s, want endpoint_created", ev.Type, ev.Path)
	}

	if err := os.Remove(endpoint); err != nil {
		t.Fatal(err)
	}
	ev = waitEvent(t, w)
	if ev.Type != EventEndpointRemoved {
		t.Errorf("got %v, want endpoint_removed", ev.Type)
	}
}

func TestSettingsChangedAndUnrelatedIgnored(t *testing.T) {
	w, _, settings := newTestWatcher(t)

	if err := os.WriteFile(filepath.Join(filepath.Dir(settings), "other.txt"), []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(settings, []byte("alert_limit: 10\n"), 0644); err != nil {
		t.Fatal(err)
	}

	ev := waitEvent(t, w)
	if ev.Type != EventSettingsChanged {
		t.Errorf("got %v, want settings_changed", ev.Type)
	}

	select {
	case ev := <-w.Events():
		t.Errorf("unexpected event %v for %s", ev.Type, ev.Path)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestMissingDirectoryIsNotFatal(t *testing.T) {
	w, err := New(Options{Endpoint: filepath.Join(t.TempDir(), "missing", "x.sock")})
	if err != nil {
		t.Fatal(err)
	}
	if err := w.Start(); err != nil {
		t.Errorf("Start() = %v, want nil", err)
	}
	w.Stop()
	w.Stop()
}
