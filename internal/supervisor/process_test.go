package supervisor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDaemonEnv(t *testing.T) {
	tests := []struct {
		name    string
		environ []string
		want    string
	}{
		{"adds default", []string{"HOME=/home/u"}, "RUST_LOG=info"},
		{"keeps caller value", []string{"RUST_LOG=debug"}, "RUST_LOG=debug"},
		{"empty value counts as set", []string{"RUST_LOG="}, "RUST_LOG="},
		{"similar name is not RUST_LOG", []string{"RUST_LOG_STYLE=always"}, "RUST_LOG=info"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := daemonEnv(tt.environ)
			var got []string
			for _, kv := range env {
				if strings.HasPrefix(kv, "RUST_LOG=") {
					got = append(got, kv)
				}
			}
			if len(got) != 1 || got[0] != tt.want {
				t.Errorf("RUST_LOG entries = %v, want [%s]", got, tt.want)
			}
		})
	}
}

func writeScript(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "runaway-daemon")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body+"\n"), 0755); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExecLauncherLogsOutput(t *testing.T) {
	t.Setenv("RUST_LOG", "")
	os.Unsetenv("RUST_LOG")

	logFile := filepath.Join(t.TempDir(), "logs", "daemon.log")
	bin := writeScript(t, `echo "level=$RUST_LOG"`)

	p, err := ExecLauncher{LogFile: logFile}.Launch(bin)
	if err != nil {
		t.Fatal(err)
	}
	if !p.Wait(5 * time.Second) {
		t.Fatal("script did not exit")
	}
	if p.Alive() {
		t.Error("Alive() after exit")
	}

	data, err := os.ReadFile(logFile)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "level=info") {
		t.Errorf("daemon log = %q", data)
	}
}

func TestExecLauncherTerminate(t *testing.T) {
	bin := writeScript(t, "exec sleep 30")

	p, err := ExecLauncher{}.Launch(bin)
	if err != nil {
		t.Fatal(err)
	}
	if !p.Alive() {
		t.Fatal("process not alive after launch")
	}
	if err := p.Terminate(); err != nil {
		t.Fatal(err)
	}
	select {
	case <-p.Done():
	case <-time.After(5 * time.Second):
		_ = p.Kill()
		t.Fatal("process ignored SIGTERM")
	}
	if err := p.Kill(); err != nil {
		t.Errorf("Kill after exit = %v, want nil", err)
	}
}

func TestExecLauncherMissingBinary(t *testing.T) {
	if _, err := (ExecLauncher{}).Launch(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected an error")
	}
}

func TestOSFS(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runaway-guard.sock")
	var fs OSFS

	if fs.Exists(path) {
		t.Fatal("exists before creation")
	}
	if err := fs.Remove(path); err != nil {
		t.Errorf("removing a missing file: %v", err)
	}
	if err := os.WriteFile(path, nil, 0600); err != nil {
		t.Fatal(err)
	}
	if !fs.Exists(path) {
		t.Fatal("not found after creation")
	}
	if err := fs.Remove(path); err != nil {
		t.Fatal(err)
	}
	if fs.Exists(path) {
		t.Error("still exists after Remove")
	}
}
