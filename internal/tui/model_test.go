package tui

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/runaway-guard/runaway-guard/internal/channel"
	"github.com/runaway-guard/runaway-guard/internal/client"
	"github.com/runaway-guard/runaway-guard/internal/models"
	"github.com/runaway-guard/runaway-guard/internal/supervisor"
)

type fakeRequester struct {
	connected bool
	calls     []string
	signals   []string
	added     []string
	removed   []int64
}

func (f *fakeRequester) IsConnected() bool { return f.connected }

func (f *fakeRequester) RequestProcessList() error {
	f.calls = append(f.calls, "list_processes")
	return nil
}

func (f *fakeRequester) RequestAlerts(limit int) error {
	f.calls = append(f.calls, "get_alerts")
	return nil
}

func (f *fakeRequester) RequestKillProcess(pid uint32, signal string) error {
	f.signals = append(f.signals, signal)
	return nil
}

func (f *fakeRequester) RequestWhitelist() error {
	f.calls = append(f.calls, "list_whitelist")
	return nil
}

func (f *fakeRequester) RequestAddWhitelist(pattern, matchType string) error {
	f.added = append(f.added, pattern+"/"+matchType)
	return nil
}

func (f *fakeRequester) RequestRemoveWhitelist(id int64) error {
	f.removed = append(f.removed, id)
	return nil
}

type fakeController struct {
	restarts int
	stops    int
}

func (f *fakeController) RestartDaemon() { f.restarts++ }
func (f *fakeController) StopDaemon()    { f.stops++ }

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func newTestModel(connected bool) (Model, *fakeRequester, *fakeController) {
	req := &fakeRequester{connected: connected}
	ctl := &fakeController{}
	return NewModel(req, ctl, models.NewSettings()), req, ctl
}

func TestNewModelDefaults(t *testing.T) {
	m := NewModel(&fakeRequester{}, &fakeController{}, nil)
	if m.alertLimit != 50 {
		t.Errorf("alertLimit = %d, want 50", m.alertLimit)
	}
	if m.refresh != 10*time.Second {
		t.Errorf("refresh = %v, want 10s", m.refresh)
	}

	s := models.NewSettings()
	s.AlertLimit = 0
	s.RefreshInterval = 0
	m = NewModel(&fakeRequester{}, &fakeController{}, s)
	if m.alertLimit != 50 || m.refresh != 10*time.Second {
		t.Errorf("zero settings not defaulted: limit=%d refresh=%v", m.alertLimit, m.refresh)
	}
}

func TestSettingsReloadTrimsAlerts(t *testing.T) {
	m, _, _ := newTestModel(true)
	for i := 0; i < 5; i++ {
		m, _ = update(t, m, clientEventMsg{ev: client.AlertReceived{Alert: models.Alert{PID: uint32(i)}}})
	}
	m, _ = update(t, m, runes("2"))
	for i := 0; i < 4; i++ {
		m, _ = update(t, m, runes("j"))
	}

	s := models.NewSettings()
	s.AlertLimit = 2
	s.RefreshInterval = time.Minute
	m, _ = update(t, m, settingsMsg{settings: s})

	if m.alertLimit != 2 || m.refresh != time.Minute {
		t.Errorf("limit=%d refresh=%v", m.alertLimit, m.refresh)
	}
	if len(m.alerts) != 2 {
		t.Errorf("alerts = %d, want 2", len(m.alerts))
	}
	if m.cursors[tabAlerts] != 1 {
		t.Errorf("cursor = %d, want 1", m.cursors[tabAlerts])
	}
}

func TestConnectedRefreshesEverything(t *testing.T) {
	m, req, _ := newTestModel(false)

	m, cmd := update(t, m, clientEventMsg{ev: client.Connected{}})
	if !m.connected {
		t.Fatal("model not marked connected")
	}
	if cmd == nil {
		t.Fatal("expected refresh command")
	}
	if msg := cmd(); msg != nil {
		t.Fatalf("refresh returned %#v", msg)
	}
	want := "list_processes,get_alerts,list_whitelist"
	if got := strings.Join(req.calls, ","); got != want {
		t.Errorf("calls = %s, want %s", got, want)
	}

	m, _ = update(t, m, clientEventMsg{ev: client.Disconnected{}})
	if m.connected {
		t.Error("model still connected after Disconnected")
	}
}

func TestProcessListSortedAndSelectionFollowsPID(t *testing.T) {
	m, _, _ := newTestModel(true)

	m, _ = update(t, m, clientEventMsg{ev: client.ProcessListReceived{Processes: []models.ProcessInfo{
		{PID: 1, Name: "idle", CPUPercent: 1},
		{PID: 2, Name: "busy", CPUPercent: 99},
		{PID: 3, Name: "warm", CPUPercent: 50},
	}}})

	var order []uint32
	for _, p := range m.processes {
		order = append(order, p.PID)
	}
	if len(order) != 3 || order[0] != 2 || order[1] != 3 || order[2] != 1 {
		t.Fatalf("order = %v, want [2 3 1]", order)
	}

	m, _ = update(t, m, runes("j"))
	if p, _ := m.selectedProcess(); p.PID != 3 {
		t.Fatalf("selected pid = %d, want 3", p.PID)
	}

	// pid 3 drops to the bottom; the cursor follows it.
	m, _ = update(t, m, clientEventMsg{ev: client.ProcessListReceived{Processes: []models.ProcessInfo{
		{PID: 3, Name: "warm", CPUPercent: 0},
		{PID: 2, Name: "busy", CPUPercent: 99},
		{PID: 1, Name: "idle", CPUPercent: 10},
	}}})
	if p, _ := m.selectedProcess(); p.PID != 3 {
		t.Errorf("selected pid = %d, want 3", p.PID)
	}

	m, _ = update(t, m, clientEventMsg{ev: client.ProcessListReceived{}})
	if m.cursors[tabMonitor] != 0 {
		t.Errorf("cursor = %d after empty list, want 0", m.cursors[tabMonitor])
	}
}

func TestAlertReceivedPrependsAndCaps(t *testing.T) {
	req := &fakeRequester{connected: true}
	s := models.NewSettings()
	s.AlertLimit = 2
	m := NewModel(req, &fakeController{}, s)

	var cmd tea.Cmd
	for i := 1; i <= 3; i++ {
		m, cmd = update(t, m, clientEventMsg{ev: client.AlertReceived{Alert: models.Alert{PID: uint32(i), Name: "spin"}}})
	}
	if len(m.alerts) != 2 {
		t.Fatalf("alerts = %d, want 2", len(m.alerts))
	}
	if m.alerts[0].PID != 3 || m.alerts[1].PID != 2 {
		t.Errorf("alerts = %+v, want newest first", m.alerts)
	}

	if cmd == nil {
		t.Fatal("expected process list refresh on alert")
	}
	cmd()
	if len(req.calls) != 1 || req.calls[0] != "list_processes" {
		t.Errorf("calls = %v", req.calls)
	}
}

func TestProcessKeysSendSignals(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"t", models.SignalTerm},
		{"K", models.SignalKill},
		{"p", models.SignalStop},
		{"c", models.SignalCont},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			m, req, _ := newTestModel(true)
			m, _ = update(t, m, clientEventMsg{ev: client.ProcessListReceived{Processes: []models.ProcessInfo{
				{PID: 42, Name: "spin", CPUPercent: 100},
			}}})

			_, cmd := update(t, m, runes(tt.key))
			if cmd == nil {
				t.Fatal("expected command")
			}
			msg := cmd()
			if _, ok := msg.(InfoMsg); !ok {
				t.Fatalf("msg = %#v, want InfoMsg", msg)
			}
			if len(req.signals) != 1 || req.signals[0] != tt.want {
				t.Errorf("signals = %v, want [%s]", req.signals, tt.want)
			}
		})
	}
}

func TestWhitelistFromMonitorAndAlerts(t *testing.T) {
	m, req, _ := newTestModel(true)
	m, _ = update(t, m, clientEventMsg{ev: client.ProcessListReceived{Processes: []models.ProcessInfo{{PID: 7, Name: "builder"}}}})
	m, _ = update(t, m, clientEventMsg{ev: client.AlertListReceived{Alerts: []models.Alert{{ID: 1, PID: 9, Name: "leaky"}}}})

	_, cmd := update(t, m, runes("w"))
	cmd()

	m, _ = update(t, m, runes("2"))
	_, cmd = update(t, m, runes("w"))
	cmd()

	want := "builder/exact,leaky/exact"
	if got := strings.Join(req.added, ","); got != want {
		t.Errorf("added = %s, want %s", got, want)
	}
}

func TestWhitelistRemove(t *testing.T) {
	m, req, _ := newTestModel(true)
	m, _ = update(t, m, clientEventMsg{ev: client.WhitelistReceived{Entries: []models.WhitelistEntry{
		{ID: 4, Pattern: "make", MatchType: models.MatchExact},
		{ID: 9, Pattern: "^cargo", MatchType: models.MatchRegex},
	}}})

	m, _ = update(t, m, runes("3"))
	m, _ = update(t, m, runes("j"))
	m, _ = update(t, m, runes("j"))
	if m.cursors[tabWhitelist] != 1 {
		t.Fatalf("cursor = %d, want 1", m.cursors[tabWhitelist])
	}

	_, cmd := update(t, m, runes("x"))
	cmd()
	if len(req.removed) != 1 || req.removed[0] != 9 {
		t.Errorf("removed = %v, want [9]", req.removed)
	}
}

func TestActionsNeedConnection(t *testing.T) {
	m, req, ctl := newTestModel(false)
	m, _ = update(t, m, clientEventMsg{ev: client.ProcessListReceived{Processes: []models.ProcessInfo{{PID: 1, Name: "x"}}}})

	for _, k := range []string{"t", "K", "w"} {
		if _, cmd := update(t, m, runes(k)); cmd != nil {
			t.Errorf("key %q returned a command while disconnected", k)
		}
	}

	_, cmd := update(t, m, runes("r"))
	if msg, ok := cmd().(ErrorMsg); !ok || msg.Err != client.ErrNotConnected {
		t.Errorf("refresh while disconnected = %#v", msg)
	}

	_, cmd = update(t, m, runes("R"))
	cmd()
	_, cmd = update(t, m, runes("S"))
	cmd()
	if ctl.restarts != 1 || ctl.stops != 1 {
		t.Errorf("restarts=%d stops=%d, want 1 and 1", ctl.restarts, ctl.stops)
	}
	if len(req.signals) != 0 {
		t.Errorf("signals sent while disconnected: %v", req.signals)
	}
}

func TestResponseErrorIsShown(t *testing.T) {
	m, _, _ := newTestModel(true)

	m, _ = update(t, m, clientEventMsg{ev: client.ResponseReceived{
		Cmd:     "kill_process",
		Message: channel.Message{Type: "response", Data: json.RawMessage(`{"error":"no such process"}`)},
	}})
	if m.err == nil || m.err.Error() != "no such process" {
		t.Fatalf("err = %v", m.err)
	}
	if !strings.Contains(m.View(), "no such process") {
		t.Error("error not rendered in status bar")
	}

	m, _ = update(t, m, clearStatusMsg{})
	if m.err != nil {
		t.Error("error not cleared")
	}

	m, cmd := update(t, m, clientEventMsg{ev: client.ResponseReceived{
		Cmd:     "kill_process",
		Message: channel.Message{Type: "response", Data: json.RawMessage(`{"success":true}`)},
	}})
	if m.err != nil || cmd != nil {
		t.Errorf("success response produced err=%v cmd=%v", m.err, cmd != nil)
	}
}

func TestNoticesUpdateHeader(t *testing.T) {
	m, _, _ := newTestModel(true)
	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 20})

	m, _ = update(t, m, noticeMsg{notice: supervisor.StateChanged{State: supervisor.StateRunning}})
	if m.state != supervisor.StateRunning {
		t.Fatalf("state = %v", m.state)
	}
	if !strings.Contains(m.View(), "Running") {
		t.Error("header does not show Running")
	}

	m, _ = update(t, m, noticeMsg{notice: supervisor.ErrorOccurred{Message: "daemon binary not found"}})
	if m.err == nil || !strings.Contains(m.View(), "daemon binary not found") {
		t.Error("supervisor error not rendered")
	}
}

func TestTabCycling(t *testing.T) {
	m, _, _ := newTestModel(true)
	for i, want := range []int{tabAlerts, tabWhitelist, tabMonitor} {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
		if m.tab != want {
			t.Errorf("after %d tabs: tab = %d, want %d", i+1, m.tab, want)
		}
	}
}

func TestQuit(t *testing.T) {
	m, _, _ := newTestModel(true)
	_, cmd := update(t, m, runes("q"))
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestFormatRuntime(t *testing.T) {
	tests := []struct {
		seconds uint64
		want    string
	}{
		{0, "0s"},
		{59, "59s"},
		{61, "1m01s"},
		{3600 + 120, "1h02m"},
	}
	for _, tt := range tests {
		if got := formatRuntime(tt.seconds); got != tt.want {
			t.Errorf("formatRuntime(%d) = %q, want %q", tt.seconds, got, tt.want)
		}
	}
}
