package tui

import (
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/runaway-guard/runaway-guard/internal/client"
	"github.com/runaway-guard/runaway-guard/internal/models"
	"github.com/runaway-guard/runaway-guard/internal/protocol"
	"github.com/runaway-guard/runaway-guard/internal/supervisor"
)

// Tabs.
const (
	tabMonitor = iota
	tabAlerts
	tabWhitelist
	tabCount
)

var tabNames = []string{"Monitor", "Alerts", "Whitelist"}

const statusDisplayTime = 4 * time.Second

// Model is the root Bubbletea model for the TUI.
type Model struct {
	client Requester
	daemon Controller

	alertLimit int
	refresh    time.Duration

	// Daemon data
	state     supervisor.State
	connected bool
	status    models.Status
	processes []models.ProcessInfo
	alerts    []models.Alert
	whitelist []models.WhitelistEntry

	// UI state
	tab     int
	cursors [tabCount]int
	width   int
	height  int

	// Status display
	err  error
	info string
}

// NewModel creates the initial TUI model.
func NewModel(c Requester, d Controller, settings *models.Settings) Model {
	m := Model{
		client:    c,
		daemon:    d,
		connected: c.IsConnected(),
	}
	m.applySettings(settings)
	return m
}

// applySettings takes the display settings, falling back to defaults for
// unset values.
func (m *Model) applySettings(settings *models.Settings) {
	defaults := models.NewSettings()
	if settings == nil {
		settings = defaults
	}
	m.refresh = settings.RefreshInterval
	if m.refresh <= 0 {
		m.refresh = defaults.RefreshInterval
	}
	m.alertLimit = settings.AlertLimit
	if m.alertLimit <= 0 {
		m.alertLimit = protocol.DefaultAlertLimit
	}
	if len(m.alerts) > m.alertLimit {
		m.alerts = m.alerts[:m.alertLimit]
		m.clampCursor(tabAlerts, len(m.alerts))
	}
}

// Init returns the initial commands.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{tickCmd(m.refresh)}
	if m.connected {
		cmds = append(cmds, refreshCmd(m.client, m.alertLimit))
	}
	return tea.Batch(cmds...)
}

// Update processes messages and returns an updated model and commands.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		cmd := m.handleKey(msg)
		return m, cmd

	case clientEventMsg:
		cmd := m.handleClientEvent(msg.ev)
		return m, cmd

	case noticeMsg:
		cmd := m.handleNotice(msg.notice)
		return m, cmd

	case settingsMsg:
		m.applySettings(msg.settings)
		return m, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd(m.refresh)}
		if m.connected {
			cmds = append(cmds, refreshCmd(m.client, m.alertLimit))
		}
		return m, tea.Batch(cmds...)

	case ErrorMsg:
		m.err = msg.Err
		m.info = ""
		return m, clearStatusAfter(statusDisplayTime)

	case InfoMsg:
		m.info = msg.Text
		m.err = nil
		return m, clearStatusAfter(statusDisplayTime)

	case clearStatusMsg:
		m.err = nil
		m.info = ""
		return m, nil
	}
	return m, nil
}

func (m *Model) handleClientEvent(ev client.Event) tea.Cmd {
	switch ev := ev.(type) {
	case client.Connected:
		m.connected = true
		return refreshCmd(m.client, m.alertLimit)
	case client.Disconnected:
		m.connected = false
	case client.ProcessListReceived:
		m.setProcesses(ev.Processes)
	case client.AlertListReceived:
		m.alerts = ev.Alerts
		m.clampCursor(tabAlerts, len(m.alerts))
	case client.AlertReceived:
		m.alerts = append([]models.Alert{ev.Alert}, m.alerts...)
		if len(m.alerts) > m.alertLimit {
			m.alerts = m.alerts[:m.alertLimit]
		}
		return processListCmd(m.client)
	case client.StatusReceived:
		m.status = ev.Status
	case client.WhitelistReceived:
		m.whitelist = ev.Entries
		m.clampCursor(tabWhitelist, len(m.whitelist))
	case client.ResponseReceived:
		if msg, isErr := protocol.ResponseError(ev.Message.Data); isErr {
			m.err = errors.New(msg)
			m.info = ""
			return clearStatusAfter(statusDisplayTime)
		}
	}
	return nil
}

func (m *Model) handleNotice(n supervisor.Notice) tea.Cmd {
	switch n := n.(type) {
	case supervisor.StateChanged:
		m.state = n.State
	case supervisor.ErrorOccurred:
		m.err = errors.New(n.Message)
		m.info = ""
	case supervisor.DaemonCrashed:
		m.info = "Daemon crashed"
		m.err = nil
		return clearStatusAfter(statusDisplayTime)
	}
	return nil
}

// setProcesses keeps the busiest processes on top and the selection on the
// same pid when it is still listed.
func (m *Model) setProcesses(procs []models.ProcessInfo) {
	var selected uint32
	if p, ok := m.selectedProcess(); ok {
		selected = p.PID
	}

	sorted := make([]models.ProcessInfo, len(procs))
	copy(sorted, procs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CPUPercent > sorted[j].CPUPercent
	})
	m.processes = sorted

	for i, p := range sorted {
		if p.PID == selected {
			m.cursors[tabMonitor] = i
			return
		}
	}
	m.clampCursor(tabMonitor, len(sorted))
}

func (m *Model) clampCursor(tab, n int) {
	if m.cursors[tab] >= n {
		m.cursors[tab] = n - 1
	}
	if m.cursors[tab] < 0 {
		m.cursors[tab] = 0
	}
}

func (m Model) selectedProcess() (models.ProcessInfo, bool) {
	i := m.cursors[tabMonitor]
	if i < 0 || i >= len(m.processes) {
		return models.ProcessInfo{}, false
	}
	return m.processes[i], true
}

func (m Model) selectedAlert() (models.Alert, bool) {
	i := m.cursors[tabAlerts]
	if i < 0 || i >= len(m.alerts) {
		return models.Alert{}, false
	}
	return m.alerts[i], true
}

func (m Model) selectedEntry() (models.WhitelistEntry, bool) {
	i := m.cursors[tabWhitelist]
	if i < 0 || i >= len(m.whitelist) {
		return models.WhitelistEntry{}, false
	}
	return m.whitelist[i], true
}

func (m Model) listLen() int {
	switch m.tab {
	case tabMonitor:
		return len(m.processes)
	case tabAlerts:
		return len(m.alerts)
	default:
		return len(m.whitelist)
	}
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, globalKeys.Quit):
		return tea.Quit
	case key.Matches(msg, globalKeys.Tab):
		m.tab = (m.tab + 1) % tabCount
		return nil
	case key.Matches(msg, globalKeys.Tab1):
		m.tab = tabMonitor
		return nil
	case key.Matches(msg, globalKeys.Tab2):
		m.tab = tabAlerts
		return nil
	case key.Matches(msg, globalKeys.Tab3):
		m.tab = tabWhitelist
		return nil
	case key.Matches(msg, globalKeys.Up):
		if m.cursors[m.tab] > 0 {
			m.cursors[m.tab]--
		}
		return nil
	case key.Matches(msg, globalKeys.Down):
		if m.cursors[m.tab] < m.listLen()-1 {
			m.cursors[m.tab]++
		}
		return nil
	case key.Matches(msg, globalKeys.Restart):
		return restartDaemonCmd(m.daemon)
	case key.Matches(msg, globalKeys.Stop):
		return stopDaemonCmd(m.daemon)
	}

	if !m.connected {
		if key.Matches(msg, globalKeys.Refresh) {
			return func() tea.Msg { return ErrorMsg{Err: client.ErrNotConnected} }
		}
		return nil
	}

	if key.Matches(msg, globalKeys.Refresh) {
		return refreshCmd(m.client, m.alertLimit)
	}

	switch m.tab {
	case tabMonitor:
		return m.handleProcessKey(msg)
	case tabAlerts:
		if key.Matches(msg, processKeys.Whitelist) {
			if a, ok := m.selectedAlert(); ok {
				return addWhitelistCmd(m.client, a.Name, models.MatchExact)
			}
		}
	case tabWhitelist:
		if key.Matches(msg, whitelistKeys.Remove) {
			if e, ok := m.selectedEntry(); ok {
				return removeWhitelistCmd(m.client, e.ID, e.Pattern)
			}
		}
	}
	return nil
}

func (m *Model) handleProcessKey(msg tea.KeyMsg) tea.Cmd {
	p, ok := m.selectedProcess()
	if !ok {
		return nil
	}
	switch {
	case key.Matches(msg, processKeys.Term):
		return signalCmd(m.client, p.PID, p.Name, models.SignalTerm)
	case key.Matches(msg, processKeys.Kill):
		return signalCmd(m.client, p.PID, p.Name, models.SignalKill)
	case key.Matches(msg, processKeys.Pause):
		return signalCmd(m.client, p.PID, p.Name, models.SignalStop)
	case key.Matches(msg, processKeys.Resume):
		return signalCmd(m.client, p.PID, p.Name, models.SignalCont)
	case key.Matches(msg, processKeys.Whitelist):
		return addWhitelistCmd(m.client, p.Name, models.MatchExact)
	}
	return nil
}

// View renders the TUI.
func (m Model) View() string {
	width := m.width
	if width <= 0 {
		width = 100
	}
	height := m.height
	if height <= 0 {
		height = 30
	}

	header := renderHeader(m.tab, m.state, m.status, width)
	bar := renderStatusBar(&m, width)
	bodyHeight := height - 3
	if bodyHeight < 1 {
		bodyHeight = 1
	}

	var body string
	switch m.tab {
	case tabMonitor:
		body = renderProcesses(m.processes, m.cursors[tabMonitor], width, bodyHeight)
	case tabAlerts:
		body = renderAlerts(m.alerts, m.cursors[tabAlerts], width, bodyHeight)
	case tabWhitelist:
		body = renderWhitelist(m.whitelist, m.cursors[tabWhitelist], width, bodyHeight)
	}

	lines := strings.Split(body, "\n")
	for len(lines) < bodyHeight {
		lines = append(lines, "")
	}
	return header + "\n\n" + strings.Join(lines[:bodyHeight], "\n") + "\n" + bar
}
