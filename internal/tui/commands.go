package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Requester is the part of the protocol client the TUI drives.
type Requester interface {
	IsConnected() bool
	RequestProcessList() error
	RequestAlerts(limit int) error
	RequestKillProcess(pid uint32, signal string) error
	RequestWhitelist() error
	RequestAddWhitelist(pattern, matchType string) error
	RequestRemoveWhitelist(id int64) error
}

// Controller is the part of the supervisor the TUI drives.
type Controller interface {
	RestartDaemon()
	StopDaemon()
}

func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func refreshCmd(c Requester, alertLimit int) tea.Cmd {
	return func() tea.Msg {
		if err := c.RequestProcessList(); err != nil {
			return ErrorMsg{Err: fmt.Errorf("failed to list processes: %w", err)}
		}
		if err := c.RequestAlerts(alertLimit); err != nil {
			return ErrorMsg{Err: fmt.Errorf("failed to fetch alerts: %w", err)}
		}
		if err := c.RequestWhitelist(); err != nil {
			return ErrorMsg{Err: fmt.Errorf("failed to fetch whitelist: %w", err)}
		}
		return nil
	}
}

func processListCmd(c Requester) tea.Cmd {
	return func() tea.Msg {
		if err := c.RequestProcessList(); err != nil {
			return ErrorMsg{Err: fmt.Errorf("failed to list processes: %w", err)}
		}
		return nil
	}
}

func signalCmd(c Requester, pid uint32, name, signal string) tea.Cmd {
	return func() tea.Msg {
		if err := c.RequestKillProcess(pid, signal); err != nil {
			return ErrorMsg{Err: fmt.Errorf("failed to signal %s: %w", name, err)}
		}
		_ = c.RequestProcessList()
		return InfoMsg{Text: fmt.Sprintf("Sent %s to %s (%d)", signal, name, pid)}
	}
}

func addWhitelistCmd(c Requester, pattern, matchType string) tea.Cmd {
	return func() tea.Msg {
		if err := c.RequestAddWhitelist(pattern, matchType); err != nil {
			return ErrorMsg{Err: fmt.Errorf("failed to whitelist %s: %w", pattern, err)}
		}
		return InfoMsg{Text: fmt.Sprintf("Whitelisted %s", pattern)}
	}
}

func removeWhitelistCmd(c Requester, id int64, pattern string) tea.Cmd {
	return func() tea.Msg {
		if err := c.RequestRemoveWhitelist(id); err != nil {
			return ErrorMsg{Err: fmt.Errorf("failed to remove %s: %w", pattern, err)}
		}
		return InfoMsg{Text: fmt.Sprintf("Removed %s from whitelist", pattern)}
	}
}

func restartDaemonCmd(d Controller) tea.Cmd {
	return func() tea.Msg {
		d.RestartDaemon()
		return InfoMsg{Text: "Restarting daemon"}
	}
}

func stopDaemonCmd(d Controller) tea.Cmd {
	return func() tea.Msg {
		d.StopDaemon()
		return InfoMsg{Text: "Stopping daemon"}
	}
}

func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return clearStatusMsg{}
	})
}
