package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

func renderStatusBar(m *Model, width int) string {
	if m.err != nil {
		return renderErrorBar(m.err.Error(), width)
	}
	if m.info != "" {
		return renderInfoBar(m.info, width)
	}

	left := " " + getKeyHints(m)
	right := hintStyle.Render("disconnected") + " "
	if m.connected {
		right = lipgloss.NewStyle().Foreground(colorGreen).Render("connected") + " "
	}

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}

	return statusBarStyle.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

func getKeyHints(m *Model) string {
	base := keyHint("q", "quit") + "  " + keyHint("Tab", "switch") + "  " + keyHint("r", "refresh")

	if !m.connected {
		return base + "  " + keyHint("R", "restart daemon")
	}

	switch m.tab {
	case tabMonitor:
		return base + "  " + keyHint("t", "term") + "  " + keyHint("K", "kill") + "  " +
			keyHint("p", "pause") + "  " + keyHint("c", "continue") + "  " + keyHint("w", "whitelist")
	case tabAlerts:
		return base + "  " + keyHint("w", "whitelist")
	case tabWhitelist:
		return base + "  " + keyHint("x", "remove")
	}
	return base
}

func keyHint(k, desc string) string {
	if k == "" {
		return hintStyle.Render(desc)
	}
	return keyStyle.Render(k) + " " + hintStyle.Render(desc)
}

func renderErrorBar(msg string, width int) string {
	return statusBarStyle.
		Background(colorRed).
		Width(width).
		Render(" " + msg)
}

func renderInfoBar(msg string, width int) string {
	return statusBarStyle.
		Width(width).
		Render(" " + lipgloss.NewStyle().Foreground(colorGreen).Render(msg))
}
