package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/runaway-guard/runaway-guard/internal/models"
	"github.com/runaway-guard/runaway-guard/internal/supervisor"
)

func renderHeader(active int, state supervisor.State, status models.Status, width int) string {
	name := lipgloss.NewStyle().Bold(true).Render("Runaway Guard")
	tabs := renderTabs(tabNames, active)

	counts := hintStyle.Render(fmt.Sprintf("%d monitored  %d alerts", status.MonitoredCount, status.AlertCount))
	badge := renderStateBadge(state)

	left := fmt.Sprintf(" %s  %s", name, tabs)
	right := fmt.Sprintf("%s  %s ", counts, badge)

	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		gap = 1
	}

	return headerStyle.Width(width).Render(left + strings.Repeat(" ", gap) + right)
}

func renderTabs(tabs []string, active int) string {
	var parts []string
	for i, tab := range tabs {
		label := fmt.Sprintf("%d %s", i+1, tab)
		if i == active {
			parts = append(parts, activeTabStyle.Render(label))
		} else {
			parts = append(parts, inactiveTabStyle.Render(label))
		}
	}
	return strings.Join(parts, tabSepStyle.Render(" | "))
}

func renderStateBadge(state supervisor.State) string {
	switch state {
	case supervisor.StateRunning:
		return badgeRunningStyle.Render("● Running")
	case supervisor.StateStarting:
		return badgeStartingStyle.Render("● Starting")
	case supervisor.StateFailed:
		return badgeFailedStyle.Render("✗ Failed")
	case supervisor.StateStopped:
		return badgeStoppedStyle.Render("○ Stopped")
	default:
		return badgeStoppedStyle.Render("○ Unknown")
	}
}
