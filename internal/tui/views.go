package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/x/ansi"

	"github.com/runaway-guard/runaway-guard/internal/models"
)

// visibleRange returns the window of rows to draw so the cursor stays on
// screen.
func visibleRange(cursor, n, rows int) (int, int) {
	if rows <= 0 || n <= rows {
		return 0, n
	}
	start := cursor - rows + 1
	if start < 0 {
		start = 0
	}
	return start, start + rows
}

func renderRows(header string, rows []string, cursor, width, height int) string {
	var b strings.Builder
	b.WriteString(columnHeaderStyle.Render(ansi.Truncate(header, width, "…")))

	start, end := visibleRange(cursor, len(rows), height-1)
	for i := start; i < end; i++ {
		b.WriteString("\n")
		line := ansi.Truncate(rows[i], width, "…")
		if i == cursor {
			line = selectedRowStyle.Width(width).Render(line)
		}
		b.WriteString(line)
	}
	return b.String()
}

func renderProcesses(procs []models.ProcessInfo, cursor, width, height int) string {
	if len(procs) == 0 {
		return emptyStyle.Render("  No processes")
	}

	header := fmt.Sprintf("  %7s  %-20s %7s %9s %9s  %-8s %s", "PID", "NAME", "CPU%", "MEM MB", "RUNTIME", "STATE", "COMMAND")
	rows := make([]string, len(procs))
	for i, p := range procs {
		cpu := fmt.Sprintf("%7.1f", p.CPUPercent)
		switch {
		case p.CPUPercent >= 80:
			cpu = cpuHotStyle.Render(cpu)
		case p.CPUPercent >= 40:
			cpu = cpuWarmStyle.Render(cpu)
		}
		rows[i] = fmt.Sprintf("  %7d  %-20s %s %9.1f %9s  %-8s %s",
			p.PID, ansi.Truncate(p.Name, 20, "…"), cpu, p.MemoryMB,
			formatRuntime(p.RuntimeSeconds), p.State, p.Cmdline)
	}
	return renderRows(header, rows, cursor, width, height)
}

func renderAlerts(alerts []models.Alert, cursor, width, height int) string {
	if len(alerts) == 0 {
		return emptyStyle.Render("  No alerts")
	}

	header := fmt.Sprintf("  %-20s %7s  %-20s %-9s %-12s", "TIME", "PID", "NAME", "SEVERITY", "REASON")
	rows := make([]string, len(alerts))
	for i, a := range alerts {
		rows[i] = fmt.Sprintf("  %-20s %7d  %-20s %s %-12s",
			ansi.Truncate(a.Timestamp, 20, ""), a.PID, ansi.Truncate(a.Name, 20, "…"),
			renderSeverity(a.Severity), a.Reason)
	}
	return renderRows(header, rows, cursor, width, height)
}

func renderWhitelist(entries []models.WhitelistEntry, cursor, width, height int) string {
	if len(entries) == 0 {
		return emptyStyle.Render("  Whitelist is empty")
	}

	header := fmt.Sprintf("  %5s  %-30s %-6s %s", "ID", "PATTERN", "MATCH", "REASON")
	rows := make([]string, len(entries))
	for i, e := range entries {
		rows[i] = fmt.Sprintf("  %5d  %-30s %s %s",
			e.ID, ansi.Truncate(e.Pattern, 30, "…"),
			matchTypeStyle.Render(fmt.Sprintf("%-6s", e.MatchType)), e.Reason)
	}
	return renderRows(header, rows, cursor, width, height)
}

func renderSeverity(severity string) string {
	s := fmt.Sprintf("%-9s", severity)
	switch severity {
	case "critical":
		return severityCriticalStyle.Render(s)
	case "warning":
		return severityWarningStyle.Render(s)
	}
	return s
}

func formatRuntime(seconds uint64) string {
	d := time.Duration(seconds) * time.Second
	switch {
	case d >= time.Hour:
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	case d >= time.Minute:
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%ds", seconds)
	}
}
