package tui

import "github.com/charmbracelet/lipgloss"

// Colors using AdaptiveColor for light/dark terminal support.
var (
	colorWhite  = lipgloss.AdaptiveColor{Light: "0", Dark: "15"}
	colorDim    = lipgloss.AdaptiveColor{Light: "242", Dark: "240"}
	colorGreen  = lipgloss.AdaptiveColor{Light: "28", Dark: "40"}
	colorRed    = lipgloss.AdaptiveColor{Light: "160", Dark: "196"}
	colorYellow = lipgloss.AdaptiveColor{Light: "136", Dark: "220"}
	colorOrange = lipgloss.AdaptiveColor{Light: "166", Dark: "208"}
	colorCyan   = lipgloss.AdaptiveColor{Light: "30", Dark: "45"}
)

// Layout styles.
var (
	headerStyle = lipgloss.NewStyle().
			Bold(true)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(colorWhite).
			Background(lipgloss.AdaptiveColor{Light: "235", Dark: "236"})
)

// Tab styles.
var (
	activeTabStyle = lipgloss.NewStyle().
			Bold(true).
			Underline(true).
			Foreground(colorWhite)

	inactiveTabStyle = lipgloss.NewStyle().
				Foreground(colorDim)

	tabSepStyle = lipgloss.NewStyle().
			Foreground(colorDim)
)

// Table styles.
var (
	columnHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(colorDim)

	selectedRowStyle = lipgloss.NewStyle().
				Background(lipgloss.AdaptiveColor{Light: "254", Dark: "237"})

	emptyStyle = lipgloss.NewStyle().
			Foreground(colorDim).
			Italic(true)

	cpuHotStyle  = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	cpuWarmStyle = lipgloss.NewStyle().Foreground(colorYellow)

	severityCriticalStyle = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
	severityWarningStyle  = lipgloss.NewStyle().Foreground(colorOrange)

	matchTypeStyle = lipgloss.NewStyle().Foreground(colorCyan)
)

// Daemon state badge styles.
var (
	badgeRunningStyle  = lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
	badgeStartingStyle = lipgloss.NewStyle().Foreground(colorYellow).Bold(true)
	badgeStoppedStyle  = lipgloss.NewStyle().Foreground(colorDim)
	badgeFailedStyle   = lipgloss.NewStyle().Foreground(colorRed).Bold(true)
)

// Key hint styles for status bar.
var (
	keyStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorWhite)
	hintStyle = lipgloss.NewStyle().Foreground(colorDim)
)
