package tui

import (
	"github.com/runaway-guard/runaway-guard/internal/client"
	"github.com/runaway-guard/runaway-guard/internal/models"
	"github.com/runaway-guard/runaway-guard/internal/supervisor"
)

// clientEventMsg carries a protocol client event into the program.
type clientEventMsg struct {
	ev client.Event
}

// noticeMsg carries a supervisor notice into the program.
type noticeMsg struct {
	notice supervisor.Notice
}

// settingsMsg carries reloaded settings.
type settingsMsg struct {
	settings *models.Settings
}

// tickMsg is the periodic refresh tick.
type tickMsg struct{}

// ErrorMsg carries an error to display.
type ErrorMsg struct {
	Err error
}

// InfoMsg carries a transient confirmation for the status bar.
type InfoMsg struct {
	Text string
}

// clearStatusMsg clears the error or info display.
type clearStatusMsg struct{}
