package client

import (
	"github.com/runaway-guard/runaway-guard/internal/channel"
	"github.com/runaway-guard/runaway-guard/internal/models"
)

// Event is anything the client reports to its handlers.
type Event interface {
	clientEvent()
}

// Connected signals that the transport is up and requests may be sent.
type Connected struct{}

// Disconnected signals that an established connection ended. Err is nil for
// an intentional Close.
type Disconnected struct {
	Err error
}

// ConnectFailed signals that a connection attempt did not succeed.
type ConnectFailed struct {
	Err error
}

// ReconnectExhausted signals that automatic reconnection gave up.
type ReconnectExhausted struct {
	Attempts int
}

// AlertReceived carries an unsolicited alert push.
type AlertReceived struct {
	Alert models.Alert
}

// StatusReceived carries an unsolicited status push.
type StatusReceived struct {
	Status models.Status
}

// ProcessListReceived carries a list_processes response.
type ProcessListReceived struct {
	Processes []models.ProcessInfo
}

// AlertListReceived carries a get_alerts response.
type AlertListReceived struct {
	Alerts []models.Alert
}

// WhitelistReceived carries a list_whitelist response.
type WhitelistReceived struct {
	Entries []models.WhitelistEntry
}

// ConfigReceived carries a get_config response.
type ConfigReceived struct {
	Config *models.DaemonConfig
}

// ResponseReceived is raised for every command response and pong, after any
// typed event for the same frame. Cmd is the command it was correlated with.
type ResponseReceived struct {
	Cmd     string
	Message channel.Message
}

func (Connected) clientEvent()           {}
func (Disconnected) clientEvent()        {}
func (ConnectFailed) clientEvent()       {}
func (ReconnectExhausted) clientEvent()  {}
func (AlertReceived) clientEvent()       {}
func (StatusReceived) clientEvent()      {}
func (ProcessListReceived) clientEvent() {}
func (AlertListReceived) clientEvent()   {}
func (WhitelistReceived) clientEvent()   {}
func (ConfigReceived) clientEvent()      {}
func (ResponseReceived) clientEvent()    {}
