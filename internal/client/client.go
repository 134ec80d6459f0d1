// Package client implements the typed request/event layer over one daemon
// connection.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/runaway-guard/runaway-guard/internal/channel"
	"github.com/runaway-guard/runaway-guard/internal/models"
	"github.com/runaway-guard/runaway-guard/internal/protocol"
)

// Defaults for Options.
const (
	DefaultReconnectInterval    = 2 * time.Second
	DefaultMaxReconnectAttempts = 10
	DefaultDialTimeout          = 5 * time.Second
)

// maxPending bounds the correlation queue if the daemon stops answering.
const maxPending = 256

// ErrNotConnected is returned by Send when no connection is established.
var ErrNotConnected = errors.New("not connected to daemon")

// State is the connection state.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
)

// String returns the lowercase state name.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	default:
		return "unknown"
	}
}

// Timer is a cancellable scheduled callback.
type Timer interface {
	Stop() bool
}

// DialFunc opens the transport to endpoint.
type DialFunc func(ctx context.Context, endpoint string) (net.Conn, error)

// Options configures a Client.
type Options struct {
	Dial                 DialFunc
	DialTimeout          time.Duration
	ReconnectInterval    time.Duration
	MaxReconnectAttempts int
	Logger               *zap.Logger

	// AfterFunc schedules reconnect attempts; defaults to time.AfterFunc.
	AfterFunc func(d time.Duration, f func()) Timer
}

type pendingRequest struct {
	id  string
	cmd string
}

// Client owns one connection to the daemon. It is safe for concurrent use.
// Events are delivered to handlers one at a time, in order, on a dispatch
// goroutine; handlers may call back into the client.
type Client struct {
	opts Options
	log  *zap.Logger

	sendMu sync.Mutex // serializes correlation bookkeeping with wire order

	mu             sync.Mutex
	state          State
	endpoint       string
	ch             *channel.Channel
	gen            uint64 // bumped whenever the current connection is abandoned
	cancelDial     context.CancelFunc
	pending        []pendingRequest
	autoReconnect  bool
	closed         bool // Close was called; suppresses auto-reconnect
	attempts       int
	reconnectTimer Timer
	handlers       []func(Event)
	queue          []Event
	dispatching    bool
}

// New creates a disconnected client with auto-reconnect enabled.
func New(opts Options) *Client {
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = DefaultDialTimeout
	}
	if opts.ReconnectInterval <= 0 {
		opts.ReconnectInterval = DefaultReconnectInterval
	}
	if opts.MaxReconnectAttempts <= 0 {
		opts.MaxReconnectAttempts = DefaultMaxReconnectAttempts
	}
	if opts.Dial == nil {
		opts.Dial = dialUnix
	}
	if opts.AfterFunc == nil {
		opts.AfterFunc = func(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		opts:          opts,
		log:           logger.Named("client"),
		autoReconnect: true,
	}
}

func dialUnix(ctx context.Context, endpoint string) (net.Conn, error) {
	var d net.Dialer
	return d.DialContext(ctx, "unix", endpoint)
}

// OnEvent registers a handler for all client events.
func (c *Client) OnEvent(fn func(Event)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	handlers := make([]func(Event), len(c.handlers), len(c.handlers)+1)
	copy(handlers, c.handlers)
	c.handlers = append(handlers, fn)
}

// SetAutoReconnect toggles the client's own reconnect loop. A supervisor that
// owns reconnection policy must turn it off.
func (c *Client) SetAutoReconnect(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.autoReconnect = enabled
	if !enabled {
		c.stopReconnectLocked()
		c.attempts = 0
	}
}

// State returns the current connection state.
func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsConnected reports whether requests can be sent.
func (c *Client) IsConnected() bool {
	return c.State() == StateConnected
}

// Endpoint returns the endpoint of the last connection attempt.
func (c *Client) Endpoint() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.endpoint
}

// Connect starts an asynchronous connection attempt to endpoint. It does
// nothing while an attempt is in flight or a connection is established.
func (c *Client) Connect(endpoint string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = false
	c.connectLocked(endpoint)
}

func (c *Client) connectLocked(endpoint string) {
	if c.state != StateDisconnected {
		return
	}
	c.stopReconnectLocked()
	c.state = StateConnecting
	c.endpoint = endpoint
	c.gen++
	gen := c.gen

	ctx, cancel := context.WithTimeout(context.Background(), c.opts.DialTimeout)
	c.cancelDial = cancel

	c.log.Debug("Connecting to daemon", zap.String("endpoint", endpoint))
	go c.dial(ctx, cancel, gen, endpoint)
}

func (c *Client) dial(ctx context.Context, cancel context.CancelFunc, gen uint64, endpoint string) {
	conn, err := c.opts.Dial(ctx, endpoint)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		// Abandoned by Close while dialing.
		if conn != nil {
			_ = conn.Close()
		}
		return
	}
	c.cancelDial = nil

	if err != nil {
		c.state = StateDisconnected
		c.log.Debug("Connect failed", zap.String("endpoint", endpoint), zap.Error(err))
		c.emitLocked(ConnectFailed{Err: fmt.Errorf("connect %s: %w", endpoint, err)})
		c.scheduleReconnectLocked()
		return
	}

	ch := channel.New(conn, func(frame []byte, err error) {
		c.log.Debug("Dropped malformed frame", zap.ByteString("frame", frame), zap.Error(err))
	})
	c.ch = ch
	c.state = StateConnected
	c.attempts = 0
	c.pending = nil
	c.log.Info("Connected to daemon", zap.String("endpoint", endpoint))
	c.emitLocked(Connected{})

	go c.readLoop(ch, gen)
}

func (c *Client) readLoop(ch *channel.Channel, gen uint64) {
	err := ch.ReadLoop(func(msg channel.Message) {
		c.mu.Lock()
		defer c.mu.Unlock()
		if gen != c.gen {
			return
		}
		c.handleMessageLocked(msg)
	})
	_ = ch.Close()

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.gen {
		return
	}
	c.gen++
	c.state = StateDisconnected
	c.ch = nil
	c.pending = nil
	c.log.Info("Disconnected from daemon", zap.Error(err))
	c.emitLocked(Disconnected{Err: err})
	c.scheduleReconnectLocked()
}

// Close drops the connection (or abandons an in-flight attempt) and cancels
// pending reconnects. A Disconnected event is raised if a connection was up.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	c.stopReconnectLocked()
	c.attempts = 0

	switch c.state {
	case StateConnecting:
		c.gen++
		if c.cancelDial != nil {
			c.cancelDial()
			c.cancelDial = nil
		}
		c.state = StateDisconnected
		return nil
	case StateConnected:
		c.gen++
		ch := c.ch
		c.ch = nil
		c.pending = nil
		c.state = StateDisconnected
		c.emitLocked(Disconnected{})
		return ch.Close()
	default:
		return nil
	}
}

func (c *Client) scheduleReconnectLocked() {
	if !c.autoReconnect || c.closed {
		return
	}
	if c.attempts >= c.opts.MaxReconnectAttempts {
		c.log.Warn("Giving up reconnecting", zap.Int("attempts", c.attempts))
		c.emitLocked(ReconnectExhausted{Attempts: c.attempts})
		c.attempts = 0
		return
	}
	c.attempts++
	endpoint := c.endpoint
	c.stopReconnectLocked()
	c.reconnectTimer = c.opts.AfterFunc(c.opts.ReconnectInterval, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.closed || !c.autoReconnect {
			return
		}
		c.reconnectTimer = nil
		c.connectLocked(endpoint)
	})
}

func (c *Client) stopReconnectLocked() {
	if c.reconnectTimer != nil {
		c.reconnectTimer.Stop()
		c.reconnectTimer = nil
	}
}

// Send writes one request. It returns ErrNotConnected, without writing,
// unless the client is connected.
func (c *Client) Send(req protocol.Request) error {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()

	c.mu.Lock()
	if c.state != StateConnected || c.ch == nil {
		c.mu.Unlock()
		return ErrNotConnected
	}
	ch := c.ch
	c.pending = append(c.pending, pendingRequest{id: req.ID, cmd: req.Cmd})
	if len(c.pending) > maxPending {
		c.pending = c.pending[len(c.pending)-maxPending:]
	}
	c.mu.Unlock()

	if err := ch.Write(req); err != nil {
		c.mu.Lock()
		c.forgetLocked(req.ID)
		c.mu.Unlock()
		return err
	}
	return nil
}

// Ping checks the daemon is responsive; the pong arrives as ResponseReceived.
func (c *Client) Ping() error { return c.Send(protocol.Ping()) }

// RequestProcessList asks for the monitored processes.
func (c *Client) RequestProcessList() error { return c.Send(protocol.ListProcesses()) }

// RequestAlerts fetches the most recent limit stored alerts.
func (c *Client) RequestAlerts(limit int) error { return c.Send(protocol.GetAlerts(limit)) }

// RequestKillProcess asks the daemon to signal pid; signal is a name such as
// "SIGTERM".
func (c *Client) RequestKillProcess(pid uint32, signal string) error {
	return c.Send(protocol.KillProcess(pid, signal))
}

// RequestWhitelist asks for the whitelist entries.
func (c *Client) RequestWhitelist() error { return c.Send(protocol.ListWhitelist()) }

// RequestAddWhitelist adds a pattern and refreshes the whitelist.
func (c *Client) RequestAddWhitelist(pattern, matchType string) error {
	if err := c.Send(protocol.AddWhitelist(pattern, matchType)); err != nil {
		return err
	}
	return c.RequestWhitelist()
}

// RequestRemoveWhitelist removes an entry and refreshes the whitelist.
func (c *Client) RequestRemoveWhitelist(id int64) error {
	if err := c.Send(protocol.RemoveWhitelist(id)); err != nil {
		return err
	}
	return c.RequestWhitelist()
}

// RequestConfig asks for the daemon's configuration.
func (c *Client) RequestConfig() error { return c.Send(protocol.GetConfig()) }

// RequestUpdateConfig replaces the daemon's configuration.
func (c *Client) RequestUpdateConfig(cfg *models.DaemonConfig) error {
	return c.Send(protocol.UpdateConfig(cfg))
}

// correlateLocked pops the request a reply answers: by id when echoed,
// otherwise the oldest outstanding request.
func (c *Client) correlateLocked(id string) string {
	if id != "" {
		for i, p := range c.pending {
			if p.id == id {
				c.pending = append(c.pending[:i], c.pending[i+1:]...)
				return p.cmd
			}
		}
	}
	if len(c.pending) == 0 {
		return ""
	}
	p := c.pending[0]
	c.pending = c.pending[1:]
	return p.cmd
}

func (c *Client) forgetLocked(id string) {
	for i, p := range c.pending {
		if p.id == id {
			c.pending = append(c.pending[:i], c.pending[i+1:]...)
			return
		}
	}
}

func (c *Client) handleMessageLocked(msg channel.Message) {
	var cmd string
	if msg.Type == protocol.TypeResponse || msg.Type == protocol.TypePong {
		cmd = c.correlateLocked(msg.ID)
	}
	if msg.Cmd != "" {
		cmd = msg.Cmd
	}

	kind := protocol.Classify(msg, cmd)
	switch kind {
	case protocol.KindAlert:
		var alert models.Alert
		if c.decode(msg, &alert) {
			c.emitLocked(AlertReceived{Alert: alert})
		}
		return
	case protocol.KindStatus:
		var status models.Status
		if c.decode(msg, &status) {
			c.emitLocked(StatusReceived{Status: status})
		}
		return
	case protocol.KindProcessList:
		var procs []models.ProcessInfo
		if c.decode(msg, &procs) {
			c.emitLocked(ProcessListReceived{Processes: procs})
		}
	case protocol.KindAlertList:
		var alerts []models.Alert
		if c.decode(msg, &alerts) {
			c.emitLocked(AlertListReceived{Alerts: alerts})
		}
	case protocol.KindWhitelist:
		var entries []models.WhitelistEntry
		if c.decode(msg, &entries) {
			c.emitLocked(WhitelistReceived{Entries: entries})
		}
	case protocol.KindConfig:
		cfg := &models.DaemonConfig{}
		if c.decode(msg, cfg) {
			c.emitLocked(ConfigReceived{Config: cfg})
		}
	case protocol.KindUnknown:
		c.log.Debug("Ignoring message of unknown type", zap.String("type", msg.Type))
		return
	}
	c.emitLocked(ResponseReceived{Cmd: cmd, Message: msg})
}

func (c *Client) decode(msg channel.Message, v any) bool {
	if err := json.Unmarshal(msg.Data, v); err != nil {
		c.log.Debug("Failed to decode payload", zap.String("type", msg.Type), zap.Error(err))
		return false
	}
	return true
}

// emitLocked queues ev for delivery. Delivery happens on a single dispatch
// goroutine so handlers never run concurrently and never under c.mu.
func (c *Client) emitLocked(ev Event) {
	c.queue = append(c.queue, ev)
	if c.dispatching {
		return
	}
	c.dispatching = true
	go c.dispatch()
}

func (c *Client) dispatch() {
	for {
		c.mu.Lock()
		if len(c.queue) == 0 {
			c.dispatching = false
			c.mu.Unlock()
			return
		}
		ev := c.queue[0]
		c.queue = c.queue[1:]
		handlers := c.handlers
		c.mu.Unlock()

		for _, h := range handlers {
			h(ev)
		}
	}
}
