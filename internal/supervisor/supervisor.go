// Package supervisor owns the daemon's lifecycle: finding it, deciding whether
// to attach to a running instance or launch one, and recovering from crashes,
// stale sockets and dropped connections.
package supervisor

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/runaway-guard/runaway-guard/internal/client"
)

const (
	SocketPollInterval        = 500 * time.Millisecond
	StartupTimeout            = 10 * time.Second
	ReconnectInterval         = 2 * time.Second
	MaxReconnectBeforeRestart = 5
	CrashCooldown             = 2 * time.Second
	RestartDelay              = 500 * time.Millisecond
	TerminateWait             = 3 * time.Second
	KillWait                  = time.Second
	ReplaceWait               = time.Second

	CrashLoopThreshold = 3
	CrashLoopWindow    = 60 * time.Second
	RestartHistorySize = 10
)

// Messages carried by ErrorOccurred.
const (
	MsgBinaryNotFound    = "Daemon binary not found. Please install runaway-daemon."
	MsgCrashLoop         = "Daemon crash loop detected. Please check logs and restart manually."
	MsgStartupTimeout    = "Timeout waiting for daemon to create socket"
	MsgCrashedRepeatedly = "Daemon crashed repeatedly. Manual restart required."
)

// Connector is the client surface the supervisor drives.
type Connector interface {
	Connect(endpoint string)
	Close() error
	SetAutoReconnect(enabled bool)
	OnEvent(fn func(client.Event))
}

// Preference reports the lifecycle-management setting. It is consulted each
// time the daemon would be stopped.
type Preference interface {
	ManageDaemonLifecycle() bool
}

// LaunchRecorder is told about daemons this supervisor launched.
type LaunchRecorder interface {
	Launched(pid int, binary, socket string) error
	Exited() error
}

// Options wires a Supervisor. Binary, Endpoint and Client are required.
type Options struct {
	Binary   string
	Endpoint string
	Client   Connector

	Launcher   Launcher
	Finder     ProcessFinder
	FS         FS
	Scheduler  Scheduler
	Preference Preference
	Recorder   LaunchRecorder
	Now        func() time.Time
	Logger     *zap.Logger
}

type alwaysManage struct{}

func (alwaysManage) ManageDaemonLifecycle() bool { return true }

// Supervisor runs a single event loop; every exported method only posts an
// event to it. Notice handlers run on the loop goroutine and must not block.
type Supervisor struct {
	binary    string
	endpoint  string
	client    Connector
	launcher  Launcher
	finder    ProcessFinder
	fs        FS
	scheduler Scheduler
	pref      Preference
	recorder  LaunchRecorder
	now       func() time.Time
	log       *zap.Logger

	events   chan event
	done     chan struct{}
	doneOnce sync.Once

	stateVal atomic.Int32

	mu        sync.Mutex
	lastError string
	handlers  []func(Notice)

	// Owned by the loop goroutine.
	state             State
	proc              Process
	reconnectAttempts int
	pollCount         int
	history           restartHistory
	timers            map[timerID]timerSlot
	timerGen          uint64
}

// New creates a supervisor and takes over the client's reconnect policy.
func New(opts Options) *Supervisor {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Supervisor{
		binary:    opts.Binary,
		endpoint:  opts.Endpoint,
		client:    opts.Client,
		launcher:  opts.Launcher,
		finder:    opts.Finder,
		fs:        opts.FS,
		scheduler: opts.Scheduler,
		pref:      opts.Preference,
		recorder:  opts.Recorder,
		now:       opts.Now,
		log:       logger.Named("supervisor"),
		events:    make(chan event, 64),
		done:      make(chan struct{}),
		timers:    make(map[timerID]timerSlot),
	}
	if s.launcher == nil {
		s.launcher = ExecLauncher{}
	}
	if s.finder == nil {
		s.finder = PgrepFinder{}
	}
	if s.fs == nil {
		s.fs = OSFS{}
	}
	if s.scheduler == nil {
		s.scheduler = realScheduler{}
	}
	if s.pref == nil {
		s.pref = alwaysManage{}
	}
	if s.now == nil {
		s.now = time.Now
	}

	s.client.SetAutoReconnect(false)
	s.client.OnEvent(func(ev client.Event) { s.post(clientEvent{ev: ev}) })
	return s
}

type event interface{}

type (
	cmdInitialize struct{}
	cmdStart      struct{}
	cmdStop       struct{}
	cmdRestart    struct{}
	cmdShutdown   struct{}

	clientEvent   struct{ ev client.Event }
	processExited struct{ proc Process }
	timerFired    struct {
		id  timerID
		gen uint64
	}
	endpointAppeared struct{}
)

// Run processes events until ctx is cancelled or Shutdown is handled.
func (s *Supervisor) Run(ctx context.Context) error {
	defer s.doneOnce.Do(func() { close(s.done) })
	for {
		select {
		case <-ctx.Done():
			s.shutdown()
			return ctx.Err()
		case ev := <-s.events:
			if s.handle(ev) {
				return nil
			}
		}
	}
}

// Done is closed when Run has returned.
func (s *Supervisor) Done() <-chan struct{} { return s.done }

func (s *Supervisor) post(ev event) {
	select {
	case s.events <- ev:
	case <-s.done:
	}
}

// Initialize attaches to or launches the daemon.
func (s *Supervisor) Initialize() { s.post(cmdInitialize{}) }

// StartDaemon launches the daemon (subject to crash-loop protection).
func (s *Supervisor) StartDaemon() { s.post(cmdStart{}) }

// StopDaemon stops the daemon if lifecycle management is enabled and
// disconnects either way.
func (s *Supervisor) StopDaemon() { s.post(cmdStop{}) }

// RestartDaemon stops the daemon and starts it again shortly after.
func (s *Supervisor) RestartDaemon() { s.post(cmdRestart{}) }

// EndpointCreated tells the supervisor the daemon socket just appeared.
func (s *Supervisor) EndpointCreated() { s.post(endpointAppeared{}) }

// Shutdown stops the loop after releasing the daemon according to the
// lifecycle preference, and waits for Run to return.
func (s *Supervisor) Shutdown() {
	s.post(cmdShutdown{})
	<-s.done
}

// State returns the current state.
func (s *Supervisor) State() State { return State(s.stateVal.Load()) }

// LastError returns the message of the most recent terminal condition.
func (s *Supervisor) LastError() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastError
}

// OnNotice registers an observer. Register before Run.
func (s *Supervisor) OnNotice(fn func(Notice)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.handlers = append(s.handlers, fn)
}

func (s *Supervisor) notify(n Notice) {
	s.mu.Lock()
	handlers := s.handlers
	s.mu.Unlock()
	for _, h := range handlers {
		h(n)
	}
}

func (s *Supervisor) setState(st State) {
	if s.state == st {
		return
	}
	s.log.Info("Daemon state changed", zap.Stringer("from", s.state), zap.Stringer("to", st))
	s.state = st
	s.stateVal.Store(int32(st))
	s.notify(StateChanged{State: st})
}

// fail enters Failed and surfaces msg.
func (s *Supervisor) fail(msg string) {
	s.log.Error("Daemon supervision failed", zap.String("reason", msg))
	s.mu.Lock()
	s.lastError = msg
	s.mu.Unlock()
	s.setState(StateFailed)
	s.notify(ErrorOccurred{Message: msg})
}

// handle processes one event and reports whether the loop should stop.
func (s *Supervisor) handle(ev event) bool {
	switch ev := ev.(type) {
	case cmdInitialize:
		s.initialize()
	case cmdStart:
		s.startDaemon()
	case cmdStop:
		s.stopDaemon(s.pref.ManageDaemonLifecycle())
	case cmdRestart:
		s.restartDaemon()
	case cmdShutdown:
		s.shutdown()
		return true
	case clientEvent:
		s.handleClientEvent(ev.ev)
	case processExited:
		s.handleProcessExit(ev.proc)
	case timerFired:
		s.handleTimer(ev)
	case endpointAppeared:
		s.handleEndpointAppeared()
	}
	return false
}
