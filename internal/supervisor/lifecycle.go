package supervisor

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/runaway-guard/runaway-guard/internal/client"
)

func (s *Supervisor) initialize() {
	if s.binary == "" {
		s.fail(MsgBinaryNotFound)
		return
	}
	s.tryConnect()
}

// processRunning reports whether a daemon is alive, owned or not.
func (s *Supervisor) processRunning() bool {
	if s.proc != nil && s.proc.Alive() {
		return true
	}
	return s.finder.Running(DaemonName)
}

// tryConnect decides between attaching, waiting and launching. A socket
// without a live process is stale and must not be connected to.
func (s *Supervisor) tryConnect() {
	s.stopTimer(timerReconnect)

	exists := s.fs.Exists(s.endpoint)
	alive := s.processRunning()
	s.log.Debug("Probing daemon", zap.Bool("socket", exists), zap.Bool("process", alive))

	switch {
	case exists && alive:
		s.setState(StateStarting)
		s.client.Connect(s.endpoint)
	case exists:
		s.log.Info("Removing stale socket", zap.String("path", s.endpoint))
		if err := s.fs.Remove(s.endpoint); err != nil {
			s.log.Warn("Failed to remove stale socket", zap.Error(err))
		}
		s.startDaemon()
	case alive:
		s.setState(StateStarting)
		s.startPolling()
	default:
		s.startDaemon()
	}
}

func (s *Supervisor) startPolling() {
	s.pollCount = 0
	s.schedule(timerSocketPoll, SocketPollInterval)
}

func (s *Supervisor) pollForSocket() {
	s.pollCount++
	if s.fs.Exists(s.endpoint) {
		s.stopTimer(timerSocketPoll)
		s.pollCount = 0
		s.client.Connect(s.endpoint)
		return
	}
	if s.pollCount > int(StartupTimeout/SocketPollInterval) {
		s.stopTimer(timerSocketPoll)
		s.pollCount = 0
		s.fail(MsgStartupTimeout)
		return
	}
	s.schedule(timerSocketPoll, SocketPollInterval)
}

func (s *Supervisor) handleEndpointAppeared() {
	if !s.timerActive(timerSocketPoll) {
		return
	}
	s.log.Debug("Socket appeared, polling now")
	s.stopTimer(timerSocketPoll)
	s.pollForSocket()
}

func (s *Supervisor) startDaemon() {
	if s.history.inCrashLoop(s.now()) {
		s.fail(MsgCrashLoop)
		return
	}
	if s.binary == "" {
		s.fail(MsgBinaryNotFound)
		return
	}

	s.stopTimer(timerSocketPoll)
	s.stopTimer(timerReconnect)
	s.stopTimer(timerStart)
	s.replaceOwnedProcess()

	s.setState(StateStarting)
	proc, err := s.launcher.Launch(s.binary)
	if err != nil {
		s.fail(fmt.Sprintf("Failed to start daemon: %v", err))
		return
	}
	s.proc = proc
	s.log.Info("Launched daemon", zap.String("binary", s.binary), zap.Int("pid", proc.Pid()))
	go func() {
		<-proc.Done()
		s.post(processExited{proc: proc})
	}()
	if s.recorder != nil {
		if err := s.recorder.Launched(proc.Pid(), s.binary, s.endpoint); err != nil {
			s.log.Warn("Failed to record launch", zap.Error(err))
		}
	}

	s.history.record(s.now())
	s.startPolling()
}

// replaceOwnedProcess tears down the previous child before a new launch.
// Its exit is ignored from here on.
func (s *Supervisor) replaceOwnedProcess() {
	old := s.proc
	s.proc = nil
	if old == nil || !old.Alive() {
		return
	}
	s.log.Info("Terminating previous daemon", zap.Int("pid", old.Pid()))
	_ = old.Terminate()
	if !old.Wait(ReplaceWait) {
		_ = old.Kill()
	}
}

// terminateOwned stops the owned child: terminate, bounded wait, kill,
// bounded wait.
func (s *Supervisor) terminateOwned() {
	p := s.proc
	s.proc = nil
	if p == nil {
		return
	}
	if p.Alive() {
		s.log.Info("Stopping daemon", zap.Int("pid", p.Pid()))
		if err := p.Terminate(); err != nil {
			s.log.Warn("Failed to terminate daemon", zap.Error(err))
		}
		if !p.Wait(TerminateWait) {
			s.log.Warn("Daemon did not exit, killing", zap.Int("pid", p.Pid()))
			_ = p.Kill()
			p.Wait(KillWait)
		}
	}
	if s.recorder != nil {
		if err := s.recorder.Exited(); err != nil {
			s.log.Warn("Failed to clear launch record", zap.Error(err))
		}
	}
}

// stopDaemon cancels all timers and disconnects. The owned process is only
// terminated when terminate is set.
func (s *Supervisor) stopDaemon(terminate bool) {
	s.stopAllTimers()
	s.reconnectAttempts = 0
	s.pollCount = 0

	if terminate {
		s.terminateOwned()
	} else {
		s.log.Info("Leaving daemon running")
	}
	if err := s.client.Close(); err != nil {
		s.log.Debug("Client close", zap.Error(err))
	}

	s.setState(StateStopped)
	s.notify(DaemonStopped{})
}

// restartDaemon always replaces the daemon, whatever the lifecycle
// preference says.
func (s *Supervisor) restartDaemon() {
	s.stopDaemon(true)
	s.schedule(timerStart, RestartDelay)
}

func (s *Supervisor) shutdown() {
	s.stopAllTimers()
	if s.pref.ManageDaemonLifecycle() {
		s.terminateOwned()
	}
	if err := s.client.Close(); err != nil {
		s.log.Debug("Client close", zap.Error(err))
	}
	s.log.Info("Supervisor shut down")
}

func (s *Supervisor) handleClientEvent(ev client.Event) {
	switch ev := ev.(type) {
	case client.Connected:
		if s.state == StateStopped || s.state == StateFailed {
			// Raced with a stop or a terminal failure; do not resurrect.
			_ = s.client.Close()
			return
		}
		s.stopTimer(timerSocketPoll)
		s.pollCount = 0
		s.reconnectAttempts = 0
		s.setState(StateRunning)
		s.notify(Connected{})
		s.notify(DaemonStarted{})
	case client.Disconnected:
		s.notify(Disconnected{})
		if s.state == StateRunning {
			s.classifyDisconnect()
		}
	case client.ConnectFailed:
		s.log.Debug("Connect failed", zap.Error(ev.Err))
		if s.state == StateStarting {
			s.scheduleReconnect()
		}
	}
}

func (s *Supervisor) classifyDisconnect() {
	if s.processRunning() {
		s.scheduleReconnect()
		return
	}
	s.crashed()
}

func (s *Supervisor) scheduleReconnect() {
	s.reconnectAttempts++
	if s.reconnectAttempts < MaxReconnectBeforeRestart {
		s.log.Info("Scheduling reconnect", zap.Int("attempt", s.reconnectAttempts))
		s.schedule(timerReconnect, ReconnectInterval)
		return
	}
	s.log.Warn("Reconnect attempts exhausted, restarting daemon")
	s.reconnectAttempts = 0
	s.restartDaemon()
}

func (s *Supervisor) crashed() {
	s.stopTimer(timerReconnect)
	s.stopTimer(timerSocketPoll)
	s.reconnectAttempts = 0

	// A connection that outlived the process would turn the next poll's
	// Connect into a no-op.
	if err := s.client.Close(); err != nil {
		s.log.Debug("Client close", zap.Error(err))
	}

	s.log.Warn("Daemon crashed")
	s.setState(StateStopped)
	s.notify(DaemonCrashed{})

	if s.history.inCrashLoop(s.now()) {
		s.fail(MsgCrashedRepeatedly)
		return
	}
	s.schedule(timerStart, CrashCooldown)
}

func (s *Supervisor) handleProcessExit(proc Process) {
	if proc != s.proc {
		s.log.Debug("Ignoring exit of replaced daemon", zap.Int("pid", proc.Pid()))
		return
	}
	s.proc = nil
	s.log.Info("Daemon exited", zap.Int("pid", proc.Pid()))
	if s.recorder != nil {
		if err := s.recorder.Exited(); err != nil {
			s.log.Warn("Failed to clear launch record", zap.Error(err))
		}
	}
	if s.state == StateRunning || s.state == StateStarting {
		s.crashed()
	}
}

func (s *Supervisor) handleTimer(ev timerFired) {
	if !s.claimTimer(ev) {
		return
	}
	switch ev.id {
	case timerReconnect:
		s.tryConnect()
	case timerSocketPoll:
		s.pollForSocket()
	case timerStart:
		s.startDaemon()
	}
}
