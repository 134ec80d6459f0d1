package supervisor

// State is the supervisor's externally observable lifecycle state.
type State int32

const (
	StateUnknown State = iota
	StateStarting
	StateRunning
	StateStopped
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Notice is anything the supervisor reports to its observers.
type Notice interface {
	supervisorNotice()
}

// StateChanged is raised whenever the state actually changes.
type StateChanged struct {
	State State
}

// Connected is raised when the client connection to the daemon is up.
type Connected struct{}

// Disconnected is raised whenever the client connection drops.
type Disconnected struct{}

// DaemonStarted is raised when a daemon became reachable.
type DaemonStarted struct{}

// DaemonStopped is raised after a stop request completed.
type DaemonStopped struct{}

// DaemonCrashed is raised when the daemon went away without being asked to.
type DaemonCrashed struct{}

// ErrorOccurred carries a human-readable message for a terminal condition.
type ErrorOccurred struct {
	Message string
}

func (StateChanged) supervisorNotice()  {}
func (Connected) supervisorNotice()     {}
func (Disconnected) supervisorNotice()  {}
func (DaemonStarted) supervisorNotice() {}
func (DaemonStopped) supervisorNotice() {}
func (DaemonCrashed) supervisorNotice() {}
func (ErrorOccurred) supervisorNotice() {}
