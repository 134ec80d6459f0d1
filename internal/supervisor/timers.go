package supervisor

import "time"

// Timer is a cancellable scheduled callback.
type Timer interface {
	Stop() bool
}

// Scheduler runs f once after d, on a goroutine of its choosing.
type Scheduler interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realScheduler struct{}

func (realScheduler) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

type timerID int

const (
	timerReconnect timerID = iota
	timerSocketPoll
	timerStart
)

func (id timerID) String() string {
	switch id {
	case timerReconnect:
		return "reconnect"
	case timerSocketPoll:
		return "socket_poll"
	case timerStart:
		return "start"
	default:
		return "unknown"
	}
}

type timerSlot struct {
	gen   uint64
	timer Timer
}

// schedule (re)arms timer id. A fire is delivered to the event loop and only
// acted on if the slot still holds the same generation.
func (s *Supervisor) schedule(id timerID, d time.Duration) {
	s.stopTimer(id)
	s.timerGen++
	gen := s.timerGen
	t := s.scheduler.AfterFunc(d, func() {
		s.post(timerFired{id: id, gen: gen})
	})
	s.timers[id] = timerSlot{gen: gen, timer: t}
}

func (s *Supervisor) stopTimer(id timerID) {
	if slot, ok := s.timers[id]; ok {
		slot.timer.Stop()
		delete(s.timers, id)
	}
}

func (s *Supervisor) stopAllTimers() {
	for id := range s.timers {
		s.stopTimer(id)
	}
}

func (s *Supervisor) timerActive(id timerID) bool {
	_, ok := s.timers[id]
	return ok
}

// claimTimer consumes a fire, reporting whether it is current.
func (s *Supervisor) claimTimer(ev timerFired) bool {
	slot, ok := s.timers[ev.id]
	if !ok || slot.gen != ev.gen {
		return false
	}
	delete(s.timers, ev.id)
	return true
}
