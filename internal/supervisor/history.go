package supervisor

import "time"

// restartHistory holds the most recent daemon launch times.
type restartHistory struct {
	times []time.Time
}

func (h *restartHistory) record(t time.Time) {
	h.times = append(h.times, t)
	if len(h.times) > RestartHistorySize {
		h.times = h.times[len(h.times)-RestartHistorySize:]
	}
}

// recent counts launches less than window before now.
func (h *restartHistory) recent(now time.Time, window time.Duration) int {
	n := 0
	for _, t := range h.times {
		if now.Sub(t) < window {
			n++
		}
	}
	return n
}

func (h *restartHistory) inCrashLoop(now time.Time) bool {
	return h.recent(now, CrashLoopWindow) >= CrashLoopThreshold
}

func (h *restartHistory) len() int { return len(h.times) }
