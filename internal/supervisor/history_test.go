package supervisor

import (
	"testing"
	"time"
)

func TestRestartHistoryCapped(t *testing.T) {
	var h restartHistory
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 15; i++ {
		h.record(t0.Add(time.Duration(i) * time.Minute))
	}
	if h.len() != RestartHistorySize {
		t.Fatalf("len = %d, want %d", h.len(), RestartHistorySize)
	}
	if !h.times[0].Equal(t0.Add(5 * time.Minute)) {
		t.Errorf("oldest = %v, want the 6th record", h.times[0])
	}
}

func TestInCrashLoop(t *testing.T) {
	t0 := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	at := func(secs ...int) []time.Time {
		out := make([]time.Time, len(secs))
		for i, s := range secs {
			out[i] = t0.Add(time.Duration(s) * time.Second)
		}
		return out
	}

	tests := []struct {
		name  string
		times []time.Time
		now   time.Time
		want  bool
	}{
		{"empty", nil, t0, false},
		{"two recent", at(0, 10), t0.Add(20 * time.Second), false},
		{"three within window", at(0, 10, 20), t0.Add(25 * time.Second), true},
		{"oldest aged out", at(0, 10, 20), t0.Add(60 * time.Second), false},
		{"three spread out", at(0, 100, 200), t0.Add(210 * time.Second), false},
		{"many old, three new", at(0, 1, 2, 300, 301, 302), t0.Add(303 * time.Second), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := restartHistory{times: tt.times}
			if got := h.inCrashLoop(tt.now); got != tt.want {
				t.Errorf("inCrashLoop() = %v, want %v", got, tt.want)
			}
		})
	}
}
