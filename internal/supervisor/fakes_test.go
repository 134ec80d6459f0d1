package supervisor

import (
	"time"

	"github.com/runaway-guard/runaway-guard/internal/client"
)

// fakeClient mirrors the real client's guard: Connect only dials while
// disconnected.
type fakeClient struct {
	connects      []string
	dials         int
	closes        int
	connected     bool
	autoReconnect bool
	handler       func(client.Event)
}

func (c *fakeClient) Connect(endpoint string) {
	c.connects = append(c.connects, endpoint)
	if !c.connected {
		c.dials++
	}
}

func (c *fakeClient) Close() error {
	c.closes++
	c.connected = false
	return nil
}

func (c *fakeClient) SetAutoReconnect(enabled bool) { c.autoReconnect = enabled }
func (c *fakeClient) OnEvent(fn func(client.Event)) { c.handler = fn }

type fakeProcess struct {
	pid        int
	alive      bool
	exitOnTerm bool
	terminated int
	killed     int
	done       chan struct{}
}

func (p *fakeProcess) Pid() int    { return p.pid }
func (p *fakeProcess) Alive() bool { return p.alive }

func (p *fakeProcess) Terminate() error {
	p.terminated++
	if p.exitOnTerm {
		p.alive = false
	}
	return nil
}

func (p *fakeProcess) Kill() error {
	p.killed++
	p.alive = false
	return nil
}

func (p *fakeProcess) Wait(time.Duration) bool { return !p.alive }
func (p *fakeProcess) Done() <-chan struct{}   { return p.done }

type fakeLauncher struct {
	procs    []*fakeProcess
	binaries []string
	err      error
}

func (l *fakeLauncher) Launch(binary string) (Process, error) {
	l.binaries = append(l.binaries, binary)
	if l.err != nil {
		return nil, l.err
	}
	p := &fakeProcess{pid: 100 + len(l.procs), alive: true, exitOnTerm: true, done: make(chan struct{})}
	l.procs = append(l.procs, p)
	return p, nil
}

type fakeFinder struct {
	running bool
}

func (f *fakeFinder) Running(string) bool { return f.running }

type fakeFS struct {
	exists  bool
	removed []string
}

func (f *fakeFS) Exists(string) bool { return f.exists }

func (f *fakeFS) Remove(path string) error {
	f.removed = append(f.removed, path)
	f.exists = false
	return nil
}

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	wasPending := !t.stopped && !t.fired
	t.stopped = true
	return wasPending
}

type fakeScheduler struct {
	timers []*fakeTimer
}

func (s *fakeScheduler) AfterFunc(d time.Duration, f func()) Timer {
	t := &fakeTimer{d: d, f: f}
	s.timers = append(s.timers, t)
	return t
}

func (s *fakeScheduler) pending() []*fakeTimer {
	var out []*fakeTimer
	for _, t := range s.timers {
		if !t.stopped && !t.fired {
			out = append(out, t)
		}
	}
	return out
}

type fakePref struct {
	manage bool
}

func (p *fakePref) ManageDaemonLifecycle() bool { return p.manage }

type fakeRecorder struct {
	launched []int
	exited   int
}

func (r *fakeRecorder) Launched(pid int, binary, socket string) error {
	r.launched = append(r.launched, pid)
	return nil
}

func (r *fakeRecorder) Exited() error {
	r.exited++
	return nil
}
