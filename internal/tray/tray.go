package tray

import (
	_ "embed"

	"github.com/getlantern/systray"
	"go.uber.org/zap"

	"github.com/runaway-guard/runaway-guard/internal/client"
	"github.com/runaway-guard/runaway-guard/internal/supervisor"
)

//go:embed icons/normal.png
var iconNormal []byte

//go:embed icons/warning.png
var iconWarning []byte

//go:embed icons/critical.png
var iconCritical []byte

func iconFor(level IconLevel) []byte {
	switch level {
	case IconWarning:
		return iconWarning
	case IconCritical:
		return iconCritical
	default:
		return iconNormal
	}
}

// Tray owns the menu items. All systray calls happen after onReady.
type Tray struct {
	ctrl   Controller
	logger *zap.Logger
	state  tracker

	ready chan struct{}

	statusItem  *systray.MenuItem
	countsItem  *systray.MenuItem
	alertItem   *systray.MenuItem
	restartItem *systray.MenuItem
	stopItem    *systray.MenuItem
	quitItem    *systray.MenuItem
}

// New creates a tray bound to the given controller. Attach it to event
// sources with Watch before calling Run.
func New(ctrl Controller, logger *zap.Logger) *Tray {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Tray{
		ctrl:   ctrl,
		logger: logger.Named("tray"),
		ready:  make(chan struct{}),
	}
}

// Watch subscribes the tray to client events and supervisor notices.
func (t *Tray) Watch(c *client.Client, sup *supervisor.Supervisor) {
	c.OnEvent(func(ev client.Event) {
		if t.state.applyEvent(ev) {
			t.refresh()
		}
	})
	sup.OnNotice(func(n supervisor.Notice) {
		if t.state.applyNotice(n) {
			t.refresh()
		}
	})
}

// Run starts the system tray. This blocks the calling goroutine (must be main).
// onStart is called when the tray is ready, onExit when it exits.
func (t *Tray) Run(onStart, onExit func()) {
	systray.Run(func() {
		t.build()
		if onStart != nil {
			onStart()
		}
	}, func() {
		if onExit != nil {
			onExit()
		}
	})
}

// Quit signals the tray to exit.
func Quit() {
	systray.Quit()
}

func (t *Tray) build() {
	systray.SetIcon(iconCritical)
	systray.SetTooltip("Runaway Guard")

	header := systray.AddMenuItem("Runaway Guard", "")
	header.Disable()

	t.statusItem = systray.AddMenuItem("Starting...", "")
	t.statusItem.Disable()
	t.countsItem = systray.AddMenuItem("No data", "")
	t.countsItem.Disable()
	t.alertItem = systray.AddMenuItem("", "")
	t.alertItem.Disable()
	t.alertItem.Hide()

	systray.AddSeparator()

	t.restartItem = systray.AddMenuItem("Restart Daemon", "Stop and relaunch the monitoring daemon")
	t.stopItem = systray.AddMenuItem("Stop Daemon", "Stop the monitoring daemon")

	systray.AddSeparator()

	t.quitItem = systray.AddMenuItem("Quit", "Quit Runaway Guard")

	close(t.ready)
	t.refresh()

	go t.handleClicks()
}

// refresh redraws the menu from the current snapshot. Updates that arrive
// before the menu exists are picked up by the initial refresh in build.
func (t *Tray) refresh() {
	select {
	case <-t.ready:
	default:
		return
	}

	snap := t.state.snapshot()
	systray.SetIcon(iconFor(snap.Level()))
	systray.SetTooltip(snap.Tooltip())
	t.statusItem.SetTitle(snap.StatusText())
	t.countsItem.SetTitle(snap.CountsText())
	if text := snap.AlertText(); text != "" {
		t.alertItem.SetTitle(text)
		t.alertItem.Show()
	} else {
		t.alertItem.Hide()
	}
}

func (t *Tray) handleClicks() {
	for {
		select {
		case <-t.restartItem.ClickedCh:
			t.logger.Info("restart requested from tray")
			t.ctrl.RestartDaemon()
		case <-t.stopItem.ClickedCh:
			t.logger.Info("stop requested from tray")
			t.ctrl.StopDaemon()
		case <-t.quitItem.ClickedCh:
			t.logger.Info("quit requested from tray")
			systray.Quit()
			return
		}
	}
}
