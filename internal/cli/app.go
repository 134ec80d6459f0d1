package cli

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/runaway-guard/runaway-guard/internal/client"
	"github.com/runaway-guard/runaway-guard/internal/config"
	"github.com/runaway-guard/runaway-guard/internal/logging"
	"github.com/runaway-guard/runaway-guard/internal/models"
	"github.com/runaway-guard/runaway-guard/internal/supervisor"
	"github.com/runaway-guard/runaway-guard/internal/watcher"
)

// app wires the client, supervisor and watchers shared by the TUI, the tray
// and the one-shot daemon commands.
type app struct {
	logger   *zap.Logger
	store    *config.SettingsStore
	settings *models.Settings
	endpoint string

	client  *client.Client
	sup     *supervisor.Supervisor
	watcher *watcher.Watcher

	// settingsUpdates carries reloaded settings to the front-end.
	settingsUpdates chan *models.Settings

	cancel context.CancelFunc
}

type appOptions struct {
	// Stderr mirrors logs to stderr; off for the TUI.
	Stderr bool
	// Preference overrides the settings file's lifecycle preference.
	Preference supervisor.Preference
	// Watch enables the socket/settings file watcher.
	Watch bool
}

func newApp(opts appOptions) (*app, error) {
	logFile, err := config.GUILogFile()
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(logging.Options{File: logFile, Stderr: opts.Stderr, Level: logLevel})
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	store, err := config.NewSettingsStore()
	if err != nil {
		return nil, err
	}
	settings, err := store.Load()
	if err != nil {
		logger.Warn("Failed to load settings, using defaults", zap.Error(err))
		settings = models.NewSettings()
	}

	binary, err := supervisor.NewDiscovery(settings.DaemonPath).Find()
	if err != nil {
		if !errors.Is(err, supervisor.ErrDaemonNotFound) {
			return nil, err
		}
		logger.Warn("Daemon binary not found", zap.Error(err))
		binary = ""
	}

	daemonLog, err := config.DaemonLogFile()
	if err != nil {
		return nil, err
	}

	a := &app{
		logger:   logger,
		store:    store,
		settings: settings,
		endpoint: config.SocketPath(),

		settingsUpdates: make(chan *models.Settings, 1),
	}
	a.client = client.New(client.Options{Logger: logger})

	var pref supervisor.Preference = store
	if opts.Preference != nil {
		pref = opts.Preference
	}
	a.sup = supervisor.New(supervisor.Options{
		Binary:     binary,
		Endpoint:   a.endpoint,
		Client:     a.client,
		Launcher:   supervisor.ExecLauncher{LogFile: daemonLog},
		Preference: pref,
		Recorder:   config.LaunchRecorder{},
		Logger:     logger,
	})

	if opts.Watch {
		w, err := watcher.New(watcher.Options{
			Endpoint:     a.endpoint,
			SettingsFile: store.Path(),
			Logger:       logger,
		})
		if err != nil {
			logger.Warn("File watcher unavailable", zap.Error(err))
		} else {
			a.watcher = w
		}
	}

	return a, nil
}

// start runs the supervisor loop and asks it to attach to or launch the
// daemon.
func (a *app) start() {
	if err := config.EnsureGlobalLogsDir(); err != nil {
		a.logger.Warn("Failed to create logs directory", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	a.cancel = cancel
	go func() {
		_ = a.sup.Run(ctx)
	}()

	if a.watcher != nil {
		if err := a.watcher.Start(); err != nil {
			a.logger.Warn("Failed to start file watcher", zap.Error(err))
		} else {
			go a.watch(ctx)
		}
	}

	a.sup.Initialize()
}

func (a *app) watch(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-a.watcher.Events():
			if !ok {
				return
			}
			switch ev.Type {
			case watcher.EventEndpointCreated:
				a.sup.EndpointCreated()
			case watcher.EventSettingsChanged:
				a.reloadSettings()
			}
		}
	}
}

// reloadSettings picks up edits made outside the app. The lifecycle
// preference is read from disk on demand; only the display settings are
// cached.
func (a *app) reloadSettings() {
	settings, err := a.store.Load()
	if err != nil {
		a.logger.Warn("Failed to reload settings", zap.Error(err))
		return
	}
	a.settings = settings
	a.logger.Info("Settings reloaded",
		zap.Bool("manage_daemon_lifecycle", settings.ManageDaemonLifecycle))

	// Keep only the newest pending update.
	select {
	case <-a.settingsUpdates:
	default:
	}
	a.settingsUpdates <- settings
}

// stop shuts the supervisor down, which releases the daemon according to the
// lifecycle preference.
func (a *app) stop() {
	a.sup.Shutdown()
	if a.cancel != nil {
		a.cancel()
	}
	if a.watcher != nil {
		a.watcher.Stop()
	}
	_ = a.logger.Sync()
}

// keepRunning leaves the daemon alive when a one-shot command exits.
type keepRunning struct{}

func (keepRunning) ManageDaemonLifecycle() bool { return false }
