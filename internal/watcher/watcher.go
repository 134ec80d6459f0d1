// Package watcher watches the daemon endpoint and the settings file.
package watcher

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// EventType represents the type of file system event.
type EventType int

const (
	EventEndpointCreated EventType = iota
	EventEndpointRemoved
	EventSettingsChanged
)

func (t EventType) String() string {
	switch t {
	case EventEndpointCreated:
		return "endpoint_created"
	case EventEndpointRemoved:
		return "endpoint_removed"
	case EventSettingsChanged:
		return "settings_changed"
	default:
		return "unknown"
	}
}

// DefaultDebounce coalesces bursts of events for the same path.
const DefaultDebounce = 50 * time.Millisecond

// Event represents a relevant file system change.
type Event struct {
	Type EventType
	Path string
}

// Options selects the files to watch. Either path may be empty.
type Options struct {
	Endpoint     string
	SettingsFile string
	Debounce     time.Duration
	Logger       *zap.Logger
}

// Watcher reports endpoint appearance/removal and settings edits. Their
// parent directories are watched so files that do not exist yet are seen.
type Watcher struct {
	opts       Options
	log        *zap.Logger
	fsWatcher  *fsnotify.Watcher
	eventsChan chan Event
	done       chan struct{}
	stopOnce   sync.Once
	debounce   map[string]*time.Timer
	debounceMu sync.Mutex
}

// New creates a new file system watcher.
func New(opts Options) (*Watcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Endpoint != "" {
		opts.Endpoint = filepath.Clean(opts.Endpoint)
	}
	if opts.SettingsFile != "" {
		opts.SettingsFile = filepath.Clean(opts.SettingsFile)
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Watcher{
		opts:       opts,
		log:        logger.Named("watcher"),
		fsWatcher:  fsWatcher,
		eventsChan: make(chan Event, 16),
		done:       make(chan struct{}),
		debounce:   make(map[string]*time.Timer),
	}, nil
}

// Events returns the channel for receiving events.
func (w *Watcher) Events() <-chan Event {
	return w.eventsChan
}

// Start watches the parent directories and begins processing events. A
// directory that cannot be watched is logged and skipped.
func (w *Watcher) Start() error {
	watched := map[string]bool{}
	for _, path := range []string{w.opts.Endpoint, w.opts.SettingsFile} {
		if path == "" {
			continue
		}
		dir := filepath.Dir(path)
		if watched[dir] {
			continue
		}
		watched[dir] = true
		if err := w.fsWatcher.Add(dir); err != nil {
			w.log.Warn("Failed to watch directory", zap.String("dir", dir), zap.Error(err))
			continue
		}
		w.log.Debug("Watching directory", zap.String("dir", dir))
	}

	go w.processEvents()
	return nil
}

// Stop stops the watcher. Pending debounced events are discarded.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.done)
		_ = w.fsWatcher.Close()

		w.debounceMu.Lock()
		for path, timer := range w.debounce {
			timer.Stop()
			delete(w.debounce, path)
		}
		w.debounceMu.Unlock()
	})
}

func (w *Watcher) processEvents() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("Watcher error", zap.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := filepath.Clean(event.Name)
	if path != w.opts.Endpoint && path != w.opts.SettingsFile {
		return
	}
	if event.Op == fsnotify.Chmod {
		return
	}
	w.log.Debug("fsnotify", zap.Stringer("op", event.Op), zap.String("path", path))
	w.debounceEvent(path, func() { w.processFileChange(path) })
}

func (w *Watcher) debounceEvent(path string, fn func()) {
	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if timer, ok := w.debounce[path]; ok {
		timer.Stop()
	}
	w.debounce[path] = time.AfterFunc(w.opts.Debounce, func() {
		w.debounceMu.Lock()
		delete(w.debounce, path)
		w.debounceMu.Unlock()
		fn()
	})
}

// processFileChange classifies by the file's current state rather than the
// last op, since a debounced burst such as create+write ends in a write.
func (w *Watcher) processFileChange(path string) {
	var ev Event
	switch path {
	case w.opts.Endpoint:
		ev = Event{Type: EventEndpointRemoved, Path: path}
		if _, err := os.Stat(path); err == nil {
			ev.Type = EventEndpointCreated
		}
	case w.opts.SettingsFile:
		ev = Event{Type: EventSettingsChanged, Path: path}
	default:
		return
	}

	select {
	case w.eventsChan <- ev:
	case <-w.done:
	}
}
