package fileio

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// EventType represents the type of file system event
type EventType int

const (
	EventCreate EventType = iota
	EventModify
	EventDelete
)

// String returns a string representation of the event type
func (e EventType) String() string {
	switch e {
	case EventCreate:
		return "CREATE"
	case EventModify:
		return "MODIFY"
	case EventDelete:
		return "DELETE"
	default:
		return "UNKNOWN"
	}
}

// FileEvent represents a change to one watched file
type FileEvent struct {
	Path      string
	Type      EventType
	Timestamp time.Time
}

// Watcher reports changes to a set of source files. It watches their
// parent directories so files replaced by rename are still seen.
type Watcher struct {
	watcher  *fsnotify.Watcher
	files    map[string]bool
	dirs     []string
	events   chan FileEvent
	errors   chan error
	stopCh   chan struct{}
	mu       sync.RWMutex
	running  bool
	closed   bool
	debounce time.Duration
	timers   map[string]*time.Timer
	pending  map[string]fsnotify.Op // ops seen in the current debounce window
}

// WatcherConfig holds configuration for the file watcher
type WatcherConfig struct {
	BufferSize   int           // Event buffer size
	DebounceTime time.Duration // Quiet period before a burst of writes is reported once
}

// DefaultWatcherConfig returns default configuration
var DefaultWatcherConfig = WatcherConfig{
	BufferSize:   16,
	DebounceTime: 500 * time.Millisecond,
}

// NewWatcher creates a watcher for files with the default configuration
func NewWatcher(files []string) (*Watcher, error) {
	return NewWatcherWithConfig(files, DefaultWatcherConfig)
}

// NewWatcherWithConfig creates a watcher for files
func NewWatcherWithConfig(files []string, config WatcherConfig) (*Watcher, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files to watch")
	}
	if config.BufferSize <= 0 {
		config.BufferSize = DefaultWatcherConfig.BufferSize
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	w := &Watcher{
		watcher:  fsWatcher,
		files:    make(map[string]bool, len(files)),
		events:   make(chan FileEvent, config.BufferSize),
		errors:   make(chan error, config.BufferSize),
		stopCh:   make(chan struct{}),
		debounce: config.DebounceTime,
		timers:   make(map[string]*time.Timer),
		pending:  make(map[string]fsnotify.Op),
	}

	seen := make(map[string]bool)
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			fsWatcher.Close()
			return nil, fmt.Errorf("failed to resolve %s: %w", f, err)
		}
		w.files[abs] = true
		if dir := filepath.Dir(abs); !seen[dir] {
			seen[dir] = true
			w.dirs = append(w.dirs, dir)
		}
	}
	return w, nil
}

// Start begins watching
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return fmt.Errorf("watcher is closed")
	}
	if w.running {
		return fmt.Errorf("watcher is already running")
	}

	for _, dir := range w.dirs {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("failed to watch path %s: %w", dir, err)
		}
	}

	w.running = true
	go w.processEvents()
	return nil
}

// Stop stops the file watcher
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return nil
	}

	close(w.stopCh)
	w.running = false
	for path, timer := range w.timers {
		timer.Stop()
		delete(w.timers, path)
	}
	clear(w.pending)
	return w.watcher.Close()
}

// Close stops the watcher and closes all channels
func (w *Watcher) Close() error {
	err := w.Stop()

	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return err
	}
	w.closed = true
	close(w.events)
	close(w.errors)

	// a watcher that never started still holds its inotify handle
	_ = w.watcher.Close()
	return err
}

// Events returns the channel for file events
func (w *Watcher) Events() <-chan FileEvent {
	return w.events
}

// Errors returns the channel for errors
func (w *Watcher) Errors() <-chan error {
	return w.errors
}

// Files returns the watched files
func (w *Watcher) Files() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()

	files := make([]string, 0, len(w.files))
	for f := range w.files {
		files = append(files, f)
	}
	return files
}

// IsRunning returns whether the watcher is currently running
func (w *Watcher) IsRunning() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// Run starts the watcher if needed and calls fn for every change until
// ctx is done. The watcher is closed on return.
func (w *Watcher) Run(ctx context.Context, fn func(FileEvent)) error {
	defer w.Close()
	if !w.IsRunning() {
		if err := w.Start(); err != nil {
			return err
		}
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-w.events:
			if !ok {
				return nil
			}
			fn(event)
		case err, ok := <-w.errors:
			if !ok {
				return nil
			}
			return fmt.Errorf("watch error: %w", err)
		}
	}
}

func (w *Watcher) processEvents() {
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if w.files[filepath.Clean(event.Name)] {
				w.handleEvent(event)
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.mu.RLock()
			if !w.closed {
				select {
				case w.errors <- err:
				default:
					// Drop error if channel is full
				}
			}
			w.mu.RUnlock()

		case <-w.stopCh:
			return
		}
	}
}

// handleEvent debounces bursts of events on the same file. The event sent
// for a burst carries every op seen during it.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	if w.debounce <= 0 {
		w.sendEvent(event)
		return
	}

	path := event.Name

	w.mu.Lock()
	defer w.mu.Unlock()

	if !w.running {
		return
	}
	if timer, exists := w.timers[path]; exists {
		timer.Stop()
	}
	w.pending[path] |= event.Op
	w.timers[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		op := w.pending[path]
		delete(w.pending, path)
		delete(w.timers, path)
		w.mu.Unlock()
		w.sendEvent(fsnotify.Event{Name: path, Op: op})
	})
}

func (w *Watcher) sendEvent(event fsnotify.Event) {
	var eventType EventType
	switch {
	case event.Op&fsnotify.Create == fsnotify.Create:
		eventType = EventCreate
	case event.Op&fsnotify.Write == fsnotify.Write:
		eventType = EventModify
	case event.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		eventType = EventDelete
	default:
		// CHMOD
		return
	}

	w.mu.RLock()
	defer w.mu.RUnlock()
	if w.closed {
		return
	}

	select {
	case w.events <- FileEvent{Path: event.Name, Type: eventType, Timestamp: time.Now()}:
	default:
		// Drop event if channel is full
	}
}
