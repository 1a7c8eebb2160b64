// FILE: lixenwraith/config/watch.go
package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/lixenwraith/config/hocon"
)

// Notifications sent to Watch subscribers besides changed paths.
const (
	EventFileDeleted   = "file_deleted"
	EventReloadError   = "reload_error:" // Followed by the error text
	EventReloadTimeout = "reload_timeout"
)

// WatchOptions configures file watching behavior
type WatchOptions struct {
	// Debounce duration to coalesce bursts of file events into one reload
	Debounce time.Duration

	// MaxWatchers limits concurrent watch channels
	MaxWatchers int

	// ReloadTimeout for file reload operations
	ReloadTimeout time.Duration
}

// DefaultWatchOptions returns sensible defaults for file watching
func DefaultWatchOptions() WatchOptions {
	return WatchOptions{
		Debounce:      DefaultDebounce,
		MaxWatchers:   DefaultMaxWatchers,
		ReloadTimeout: DefaultReloadTimeout,
	}
}

func (o WatchOptions) withDefaults() WatchOptions {
	if o.Debounce < MinDebounce {
		o.Debounce = MinDebounce
	}
	if o.MaxWatchers <= 0 {
		o.MaxWatchers = DefaultMaxWatchers
	}
	if o.ReloadTimeout <= 0 {
		o.ReloadTimeout = DefaultReloadTimeout
	}
	return o
}

// watcher reloads the root file whenever it or one of its includes changes.
// fsnotify watches the containing directories, so files replaced by rename
// are still seen.
type watcher struct {
	mu        sync.RWMutex
	fsw       *fsnotify.Watcher
	opts      WatchOptions
	logger    *slog.Logger
	filePath  string
	files     map[string]bool // Absolute paths of the root file and its includes
	dirs      map[string]bool
	watching  atomic.Bool
	watchers  map[int64]chan string // subscriber channels
	watcherID atomic.Int64
	stopCh    chan struct{}
	doneCh    chan struct{}
	stopOnce  sync.Once
}

// AutoUpdate enables automatic configuration reloading when the file changes
func (c *Config) AutoUpdate() error {
	return c.AutoUpdateWithOptions(DefaultWatchOptions())
}

// AutoUpdateWithOptions enables automatic configuration reloading with custom
// options. Without a loaded file there is nothing to watch and it returns nil.
func (c *Config) AutoUpdateWithOptions(opts WatchOptions) error {
	opts = opts.withDefaults()

	c.mutex.Lock()
	filePath := c.filePath
	files := append([]string(nil), c.files...)
	logger := c.logger
	previous := c.watcher
	if previous != nil && previous.filePath == filePath && previous.watching.Load() {
		c.mutex.Unlock()
		return nil
	}
	c.watcher = nil
	c.mutex.Unlock()

	// Stop outside the lock, a reload in progress needs it
	if previous != nil {
		previous.stop()
	}
	if filePath == "" {
		return nil
	}

	w, err := newWatcher(filePath, files, opts, logger)
	if err != nil {
		return err
	}

	c.mutex.Lock()
	if c.watcher != nil {
		// Lost a race with a concurrent AutoUpdate
		c.mutex.Unlock()
		close(w.doneCh) // watchLoop never started
		w.stop()
		return nil
	}
	c.watcher = w
	c.mutex.Unlock()

	go w.watchLoop(c)
	logger.Info("config auto-update enabled", "file", filePath, "debounce", opts.Debounce)
	return nil
}

// StopAutoUpdate stops automatic configuration reloading and closes every
// subscriber channel.
func (c *Config) StopAutoUpdate() {
	c.mutex.Lock()
	w := c.watcher
	c.watcher = nil
	c.mutex.Unlock()

	if w != nil {
		w.stop()
	}
}

// Watch returns a channel that receives paths of changed configuration values
func (c *Config) Watch() <-chan string {
	return c.WatchWithOptions(DefaultWatchOptions())
}

// WatchWithOptions returns a subscriber channel, starting auto-update with opts
// when it is not running yet. Without a loaded file the channel is closed.
func (c *Config) WatchWithOptions(opts WatchOptions) <-chan string {
	c.mutex.RLock()
	w := c.watcher
	c.mutex.RUnlock()

	if w == nil || !w.watching.Load() {
		if err := c.AutoUpdateWithOptions(opts); err != nil {
			c.log().Error("config watch failed", "error", err)
		}
		c.mutex.RLock()
		w = c.watcher
		c.mutex.RUnlock()
	}

	if w == nil {
		ch := make(chan string)
		close(ch)
		return ch
	}
	return w.subscribe()
}

// WatchFile stops any existing file watcher, loads a new configuration file,
// and starts a new watcher on that file path.
func (c *Config) WatchFile(filePath string) error {
	c.mutex.RLock()
	opts := DefaultWatchOptions()
	if c.watcher != nil {
		opts = c.watcher.opts
	}
	c.mutex.RUnlock()

	c.StopAutoUpdate()

	if err := c.LoadFile(filePath); err != nil {
		return fmt.Errorf("failed to load new file for watching: %w", err)
	}
	return c.AutoUpdateWithOptions(opts)
}

// IsWatching returns true if auto-update is enabled
func (c *Config) IsWatching() bool {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.watcher != nil && c.watcher.watching.Load()
}

// WatcherCount returns the number of active watch channels
func (c *Config) WatcherCount() int {
	c.mutex.RLock()
	w := c.watcher
	c.mutex.RUnlock()

	if w == nil {
		return 0
	}

	w.mu.RLock()
	defer w.mu.RUnlock()
	return len(w.watchers)
}

func (c *Config) log() *slog.Logger {
	c.mutex.RLock()
	defer c.mutex.RUnlock()
	return c.logger
}

func newWatcher(filePath string, files []string, opts WatchOptions, logger *slog.Logger) (*watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &watcher{
		fsw:      fsw,
		opts:     opts,
		logger:   logger,
		filePath: filePath,
		files:    make(map[string]bool),
		dirs:     make(map[string]bool),
		watchers: make(map[int64]chan string),
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
	w.watching.Store(true)

	if err := w.track(append([]string{filePath}, files...)); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	return w, nil
}

// track adds files to the watched set and watches their directories.
// Only called from the constructor and the watch loop.
func (w *watcher) track(files []string) error {
	for _, f := range files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return fmt.Errorf("failed to resolve '%s': %w", f, err)
		}
		w.files[abs] = true

		dir := filepath.Dir(abs)
		if w.dirs[dir] {
			continue
		}
		if err := w.fsw.Add(dir); err != nil {
			return fmt.Errorf("failed to watch '%s': %w", dir, err)
		}
		w.dirs[dir] = true
	}
	return nil
}

// watchLoop is the main file watching loop
func (w *watcher) watchLoop(c *Config) {
	defer close(w.doneCh)
	defer w.watching.Store(false)

	var (
		timer  *time.Timer
		timerC <-chan time.Time
	)
	resetTimer := func() {
		if timer == nil {
			timer = time.NewTimer(w.opts.Debounce)
			timerC = timer.C
			return
		}
		if !timer.Stop() {
			select {
			case <-timer.C:
			default:
			}
		}
		timer.Reset(w.opts.Debounce)
		timerC = timer.C
	}

	for {
		select {
		case <-w.stopCh:
			if timer != nil {
				timer.Stop()
			}
			return
		case <-timerC:
			timerC = nil
			w.performReload(c)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("config watcher error", "error", err)
		case evt, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if w.shouldTrigger(evt) {
				resetTimer()
			}
		}
	}
}

// shouldTrigger reports whether evt touches one of the tracked files.
func (w *watcher) shouldTrigger(evt fsnotify.Event) bool {
	if evt.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	abs, err := filepath.Abs(evt.Name)
	if err != nil {
		return false
	}
	return w.files[abs]
}

// performReload reloads the configuration file and notifies subscribers of
// every path whose value changed, appeared or disappeared.
func (w *watcher) performReload(c *Config) {
	ctx, cancel := context.WithTimeout(context.Background(), w.opts.ReloadTimeout)
	defer cancel()

	oldValues := c.snapshot()

	type result struct {
		store *hocon.MapStore
		files []string
		err   error
	}
	done := make(chan result, 1)
	go func() {
		store, files, err := c.rebuild(w.filePath)
		done <- result{store, files, err}
	}()

	select {
	case res := <-done:
		if err := res.err; err != nil {
			if errors.Is(err, ErrConfigNotFound) {
				w.logger.Warn("config reload failed", "file", w.filePath, "error", err)
				w.notifyWatchers(EventFileDeleted)
				return
			}
			w.logger.Error("config reload failed", "file", w.filePath, "error", err)
			w.notifyWatchers(EventReloadError + err.Error())
			return
		}
		c.commit(w.filePath, res.store, res.files)

		if err := w.track(res.files); err != nil {
			w.logger.Warn("config watcher could not track includes", "error", err)
		}

		newValues := c.snapshot()
		changed := 0
		for path, newVal := range newValues {
			if oldVal, existed := oldValues[path]; !existed || !reflect.DeepEqual(oldVal, newVal) {
				w.notifyWatchers(path)
				changed++
			}
		}
		for path := range oldValues {
			if _, exists := newValues[path]; !exists {
				w.notifyWatchers(path)
				changed++
			}
		}
		w.logger.Info("config reload ok", "file", w.filePath, "changed", changed)

	case <-ctx.Done():
		// A rebuild finishing after the deadline is discarded
		w.logger.Error("config reload timed out", "file", w.filePath, "timeout", w.opts.ReloadTimeout)
		w.notifyWatchers(EventReloadTimeout)

	case <-w.stopCh:
	}
}

// subscribe creates a new watcher channel
func (w *watcher) subscribe() <-chan string {
	w.mu.Lock()
	defer w.mu.Unlock()

	// Closed channel once stopped or at the watcher limit
	if !w.watching.Load() || len(w.watchers) >= w.opts.MaxWatchers {
		ch := make(chan string)
		close(ch)
		return ch
	}

	ch := make(chan string, subscriberBuffer)
	w.watchers[w.watcherID.Add(1)] = ch
	return ch
}

// notifyWatchers sends change notification to all subscribers
func (w *watcher) notifyWatchers(path string) {
	w.mu.RLock()
	defer w.mu.RUnlock()

	for _, ch := range w.watchers {
		select {
		case ch <- path:
		default:
			// Channel full, drop
		}
	}
}

// stop terminates the watch loop and closes all subscriber channels.
func (w *watcher) stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		_ = w.fsw.Close()

		select {
		case <-w.doneCh:
		case <-time.After(ShutdownTimeout):
			w.logger.Warn("config watcher did not stop in time", "file", w.filePath)
		}

		w.mu.Lock()
		w.watching.Store(false)
		for id, ch := range w.watchers {
			close(ch)
			delete(w.watchers, id)
		}
		w.mu.Unlock()
	})
}

// snapshot creates a snapshot of current values, object scopes excluded
func (c *Config) snapshot() map[string]any {
	entries := c.Entries()
	snapshot := make(map[string]any, len(entries))
	for _, e := range entries {
		if !e.IsNode() {
			snapshot[e.Path] = e.Value
		}
	}
	return snapshot
}
