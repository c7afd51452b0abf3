package dev

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Change represents a detected file change.
type Change struct {
	// Path is the absolute path of the changed file.
	Path string

	// Removed indicates the file was deleted or renamed away.
	Removed bool
}

// WatcherConfig configures the file watcher.
type WatcherConfig struct {
	// Paths are the directories to watch recursively.
	Paths []string

	// Ignore patterns to skip (doublestar globs, matched against the
	// path relative to the watched root).
	Ignore []string

	// Debounce is the delay before triggering on change.
	Debounce time.Duration
}

// DefaultIgnore contains default patterns to ignore.
var DefaultIgnore = []string{
	"**/*_test.go",
	"**/.git/**",
	"**/node_modules/**",
	"**/dist/**",
	"**/*.tmp",
	"**/*.swp",
	"**/*~",
}

// Watcher monitors the app directory for changes, coalescing bursts of
// events into one callback per settled batch.
type Watcher struct {
	config   WatcherConfig
	log      *zap.Logger
	fsw      *fsnotify.Watcher
	onChange func([]Change)

	mu      sync.Mutex
	pending map[string]Change
	timer   *time.Timer
}

// NewWatcher creates a new file watcher.
func NewWatcher(config WatcherConfig, log *zap.Logger) (*Watcher, error) {
	if config.Debounce == 0 {
		config.Debounce = 100 * time.Millisecond
	}
	if len(config.Ignore) == 0 {
		config.Ignore = DefaultIgnore
	}
	if log == nil {
		log = zap.NewNop()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		config:  config,
		log:     log,
		fsw:     fsw,
		pending: make(map[string]Change),
	}, nil
}

// OnChange sets the callback invoked with each settled batch of changes.
func (w *Watcher) OnChange(fn func([]Change)) {
	w.onChange = fn
}

// Start adds watches for every configured directory tree and processes
// events until the context is canceled.
func (w *Watcher) Start(ctx context.Context) error {
	for _, root := range w.config.Paths {
		if err := w.addRecursive(root); err != nil {
			return err
		}
	}

	go w.loop(ctx)
	return nil
}

// Close releases the underlying OS watches.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

func (w *Watcher) addRecursive(root string) error {
	return filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if w.ignored(root, p) {
			return filepath.SkipDir
		}
		return w.fsw.Add(p)
	})
}

func (w *Watcher) loop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handle(event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warn("watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	for _, root := range w.config.Paths {
		if within(root, event.Name) && w.ignored(root, event.Name) {
			return
		}
	}

	// New directories need their own watches; fsnotify is not recursive.
	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			_ = w.addRecursive(event.Name)
		}
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	w.pending[event.Name] = Change{
		Path:    event.Name,
		Removed: event.Op.Has(fsnotify.Remove) || event.Op.Has(fsnotify.Rename),
	}

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.config.Debounce, w.flush)
}

func (w *Watcher) flush() {
	w.mu.Lock()
	changes := make([]Change, 0, len(w.pending))
	for _, c := range w.pending {
		changes = append(changes, c)
	}
	w.pending = make(map[string]Change)
	w.mu.Unlock()

	if len(changes) > 0 && w.onChange != nil {
		w.onChange(changes)
	}
}

func (w *Watcher) ignored(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return false
	}
	rel = filepath.ToSlash(rel)
	for _, pattern := range w.config.Ignore {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func within(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}
