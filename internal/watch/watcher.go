package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"

	"github.com/AssoDIT/DaVinici-Resolve-Stills-Markers/pkg/metadata"
)

// DefaultDebounce is how long a file must stay quiet before it is reloaded.
const DefaultDebounce = 250 * time.Millisecond

// Option configures a Watcher.
type Option func(*Watcher)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger *zap.Logger) Option {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// WithDebounce overrides DefaultDebounce.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// Watcher keeps a Holder in sync with a timeline metadata file. The parent
// directory is watched, so editors that save by rename are picked up too.
type Watcher struct {
	path     string
	holder   *Holder
	logger   *zap.Logger
	debounce time.Duration

	mu      sync.Mutex
	pending time.Time
}

// New returns a watcher for path publishing into holder.
func New(path string, holder *Holder, opts ...Option) *Watcher {
	w := &Watcher{
		path:     filepath.Clean(path),
		holder:   holder,
		logger:   zap.NewNop(),
		debounce: DefaultDebounce,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(w)
		}
	}
	return w
}

// Reload reads the file once and publishes it.
func (w *Watcher) Reload() error {
	tl, err := metadata.ReadTimeline(w.path)
	if err != nil {
		return err
	}
	w.holder.Store(Snapshot{Path: w.path, Timeline: tl, LoadedAt: time.Now()})
	w.logger.Info("preview metadata loaded",
		zap.String("path", w.path),
		zap.Int("markers", len(tl.MarkerIDs())),
	)
	return nil
}

// Run watches until ctx is cancelled. A failed reload keeps the previous
// snapshot and is only logged.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("watch: create watcher: %w", err)
	}
	defer fw.Close()

	dir := filepath.Dir(w.path)
	if err := fw.Add(dir); err != nil {
		return fmt.Errorf("watch: add %s: %w", dir, err)
	}
	w.logger.Debug("watching preview metadata", zap.String("dir", dir), zap.String("file", filepath.Base(w.path)))

	tick := w.debounce / 2
	if tick <= 0 {
		tick = w.debounce
	}
	ticker := time.NewTicker(tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return errors.New("watch: event channel closed")
			}
			w.handleEvent(event)

		case err, ok := <-fw.Errors:
			if !ok {
				return errors.New("watch: error channel closed")
			}
			w.logger.Warn("watcher error", zap.Error(err))

		case <-ticker.C:
			w.flush()
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Rename) {
		return
	}
	w.logger.Debug("preview metadata changed", zap.String("op", event.Op.String()))

	w.mu.Lock()
	w.pending = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) flush() {
	w.mu.Lock()
	due := !w.pending.IsZero() && time.Since(w.pending) >= w.debounce
	if due {
		w.pending = time.Time{}
	}
	w.mu.Unlock()

	if !due {
		return
	}
	if err := w.Reload(); err != nil {
		w.logger.Warn("preview metadata reload failed", zap.String("path", w.path), zap.Error(err))
	}
}
