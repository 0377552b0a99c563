package resolver

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher monitors the module search roots and rebuilds the resolver when
// unit files appear, change or disappear. Each rebuild produces a fresh
// immutable Resolver snapshot; readers always see either the old or the new
// registry, never a half-built one.
type Watcher struct {
	mu       sync.RWMutex
	watcher  *fsnotify.Watcher
	roots    []string
	current  *Resolver
	logger   *zap.Logger
	debounce time.Duration
	rebuilds int

	running bool
	stopped bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// ErrWatcherStopped is returned when Start is called on a stopped watcher.
// A watcher is single-use; build a new one to resume watching.
var ErrWatcherStopped = errors.New("watcher already stopped")

// NewWatcher creates a watcher over the given search roots with an initial
// resolver snapshot built up front.
func NewWatcher(roots []string, logger *zap.Logger) (*Watcher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	initial, err := New(roots, logger)
	if err != nil {
		return nil, err
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher:  fsw,
		roots:    roots,
		current:  initial,
		logger:   logger,
		debounce: 500 * time.Millisecond,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Resolver returns the current registry snapshot.
func (w *Watcher) Resolver() *Resolver {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// Rebuilds returns how many times the registry has been rebuilt.
func (w *Watcher) Rebuilds() int {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.rebuilds
}

// Start begins watching the search roots. Non-blocking; the watch loop runs
// in a goroutine until Stop is called or ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return ErrWatcherStopped
	}
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	for _, root := range w.roots {
		if err := w.watcher.Add(root); err != nil {
			// Root may not exist yet; the resolver already treats missing
			// roots as empty.
			w.logger.Warn("watch root unavailable",
				zap.String("root", root), zap.Error(err))
		}
	}

	go w.run(ctx)
	return nil
}

// Stop stops the watcher and waits for the loop to exit.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if w.stopped || !w.running {
		w.stopped = true
		w.mu.Unlock()
		_ = w.watcher.Close()
		return
	}
	w.running = false
	w.stopped = true
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh
	_ = w.watcher.Close()
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	var timer *time.Timer
	var timerCh <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
				continue
			}
			// Debounce bursts of events into one rebuild.
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				timerCh = timer.C
			} else {
				timer.Reset(w.debounce)
			}
		case <-timerCh:
			w.rebuild()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) rebuild() {
	fresh, err := New(w.roots, w.logger)
	if err != nil {
		w.logger.Warn("registry rebuild failed", zap.Error(err))
		return
	}
	w.mu.Lock()
	w.current = fresh
	w.rebuilds++
	w.mu.Unlock()
	w.logger.Debug("registry rebuilt", zap.Int("modules", fresh.Len()))
}
