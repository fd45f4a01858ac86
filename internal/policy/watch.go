package policy

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"

	"github.com/redactable/redactable/internal/metrics"
)

// DefaultDebounce coalesces the burst of events editors emit on save.
const DefaultDebounce = 100 * time.Millisecond

// Watcher keeps the latest valid version of a policy file. A reload that
// fails to load or validate is logged and the previous policy stays active.
type Watcher struct {
	path     string
	current  atomic.Pointer[Policy]
	debounce time.Duration
	logger   *log.Logger
	metrics  *metrics.Collector
	onChange func(*Policy)
}

// WatcherOption configures a Watcher.
type WatcherOption func(*Watcher)

func WithDebounce(d time.Duration) WatcherOption { return func(w *Watcher) { w.debounce = d } }

func WithWatchLogger(l *log.Logger) WatcherOption { return func(w *Watcher) { w.logger = l } }

func WithWatchMetrics(c *metrics.Collector) WatcherOption { return func(w *Watcher) { w.metrics = c } }

// OnChange registers a callback run after each successful reload.
func OnChange(fn func(*Policy)) WatcherOption { return func(w *Watcher) { w.onChange = fn } }

// NewWatcher loads path once; the initial load must succeed.
func NewWatcher(path string, opts ...WatcherOption) (*Watcher, error) {
	w := &Watcher{path: filepath.Clean(path), debounce: DefaultDebounce}
	for _, opt := range opts {
		opt(w)
	}
	if w.logger == nil {
		w.logger = log.New(io.Discard)
	}
	p, err := Load(w.path)
	if err != nil {
		return nil, err
	}
	w.current.Store(p)
	return w, nil
}

// Current returns the active policy.
func (w *Watcher) Current() *Policy { return w.current.Load() }

// Reload re-reads the file now. On error the active policy is unchanged.
func (w *Watcher) Reload() error {
	p, err := Load(w.path)
	w.metrics.PolicyReloaded(err == nil)
	if err != nil {
		w.logger.Error("policy reload failed; keeping previous version", "path", w.path, "err", err)
		return err
	}
	w.current.Store(p)
	w.logger.Info("policy reloaded", "path", w.path, "name", p.Name, "rules", len(p.Rules))
	if w.onChange != nil {
		w.onChange(p)
	}
	return nil
}

// Run watches the policy's directory until ctx is done. The directory is
// watched rather than the file so atomic rename-on-save is seen.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create fsnotify watcher: %w", err)
	}
	defer fw.Close()
	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.path), err)
	}
	w.logger.Debug("watching policy", "path", w.path, "debounce", w.debounce)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-fw.Events:
			if !ok {
				return fmt.Errorf("fsnotify events channel closed")
			}
			if filepath.Clean(ev.Name) != w.path || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			_ = w.Reload()
		case err, ok := <-fw.Errors:
			if !ok {
				return fmt.Errorf("fsnotify errors channel closed")
			}
			w.logger.Warn("policy watcher error", "err", err)
		}
	}
}
