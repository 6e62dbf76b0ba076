// Package watch reloads the reference catalog when its dataset directory
// changes.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ehamchunbokulmeonge/pillmate-server/internal/core/domain"
	"github.com/ehamchunbokulmeonge/pillmate-server/internal/logger"
)

// DefaultDebounce is how long the watcher waits for a burst of file events
// to settle before reloading.
const DefaultDebounce = 500 * time.Millisecond

// Reloader is the part of the catalog the watcher drives.
type Reloader interface {
	Reload(ctx context.Context) domain.LoadResult
}

// CatalogWatcher watches a directory for *.json changes.
type CatalogWatcher struct {
	dir      string
	target   Reloader
	debounce time.Duration

	// onReload is called after every reload.
	onReload func(domain.LoadResult)
}

// NewCatalogWatcher creates a watcher for dir that reloads target.
func NewCatalogWatcher(dir string, target Reloader) *CatalogWatcher {
	return &CatalogWatcher{dir: dir, target: target, debounce: DefaultDebounce}
}

// SetDebounce overrides the settle delay.
func (w *CatalogWatcher) SetDebounce(d time.Duration) {
	if d > 0 {
		w.debounce = d
	}
}

// OnReload registers fn to be called with the result of every reload.
func (w *CatalogWatcher) OnReload(fn func(domain.LoadResult)) {
	w.onReload = fn
}

// Run blocks until ctx is cancelled. It returns an error only if the
// directory cannot be watched.
func (w *CatalogWatcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.dir); err != nil {
		return fmt.Errorf("%w: watch %s: %w", domain.ErrDataUnavailable, w.dir, err)
	}
	logger.Debug("Watching %s for catalog changes", w.dir)

	// Stopped timers never deliver stale ticks, so Reset needs no drain.
	timer := time.NewTimer(w.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if !Relevant(event) {
				continue
			}
			logger.Debug("catalog change: %s %s", event.Op, filepath.Base(event.Name))
			timer.Reset(w.debounce)

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("catalog watcher: %v", err)

		case <-timer.C:
			res := w.target.Reload(ctx)
			if res.Reason != "" {
				logger.Info("catalog reload kept previous data: %s", res.Reason)
			} else {
				logger.Info("catalog reloaded: %d records", res.Records)
			}
			if w.onReload != nil {
				w.onReload(res)
			}
		}
	}
}

// Relevant reports whether an event touches a dataset file. Hidden files
// and chmod-only events are ignored.
func Relevant(event fsnotify.Event) bool {
	base := filepath.Base(event.Name)
	if strings.HasPrefix(base, ".") || !strings.EqualFold(filepath.Ext(base), ".json") {
		return false
	}
	return event.Has(fsnotify.Create) || event.Has(fsnotify.Write) ||
		event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename)
}
