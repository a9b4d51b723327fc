package scheduler

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/MrSnakeDoc/utmgen/internal/logger"
)

// DefaultWatchDebounce groups the burst of events an editor save produces
const DefaultWatchDebounce = 500 * time.Millisecond

// CatalogWatcher requests a catalog reload when the catalog file changes on disk.
//
// The parent directory is watched rather than the file itself, so atomic
// replace-by-rename saves and ConfigMap symlink swaps are seen too.
type CatalogWatcher struct {
	watcher  *fsnotify.Watcher
	file     string
	trigger  chan<- struct{}
	logger   logger.Logger
	debounce time.Duration
	stopCh   chan struct{}
	doneCh   chan struct{}
	started  bool
	stopOnce sync.Once
}

// NewCatalogWatcher creates a watcher feeding the reloader's manual trigger
func NewCatalogWatcher(catalogFile string, trigger chan<- struct{}, log logger.Logger) (*CatalogWatcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	return &CatalogWatcher{
		watcher:  w,
		file:     filepath.Clean(catalogFile),
		trigger:  trigger,
		logger:   log,
		debounce: DefaultWatchDebounce,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins watching; it does not block
func (cw *CatalogWatcher) Start(ctx context.Context) error {
	dir := filepath.Dir(cw.file)
	if err := cw.watcher.Add(dir); err != nil {
		_ = cw.watcher.Close()
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	cw.logger.Info("watching catalog file for changes", logger.String("file", cw.file))

	cw.started = true
	go cw.run(ctx)
	return nil
}

// Stop stops the watcher and waits for its goroutine to exit.
// It is safe to call when Start failed or was never called, and more than once.
func (cw *CatalogWatcher) Stop() {
	cw.stopOnce.Do(func() {
		close(cw.stopCh)
		if cw.started {
			<-cw.doneCh
		}
		if err := cw.watcher.Close(); err != nil {
			cw.logger.Warn("failed to close file watcher", logger.Error(err))
		}
	})
}

func (cw *CatalogWatcher) run(ctx context.Context) {
	defer close(cw.doneCh)

	// Fires once per burst of events, after the file has settled.
	timer := time.NewTimer(cw.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case ev, ok := <-cw.watcher.Events:
			if !ok {
				return
			}
			if !cw.relevant(ev) {
				continue
			}
			cw.logger.Debug("catalog file event",
				logger.String("file", ev.Name),
				logger.String("op", ev.Op.String()))
			timer.Reset(cw.debounce)

		case err, ok := <-cw.watcher.Errors:
			if !ok {
				return
			}
			cw.logger.Warn("file watcher error", logger.Error(err))

		case <-timer.C:
			select {
			case cw.trigger <- struct{}{}:
				cw.logger.Info("catalog file changed, reload requested")
			default:
				// a reload is already pending
			}

		case <-cw.stopCh:
			return
		case <-ctx.Done():
			return
		}
	}
}

// relevant reports whether ev may have changed the catalog content.
func (cw *CatalogWatcher) relevant(ev fsnotify.Event) bool {
	if ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return false
	}
	// Kubernetes ConfigMaps swap a "..data" symlink instead of touching the file.
	name := filepath.Clean(ev.Name)
	return name == cw.file || filepath.Base(name) == "..data"
}
