// Package watch reruns discovery when the watched directories change.
// Filesystem events arrive in bursts (editors write temp files, batch
// copies touch many documents), so the watcher debounces: a change
// notification fires only after the directories have been quiet for the
// configured interval.
package watch

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// ErrWatcherFailed indicates the filesystem watcher failed to initialize.
var ErrWatcherFailed = errors.New("failed to initialize filesystem watcher")

// relevantOps are the event kinds that can change the document corpus.
const relevantOps = fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename

// Watcher watches a set of directories and coalesces event bursts into
// single change notifications.
type Watcher struct {
	dirs     []string
	debounce time.Duration
	watcher  *fsnotify.Watcher
	changed  chan struct{}
	stop     chan struct{}
	logger   *zap.Logger
}

// NewWatcher creates a watcher over the given directories. logger may
// be nil.
func NewWatcher(dirs []string, debounce time.Duration, logger *zap.Logger) (*Watcher, error) {
	if len(dirs) == 0 {
		return nil, fmt.Errorf("at least one directory is required")
	}
	if debounce <= 0 {
		return nil, fmt.Errorf("debounce must be positive")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWatcherFailed, err)
	}

	return &Watcher{
		dirs:     dirs,
		debounce: debounce,
		watcher:  fsw,
		changed:  make(chan struct{}, 1),
		stop:     make(chan struct{}),
		logger:   logger,
	}, nil
}

// Start begins watching. Runs a background goroutine until Stop or ctx
// cancellation.
func (w *Watcher) Start(ctx context.Context) error {
	for _, dir := range w.dirs {
		if err := w.watcher.Add(dir); err != nil {
			return fmt.Errorf("watching %s: %w", dir, err)
		}
		w.logger.Info("watching directory", zap.String("dir", dir))
	}

	go w.processEvents(ctx)

	return nil
}

// Changed returns the channel that receives one signal per quiet-period
// boundary. The channel has capacity one; a consumer that is still
// rerunning discovery when the next burst settles sees a single pending
// signal, not a queue.
func (w *Watcher) Changed() <-chan struct{} {
	return w.changed
}

// Stop stops the watcher and cleans up resources.
func (w *Watcher) Stop() {
	select {
	case <-w.stop:
		// Already stopped
	default:
		close(w.stop)
		_ = w.watcher.Close()
	}
}

func (w *Watcher) processEvents(ctx context.Context) {
	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	pending := false

	for {
		select {
		case <-w.stop:
			return
		case <-ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Op&relevantOps == 0 {
				continue
			}

			w.logger.Debug("filesystem event",
				zap.String("path", event.Name),
				zap.String("op", event.Op.String()),
			)

			if pending && !timer.Stop() {
				select {
				case <-timer.C:
				default:
				}
			}
			timer.Reset(w.debounce)
			pending = true

		case <-timer.C:
			pending = false
			select {
			case w.changed <- struct{}{}:
			default:
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", zap.Error(err))
		}
	}
}
