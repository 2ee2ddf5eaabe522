package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/shivamgupta214/outfox-health-assessment/pkg/log"
)

// DefaultSettle is how long a file must stay unchanged before it is handed
// off.
const DefaultSettle = 500 * time.Millisecond

// Callback receives the path of a CSV file that finished arriving.
type Callback func(ctx context.Context, path string)

// DropWatcher monitors a drop directory for new CSV files. Each file is
// reported once per burst of writes, after it has settled.
type DropWatcher struct {
	dir      string
	settle   time.Duration
	callback Callback
	watcher  *fsnotify.Watcher

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// NewDropWatcher starts watching dir.
func NewDropWatcher(dir string, settle time.Duration, callback Callback) (*DropWatcher, error) {
	if settle <= 0 {
		settle = DefaultSettle
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("failed to watch directory %s: %w", dir, err)
	}

	return &DropWatcher{
		dir:      dir,
		settle:   settle,
		callback: callback,
		watcher:  watcher,
		pending:  make(map[string]*time.Timer),
	}, nil
}

// Run processes events until ctx is cancelled.
func (w *DropWatcher) Run(ctx context.Context) error {
	l := log.Ctx(ctx)
	l.Info().Str("dir", w.dir).Msg("watching drop directory")

	defer w.stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !isCSV(event.Name) || event.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			w.schedule(ctx, event.Name)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			l.Warn().Err(err).Str("dir", w.dir).Msg("watcher error")
		}
	}
}

// schedule (re)arms the settle timer of path.
func (w *DropWatcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok {
		t.Reset(w.settle)
		return
	}
	w.pending[path] = time.AfterFunc(w.settle, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		if ctx.Err() != nil {
			return
		}
		w.callback(ctx, path)
	})
}

func (w *DropWatcher) stop() {
	w.watcher.Close()

	w.mu.Lock()
	defer w.mu.Unlock()
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
}

func isCSV(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".csv")
}
