package ingest

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/rubiojr/hackfinder/pkg/log"
)

// DefaultSettle is how long a dump must stay untouched before it is
// imported.
const DefaultSettle = 2 * time.Second

// Watcher imports dumps dropped into a directory.
type Watcher struct {
	dir      string
	importer *Importer
	settle   time.Duration
	logger   *log.Logger

	mu      sync.Mutex
	pending map[string]time.Time
	// onImport, when set, is called after every import attempt.
	onImport func(path string, res Result, err error)
}

// NewWatcher returns a watcher over dir. settle <= 0 means DefaultSettle.
func NewWatcher(dir string, importer *Importer, settle time.Duration) *Watcher {
	if settle <= 0 {
		settle = DefaultSettle
	}
	return &Watcher{
		dir:      dir,
		importer: importer,
		settle:   settle,
		logger:   log.ForService("ingest"),
		pending:  make(map[string]time.Time),
	}
}

// Run imports the dumps already present in the directory, then watches
// it until ctx is cancelled. A file is imported once it has seen no
// writes for the settle period.
func (w *Watcher) Run(ctx context.Context) error {
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		return fmt.Errorf("creating watch dir: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer func() {
		if err := watcher.Close(); err != nil {
			w.logger.Warnf("closing watcher: %v", err)
		}
	}()

	if err := watcher.Add(w.dir); err != nil {
		return fmt.Errorf("watching %s: %w", w.dir, err)
	}
	w.logger.Infof("watching %s for new dumps", w.dir)

	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("reading watch dir: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			w.touch(filepath.Join(w.dir, e.Name()), time.Time{})
		}
	}

	ticker := time.NewTicker(w.settle / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) || event.Has(fsnotify.Rename) {
				w.logger.Debugf("%s: %s", event.Op.String(), event.Name)
				w.touch(event.Name, time.Now())
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			w.logger.Warnf("watcher error: %v", err)
		case now := <-ticker.C:
			for _, path := range w.due(now) {
				w.importOne(ctx, path)
			}
		}
	}
}

func (w *Watcher) touch(path string, at time.Time) {
	if !Supported(path) {
		return
	}
	w.mu.Lock()
	w.pending[path] = at
	w.mu.Unlock()
}

// due removes and returns the pending files last touched at least one
// settle period before now.
func (w *Watcher) due(now time.Time) []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	var ready []string
	for path, at := range w.pending {
		if now.Sub(at) >= w.settle {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	return ready
}

func (w *Watcher) importOne(ctx context.Context, path string) {
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		// Renamed away or removed before it settled.
		return
	}
	res, err := w.importer.ImportFile(ctx, path)
	if err != nil {
		w.logger.Errorf("importing %s: %v", path, err)
	}
	if w.onImport != nil {
		w.onImport(path, res, err)
	}
}
