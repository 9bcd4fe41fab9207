package corpus

import (
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// debounceInterval absorbs the multiple write events editors and the
// curation pipeline emit per save.
const debounceInterval = 500 * time.Millisecond

// Watcher monitors the dataset file on disk and notifies when the curation
// pipeline (or an operator) rewrites it. The engine uses the notification to
// mark the index stale or to trigger an automatic reindex.
type Watcher struct {
	fw     *fsnotify.Watcher
	path   string
	done   chan struct{}
	once   sync.Once
	logger *slog.Logger
}

// NewWatcher creates a watcher for the dataset file at path.
// The containing directory is watched, not the file itself, so atomic
// rename-based rewrites are observed too.
func NewWatcher(path string, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		fw.Close()
		return nil, err
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, err
	}

	return &Watcher{
		fw:     fw,
		path:   abs,
		done:   make(chan struct{}),
		logger: logger.With("component", "corpus-watcher"),
	}, nil
}

// Watch blocks, invoking onChange after each debounced rewrite of the
// dataset file, until Close is called.
func (w *Watcher) Watch(onChange func()) {
	var timer *time.Timer
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.logger.Debug("dataset change observed", "op", event.Op.String())
			if timer != nil {
				timer.Stop()
			}
			timer = time.AfterFunc(debounceInterval, onChange)
		case err, ok := <-w.fw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", "err", err)
		}
	}
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.once.Do(func() { close(w.done) })
	return w.fw.Close()
}
