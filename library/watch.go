package library

import (
	"path/filepath"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads a library file into a store whenever the file changes.
type Watcher struct {
	path    string
	store   *MemoryStore
	logger  *zap.Logger
	watcher *fsnotify.Watcher
	bounce  func(func())

	reloads chan int
	done    chan struct{}

	// mu serializes reloads with Stop
	mu      sync.Mutex
	stopped bool
}

// Watch follows path. Bursts of writes within delay cause one reload.
func Watch(path string, store *MemoryStore, delay time.Duration, logger *zap.Logger) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		fw.Close()
		return nil, err
	}
	// the directory, so files replaced by rename are still seen
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, err
	}

	w := &Watcher{
		path:    abs,
		store:   store,
		logger:  logger,
		watcher: fw,
		bounce:  debounce.New(delay),
		reloads: make(chan int, 1),
		done:    make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

// Reloads receives the fragment count after each successful reload. Slow
// readers miss intermediate counts.
func (w *Watcher) Reloads() <-chan int {
	return w.reloads
}

// Stop ends watching. A reload still pending in the debouncer is dropped, and
// one already running finishes before Stop returns.
func (w *Watcher) Stop() {
	w.mu.Lock()
	w.stopped = true
	w.mu.Unlock()
	w.watcher.Close()
	<-w.done
}

func (w *Watcher) loop() {
	defer close(w.done)
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				w.bounce(w.reload)
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("library watch error", zap.Error(err))
		}
	}
}

func (w *Watcher) reload() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	s, err := Load(w.path)
	if err != nil {
		w.logger.Warn("library reload failed", zap.String("path", w.path), zap.Error(err))
		return
	}
	w.store.Replace(s)
	n := w.store.Len()
	w.logger.Info("library reloaded", zap.String("path", w.path), zap.Int("fragments", n))
	select {
	case w.reloads <- n:
	default:
	}
}
