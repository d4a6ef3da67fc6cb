// Package watcher turns a drop folder into a file-selection widget: files that appear in the
// folder are handed to a callback once they stop changing.
package watcher

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/Carmen-Shannon/oxy-ghost/engine/logger"
)

var errWatcherClosed = errors.New("watcher: closed")

type watcher struct {
	mu sync.Mutex

	dir    string
	settle time.Duration
	filter func(name string) bool
	onFile func(path string)

	fs      *fsnotify.Watcher
	pending map[string]*time.Timer
	done    chan struct{}
	closed  bool
	wg      sync.WaitGroup
}

// Watcher watches one directory and reports files that were created or rewritten in it.
type Watcher interface {
	// Start begins watching. It returns once the directory is being observed.
	//
	// Returns:
	//   - error: error if the directory cannot be watched or the watcher is closed
	Start() error

	// Dir returns the watched directory.
	//
	// Returns:
	//   - string: the absolute directory path
	Dir() string

	// Close stops watching and cancels pending notifications. Safe to call more than once.
	//
	// Returns:
	//   - error: error if the underlying watcher fails to close
	Close() error
}

var _ Watcher = &watcher{}

// NewWatcher creates a Watcher for dir. onFile receives the full path of every file that
// passes the filter, once no event has touched it for the settle interval.
//
// Parameters:
//   - dir: the directory to watch; created if missing
//   - onFile: receives settled file paths on the watcher goroutine
//   - options: functional options to configure the watcher
//
// Returns:
//   - Watcher: the watcher
//   - error: error if the directory cannot be created
func NewWatcher(dir string, onFile func(path string), options ...WatcherBuilderOption) (Watcher, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create drop folder %s: %w", abs, err)
	}
	w := &watcher{
		dir:     abs,
		settle:  250 * time.Millisecond,
		onFile:  onFile,
		pending: make(map[string]*time.Timer),
		done:    make(chan struct{}),
	}
	for _, opt := range options {
		opt(w)
	}
	return w, nil
}

func (w *watcher) Dir() string {
	return w.dir
}

func (w *watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return errWatcherClosed
	}
	if w.fs != nil {
		return nil
	}

	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := fs.Add(w.dir); err != nil {
		fs.Close()
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.fs = fs

	w.wg.Add(1)
	go w.loop(fs)
	logger.Log.WithField("dir", w.dir).Info("watching drop folder")
	return nil
}

func (w *watcher) loop(fs *fsnotify.Watcher) {
	defer w.wg.Done()
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-fs.Events:
			if !ok {
				return
			}
			if event.Has(fsnotify.Create) || event.Has(fsnotify.Write) || event.Has(fsnotify.Rename) {
				w.touch(event.Name)
			}
		case err, ok := <-fs.Errors:
			if !ok {
				return
			}
			logger.Log.WithError(err).WithField("dir", w.dir).Warn("drop folder watch error")
		}
	}
}

// touch restarts the settle timer of a path.
func (w *watcher) touch(path string) {
	base := filepath.Base(path)
	if strings.HasPrefix(base, ".") {
		return
	}
	if w.filter != nil && !w.filter(base) {
		logger.Log.WithFields(logrus.Fields{"file": base, "dir": w.dir}).Debug("ignoring dropped file")
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return
	}
	if t, ok := w.pending[path]; ok {
		t.Reset(w.settle)
		return
	}
	w.pending[path] = time.AfterFunc(w.settle, func() { w.fire(path) })
}

func (w *watcher) fire(path string) {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	delete(w.pending, path)
	w.mu.Unlock()

	info, err := os.Stat(path)
	if err != nil || !info.Mode().IsRegular() {
		return
	}
	logger.Log.WithField("file", path).Info("file dropped")
	if w.onFile != nil {
		w.onFile(path)
	}
}

func (w *watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	for p, t := range w.pending {
		t.Stop()
		delete(w.pending, p)
	}
	close(w.done)
	fs := w.fs
	w.mu.Unlock()

	if fs == nil {
		return nil
	}
	err := fs.Close()
	w.wg.Wait()
	return err
}
