// Package signals lets another process stop a running review by creating
// a kill file in the run's output directory.
package signals

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ErrKilled is the cancellation cause of a context bound to a Watcher that
// received a kill signal.
var ErrKilled = errors.New("kill signal received")

// KillFile is the name of the signal file.
const KillFile = "kill"

const pollInterval = 500 * time.Millisecond

// Dir returns the signals directory under baseDir.
func Dir(baseDir string) string {
	return filepath.Join(baseDir, ".panel", "signals")
}

// Watcher observes the signals directory. Events come from fsnotify; a
// polling loop covers platforms where the watcher cannot be created.
type Watcher struct {
	dir    string
	logger *slog.Logger

	watcher   *fsnotify.Watcher
	done      chan struct{}
	closeOnce sync.Once

	killed   chan struct{}
	killOnce sync.Once
}

// New creates the signals directory under baseDir, removes any stale kill
// file and starts watching.
func New(baseDir string, logger *slog.Logger) (*Watcher, error) {
	dir := Dir(baseDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	w := &Watcher{
		dir:    dir,
		logger: logger.With("component", "signals"),
		done:   make(chan struct{}),
		killed: make(chan struct{}),
	}
	w.Clear()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.logger.Warn("file watcher unavailable, polling for signals", "error", err)
	} else if err := watcher.Add(dir); err != nil {
		watcher.Close()
		w.logger.Warn("cannot watch signals directory, polling", "dir", dir, "error", err)
	} else {
		w.watcher = watcher
		go w.watchEvents()
	}

	go w.poll()
	return w, nil
}

func (w *Watcher) watchEvents() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) == KillFile && event.Op&(fsnotify.Create|fsnotify.Write) != 0 {
				w.trigger("watcher")
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Debug("signal watcher error", "error", err)
		}
	}
}

func (w *Watcher) poll() {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			if _, err := os.Stat(w.killPath()); err == nil {
				w.trigger("poll")
			}
		}
	}
}

func (w *Watcher) trigger(source string) {
	w.killOnce.Do(func() {
		w.logger.Warn("kill signal received, stopping run", "source", source)
		close(w.killed)
	})
}

func (w *Watcher) killPath() string {
	return filepath.Join(w.dir, KillFile)
}

// Bind returns a context that is cancelled with cause ErrKilled when a kill
// signal arrives.
func (w *Watcher) Bind(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(ctx)
	go func() {
		select {
		case <-w.killed:
			cancel(ErrKilled)
		case <-ctx.Done():
		}
	}()
	return ctx, func() { cancel(context.Canceled) }
}

// SendKill creates the kill file for a run writing to baseDir.
func SendKill(baseDir string) error {
	dir := Dir(baseDir)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, KillFile), []byte(time.Now().Format(time.RFC3339)), 0644)
}

// Clear removes the kill file.
func (w *Watcher) Clear() {
	os.Remove(w.killPath())
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() {
	w.closeOnce.Do(func() {
		close(w.done)
		if w.watcher != nil {
			w.watcher.Close()
		}
	})
}
