package yay

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/signadot/yay/opener"
)

const DefaultDebounce = 100 * time.Millisecond

// Watcher calls back when any of a set of files changes. It watches the
// directories holding the files so that editors replacing a file by
// renaming are seen.
type Watcher struct {
	watcher  *fsnotify.Watcher
	logger   *slog.Logger
	debounce time.Duration

	mu    sync.Mutex
	files map[string]bool
	dirs  map[string]bool
}

// NewWatcher returns a Watcher. A nil logger uses slog.Default().
func NewWatcher(logger *slog.Logger, debounce time.Duration) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	return &Watcher{
		watcher:  w,
		logger:   logger,
		debounce: debounce,
		files:    map[string]bool{},
		dirs:     map[string]bool{},
	}, nil
}

// Add watches files. URLs are skipped, directories which cannot be
// watched are logged.
func (w *Watcher) Add(files ...string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	for _, f := range files {
		if opener.IsURL(f) {
			continue
		}
		abs, err := filepath.Abs(f)
		if err != nil {
			return err
		}
		w.files[abs] = true
		dir := filepath.Dir(abs)
		if w.dirs[dir] {
			continue
		}
		if err := w.watcher.Add(dir); err != nil {
			w.logger.Warn("cannot watch", "dir", dir, "error", err)
			continue
		}
		w.dirs[dir] = true
		w.logger.Debug("watching", "dir", dir)
	}
	return nil
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if ev.Has(fsnotify.Chmod) && !ev.Has(fsnotify.Write) {
		return false
	}
	abs, err := filepath.Abs(ev.Name)
	if err != nil {
		return false
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.files[abs]
}

// Watch calls onChange once the watched files have been quiet for the
// debounce interval after a change. It returns when ctx is done, or
// with the error of onChange if that is not nil.
func (w *Watcher) Watch(ctx context.Context, onChange func() error) error {
	var quiet <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return errors.New("watcher events channel closed")
			}
			if !w.relevant(ev) {
				continue
			}
			w.logger.Debug("change", "file", ev.Name, "op", ev.Op.String())
			quiet = time.After(w.debounce)
		case <-quiet:
			quiet = nil
			if err := onChange(); err != nil {
				return err
			}
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return errors.New("watcher errors channel closed")
			}
			w.logger.Error("watch", "error", err)
		}
	}
}

func (w *Watcher) Close() error {
	return w.watcher.Close()
}
