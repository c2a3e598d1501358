package daemon

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"git.home.luguber.info/inful/jbuild/internal/foundation/errors"
	"git.home.luguber.info/inful/jbuild/internal/logfields"
)

// Watcher reports changes to a set of files. Bursts of events within the
// debounce window are coalesced into one notification carrying every
// changed path.
type Watcher struct {
	watcher  *fsnotify.Watcher
	debounce time.Duration

	mu    sync.Mutex
	files map[string]struct{}
	dirs  map[string]struct{}
}

// NewWatcher creates a watcher with the given debounce window.
func NewWatcher(debounce time.Duration) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, errors.DaemonError("failed to create file watcher").WithCause(err).Build()
	}
	return &Watcher{
		watcher:  w,
		debounce: debounce,
		files:    map[string]struct{}{},
		dirs:     map[string]struct{}{},
	}, nil
}

// Set replaces the watched files. The parent directories are watched so
// editors that replace files by rename are still seen.
func (w *Watcher) Set(paths []string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	files := make(map[string]struct{}, len(paths))
	dirs := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return errors.FileSystemError("cannot resolve watched path").WithContext("path", p).WithCause(err).Build()
		}
		files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for d := range dirs {
		if _, ok := w.dirs[d]; ok {
			continue
		}
		if err := w.watcher.Add(d); err != nil {
			return errors.DaemonError("failed to watch directory").WithContext("dir", d).WithCause(err).Build()
		}
	}
	for d := range w.dirs {
		if _, ok := dirs[d]; !ok {
			_ = w.watcher.Remove(d)
		}
	}
	w.files, w.dirs = files, dirs
	return nil
}

func (w *Watcher) watched(name string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	_, ok := w.files[name]
	return ok
}

// Run delivers changes to onChange until ctx is done. onChange runs on the
// Run goroutine, so changes arriving during a callback are batched into the
// next one.
func (w *Watcher) Run(ctx context.Context, onChange func(ctx context.Context, changed []string)) error {
	var (
		timer   *time.Timer
		fire    <-chan time.Time
		pending = map[string]struct{}{}
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			name, err := filepath.Abs(ev.Name)
			if err != nil || !w.watched(name) {
				continue
			}
			slog.Debug("Watched file changed", logfields.Path(name), slog.String("op", ev.Op.String()))
			pending[name] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			changed := make([]string, 0, len(pending))
			for p := range pending {
				changed = append(changed, p)
			}
			clear(pending)
			onChange(ctx, changed)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			slog.Error("File watcher error", logfields.Error(err))
		}
	}
}

// Close releases the watcher.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}
