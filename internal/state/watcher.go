package state

import (
	"context"
	"log/slog"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/pulse/internal/storage"
)

// watchDebounce coalesces the tmp-write/rename burst a single atomic
// flush produces into one reload per slice.
const watchDebounce = 150 * time.Millisecond

// Watch starts an fsnotify watcher on the slice store root and reloads
// each slice whose backing file another process rewrites, until ctx is
// cancelled. The external writer wins: the on-disk value replaces the
// in-memory one. cb (if non-nil) is called with the slice key after
// each reload.
func Watch(ctx context.Context, store *Store, fs *storage.FS, logger *slog.Logger, cb func(key string)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	if err := w.Add(fs.Root()); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("root", fs.Root()))

	// One debounce timer per slice key; firing pushes the key here.
	pending := make(map[string]*time.Timer)
	due := make(chan string, len(Keys()))

	defer func() {
		for _, t := range pending {
			t.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			logger.Info("watcher: stopped")
			return nil

		case key := <-due:
			delete(pending, key)
			store.Reload(key)
			logger.Debug("watcher: reloaded", slog.String("slice", key))
			if cb != nil {
				cb(key)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write) == 0 {
				continue
			}
			key := storage.KeyFromPath(ev.Name)
			if key == "" {
				continue
			}
			if t, exists := pending[key]; exists {
				t.Reset(watchDebounce)
				continue
			}
			k := key
			pending[key] = time.AfterFunc(watchDebounce, func() {
				select {
				case due <- k:
				case <-ctx.Done():
				}
			})

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
