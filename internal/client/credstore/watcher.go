package credstore

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"chatterm/internal/logging"
)

// Watcher turns filesystem changes in the durable state directory into
// ChangeEvents on the Store, so a token written or cleared by another
// process reaches this one's subscribers. OldValue comes from the watcher's
// last-seen snapshot; NewValue is re-read from disk. Subscribers are
// expected to re-read the store themselves rather than act on the payload.
type Watcher struct {
	fsw      *fsnotify.Watcher
	store    *Store
	backend  *FileBackend
	logger   logging.Logger
	snapshot map[string][]byte
}

// watchedKeys limits events to the credential keys; anything else written
// into the state directory is ignored.
var watchedKeys = map[string]struct{}{
	KeyToken: {},
	KeyUser:  {},
}

func NewWatcher(store *Store, backend *FileBackend, logger logging.Logger) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	return &Watcher{
		fsw:      fsw,
		store:    store,
		backend:  backend,
		logger:   logger,
		snapshot: make(map[string][]byte),
	}, nil
}

// Start primes the snapshot from the current directory contents and begins
// delivering events until ctx is done.
func (w *Watcher) Start(ctx context.Context) error {
	for key := range watchedKeys {
		v, err := w.backend.Get(key)
		if err != nil {
			w.logger.Warn(ctx, "snapshot read failed", "key", key, "error", err)
			continue
		}
		w.snapshot[key] = v
	}

	if err := w.fsw.Add(w.backend.Dir()); err != nil {
		return fmt.Errorf("failed to watch state dir: %w", err)
	}

	go w.eventLoop(ctx)
	w.logger.Debug(ctx, "credential watcher started", "dir", w.backend.Dir())
	return nil
}

func (w *Watcher) eventLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			_ = w.fsw.Close()
			return

		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ctx, event)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn(ctx, "watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(ctx context.Context, event fsnotify.Event) {
	key := filepath.Base(event.Name)
	if _, ok := watchedKeys[key]; !ok {
		return
	}
	if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) &&
		!event.Op.Has(fsnotify.Remove) && !event.Op.Has(fsnotify.Rename) {
		return
	}

	newValue, err := w.backend.Get(key)
	if err != nil {
		w.logger.Warn(ctx, "state re-read failed", "key", key, "error", err)
		return
	}

	ev := ChangeEvent{Key: key, OldValue: w.snapshot[key], NewValue: newValue}
	w.snapshot[key] = newValue
	w.store.notifyExternal(ev)
}

// Close stops the underlying fsnotify watcher. Safe to call alongside
// context cancellation.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}
