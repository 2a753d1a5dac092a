// Copyright © 2026 Groups.io, Inc.
// SPDX-License-Identifier: Apache-2.0

package clonepath

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
)

const defaultDebounce = 100 * time.Millisecond

// Watcher refreshes a Store whenever its backing file is rewritten.
// The parent directory is watched so that editors and scripts that
// replace the file via rename are still seen.
type Watcher struct {
	mu       sync.Mutex
	store    *Store
	fs       *fsnotify.Watcher
	debounce time.Duration
	timer    *time.Timer
	closed   bool
	closeCh  chan struct{}
	wg       sync.WaitGroup
}

// NewWatcher starts watching the store's backing file.
func NewWatcher(store *Store, debounce time.Duration) (*Watcher, error) {
	if debounce <= 0 {
		debounce = defaultDebounce
	}

	dir := filepath.Dir(store.File())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("create clone store: %w", err)
	}

	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}
	if err := fsWatcher.Add(dir); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	w := &Watcher{
		store:    store,
		fs:       fsWatcher,
		debounce: debounce,
		closeCh:  make(chan struct{}),
	}

	w.wg.Add(1)
	go w.processEvents()

	return w, nil
}

// Close stops the watcher.
func (w *Watcher) Close() error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return nil
	}
	w.closed = true
	close(w.closeCh)
	if w.timer != nil {
		w.timer.Stop()
	}
	w.mu.Unlock()

	err := w.fs.Close()
	w.wg.Wait()
	return err
}

func (w *Watcher) processEvents() {
	defer w.wg.Done()

	target := filepath.Clean(w.store.File())
	for {
		select {
		case <-w.closeCh:
			return

		case event, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			w.trigger()

		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.Warn().Err(err).Msg("clone path watcher")
		}
	}
}

// trigger schedules a refresh, resetting any pending one.
func (w *Watcher) trigger() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return
	}
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.store.Refresh()
	})
}
