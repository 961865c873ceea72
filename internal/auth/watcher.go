// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package auth

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/jeranaias/backoffice-tui/internal/events"
	"github.com/jeranaias/backoffice-tui/internal/logging"
)

// DefaultDebounce coalesces the bursts of events an atomic rename produces.
const DefaultDebounce = 100 * time.Millisecond

// Publisher is the part of the event bus the watcher uses.
type Publisher interface {
	Publish(evt events.Event)
}

// Watcher reloads a Store when its file changes on disk.
// The parent directory is watched because atomic writes replace the file.
type Watcher struct {
	store    *Store
	bus      Publisher
	log      logging.Logger
	debounce time.Duration
	watcher  *fsnotify.Watcher
}

// NewWatcher creates a watcher for store's file.
func NewWatcher(store *Store, bus Publisher, log logging.Logger) (*Watcher, error) {
	if log == nil {
		log = logging.Nop()
	}

	dir := filepath.Dir(store.Path())
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("create token directory: %w", err)
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	return &Watcher{
		store:    store,
		bus:      bus,
		log:      log.WithField("component", "token_watcher"),
		debounce: DefaultDebounce,
		watcher:  fw,
	}, nil
}

// Run processes file events until ctx is done, then releases the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.watcher.Close()

	target := filepath.Clean(w.store.Path())

	var (
		timer *time.Timer
		fire  <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != target {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
				!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
				continue
			}

			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			w.log.WithError(err).Warn("token file watcher error")
		}
	}
}

func (w *Watcher) reload() {
	result, err := w.store.Reload()
	if err != nil {
		w.log.WithError(err).Warn("token file reload failed")
		return
	}

	switch result {
	case ReloadTokenChanged:
		w.log.Info("token file changed")
	case ReloadSameToken:
		w.log.Debug("token file rewritten with same token, restarting timer")
		w.bus.Publish(events.Event{Type: events.Restart})
	}
}
