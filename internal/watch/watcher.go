// Ludarium - Personal Game Library Media Server
// Copyright 2026 Ludarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludarium/ludarium

// Package watch reloads the library when metadata files change outside the
// API, e.g. a manual edit or an rsync from another machine. Disabled by
// default; a debounce window coalesces bursts of filesystem events into one
// reload.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ludarium/ludarium/internal/library"
	"github.com/ludarium/ludarium/internal/logging"
	"github.com/ludarium/ludarium/internal/storage"
)

// Watcher observes the games content folder and its entity directories.
type Watcher struct {
	store    *library.Store
	debounce time.Duration
	fs       *fsnotify.Watcher
}

// New creates a watcher over the store's games folder. Entity directories
// are added as they appear; inotify does not recurse on its own.
func New(store *library.Store, debounce time.Duration) (*Watcher, error) {
	fs, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	gamesDir := storage.FolderDir(store.Root(), library.Folder)
	if err := storage.EnsureDir(gamesDir); err != nil {
		fs.Close()
		return nil, err
	}
	if err := fs.Add(gamesDir); err != nil {
		fs.Close()
		return nil, fmt.Errorf("watch %s: %w", gamesDir, err)
	}
	for _, id := range storage.NumericSubdirs(gamesDir) {
		// Best effort: a directory that vanished between scan and Add is
		// picked up again by its parent's events.
		_ = fs.Add(storage.EntityDir(store.Root(), library.Folder, id))
	}

	return &Watcher{store: store, debounce: debounce, fs: fs}, nil
}

// Run processes events until the context is canceled. Each burst of events
// schedules one reload after the debounce window.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fs.Close()

	var timer *time.Timer
	var pending <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return ctx.Err()

		case event, ok := <-w.fs.Events:
			if !ok {
				return nil
			}
			if !w.relevant(event) {
				continue
			}
			if event.Op.Has(fsnotify.Create) {
				// New entity directory: start watching inside it.
				_ = w.fs.Add(event.Name)
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
				pending = timer.C
			} else {
				timer.Reset(w.debounce)
			}

		case err, ok := <-w.fs.Errors:
			if !ok {
				return nil
			}
			logging.Warn().Err(err).Msg("Filesystem watcher error")

		case <-pending:
			timer = nil
			pending = nil
			logging.Info().Msg("Metadata changed on disk, reloading library")
			w.store.Reload()
		}
	}
}

// relevant filters out events that cannot affect library state: only
// metadata files, scripts and entity directories matter.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if event.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Remove|fsnotify.Rename) == 0 {
		return false
	}
	base := filepath.Base(event.Name)
	if base == storage.MetadataFile {
		return true
	}
	ext := strings.ToLower(filepath.Ext(base))
	if ext == ".sh" || ext == ".bat" {
		return true
	}
	// Directory-level create/remove under the games folder.
	return ext == ""
}
