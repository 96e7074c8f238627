// Ludarium - Personal Game Library Media Server
// Copyright 2026 Ludarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludarium/ludarium

package watch

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/ludarium/ludarium/internal/cache"
	"github.com/ludarium/ludarium/internal/library"
	"github.com/ludarium/ludarium/internal/storage"
)

func TestWatcherReloadsOnExternalWrite(t *testing.T) {
	root := t.TempDir()
	store := library.NewStore(root, cache.NewGameCache())
	if err := store.Warm(); err != nil {
		t.Fatalf("Warm failed: %v", err)
	}

	w, err := New(store, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = w.Run(ctx)
	}()

	// Simulate an external tool dropping a new game onto disk.
	dir := storage.EntityDir(root, library.Folder, 42)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, storage.MetadataFile), []byte(`{"title":"Dropped In"}`), 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	deadline := time.After(5 * time.Second)
	for {
		if store.Cache().Has(42) {
			break
		}
		select {
		case <-deadline:
			t.Fatal("Expected cache to pick up external write")
		case <-time.After(20 * time.Millisecond):
		}
	}

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Expected Run to stop on cancel")
	}
}

func TestRelevantFilters(t *testing.T) {
	w := &Watcher{}

	cases := []struct {
		name string
		want bool
	}{
		{"/data/content/games/42/metadata.json", true},
		{"/data/content/games/42/launch.sh", true},
		{"/data/content/games/42/launch.bat", true},
		{"/data/content/games/42", true},
		{"/data/content/games/42/cover.webp", false},
		{"/data/content/games/42/notes.txt", false},
	}
	for _, tc := range cases {
		event := fsnotify.Event{Name: tc.name, Op: fsnotify.Write}
		if got := w.relevant(event); got != tc.want {
			t.Errorf("relevant(%q) = %v, want %v", tc.name, got, tc.want)
		}
	}
}
