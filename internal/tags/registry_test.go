// Ludarium - Personal Game Library Media Server
// Copyright 2026 Ludarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludarium/ludarium

package tags

import (
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/ludarium/ludarium/internal/models"
	"github.com/ludarium/ludarium/internal/storage"
)

func gameWithGenres(id int, refs ...models.FlexRef) *models.Game {
	return &models.Game{ID: id, Title: "Game " + strconv.Itoa(id), Genres: refs}
}

func TestEnsureExistsIdempotent(t *testing.T) {
	r := NewRegistry(t.TempDir(), Categories)

	first, err := r.EnsureExists("Adventure")
	if err != nil {
		t.Fatalf("EnsureExists failed: %v", err)
	}
	if first != "Adventure" {
		t.Errorf("Expected Adventure, got %q", first)
	}

	// Different casing and padding must resolve to the same entity and
	// echo the stored casing.
	second, err := r.EnsureExists("  ADVENTURE  ")
	if err != nil {
		t.Fatalf("EnsureExists failed: %v", err)
	}
	if second != "Adventure" {
		t.Errorf("Expected stored casing Adventure, got %q", second)
	}

	if got := len(r.Load()); got != 1 {
		t.Errorf("Expected exactly one tag, got %d", got)
	}

	entries, err := os.ReadDir(r.Dir())
	if err != nil {
		t.Fatalf("ReadDir failed: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("Expected exactly one directory, got %d", len(entries))
	}
}

func TestEnsureExistsBlankInput(t *testing.T) {
	r := NewRegistry(t.TempDir(), Themes)

	title, err := r.EnsureExists("   ")
	if err != nil {
		t.Fatalf("EnsureExists failed: %v", err)
	}
	if title != "" {
		t.Errorf("Expected empty title for blank input, got %q", title)
	}
	if got := len(r.Load()); got != 0 {
		t.Errorf("Expected no tags created for blank input, got %d", got)
	}
}

func TestCreateConflict(t *testing.T) {
	r := NewRegistry(t.TempDir(), Categories)

	if _, err := r.Create("Indie Gems"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	existing, err := r.Create("indie gems")
	if !errors.Is(err, ErrTitleExists) {
		t.Fatalf("Expected ErrTitleExists, got %v", err)
	}
	// Conflict echoes the original-cased title for the caller to reconcile.
	if existing.Title != "Indie Gems" {
		t.Errorf("Expected original casing Indie Gems, got %q", existing.Title)
	}
}

func TestLoadSkipsLegacyAndBlank(t *testing.T) {
	root := t.TempDir()
	r := NewRegistry(root, Platforms)

	for _, title := range []string{"Windows", "Amiga", "linux"} {
		if _, err := r.EnsureExists(title); err != nil {
			t.Fatalf("EnsureExists failed: %v", err)
		}
	}

	// Legacy non-numeric folder: silently skipped.
	legacy := filepath.Join(r.Dir(), "Old Format")
	if err := storage.WriteJSON(filepath.Join(legacy, storage.MetadataFile), models.Tag{Title: "Old Format"}); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	// Numeric folder without a title: dropped.
	if err := storage.WriteJSON(filepath.Join(r.Dir(), "12345", storage.MetadataFile), models.Tag{}); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	tags := r.Load()
	if len(tags) != 3 {
		t.Fatalf("Expected 3 tags, got %d", len(tags))
	}

	// Alphabetical, case-insensitive.
	want := []string{"Amiga", "linux", "Windows"}
	for i, title := range want {
		if tags[i].Title != title {
			t.Errorf("Position %d: expected %q, got %q", i, title, tags[i].Title)
		}
	}
}

func TestDeleteIfUnusedGate(t *testing.T) {
	r := NewRegistry(t.TempDir(), Categories)

	tag, err := r.Create("RetroArcade")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	games := map[int]*models.Game{
		1: gameWithGenres(1, models.FlexRef{ID: tag.ID}),
	}

	deleted, err := r.DeleteIfUnused("RetroArcade", games)
	if err != nil {
		t.Fatalf("DeleteIfUnused failed: %v", err)
	}
	if deleted {
		t.Error("Expected referenced tag to survive")
	}
	if _, ok := r.Find("RetroArcade"); !ok {
		t.Fatal("Tag directory should still exist")
	}

	// Last reference gone: same call now deletes.
	delete(games, 1)
	deleted, err = r.DeleteIfUnused("RetroArcade", games)
	if err != nil {
		t.Fatalf("DeleteIfUnused failed: %v", err)
	}
	if !deleted {
		t.Error("Expected unreferenced tag to be deleted")
	}
	if _, ok := r.Find("RetroArcade"); ok {
		t.Error("Tag should be gone after delete")
	}
	if _, err := os.Stat(filepath.Join(r.Dir(), strconv.Itoa(tag.ID))); !os.IsNotExist(err) {
		t.Error("Tag directory should be removed when empty")
	}
}

func TestDeleteIfUnusedLegacyTitleReference(t *testing.T) {
	r := NewRegistry(t.TempDir(), Categories)

	if _, err := r.Create("Roguelike"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// A pre-migration game still references the tag by title.
	games := map[int]*models.Game{
		7: gameWithGenres(7, models.FlexRef{Title: "ROGUELIKE"}),
	}

	deleted, err := r.DeleteIfUnused("Roguelike", games)
	if err != nil {
		t.Fatalf("DeleteIfUnused failed: %v", err)
	}
	if deleted {
		t.Error("Legacy title reference must gate deletion")
	}
}

func TestDeleteIfUnusedUnknownTitle(t *testing.T) {
	r := NewRegistry(t.TempDir(), Themes)

	deleted, err := r.DeleteIfUnused("Never Created", nil)
	if err != nil {
		t.Fatalf("DeleteIfUnused failed: %v", err)
	}
	if deleted {
		t.Error("Unknown title must be a no-op")
	}
}

func TestEnsureExistsBatch(t *testing.T) {
	r := NewRegistry(t.TempDir(), GameModes)

	if _, err := r.EnsureExists("Co-op"); err != nil {
		t.Fatalf("EnsureExists failed: %v", err)
	}

	err := r.EnsureExistsBatch([]string{"co-op", "Single Player", "", "Multiplayer", "single player"})
	if err != nil {
		t.Fatalf("EnsureExistsBatch failed: %v", err)
	}

	tags := r.Load()
	if len(tags) != 3 {
		t.Fatalf("Expected 3 tags after batch, got %d", len(tags))
	}
	if tags[0].Title != "Co-op" {
		t.Errorf("Expected existing casing Co-op preserved, got %q", tags[0].Title)
	}
}

func TestResolveRefsMixed(t *testing.T) {
	r := NewRegistry(t.TempDir(), Themes)

	fantasy, err := r.Create("Fantasy")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := r.Create("Horror"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	refs := models.FlexRefs{
		{ID: fantasy.ID},
		{Title: "horror"},
		{ID: 999999999}, // dangling id, dropped
		{Title: "Unknown"},
	}

	resolved := r.ResolveRefs(refs)
	if len(resolved) != 2 {
		t.Fatalf("Expected 2 resolved tags, got %d", len(resolved))
	}
	if resolved[0].Title != "Fantasy" || resolved[1].Title != "Horror" {
		t.Errorf("Unexpected resolution order: %v", resolved)
	}
}

func TestNormalizeToIDsCreatesMissing(t *testing.T) {
	r := NewRegistry(t.TempDir(), Platforms)

	existing, err := r.Create("Windows")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	ids, err := r.NormalizeToIDs(models.FlexRefs{
		{ID: existing.ID},
		{Title: "PlayStation 2"},
	})
	if err != nil {
		t.Fatalf("NormalizeToIDs failed: %v", err)
	}

	if len(ids) != 2 {
		t.Fatalf("Expected 2 ids, got %d", len(ids))
	}
	if ids[0] != existing.ID {
		t.Errorf("Expected existing id %d, got %d", existing.ID, ids[0])
	}
	if _, ok := r.Find("PlayStation 2"); !ok {
		t.Error("Expected missing tag to be created during normalization")
	}
	if ids[1] != storage.TitleHash("PlayStation 2") {
		t.Errorf("Expected hash-derived id, got %d", ids[1])
	}
}
