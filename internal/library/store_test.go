// Ludarium - Personal Game Library Media Server
// Copyright 2026 Ludarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludarium/ludarium

package library

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/ludarium/ludarium/internal/cache"
	"github.com/ludarium/ludarium/internal/igdb"
	"github.com/ludarium/ludarium/internal/models"
	"github.com/ludarium/ludarium/internal/storage"
	"github.com/ludarium/ludarium/internal/tags"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s := NewStore(t.TempDir(), cache.NewGameCache())

	ms := int64(1700000000000)
	s.now = func() time.Time {
		ms++
		return time.UnixMilli(ms)
	}
	return s
}

func mustSave(t *testing.T, s *Store, game *models.Game) {
	t.Helper()
	if err := s.Save(game); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
}

func TestSaveStripsIDFromFile(t *testing.T) {
	s := newTestStore(t)
	mustSave(t, s, &models.Game{ID: 42, Title: "Cave Story"})

	data, err := os.ReadFile(storage.EntityFile(s.Root(), Folder, 42))
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if _, present := raw["id"]; present {
		t.Error("metadata.json must not contain an id key")
	}
	if raw["title"] != "Cave Story" {
		t.Errorf("Expected title persisted, got %v", raw["title"])
	}
}

func TestLoadRoundTrip(t *testing.T) {
	s := newTestStore(t)

	original := &models.Game{
		ID:           1942,
		Title:        "Dwarf Fortress",
		Summary:      "Strike the earth",
		ReleaseYear:  2006,
		ReleaseMonth: 8,
		ReleaseDay:   8,
		CriticRating: 93,
		Genres:       models.RefsFromIDs([]int{storage.TitleHash("Simulation")}),
		Keywords:     []string{"procedural", "colony sim"},
	}
	mustSave(t, s, original)

	games := s.Load()
	loaded, ok := games[1942]
	if !ok {
		t.Fatal("Expected game 1942 to load")
	}

	if loaded.Title != original.Title || loaded.Summary != original.Summary {
		t.Errorf("Text fields mutated: %+v", loaded)
	}
	if loaded.ReleaseYear != 2006 || loaded.ReleaseMonth != 8 || loaded.ReleaseDay != 8 {
		t.Errorf("Release date mutated: %+v", loaded)
	}
	if loaded.CriticRating != 93 {
		t.Errorf("Rating mutated: %v", loaded.CriticRating)
	}
	if len(loaded.Genres) != 1 || loaded.Genres[0].ID != original.Genres[0].ID {
		t.Errorf("Genres mutated: %v", loaded.Genres)
	}
	// Executables is the one recomputed field: no script files, no labels.
	if len(loaded.Executables) != 0 {
		t.Errorf("Expected no executables, got %v", loaded.Executables)
	}
}

func TestWarmMigratesLegacyTagFields(t *testing.T) {
	s := newTestStore(t)

	// A pre-migration game: genre held as title strings.
	path := storage.EntityFile(s.Root(), Folder, 7)
	raw := map[string]interface{}{
		"title": "Legacy Game",
		"genre": []string{"Adventure", "Puzzle"},
	}
	if err := storage.WriteJSON(path, raw); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	if err := s.Warm(); err != nil {
		t.Fatalf("Warm failed: %v", err)
	}

	// The tags were created and the file rewritten to ids.
	if _, ok := s.TagRegistry(models.FieldGenres).Find("Adventure"); !ok {
		t.Error("Expected Adventure tag created during migration")
	}

	var onDisk struct {
		Genre []int `json:"genre"`
	}
	if !storage.ReadJSON(path, &onDisk) {
		t.Fatal("Expected migrated file to read back")
	}
	want := []int{storage.TitleHash("Adventure"), storage.TitleHash("Puzzle")}
	if len(onDisk.Genre) != 2 || onDisk.Genre[0] != want[0] || onDisk.Genre[1] != want[1] {
		t.Errorf("Expected %v, got %v", want, onDisk.Genre)
	}

	// Cached view matches the migrated form.
	game, err := s.Get(7)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if game.Genres.HasLegacy() {
		t.Error("Cached game still holds legacy references")
	}
}

func TestLoadIsSideEffectFree(t *testing.T) {
	s := newTestStore(t)

	path := storage.EntityFile(s.Root(), Folder, 9)
	raw := map[string]interface{}{
		"title":  "Untouched",
		"themes": []string{"Horror"},
	}
	if err := storage.WriteJSON(path, raw); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}

	s.Load()

	after, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if string(before) != string(after) {
		t.Error("Load must not rewrite files; migration is a separate pass")
	}
}

func TestUpdateAllowListedFields(t *testing.T) {
	s := newTestStore(t)
	mustSave(t, s, &models.Game{ID: 1, Title: "Before", Rating: 2})

	title := "After"
	rating := 4.5
	year := 1997
	updated, err := s.Update(1, &GamePatch{Title: &title, Rating: &rating, ReleaseYear: &year})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if updated.Title != "After" || updated.Rating != 4.5 || updated.ReleaseYear != 1997 {
		t.Errorf("Patch not applied: %+v", updated)
	}

	// Absent fields keep their stored value.
	if updated.Summary != "" {
		t.Errorf("Unpatched field changed: %q", updated.Summary)
	}

	cached, err := s.Get(1)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if cached.Title != "After" {
		t.Error("Cache not refreshed by update")
	}
}

func TestUpdateNormalizesTagTitles(t *testing.T) {
	s := newTestStore(t)
	mustSave(t, s, &models.Game{ID: 1, Title: "Game"})

	refs := models.FlexRefs{{Title: "Stealth"}, {ID: storage.TitleHash("Action")}}
	if _, err := s.TagRegistry(models.FieldGenres).Create("Action"); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	updated, err := s.Update(1, &GamePatch{Genres: &refs})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	if updated.Genres.HasLegacy() {
		t.Error("Expected pure id references after update")
	}
	if _, ok := s.TagRegistry(models.FieldGenres).Find("Stealth"); !ok {
		t.Error("Expected missing tag created during patch normalization")
	}
}

func TestUpdateMembershipSymmetry(t *testing.T) {
	s := newTestStore(t)

	game := &models.Game{
		ID:         5,
		Title:      "Game",
		Developers: []models.CompanyRef{{ID: 100, Name: "Old Dev"}, {ID: 200, Name: "Kept Dev"}},
	}
	mustSave(t, s, game)
	if err := s.Developers().EnsureBatch(companyItems(game.Developers), 5); err != nil {
		t.Fatalf("EnsureBatch failed: %v", err)
	}

	// Drop developer 100, keep 200.
	newDevs := []models.CompanyRef{{ID: 200, Name: "Kept Dev"}}
	if _, err := s.Update(5, &GamePatch{Developers: &newDevs}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	old, _ := s.Developers().FindByID(100)
	if old.HasGame(5) {
		t.Error("Removed developer still lists the game")
	}
	kept, _ := s.Developers().FindByID(200)
	if !kept.HasGame(5) {
		t.Error("Kept developer lost the game")
	}

	// Emptying the list strips the remaining membership too.
	empty := []models.CompanyRef{}
	if _, err := s.Update(5, &GamePatch{Developers: &empty}); err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	kept, _ = s.Developers().FindByID(200)
	if kept.HasGame(5) {
		t.Error("Developer membership must be empty after clearing the field")
	}
}

func TestUpdateNotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.Update(12345, &GamePatch{}); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestDeleteCascadesTagCleanup(t *testing.T) {
	s := newTestStore(t)
	genres := s.TagRegistry(models.FieldGenres)

	retro, err := genres.Create("RetroArcade")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	classics, err := genres.Create("Classics")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	// Game 1 is the only RetroArcade game; Classics is shared with game 2.
	mustSave(t, s, &models.Game{ID: 1, Title: "A", Genres: models.RefsFromIDs([]int{retro.ID, classics.ID})})
	mustSave(t, s, &models.Game{ID: 2, Title: "B", Genres: models.RefsFromIDs([]int{classics.ID})})

	if err := s.Delete(1); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	if _, ok := genres.Find("RetroArcade"); ok {
		t.Error("Orphaned tag should be deleted with its last game")
	}
	if _, ok := genres.Find("Classics"); !ok {
		t.Error("Shared tag must survive")
	}
	if _, err := s.Get(1); !errors.Is(err, ErrNotFound) {
		t.Error("Deleted game still cached")
	}
}

func TestDeleteCascadesMemberships(t *testing.T) {
	s := newTestStore(t)

	game := &models.Game{
		ID:         3,
		Title:      "C",
		Developers: []models.CompanyRef{{ID: 70, Name: "Dev"}},
		Publishers: []models.CompanyRef{{ID: 80, Name: "Pub"}},
	}
	mustSave(t, s, game)
	if err := s.ensureCompanies(game); err != nil {
		t.Fatalf("ensureCompanies failed: %v", err)
	}

	col, err := s.Collections().Create("Shelf", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	col.Games = []int{3}
	if err := s.Collections().Save(col); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := s.Sections().Save(sectionWithGames(1, "Picks", 3)); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if err := s.Delete(3); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	dev, _ := s.Developers().FindByID(70)
	if dev.HasGame(3) {
		t.Error("Developer membership not cleaned up")
	}
	pub, _ := s.Publishers().FindByID(80)
	if pub.HasGame(3) {
		t.Error("Publisher membership not cleaned up")
	}
	colAfter, _ := s.Collections().FindByID(col.ID)
	if colAfter.HasGame(3) {
		t.Error("Collection membership not cleaned up")
	}
	for _, section := range s.Sections().Load() {
		for _, id := range section.Games {
			if id == 3 {
				t.Error("Section membership not cleaned up")
			}
		}
	}
}

func sectionWithGames(id int, title string, games ...int) models.Section {
	return models.Section{ID: id, Title: title, Games: games}
}

func TestDeleteKeepsDirectoryWithMedia(t *testing.T) {
	s := newTestStore(t)
	mustSave(t, s, &models.Game{ID: 8, Title: "With Cover"})

	if err := os.WriteFile(s.CoverPath(8), []byte{0x52}, 0o644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	if err := s.Delete(8); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	// Metadata gone, directory with leftover media tolerated.
	if _, err := os.Stat(storage.EntityFile(s.Root(), Folder, 8)); !os.IsNotExist(err) {
		t.Error("metadata.json should be removed")
	}
	if _, err := os.Stat(s.GameDir(8)); err != nil {
		t.Error("Directory with media must survive")
	}
}

func TestDeleteNotFound(t *testing.T) {
	s := newTestStore(t)
	if err := s.Delete(404); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestCreateAssignsTimestampID(t *testing.T) {
	s := newTestStore(t)

	game := &models.Game{Title: "Homebrew"}
	if err := s.Create(game); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if game.ID != 1700000000001 {
		t.Errorf("Expected timestamp id, got %d", game.ID)
	}
	if _, err := s.Get(game.ID); err != nil {
		t.Error("Created game should be cached")
	}
}

func TestCreateBlankTitle(t *testing.T) {
	s := newTestStore(t)
	if err := s.Create(&models.Game{Title: "  "}); err == nil {
		t.Error("Expected error for blank title")
	}
}

func TestTagKindsCoverAllFields(t *testing.T) {
	s := newTestStore(t)
	for _, kind := range tags.Kinds {
		if s.TagRegistry(kind.GameField) == nil {
			t.Errorf("No registry wired for field %s", kind.GameField)
		}
	}
}

func gameFileExists(t *testing.T, s *Store, id int) bool {
	t.Helper()
	_, err := os.Stat(filepath.Join(s.GameDir(id), storage.MetadataFile))
	return err == nil
}

func TestReloadPicksUpExternalChanges(t *testing.T) {
	s := newTestStore(t)
	mustSave(t, s, &models.Game{ID: 1, Title: "One"})

	// Simulate an external writer adding a game behind the cache's back.
	ext := models.Game{Title: "External"}
	if err := storage.WriteJSON(storage.EntityFile(s.Root(), Folder, 2), ext); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	if _, err := s.Get(2); !errors.Is(err, ErrNotFound) {
		t.Fatal("Cache should not see the external game yet")
	}

	s.Reload()

	game, err := s.Get(2)
	if err != nil {
		t.Fatalf("Get failed after reload: %v", err)
	}
	if game.Title != "External" {
		t.Errorf("Expected External, got %q", game.Title)
	}
	if !gameFileExists(t, s, 1) {
		t.Error("Reload must not disturb existing games")
	}
}

func TestImportConflicts(t *testing.T) {
	s := newTestStore(t)
	mustSave(t, s, &models.Game{ID: 100, Title: "Cached"})

	// In-memory conflict.
	if _, err := s.Import(&igdb.ValidatedGame{ID: 100, Title: "Dup"}); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("Expected ErrAlreadyExists for cached id, got %v", err)
	}

	// Metadata on disk but not cached.
	if err := storage.WriteJSON(storage.EntityFile(s.Root(), Folder, 101), models.Game{Title: "Disk"}); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}
	if _, err := s.Import(&igdb.ValidatedGame{ID: 101, Title: "Dup"}); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("Expected ErrAlreadyExists for disk metadata, got %v", err)
	}

	// Bare directory without metadata: a half-finished import, still a
	// conflict.
	if err := storage.EnsureDir(s.GameDir(102)); err != nil {
		t.Fatalf("EnsureDir failed: %v", err)
	}
	if _, err := s.Import(&igdb.ValidatedGame{ID: 102, Title: "Dup"}); !errors.Is(err, ErrAlreadyExists) {
		t.Errorf("Expected ErrAlreadyExists for bare directory, got %v", err)
	}
}

func TestImportMaterializesEverything(t *testing.T) {
	s := newTestStore(t)

	entry := &igdb.ValidatedGame{
		ID:               1020,
		Title:            "Hollow Knight",
		Summary:          "Bug crawl",
		FirstReleaseDate: 1487894400, // 2017-02-24 UTC
		AggregatedRating: 90,
		Genres:           []string{"Metroidvania", "Platformer"},
		Platforms:        []string{"Windows"},
		Developers:       []igdb.Company{{ID: 7315, Name: "Team Cherry", Logo: "//img/tc.png"}},
		Publishers:       []igdb.Company{{ID: 7315, Name: "Team Cherry"}},
		Keywords:         []string{"insects", "difficult"},
	}

	game, err := s.Import(entry)
	if err != nil {
		t.Fatalf("Import failed: %v", err)
	}

	if game.ReleaseYear != 2017 || game.ReleaseMonth != 2 || game.ReleaseDay != 24 {
		t.Errorf("Unexpected release date: %d-%d-%d", game.ReleaseYear, game.ReleaseMonth, game.ReleaseDay)
	}
	if game.Genres.HasLegacy() {
		t.Error("Imported tag references must be ids")
	}
	if _, ok := s.TagRegistry(models.FieldGenres).Find("Metroidvania"); !ok {
		t.Error("Expected genre tag created during import")
	}

	dev, ok := s.Developers().FindByID(7315)
	if !ok {
		t.Fatal("Expected developer materialized")
	}
	if !dev.HasGame(1020) {
		t.Error("Expected game in developer membership")
	}
	if dev.IGDBCover != "//img/tc.png" {
		t.Errorf("Expected logo carried, got %q", dev.IGDBCover)
	}

	if _, err := s.Get(1020); err != nil {
		t.Error("Imported game should be cached")
	}
}

func TestImportReleaseDateDisambiguation(t *testing.T) {
	cases := []struct {
		raw   int64
		year  int
		month int
	}{
		{0, 0, 0},
		{1998, 1998, 0},       // bare year
		{2100, 2100, 0},       // upper edge of the year window
		{911865600, 1998, 11}, // seconds: 1998-11-23
		{4102444800, 2100, 1}, // seconds: 2100-01-01
		{99, 1970, 1},         // tiny timestamp still lands in the window
		{9999999999999, 0, 0}, // absurd timestamp
	}

	for _, tc := range cases {
		year, month, _ := resolveReleaseDate(tc.raw)
		if year != tc.year || month != tc.month {
			t.Errorf("resolveReleaseDate(%d) = (%d, %d), want (%d, %d)",
				tc.raw, year, month, tc.year, tc.month)
		}
	}
}
