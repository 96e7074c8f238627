// Ludarium - Personal Game Library Media Server
// Copyright 2026 Ludarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludarium/ludarium

package library

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/ludarium/ludarium/internal/cache"
	"github.com/ludarium/ludarium/internal/collections"
	"github.com/ludarium/ludarium/internal/logging"
	"github.com/ludarium/ludarium/internal/metrics"
	"github.com/ludarium/ludarium/internal/models"
	"github.com/ludarium/ludarium/internal/recommend"
	"github.com/ludarium/ludarium/internal/storage"
	"github.com/ludarium/ludarium/internal/tags"
)

// Folder is the content folder holding game entities.
const Folder = "games"

// Sentinel errors returned by store operations.
var (
	// ErrNotFound indicates the game id does not resolve.
	ErrNotFound = errors.New("game not found")

	// ErrAlreadyExists indicates an import collided with a present game id.
	ErrAlreadyExists = errors.New("game already exists")
)

// Store is the library store. It owns disk access for games, delegates
// reference bookkeeping to the tag and collection registries, and keeps the
// injected game cache consistent with every mutation.
type Store struct {
	root  string
	games *cache.GameCache

	tagRegistries map[models.TagField]*tags.Registry
	collections   *collections.Registry
	developers    *collections.Registry
	publishers    *collections.Registry
	sections      *recommend.Store

	// now is injectable for deterministic ids in tests.
	now func() time.Time
}

// NewStore creates a library store rooted at the metadata root, wiring one
// registry per tag kind and per collection-like kind.
func NewStore(root string, games *cache.GameCache) *Store {
	registries := make(map[models.TagField]*tags.Registry, len(tags.Kinds))
	for _, kind := range tags.Kinds {
		registries[kind.GameField] = tags.NewRegistry(root, kind)
	}

	return &Store{
		root:          root,
		games:         games,
		tagRegistries: registries,
		collections:   collections.NewRegistry(root, collections.Collections),
		developers:    collections.NewRegistry(root, collections.Developers),
		publishers:    collections.NewRegistry(root, collections.Publishers),
		sections:      recommend.NewStore(root),
		now:           time.Now,
	}
}

// Root returns the metadata root.
func (s *Store) Root() string {
	return s.root
}

// Cache returns the injected game cache.
func (s *Store) Cache() *cache.GameCache {
	return s.games
}

// TagRegistry returns the registry annotating the given game field.
func (s *Store) TagRegistry(field models.TagField) *tags.Registry {
	return s.tagRegistries[field]
}

// Collections returns the user-collection registry.
func (s *Store) Collections() *collections.Registry {
	return s.collections
}

// Developers returns the developer registry.
func (s *Store) Developers() *collections.Registry {
	return s.developers
}

// Publishers returns the publisher registry.
func (s *Store) Publishers() *collections.Registry {
	return s.publishers
}

// Sections returns the recommended-sections store.
func (s *Store) Sections() *recommend.Store {
	return s.sections
}

// GameDir returns the directory of a game id.
func (s *Store) GameDir(id int) string {
	return storage.EntityDir(s.root, Folder, id)
}

// CoverPath returns a game's cover image path.
func (s *Store) CoverPath(id int) string {
	return filepath.Join(s.GameDir(id), "cover.webp")
}

// BackgroundPath returns a game's background image path.
func (s *Store) BackgroundPath(id int) string {
	return filepath.Join(s.GameDir(id), "background.webp")
}

// Load reads every game from disk and returns the id-to-game map. The id is
// injected from the directory name and the executables field is recomputed
// against the files physically present. Load has no side effects on disk.
func (s *Store) Load() map[int]*models.Game {
	ids := storage.NumericSubdirs(storage.FolderDir(s.root, Folder))
	games := make(map[int]*models.Game, len(ids))

	for _, id := range ids {
		game := s.read(id)
		if game == nil {
			continue
		}
		games[id] = game
	}
	return games
}

// read loads one game from disk, or nil when no metadata file resolves.
func (s *Store) read(id int) *models.Game {
	var game models.Game
	if !storage.ReadJSON(storage.EntityFile(s.root, Folder, id), &game) {
		return nil
	}
	game.ID = id
	game.Executables = s.resolveExecutables(&game)
	return &game
}

// Warm runs the legacy-field migration pass and loads the library into the
// cache. Called once at startup before the HTTP server accepts requests.
func (s *Store) Warm() error {
	migrated, err := s.MigrateLegacyTagFields()
	if err != nil {
		return fmt.Errorf("migrate legacy tag fields: %w", err)
	}
	if migrated > 0 {
		logging.Info().Int("games", migrated).Msg("Migrated legacy tag fields")
	}

	games := s.Load()
	s.games.Load(games)
	logging.Info().Int("games", len(games)).Msg("Library cache warmed")
	return nil
}

// Reload re-reads the library from disk into the cache. Used when the
// filesystem watcher reports an external change to the content tree.
func (s *Store) Reload() {
	s.games.Load(s.Load())
	metrics.CacheInvalidations.WithLabelValues("games", "watch").Inc()
}

// Get returns the cached game with the given id.
func (s *Store) Get(id int) (*models.Game, error) {
	game, ok := s.games.Get(id)
	if !ok {
		return nil, fmt.Errorf("game %d: %w", id, ErrNotFound)
	}
	return game, nil
}

// Save persists the game's metadata and refreshes the cache entry. The id
// field is stripped from the file body - it lives in the folder name, never
// duplicated inside the file.
func (s *Store) Save(game *models.Game) error {
	onDisk := *game
	onDisk.ID = 0

	if err := storage.WriteJSON(storage.EntityFile(s.root, Folder, game.ID), onDisk); err != nil {
		logging.Error().Err(err).Int("game", game.ID).Msg("Failed to save game")
		return fmt.Errorf("save game %d: %w", game.ID, err)
	}

	s.games.Put(game)
	return nil
}

// Create adds a manually authored game with a timestamp id and persists it.
// Tag references are normalized to ids, creating missing tags; developers
// and publishers are materialized with the new game as a member.
func (s *Store) Create(game *models.Game) error {
	if strings.TrimSpace(game.Title) == "" {
		return errors.New("game title must not be blank")
	}

	if game.ID == 0 {
		game.ID = int(s.now().UnixMilli())
	}
	if s.games.Has(game.ID) {
		return fmt.Errorf("game %d: %w", game.ID, ErrAlreadyExists)
	}

	if err := s.normalizeTagFields(game); err != nil {
		return err
	}
	if err := s.ensureCompanies(game); err != nil {
		return err
	}
	return s.Save(game)
}

// Delete removes the game's metadata file and runs the cross-reference
// integrity pass. Sibling media files are not forcibly removed; a directory
// left non-empty by cover art survives, which is tolerated.
func (s *Store) Delete(id int) error {
	game, ok := s.games.Get(id)
	if !ok {
		return fmt.Errorf("game %d: %w", id, ErrNotFound)
	}

	// Capture tag references before anything disappears; the cleanup pass
	// needs them after the game is gone.
	captured := make(map[models.TagField]models.FlexRefs, len(s.tagRegistries))
	for field := range s.tagRegistries {
		captured[field] = game.TagRefs(field)
	}

	dir := s.GameDir(id)
	if err := storage.RemoveFile(filepath.Join(dir, storage.MetadataFile)); err != nil {
		return fmt.Errorf("delete game %d: %w", id, err)
	}
	storage.RemoveDirIfEmpty(dir)

	s.games.Remove(id)
	metrics.StoreDeletes.WithLabelValues(Folder).Inc()
	logging.Info().Int("game", id).Str("title", game.Title).Msg("Game deleted")

	s.cleanupReferences(id, captured)
	return nil
}

// normalizeTagFields converts every tag reference field to pure ids,
// creating missing tags as needed.
func (s *Store) normalizeTagFields(game *models.Game) error {
	for field, registry := range s.tagRegistries {
		refs := game.TagRefs(field)
		if len(refs) == 0 {
			continue
		}

		ids, err := registry.NormalizeToIDs(refs)
		if err != nil {
			return fmt.Errorf("normalize %s: %w", field, err)
		}
		game.SetTagRefs(field, models.RefsFromIDs(ids))
	}
	return nil
}

// ensureCompanies materializes the game's developers and publishers and
// registers the game in their membership lists.
func (s *Store) ensureCompanies(game *models.Game) error {
	if err := s.developers.EnsureBatch(companyItems(game.Developers), game.ID); err != nil {
		return err
	}
	return s.publishers.EnsureBatch(companyItems(game.Publishers), game.ID)
}

// companyItems converts company references to ensure-batch items.
func companyItems(refs []models.CompanyRef) []collections.EnsureItem {
	items := make([]collections.EnsureItem, len(refs))
	for i, ref := range refs {
		items[i] = collections.EnsureItem{ID: ref.ID, Name: ref.Name}
	}
	return items
}
