// Ludarium - Personal Game Library Media Server
// Copyright 2026 Ludarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludarium/ludarium

package collections

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ludarium/ludarium/internal/logging"
	"github.com/ludarium/ludarium/internal/metrics"
	"github.com/ludarium/ludarium/internal/models"
	"github.com/ludarium/ludarium/internal/storage"
)

// Sentinel errors returned by registry operations.
var (
	// ErrNotFound indicates the entity id does not resolve.
	ErrNotFound = errors.New("collection not found")

	// ErrTitleExists indicates a create collided with an existing title
	// (case-insensitively).
	ErrTitleExists = errors.New("collection title already exists")
)

// Kind describes one collection-like entity kind.
type Kind struct {
	Folder string
	Name   string
}

// The three collection-like kinds.
var (
	Collections = Kind{Folder: "collections", Name: "collection"}
	Developers  = Kind{Folder: "developers", Name: "developer"}
	Publishers  = Kind{Folder: "publishers", Name: "publisher"}
)

// Kinds lists every collection-like kind.
var Kinds = []Kind{Collections, Developers, Publishers}

// EnsureItem is one entity to materialize via EnsureBatch. The id comes from
// the caller (the upstream catalog), never from a hash.
type EnsureItem struct {
	ID          int
	Name        string
	Logo        string
	Description string
}

// Registry provides CRUD over one collection-like kind rooted at a metadata
// root.
type Registry struct {
	root string
	kind Kind

	// now is injectable for deterministic timestamp ids in tests.
	now func() time.Time
}

// NewRegistry creates a registry for one collection-like kind.
func NewRegistry(root string, kind Kind) *Registry {
	return &Registry{root: root, kind: kind, now: time.Now}
}

// Kind returns the registry's kind.
func (r *Registry) Kind() Kind {
	return r.kind
}

// Dir returns the kind's content folder path.
func (r *Registry) Dir() string {
	return storage.FolderDir(r.root, r.kind.Folder)
}

// CoverPath returns the cover image path for an entity id.
func (r *Registry) CoverPath(id int) string {
	return filepath.Join(storage.EntityDir(r.root, r.kind.Folder, id), "cover.webp")
}

// BackgroundPath returns the background image path for an entity id.
func (r *Registry) BackgroundPath(id int) string {
	return filepath.Join(storage.EntityDir(r.root, r.kind.Folder, id), "background.webp")
}

// Load scans the kind's content folder and returns every valid entity
// sorted alphabetically by title, case-insensitively. Non-numeric folder
// names and records without a title are skipped.
func (r *Registry) Load() []models.Collection {
	ids := storage.NumericSubdirs(r.Dir())
	result := make([]models.Collection, 0, len(ids))

	for _, id := range ids {
		var c models.Collection
		if !storage.ReadJSON(storage.EntityFile(r.root, r.kind.Folder, id), &c) {
			continue
		}
		if strings.TrimSpace(c.Title) == "" {
			continue
		}
		c.ID = id
		if c.Games == nil {
			c.Games = []int{}
		}
		result = append(result, c)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return strings.ToLower(result[i].Title) < strings.ToLower(result[j].Title)
	})
	return result
}

// FindByID returns the entity with the given id.
func (r *Registry) FindByID(id int) (models.Collection, bool) {
	var c models.Collection
	if !storage.ReadJSON(storage.EntityFile(r.root, r.kind.Folder, id), &c) {
		return models.Collection{}, false
	}
	c.ID = id
	if c.Games == nil {
		c.Games = []int{}
	}
	return c, true
}

// FindByTitle returns the entity whose title matches case-insensitively.
func (r *Registry) FindByTitle(title string) (models.Collection, bool) {
	title = strings.TrimSpace(title)
	for _, c := range r.Load() {
		if strings.EqualFold(c.Title, title) {
			return c, true
		}
	}
	return models.Collection{}, false
}

// Save persists the entity under its id. The id field is stripped from the
// file body - it lives in the folder name only - and a nil membership list
// is normalized to an empty array so the frontend never sees null.
func (r *Registry) Save(c models.Collection) error {
	id := c.ID
	c.ID = 0
	if c.Games == nil {
		c.Games = []int{}
	}

	if err := storage.WriteJSON(storage.EntityFile(r.root, r.kind.Folder, id), c); err != nil {
		logging.Error().Err(err).Str("kind", r.kind.Name).Int("id", id).Msg("Failed to save entity")
		return fmt.Errorf("save %s %d: %w", r.kind.Name, id, err)
	}
	return nil
}

// Create adds a user-created collection with a timestamp id, failing with
// ErrTitleExists when the title is already present in any casing. Only the
// collections kind has an explicit create path; developers and publishers
// come in through EnsureBatch.
func (r *Registry) Create(title, summary string) (models.Collection, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Collection{}, fmt.Errorf("%s title must not be blank", r.kind.Name)
	}

	if existing, ok := r.FindByTitle(title); ok {
		return existing, fmt.Errorf("%s %q: %w", r.kind.Name, existing.Title, ErrTitleExists)
	}

	c := models.Collection{
		ID:      int(r.now().UnixMilli()),
		Title:   title,
		Summary: summary,
		Games:   []int{},
	}
	if err := r.Save(c); err != nil {
		return models.Collection{}, err
	}

	logging.Info().Str("kind", r.kind.Name).Str("title", title).Int("id", c.ID).Msg("Entity created")
	return c, nil
}

// Delete removes the entity's metadata file and, when consequently empty,
// its directory. Cover or background images left behind keep the directory
// alive, which is tolerated.
func (r *Registry) Delete(id int) error {
	if _, ok := r.FindByID(id); !ok {
		return fmt.Errorf("%s %d: %w", r.kind.Name, id, ErrNotFound)
	}

	dir := storage.EntityDir(r.root, r.kind.Folder, id)
	if err := storage.RemoveFile(filepath.Join(dir, storage.MetadataFile)); err != nil {
		return fmt.Errorf("delete %s %d: %w", r.kind.Name, id, err)
	}
	storage.RemoveDirIfEmpty(dir)

	metrics.StoreDeletes.WithLabelValues(r.kind.Folder).Inc()
	logging.Info().Str("kind", r.kind.Name).Int("id", id).Msg("Entity deleted")
	return nil
}

// EnsureBatch materializes every item that is missing, and when gameID is
// non-zero appends it to each item's membership list if not already present.
// This is how developers and publishers get created as a side effect of
// tagging a game. Existing entities keep their stored title and summary;
// only membership changes are persisted for them.
func (r *Registry) EnsureBatch(items []EnsureItem, gameID int) error {
	for _, item := range items {
		if item.ID == 0 || strings.TrimSpace(item.Name) == "" {
			continue
		}

		c, ok := r.FindByID(item.ID)
		if !ok {
			c = models.Collection{
				ID:        item.ID,
				Title:     strings.TrimSpace(item.Name),
				Summary:   item.Description,
				Games:     []int{},
				IGDBCover: item.Logo,
			}
		} else if c.HasGame(gameID) || gameID == 0 {
			continue
		}

		if gameID != 0 && !c.HasGame(gameID) {
			c.Games = append(c.Games, gameID)
		}
		if err := r.Save(c); err != nil {
			return err
		}
	}
	return nil
}

// RemoveGame removes the game id from one entity's membership list.
func (r *Registry) RemoveGame(id, gameID int) error {
	c, ok := r.FindByID(id)
	if !ok {
		return fmt.Errorf("%s %d: %w", r.kind.Name, id, ErrNotFound)
	}
	if !c.HasGame(gameID) {
		return nil
	}

	games := make([]int, 0, len(c.Games)-1)
	for _, g := range c.Games {
		if g != gameID {
			games = append(games, g)
		}
	}
	c.Games = games
	return r.Save(c)
}

// RemoveGameFromAll scans every entity of this kind, strips the game id from
// each membership list where present, and persists only the changed
// entities. Returns the number of entities changed. Cheap no-op when the
// game was not a member anywhere.
func (r *Registry) RemoveGameFromAll(gameID int) (int, error) {
	changed := 0
	for _, c := range r.Load() {
		if !c.HasGame(gameID) {
			continue
		}

		games := make([]int, 0, len(c.Games)-1)
		for _, g := range c.Games {
			if g != gameID {
				games = append(games, g)
			}
		}
		c.Games = games

		if err := r.Save(c); err != nil {
			return changed, err
		}
		changed++
	}

	if changed > 0 {
		logging.Debug().
			Str("kind", r.kind.Name).
			Int("game", gameID).
			Int("entities", changed).
			Msg("Game removed from memberships")
	}
	return changed, nil
}
