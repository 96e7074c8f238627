// Ludarium - Personal Game Library Media Server
// Copyright 2026 Ludarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludarium/ludarium

package tags

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ludarium/ludarium/internal/logging"
	"github.com/ludarium/ludarium/internal/metrics"
	"github.com/ludarium/ludarium/internal/models"
	"github.com/ludarium/ludarium/internal/storage"
)

// Sentinel errors returned by registry operations.
var (
	// ErrNotFound indicates the tag title or id does not resolve.
	ErrNotFound = errors.New("tag not found")

	// ErrTitleExists indicates a create collided with an existing title
	// (case-insensitively).
	ErrTitleExists = errors.New("tag title already exists")

	// ErrInUse indicates a delete was rejected because games still
	// reference the tag.
	ErrInUse = errors.New("tag is still referenced by games")
)

// Kind describes one tag entity kind: its content folder, the human name
// used in log and error messages, and the game field it annotates.
type Kind struct {
	Folder    string
	Name      string
	GameField models.TagField
}

// The six tag kinds. Categories is the historical folder name for genres.
var (
	Categories         = Kind{Folder: "categories", Name: "category", GameField: models.FieldGenres}
	Themes             = Kind{Folder: "themes", Name: "theme", GameField: models.FieldThemes}
	Platforms          = Kind{Folder: "platforms", Name: "platform", GameField: models.FieldPlatforms}
	GameEngines        = Kind{Folder: "game-engines", Name: "game engine", GameField: models.FieldGameEngines}
	GameModes          = Kind{Folder: "game-modes", Name: "game mode", GameField: models.FieldGameModes}
	PlayerPerspectives = Kind{Folder: "player-perspectives", Name: "player perspective", GameField: models.FieldPlayerPerspectives}
)

// Kinds lists every tag kind, in route registration order.
var Kinds = []Kind{Categories, Themes, Platforms, GameEngines, GameModes, PlayerPerspectives}

// KindByFolder resolves a content folder name to its Kind.
func KindByFolder(folder string) (Kind, bool) {
	for _, k := range Kinds {
		if k.Folder == folder {
			return k, true
		}
	}
	return Kind{}, false
}

// Registry provides CRUD over one tag kind rooted at a metadata root. All
// operations hit the disk directly; the registry itself keeps no state
// beyond its parameters.
type Registry struct {
	root string
	kind Kind
}

// NewRegistry creates a registry for one tag kind.
func NewRegistry(root string, kind Kind) *Registry {
	return &Registry{root: root, kind: kind}
}

// Kind returns the registry's kind.
func (r *Registry) Kind() Kind {
	return r.kind
}

// Dir returns the kind's content folder path.
func (r *Registry) Dir() string {
	return storage.FolderDir(r.root, r.kind.Folder)
}

// CoverPath returns the cover image path for a tag id. The file may or may
// not exist.
func (r *Registry) CoverPath(id int) string {
	return filepath.Join(storage.EntityDir(r.root, r.kind.Folder, id), "cover.webp")
}

// Load scans the kind's content folder and returns every valid tag sorted
// alphabetically by title, case-insensitively. Folders with non-numeric
// names are legacy format and silently skipped; records without a title are
// dropped. Load never fails - unreadable entries are treated as absent.
func (r *Registry) Load() []models.Tag {
	ids := storage.NumericSubdirs(r.Dir())
	result := make([]models.Tag, 0, len(ids))

	for _, id := range ids {
		var tag models.Tag
		if !storage.ReadJSON(storage.EntityFile(r.root, r.kind.Folder, id), &tag) {
			continue
		}
		if strings.TrimSpace(tag.Title) == "" {
			continue
		}
		tag.ID = id
		result = append(result, tag)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return strings.ToLower(result[i].Title) < strings.ToLower(result[j].Title)
	})
	return result
}

// Find returns the tag whose title matches case-insensitively.
func (r *Registry) Find(title string) (models.Tag, bool) {
	title = strings.TrimSpace(title)
	for _, tag := range r.Load() {
		if strings.EqualFold(tag.Title, title) {
			return tag, true
		}
	}
	return models.Tag{}, false
}

// FindByID returns the tag with the given id.
func (r *Registry) FindByID(id int) (models.Tag, bool) {
	var tag models.Tag
	if !storage.ReadJSON(storage.EntityFile(r.root, r.kind.Folder, id), &tag) {
		return models.Tag{}, false
	}
	if strings.TrimSpace(tag.Title) == "" {
		return models.Tag{}, false
	}
	tag.ID = id
	return tag, true
}

// EnsureExists guarantees a tag with the given title exists, creating it if
// necessary, and returns the stored title. When a tag already matches
// case-insensitively the existing stored casing is returned, not the input:
// on case-insensitive filesystems "Adventure" and "ADVENTURE" are the same
// folder, and callers must converge on one spelling. Blank input returns ""
// without error.
func (r *Registry) EnsureExists(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", nil
	}

	if existing, ok := r.Find(title); ok {
		return existing.Title, nil
	}

	if err := r.create(title); err != nil {
		return "", err
	}
	return title, nil
}

// EnsureExistsBatch creates every missing title in one pass, loading the
// registry once instead of rescanning per title.
func (r *Registry) EnsureExistsBatch(titles []string) error {
	existing := r.Load()

	for _, title := range titles {
		title = strings.TrimSpace(title)
		if title == "" {
			continue
		}

		found := false
		for _, tag := range existing {
			if strings.EqualFold(tag.Title, title) {
				found = true
				break
			}
		}
		if found {
			continue
		}

		if err := r.create(title); err != nil {
			return err
		}
		existing = append(existing, models.Tag{ID: storage.TitleHash(title), Title: title})
	}
	return nil
}

// Create adds a new tag, failing with ErrTitleExists when the title is
// already present in any casing.
func (r *Registry) Create(title string) (models.Tag, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return models.Tag{}, fmt.Errorf("%s title must not be blank", r.kind.Name)
	}

	if existing, ok := r.Find(title); ok {
		return existing, fmt.Errorf("%s %q: %w", r.kind.Name, existing.Title, ErrTitleExists)
	}

	if err := r.create(title); err != nil {
		return models.Tag{}, err
	}
	return models.Tag{ID: storage.TitleHash(title), Title: title}, nil
}

// create writes a new tag entity without an existence check.
func (r *Registry) create(title string) error {
	id := storage.TitleHash(title)
	path := storage.EntityFile(r.root, r.kind.Folder, id)

	if err := storage.WriteJSON(path, models.Tag{Title: title}); err != nil {
		logging.Error().Err(err).
			Str("kind", r.kind.Name).
			Str("title", title).
			Msg("Failed to create tag")
		return fmt.Errorf("create %s %q: %w", r.kind.Name, title, err)
	}

	logging.Debug().Str("kind", r.kind.Name).Str("title", title).Int("id", id).Msg("Tag created")
	return nil
}

// Usage counts the games whose annotated field references the tag, matching
// migrated id references and legacy title references alike.
func (r *Registry) Usage(tag models.Tag, games map[int]*models.Game) int {
	count := 0
	for _, game := range games {
		for _, ref := range game.TagRefs(r.kind.GameField) {
			if ref.ID == tag.ID && !ref.IsLegacy() {
				count++
				break
			}
			if ref.IsLegacy() && strings.EqualFold(ref.Title, tag.Title) {
				count++
				break
			}
		}
	}
	return count
}

// DeleteIfUnused removes the tag when no game in the snapshot references it.
// An unknown title is a no-op returning false, not an error; a referenced
// tag also returns false and survives. The snapshot must reflect the current
// cache state, including any game removed moments before - cleanup after a
// game delete passes the already-updated cache, never a fresh disk read.
func (r *Registry) DeleteIfUnused(title string, games map[int]*models.Game) (bool, error) {
	tag, ok := r.Find(title)
	if !ok {
		return false, nil
	}

	if used := r.Usage(tag, games); used > 0 {
		logging.Debug().
			Str("kind", r.kind.Name).
			Str("title", tag.Title).
			Int("usage", used).
			Msg("Tag still in use, not deleting")
		return false, nil
	}

	dir := storage.EntityDir(r.root, r.kind.Folder, tag.ID)
	if err := storage.RemoveFile(filepath.Join(dir, storage.MetadataFile)); err != nil {
		return false, fmt.Errorf("delete %s %q: %w", r.kind.Name, tag.Title, err)
	}
	storage.RemoveDirIfEmpty(dir)

	metrics.StoreDeletes.WithLabelValues(r.kind.Folder).Inc()
	logging.Info().Str("kind", r.kind.Name).Str("title", tag.Title).Msg("Tag deleted")
	return true, nil
}

// ResolveRefs resolves a mixed list of id and legacy title references to
// full tag objects, dropping entries that no longer resolve.
func (r *Registry) ResolveRefs(refs models.FlexRefs) []models.Tag {
	if len(refs) == 0 {
		return nil
	}

	known := r.Load()
	result := make([]models.Tag, 0, len(refs))

	for _, ref := range refs {
		for _, tag := range known {
			if ref.IsLegacy() && strings.EqualFold(tag.Title, ref.Title) {
				result = append(result, tag)
				break
			}
			if !ref.IsLegacy() && tag.ID == ref.ID {
				result = append(result, tag)
				break
			}
		}
	}
	return result
}

// NormalizeToIDs converts a mixed reference list to pure ids, creating
// missing tags for legacy title references. This is the migration helper
// behind both the startup legacy-field pass and patch normalization.
func (r *Registry) NormalizeToIDs(refs models.FlexRefs) ([]int, error) {
	ids := make([]int, 0, len(refs))

	for _, ref := range refs {
		if !ref.IsLegacy() {
			ids = append(ids, ref.ID)
			continue
		}

		stored, err := r.EnsureExists(ref.Title)
		if err != nil {
			return nil, err
		}
		if stored == "" {
			continue
		}
		ids = append(ids, storage.TitleHash(stored))
	}
	return ids, nil
}
