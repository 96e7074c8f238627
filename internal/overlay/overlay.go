// Ludarium - Personal Game Library Media Server
// Copyright 2026 Ludarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludarium/ludarium

// Package overlay backs the series and franchises folders. Unlike tags and
// collections these entities are not created or deleted through the API:
// the entity list is derived from the references stored on games, and the
// content folder only persists display metadata and cover images for
// entities a user has customized.
package overlay

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/ludarium/ludarium/internal/models"
	"github.com/ludarium/ludarium/internal/storage"
)

// Kind describes one overlay folder and the game field it derives from.
type Kind struct {
	Folder string
	Name   string
	Refs   func(*models.Game) []models.NameRef
}

// The two overlay kinds.
var (
	Series = Kind{
		Folder: "series",
		Name:   "series",
		Refs:   func(g *models.Game) []models.NameRef { return g.Series },
	}
	Franchises = Kind{
		Folder: "franchises",
		Name:   "franchise",
		Refs:   func(g *models.Game) []models.NameRef { return g.Franchises },
	}
)

// Kinds lists every overlay kind, in route registration order.
var Kinds = []Kind{Series, Franchises}

// Store reads and writes one overlay folder.
type Store struct {
	root string
	kind Kind
}

func NewStore(root string, kind Kind) *Store {
	return &Store{root: root, kind: kind}
}

// Kind returns the kind this store was built for.
func (s *Store) Kind() Kind {
	return s.kind
}

// CoverPath returns the cover image path for an entity id.
func (s *Store) CoverPath(id int) string {
	return filepath.Join(storage.EntityDir(s.root, s.kind.Folder, id), "cover.webp")
}

// List derives the entity set from the given games. References without an
// upstream id get a derived id from the normalized name, so repeated bare
// strings collapse into one entity. Persisted metadata contributes the
// ShowTitle flag; entities on disk that no game references anymore are not
// listed.
func (s *Store) List(games map[int]*models.Game) []models.Tag {
	byID := make(map[int]*models.Tag)
	for _, game := range games {
		for _, ref := range s.kind.Refs(game) {
			name := strings.TrimSpace(ref.Name)
			if name == "" {
				continue
			}
			id := ref.ID
			if id == 0 {
				id = storage.TitleHash(name)
			}
			if _, ok := byID[id]; !ok {
				byID[id] = &models.Tag{ID: id, Title: name}
			}
		}
	}

	list := make([]models.Tag, 0, len(byID))
	for id, entity := range byID {
		var meta models.Tag
		if storage.ReadJSON(storage.EntityFile(s.root, s.kind.Folder, id), &meta) {
			entity.ShowTitle = meta.ShowTitle
		}
		list = append(list, *entity)
	}
	sort.Slice(list, func(i, j int) bool {
		return strings.ToLower(list[i].Title) < strings.ToLower(list[j].Title)
	})
	return list
}

// Find resolves one derived entity by id.
func (s *Store) Find(id int, games map[int]*models.Game) (models.Tag, bool) {
	for _, entity := range s.List(games) {
		if entity.ID == id {
			return entity, true
		}
	}
	return models.Tag{}, false
}

// EnsureMeta persists the entity's metadata file if it does not exist yet.
// Called before a cover upload so the folder carries its title alongside
// the image.
func (s *Store) EnsureMeta(id int, title string) error {
	path := storage.EntityFile(s.root, s.kind.Folder, id)
	var existing models.Tag
	if storage.ReadJSON(path, &existing) && existing.Title != "" {
		return nil
	}
	if err := storage.EnsureDir(filepath.Dir(path)); err != nil {
		return err
	}
	return storage.WriteJSON(path, models.Tag{Title: title})
}
