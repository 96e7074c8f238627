// Ludarium - Personal Game Library Media Server
// Copyright 2026 Ludarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludarium/ludarium

package library

import (
	"fmt"
	"os"
	"time"

	"github.com/ludarium/ludarium/internal/collections"
	"github.com/ludarium/ludarium/internal/igdb"
	"github.com/ludarium/ludarium/internal/logging"
	"github.com/ludarium/ludarium/internal/models"
	"github.com/ludarium/ludarium/internal/storage"
)

// Import materializes a catalog entry as a library game keyed by the
// catalog's own id. The id must be free in all three senses: not in the
// cache, no metadata file on disk, and no bare directory left over from a
// previous half-finished import - any of the three is a conflict.
func (s *Store) Import(entry *igdb.ValidatedGame) (*models.Game, error) {
	if entry.ID == 0 {
		return nil, fmt.Errorf("catalog entry has no id")
	}

	if err := s.checkFree(entry.ID); err != nil {
		return nil, err
	}

	game := &models.Game{
		ID:               entry.ID,
		Title:            entry.Title,
		Summary:          entry.Summary,
		CriticRating:     entry.AggregatedRating,
		UserRating:       entry.Rating,
		Keywords:         entry.Keywords,
		AlternativeNames: entry.AlternativeNames,
	}

	year, month, day := resolveReleaseDate(entry.FirstReleaseDate)
	game.ReleaseYear, game.ReleaseMonth, game.ReleaseDay = year, month, day

	for field, titles := range map[models.TagField][]string{
		models.FieldGenres:             entry.Genres,
		models.FieldThemes:             entry.Themes,
		models.FieldPlatforms:          entry.Platforms,
		models.FieldGameEngines:        entry.GameEngines,
		models.FieldGameModes:          entry.GameModes,
		models.FieldPlayerPerspectives: entry.Perspectives,
	} {
		if len(titles) == 0 {
			continue
		}
		refs := make(models.FlexRefs, len(titles))
		for i, title := range titles {
			refs[i] = models.FlexRef{Title: title}
		}
		ids, err := s.tagRegistries[field].NormalizeToIDs(refs)
		if err != nil {
			return nil, fmt.Errorf("import game %d: %w", entry.ID, err)
		}
		game.SetTagRefs(field, models.RefsFromIDs(ids))
	}

	game.Developers = companyRefs(entry.Developers)
	game.Publishers = companyRefs(entry.Publishers)
	for _, name := range entry.Franchises {
		game.Franchises = append(game.Franchises, models.NameRef{Name: name})
	}
	for _, similar := range entry.SimilarGames {
		game.SimilarGames = append(game.SimilarGames, models.NameRef{ID: similar.ID, Name: similar.Name})
	}

	if err := s.developers.EnsureBatch(companyEnsureItems(entry.Developers), game.ID); err != nil {
		return nil, err
	}
	if err := s.publishers.EnsureBatch(companyEnsureItems(entry.Publishers), game.ID); err != nil {
		return nil, err
	}

	if err := s.Save(game); err != nil {
		return nil, err
	}

	logging.Info().Int("game", game.ID).Str("title", game.Title).Msg("Game imported from catalog")
	return game, nil
}

// checkFree verifies no trace of the id exists: cached game, metadata file,
// or bare directory without metadata.
func (s *Store) checkFree(id int) error {
	if s.games.Has(id) {
		return fmt.Errorf("game %d is already in the library: %w", id, ErrAlreadyExists)
	}
	if _, err := os.Stat(storage.EntityFile(s.root, Folder, id)); err == nil {
		return fmt.Errorf("game %d already has metadata on disk: %w", id, ErrAlreadyExists)
	}
	if _, err := os.Stat(s.GameDir(id)); err == nil {
		return fmt.Errorf("game %d directory already exists: %w", id, ErrAlreadyExists)
	}
	return nil
}

// resolveReleaseDate interprets the catalog's release value. Values inside
// the plausible year window 1970-2100 are bare years; otherwise, if reading
// the value as UNIX seconds lands in that window, it is a timestamp. Values
// matching neither reading are dropped.
func resolveReleaseDate(raw int64) (year, month, day int) {
	if raw == 0 {
		return 0, 0, 0
	}

	if raw >= 1970 && raw <= 2100 {
		return int(raw), 0, 0
	}

	t := time.Unix(raw, 0).UTC()
	if t.Year() >= 1970 && t.Year() <= 2100 {
		return t.Year(), int(t.Month()), t.Day()
	}
	return 0, 0, 0
}

// companyRefs converts catalog companies to game field references.
func companyRefs(companies []igdb.Company) []models.CompanyRef {
	if len(companies) == 0 {
		return nil
	}
	refs := make([]models.CompanyRef, len(companies))
	for i, c := range companies {
		refs[i] = models.CompanyRef{ID: c.ID, Name: c.Name}
	}
	return refs
}

// companyEnsureItems converts catalog companies to ensure-batch items,
// carrying logo and description through for newly materialized entities.
func companyEnsureItems(companies []igdb.Company) []collections.EnsureItem {
	items := make([]collections.EnsureItem, len(companies))
	for i, c := range companies {
		items[i] = collections.EnsureItem{
			ID:          c.ID,
			Name:        c.Name,
			Logo:        c.Logo,
			Description: c.Description,
		}
	}
	return items
}
