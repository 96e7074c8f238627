// Ludarium - Personal Game Library Media Server
// Copyright 2026 Ludarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludarium/ludarium

package library

import (
	"fmt"

	"github.com/ludarium/ludarium/internal/collections"
	"github.com/ludarium/ludarium/internal/logging"
	"github.com/ludarium/ludarium/internal/models"
)

// GamePatch is the typed allow-list of writable game fields. A nil pointer
// means the field is absent from the request and keeps its stored value;
// only the fields below can be changed through the update path, whatever
// else a request body carries.
type GamePatch struct {
	Title   *string
	Summary *string

	ReleaseDay   *int
	ReleaseMonth *int
	ReleaseYear  *int

	Rating       *float64
	CriticRating *float64
	UserRating   *float64

	Genres             *models.FlexRefs
	Themes             *models.FlexRefs
	Platforms          *models.FlexRefs
	GameEngines        *models.FlexRefs
	GameModes          *models.FlexRefs
	PlayerPerspectives *models.FlexRefs

	Developers *[]models.CompanyRef
	Publishers *[]models.CompanyRef

	Franchises  *[]models.NameRef
	Series      *[]models.NameRef
	Collections *[]models.NameRef
	Keywords    *[]string

	// Executables is tri-state: absent (nil) keeps the stored value, Clear
	// deletes every script file and drops the field, otherwise Names is the
	// authoritative desired set.
	Executables *ExecutablesPatch

	ShowTitle *bool
}

// ExecutablesPatch carries the executables part of a game patch.
type ExecutablesPatch struct {
	Clear bool
	Names []string
}

// tagPatch pairs a patched tag field with its new references.
func (p *GamePatch) tagPatches() map[models.TagField]*models.FlexRefs {
	return map[models.TagField]*models.FlexRefs{
		models.FieldGenres:             p.Genres,
		models.FieldThemes:             p.Themes,
		models.FieldPlatforms:          p.Platforms,
		models.FieldGameEngines:        p.GameEngines,
		models.FieldGameModes:          p.GameModes,
		models.FieldPlayerPerspectives: p.PlayerPerspectives,
	}
}

// Update applies an allow-listed patch to a game and persists the result.
// Tag references in the patch are normalized to pure ids (creating missing
// tags); developer and publisher changes are diffed against the stored
// value so membership lists stay symmetric with the game's fields.
func (s *Store) Update(id int, patch *GamePatch) (*models.Game, error) {
	current, ok := s.games.Get(id)
	if !ok {
		return nil, fmt.Errorf("game %d: %w", id, ErrNotFound)
	}

	game := *current

	applyScalar(&game, patch)

	for field, refs := range patch.tagPatches() {
		if refs == nil {
			continue
		}
		ids, err := s.tagRegistries[field].NormalizeToIDs(*refs)
		if err != nil {
			return nil, fmt.Errorf("normalize %s: %w", field, err)
		}
		game.SetTagRefs(field, models.RefsFromIDs(ids))
	}

	if patch.Developers != nil {
		if err := s.diffCompanies(s.developers, id, game.Developers, *patch.Developers); err != nil {
			return nil, err
		}
		game.Developers = *patch.Developers
	}
	if patch.Publishers != nil {
		if err := s.diffCompanies(s.publishers, id, game.Publishers, *patch.Publishers); err != nil {
			return nil, err
		}
		game.Publishers = *patch.Publishers
	}

	if patch.Executables != nil {
		if patch.Executables.Clear {
			if err := s.deleteAllExecutables(id); err != nil {
				return nil, err
			}
			game.Executables = nil
		} else if err := s.applyExecutables(&game, patch.Executables.Names); err != nil {
			return nil, err
		}
	}

	if err := s.Save(&game); err != nil {
		return nil, err
	}

	logging.Debug().Int("game", id).Msg("Game updated")
	return &game, nil
}

// applyScalar copies the plain allow-listed fields from patch to game.
func applyScalar(game *models.Game, patch *GamePatch) {
	if patch.Title != nil {
		game.Title = *patch.Title
	}
	if patch.Summary != nil {
		game.Summary = *patch.Summary
	}
	if patch.ReleaseDay != nil {
		game.ReleaseDay = *patch.ReleaseDay
	}
	if patch.ReleaseMonth != nil {
		game.ReleaseMonth = *patch.ReleaseMonth
	}
	if patch.ReleaseYear != nil {
		game.ReleaseYear = *patch.ReleaseYear
	}
	if patch.Rating != nil {
		game.Rating = *patch.Rating
	}
	if patch.CriticRating != nil {
		game.CriticRating = *patch.CriticRating
	}
	if patch.UserRating != nil {
		game.UserRating = *patch.UserRating
	}
	if patch.Franchises != nil {
		game.Franchises = *patch.Franchises
	}
	if patch.Series != nil {
		game.Series = *patch.Series
	}
	if patch.Collections != nil {
		game.Collections = *patch.Collections
	}
	if patch.Keywords != nil {
		game.Keywords = *patch.Keywords
	}
	if patch.ShowTitle != nil {
		game.ShowTitle = *patch.ShowTitle
	}
}

// diffCompanies reconciles a company reference change: ids present in the
// stored value but absent from the patch lose the game from their
// membership; every id in the patch is ensured and gains the game.
func (s *Store) diffCompanies(registry *collections.Registry, gameID int, old, updated []models.CompanyRef) error {
	incoming := make(map[int]bool, len(updated))
	for _, ref := range updated {
		incoming[ref.ID] = true
	}

	for _, ref := range old {
		if incoming[ref.ID] {
			continue
		}
		if err := registry.RemoveGame(ref.ID, gameID); err != nil {
			// Membership cleanup is best-effort: a reference to an entity
			// that never materialized is not a reason to fail the patch.
			logging.Warn().Err(err).Int("entity", ref.ID).Int("game", gameID).Msg("Membership removal failed")
		}
	}

	return registry.EnsureBatch(companyItems(updated), gameID)
}
