// Ludarium - Personal Game Library Media Server
// Copyright 2026 Ludarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludarium/ludarium

package library

import (
	"github.com/ludarium/ludarium/internal/logging"
	"github.com/ludarium/ludarium/internal/models"
)

// cleanupReferences runs the cross-reference integrity pass after a game
// delete: every tag the game carried is deleted if it became unused, and the
// game id is stripped from every membership list and recommended section.
//
// The usage scan runs against the cache snapshot taken after the removal,
// never a fresh disk read - a disk rescan could race a concurrent write and
// resurrect a reference the cache already dropped.
//
// Cleanup is best-effort and idempotent per entity: one failed step is
// logged and does not roll back or stop the remaining steps.
func (s *Store) cleanupReferences(gameID int, captured map[models.TagField]models.FlexRefs) {
	snapshot := s.games.Snapshot()

	for field, refs := range captured {
		registry := s.tagRegistries[field]
		for _, tag := range registry.ResolveRefs(refs) {
			if _, err := registry.DeleteIfUnused(tag.Title, snapshot); err != nil {
				logging.Warn().Err(err).
					Str("kind", registry.Kind().Name).
					Str("title", tag.Title).
					Msg("Orphan tag cleanup failed")
			}
		}
	}

	// Membership cleanup is unconditional: cheap no-ops when the game was
	// not a member anywhere.
	if _, err := s.collections.RemoveGameFromAll(gameID); err != nil {
		logging.Warn().Err(err).Int("game", gameID).Msg("Collection membership cleanup failed")
	}
	if _, err := s.developers.RemoveGameFromAll(gameID); err != nil {
		logging.Warn().Err(err).Int("game", gameID).Msg("Developer membership cleanup failed")
	}
	if _, err := s.publishers.RemoveGameFromAll(gameID); err != nil {
		logging.Warn().Err(err).Int("game", gameID).Msg("Publisher membership cleanup failed")
	}
	if _, err := s.sections.RemoveGame(gameID); err != nil {
		logging.Warn().Err(err).Int("game", gameID).Msg("Recommended section cleanup failed")
	}
}
