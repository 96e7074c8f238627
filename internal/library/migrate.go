// Ludarium - Personal Game Library Media Server
// Copyright 2026 Ludarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludarium/ludarium

package library

import (
	"fmt"

	"github.com/ludarium/ludarium/internal/models"
	"github.com/ludarium/ludarium/internal/storage"
)

// MigrateLegacyTagFields rewrites every game whose tag fields still hold
// title strings into the id form, creating missing tags on the way. The
// detection rule is per field: any element still carrying a title marks the
// field legacy.
//
// This pass used to run implicitly inside every load; it is now an explicit
// startup step so the hot read path stays side-effect-free. It returns the
// number of games rewritten and is a no-op on an already-migrated root.
func (s *Store) MigrateLegacyTagFields() (int, error) {
	ids := storage.NumericSubdirs(storage.FolderDir(s.root, Folder))
	migrated := 0

	for _, id := range ids {
		var game models.Game
		path := storage.EntityFile(s.root, Folder, id)
		if !storage.ReadJSON(path, &game) {
			continue
		}
		game.ID = id

		changed := false
		for field, registry := range s.tagRegistries {
			refs := game.TagRefs(field)
			if !refs.HasLegacy() {
				continue
			}

			normalized, err := registry.NormalizeToIDs(refs)
			if err != nil {
				return migrated, fmt.Errorf("migrate game %d field %s: %w", id, field, err)
			}
			game.SetTagRefs(field, models.RefsFromIDs(normalized))
			changed = true
		}
		if !changed {
			continue
		}

		// Written directly rather than through Save: the cache is not
		// warmed yet when this pass runs.
		onDisk := game
		onDisk.ID = 0
		if err := storage.WriteJSON(path, onDisk); err != nil {
			return migrated, fmt.Errorf("migrate game %d: %w", id, err)
		}
		migrated++
	}
	return migrated, nil
}
