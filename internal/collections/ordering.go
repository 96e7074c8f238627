// Ludarium - Personal Game Library Media Server
// Copyright 2026 Ludarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludarium/ludarium

package collections

import (
	"fmt"
	"sort"

	"github.com/ludarium/ludarium/internal/models"
)

// ApplyOrder replaces a collection's membership order from a client-supplied
// id list. Duplicate ids are dropped keeping the first occurrence, then one
// of two paths runs:
//
//   - Single addition (one new id, list one longer than the stored one): the
//     new game is inserted into the existing order at the position its
//     release date dictates, not appended.
//   - Anything else is a full reorder: the entire incoming list is stably
//     sorted by release date ascending.
//
// Release dates compare year, then month, then day; games without a date -
// including ids that no longer resolve in the snapshot - sort last. The
// resulting order is persisted and returned.
func (r *Registry) ApplyOrder(id int, requested []int, games map[int]*models.Game) ([]int, error) {
	c, ok := r.FindByID(id)
	if !ok {
		return nil, fmt.Errorf("%s %d: %w", r.kind.Name, id, ErrNotFound)
	}

	incoming := dedupeKeepFirst(requested)

	var order []int
	if added, ok := singleAddition(c.Games, incoming); ok {
		order = insertByReleaseDate(c.Games, added, games)
	} else {
		order = sortByReleaseDate(incoming, games)
	}

	c.Games = order
	if err := r.Save(c); err != nil {
		return nil, err
	}
	return order, nil
}

// dedupeKeepFirst drops duplicate ids, keeping each id's first occurrence.
func dedupeKeepFirst(ids []int) []int {
	seen := make(map[int]bool, len(ids))
	result := make([]int, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		result = append(result, id)
	}
	return result
}

// singleAddition reports whether incoming is the stored list plus exactly
// one new id, returning that id.
func singleAddition(stored, incoming []int) (int, bool) {
	if len(incoming) != len(stored)+1 {
		return 0, false
	}

	existing := make(map[int]bool, len(stored))
	for _, id := range stored {
		existing[id] = true
	}

	added, count := 0, 0
	for _, id := range incoming {
		if !existing[id] {
			added = id
			count++
		}
	}
	if count != 1 {
		return 0, false
	}
	return added, true
}

// insertByReleaseDate inserts the added game into the stored order before
// the first member it predates. An added game without a resolvable release
// date goes last.
func insertByReleaseDate(stored []int, added int, games map[int]*models.Game) []int {
	addedGame := games[added]

	pos := len(stored)
	if addedGame != nil {
		for i, memberID := range stored {
			member := games[memberID]
			if member == nil {
				continue
			}
			if addedGame.ReleaseBefore(member) {
				pos = i
				break
			}
		}
	}

	result := make([]int, 0, len(stored)+1)
	result = append(result, stored[:pos]...)
	result = append(result, added)
	result = append(result, stored[pos:]...)
	return result
}

// sortByReleaseDate stably sorts ids ascending by release date, unresolvable
// and undated ids last.
func sortByReleaseDate(ids []int, games map[int]*models.Game) []int {
	result := make([]int, len(ids))
	copy(result, ids)

	sort.SliceStable(result, func(i, j int) bool {
		a, b := games[result[i]], games[result[j]]
		if a == nil || b == nil {
			return b == nil && a != nil
		}
		return a.ReleaseBefore(b)
	})
	return result
}
