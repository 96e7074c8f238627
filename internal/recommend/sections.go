// Ludarium - Personal Game Library Media Server
// Copyright 2026 Ludarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludarium/ludarium

// Package recommend implements the recommended-sections store. A section
// groups up to ten games under a keyword-derived title; sections are
// re-derived from keyword co-occurrence across the library and merged with
// any hand-authored sections already on disk.
//
// Section membership may reference games that no longer exist. That is not
// an error: the read path filters dead ids through the live game cache.
package recommend

import (
	"fmt"
	"math/rand"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ludarium/ludarium/internal/logging"
	"github.com/ludarium/ludarium/internal/metrics"
	"github.com/ludarium/ludarium/internal/models"
	"github.com/ludarium/ludarium/internal/storage"
)

// Folder is the content folder holding section entities.
const Folder = "recommended"

// SectionSize caps how many games a derived section holds.
const SectionSize = 10

// MinKeywordGames is the minimum number of games sharing a keyword for that
// keyword to earn a section.
const MinKeywordGames = 2

// Store provides CRUD and derivation over recommended sections rooted at a
// metadata root.
type Store struct {
	root string
}

// NewStore creates a section store.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Dir returns the sections content folder path.
func (s *Store) Dir() string {
	return storage.FolderDir(s.root, Folder)
}

// Load returns every valid section, sorted by title for stable iteration.
// Non-numeric folders and records without a title are skipped.
func (s *Store) Load() []models.Section {
	ids := storage.NumericSubdirs(s.Dir())
	result := make([]models.Section, 0, len(ids))

	for _, id := range ids {
		var section models.Section
		if !storage.ReadJSON(storage.EntityFile(s.root, Folder, id), &section) {
			continue
		}
		if strings.TrimSpace(section.Title) == "" {
			continue
		}
		section.ID = id
		if section.Games == nil {
			section.Games = []int{}
		}
		result = append(result, section)
	}

	sort.SliceStable(result, func(i, j int) bool {
		return strings.ToLower(result[i].Title) < strings.ToLower(result[j].Title)
	})
	return result
}

// Save persists a section under its id, stripping the id from the file body.
func (s *Store) Save(section models.Section) error {
	id := section.ID
	section.ID = 0
	if section.Games == nil {
		section.Games = []int{}
	}

	if err := storage.WriteJSON(storage.EntityFile(s.root, Folder, id), section); err != nil {
		return fmt.Errorf("save section %d: %w", id, err)
	}
	return nil
}

// EnsureSectionsComplete derives one section per keyword shared by at least
// MinKeywordGames games and refreshes the membership of every section, new
// and pre-existing. Keywords are trimmed and counted case-sensitively;
// a derived section whose title collides case-insensitively with an
// existing section is skipped, the existing section wins. Every section's
// membership is rebuilt as the top SectionSize keyword-matching games by
// descending critic rating, unrated games last.
func (s *Store) EnsureSectionsComplete(games map[int]*models.Game) error {
	existing := s.Load()

	sections := make([]models.Section, 0, len(existing))
	sections = append(sections, existing...)

	for keyword, count := range keywordCounts(games) {
		if count < MinKeywordGames {
			continue
		}

		collides := false
		for _, section := range sections {
			if strings.EqualFold(section.Title, keyword) {
				collides = true
				break
			}
		}
		if collides {
			continue
		}

		sections = append(sections, models.Section{
			ID:    storage.TitleHash(keyword),
			Title: keyword,
		})
	}

	for _, section := range sections {
		section.Games = topMatching(section.Title, games)
		if err := s.Save(section); err != nil {
			return err
		}
	}

	logging.Info().Int("sections", len(sections)).Msg("Recommended sections derived")
	return nil
}

// keywordCounts tallies how many games carry each trimmed keyword.
// Duplicate keywords within one game count once.
func keywordCounts(games map[int]*models.Game) map[string]int {
	counts := make(map[string]int)
	for _, game := range games {
		seen := make(map[string]bool, len(game.Keywords))
		for _, keyword := range game.Keywords {
			keyword = strings.TrimSpace(keyword)
			if keyword == "" || seen[keyword] {
				continue
			}
			seen[keyword] = true
			counts[keyword]++
		}
	}
	return counts
}

// topMatching returns the ids of the top SectionSize games carrying the
// keyword, by descending critic rating. Unrated games sort last. The match
// is case-insensitive so hand-authored section titles find their keyword
// regardless of casing.
func topMatching(keyword string, games map[int]*models.Game) []int {
	matching := make([]*models.Game, 0)
	for _, game := range games {
		for _, k := range game.Keywords {
			if strings.EqualFold(strings.TrimSpace(k), keyword) {
				matching = append(matching, game)
				break
			}
		}
	}

	sort.SliceStable(matching, func(i, j int) bool {
		a, b := matching[i], matching[j]
		if (a.CriticRating == 0) != (b.CriticRating == 0) {
			return b.CriticRating == 0
		}
		if a.CriticRating != b.CriticRating {
			return a.CriticRating > b.CriticRating
		}
		// Deterministic order among equals.
		return a.ID < b.ID
	})

	ids := make([]int, 0, SectionSize)
	for _, game := range matching {
		if len(ids) == SectionSize {
			break
		}
		ids = append(ids, game.ID)
	}
	return ids
}

// Sample returns up to n sections chosen uniformly at random without
// replacement.
func (s *Store) Sample(n int, rng *rand.Rand) []models.Section {
	sections := s.Load()
	if len(sections) <= n {
		rng.Shuffle(len(sections), func(i, j int) {
			sections[i], sections[j] = sections[j], sections[i]
		})
		return sections
	}

	picked := rng.Perm(len(sections))[:n]
	result := make([]models.Section, 0, n)
	for _, idx := range picked {
		result = append(result, sections[idx])
	}
	return result
}

// RemoveGame strips the game id from every section's membership, persisting
// only changed sections. Used by the integrity pass after a game delete.
func (s *Store) RemoveGame(gameID int) (int, error) {
	changed := 0
	for _, section := range s.Load() {
		idx := -1
		for i, id := range section.Games {
			if id == gameID {
				idx = i
				break
			}
		}
		if idx < 0 {
			continue
		}

		section.Games = append(section.Games[:idx], section.Games[idx+1:]...)
		if err := s.Save(section); err != nil {
			return changed, err
		}
		changed++
	}
	return changed, nil
}

// Delete removes a section's metadata file and empty directory.
func (s *Store) Delete(id int) error {
	dir := storage.EntityDir(s.root, Folder, id)
	if err := storage.RemoveFile(filepath.Join(dir, storage.MetadataFile)); err != nil {
		return fmt.Errorf("delete section %d: %w", id, err)
	}
	storage.RemoveDirIfEmpty(dir)
	metrics.StoreDeletes.WithLabelValues(Folder).Inc()
	return nil
}
