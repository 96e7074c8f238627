// Ludarium - Personal Game Library Media Server
// Copyright 2026 Ludarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludarium/ludarium

package recommend

import (
	"math/rand"
	"strconv"
	"testing"

	"github.com/ludarium/ludarium/internal/models"
)

func keywordGame(id int, rating float64, keywords ...string) *models.Game {
	return &models.Game{
		ID:           id,
		Title:        "Game " + strconv.Itoa(id),
		CriticRating: rating,
		Keywords:     keywords,
	}
}

func TestEnsureSectionsCompleteDerivesFromKeywords(t *testing.T) {
	s := NewStore(t.TempDir())

	games := map[int]*models.Game{
		1: keywordGame(1, 90, "roguelike", "pixel art"),
		2: keywordGame(2, 70, "roguelike"),
		3: keywordGame(3, 0, " roguelike ", "solo keyword"),
		4: keywordGame(4, 80, "pixel art"),
	}

	if err := s.EnsureSectionsComplete(games); err != nil {
		t.Fatalf("EnsureSectionsComplete failed: %v", err)
	}

	sections := s.Load()
	if len(sections) != 2 {
		t.Fatalf("Expected 2 sections (solo keyword excluded), got %d", len(sections))
	}

	var roguelike *models.Section
	for i := range sections {
		if sections[i].Title == "roguelike" {
			roguelike = &sections[i]
		}
	}
	if roguelike == nil {
		t.Fatal("Expected a roguelike section")
	}

	// Descending critic rating, unrated last.
	want := []int{1, 2, 3}
	if len(roguelike.Games) != len(want) {
		t.Fatalf("Expected %v, got %v", want, roguelike.Games)
	}
	for i := range want {
		if roguelike.Games[i] != want[i] {
			t.Fatalf("Expected %v, got %v", want, roguelike.Games)
		}
	}
}

func TestEnsureSectionsCompleteKeepsHandAuthored(t *testing.T) {
	s := NewStore(t.TempDir())

	// Hand-authored section whose title collides with a derived keyword in
	// a different casing: the existing section wins, no duplicate.
	if err := s.Save(models.Section{ID: 42, Title: "Roguelike"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	games := map[int]*models.Game{
		1: keywordGame(1, 90, "roguelike"),
		2: keywordGame(2, 70, "roguelike"),
	}
	if err := s.EnsureSectionsComplete(games); err != nil {
		t.Fatalf("EnsureSectionsComplete failed: %v", err)
	}

	sections := s.Load()
	if len(sections) != 1 {
		t.Fatalf("Expected 1 section, got %d", len(sections))
	}
	if sections[0].ID != 42 || sections[0].Title != "Roguelike" {
		t.Errorf("Expected hand-authored section kept, got %+v", sections[0])
	}
	// Membership is still refreshed against the keyword.
	if len(sections[0].Games) != 2 {
		t.Errorf("Expected refreshed membership, got %v", sections[0].Games)
	}
}

func TestEnsureSectionsCompleteCapsAtTen(t *testing.T) {
	s := NewStore(t.TempDir())

	games := make(map[int]*models.Game)
	for i := 1; i <= 15; i++ {
		games[i] = keywordGame(i, float64(i), "metroidvania")
	}

	if err := s.EnsureSectionsComplete(games); err != nil {
		t.Fatalf("EnsureSectionsComplete failed: %v", err)
	}

	sections := s.Load()
	if len(sections) != 1 {
		t.Fatalf("Expected 1 section, got %d", len(sections))
	}
	if len(sections[0].Games) != SectionSize {
		t.Errorf("Expected %d games, got %d", SectionSize, len(sections[0].Games))
	}
	// Highest rated first.
	if sections[0].Games[0] != 15 {
		t.Errorf("Expected game 15 first, got %d", sections[0].Games[0])
	}
}

func TestSampleWithoutReplacement(t *testing.T) {
	s := NewStore(t.TempDir())

	for i := 1; i <= 12; i++ {
		if err := s.Save(models.Section{ID: i, Title: "Section " + strconv.Itoa(i)}); err != nil {
			t.Fatalf("Save failed: %v", err)
		}
	}

	rng := rand.New(rand.NewSource(1))
	picked := s.Sample(9, rng)
	if len(picked) != 9 {
		t.Fatalf("Expected 9 sections, got %d", len(picked))
	}

	seen := make(map[int]bool)
	for _, section := range picked {
		if seen[section.ID] {
			t.Fatalf("Section %d picked twice", section.ID)
		}
		seen[section.ID] = true
	}

	// Fewer sections than requested: all returned.
	few := NewStore(t.TempDir())
	if err := few.Save(models.Section{ID: 1, Title: "Only"}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if got := few.Sample(9, rng); len(got) != 1 {
		t.Errorf("Expected 1 section, got %d", len(got))
	}
}

func TestRemoveGame(t *testing.T) {
	s := NewStore(t.TempDir())

	if err := s.Save(models.Section{ID: 1, Title: "A", Games: []int{5, 6}}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if err := s.Save(models.Section{ID: 2, Title: "B", Games: []int{6}}); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	changed, err := s.RemoveGame(6)
	if err != nil {
		t.Fatalf("RemoveGame failed: %v", err)
	}
	if changed != 2 {
		t.Errorf("Expected 2 sections changed, got %d", changed)
	}

	sections := s.Load()
	for _, section := range sections {
		for _, id := range section.Games {
			if id == 6 {
				t.Errorf("Game 6 still present in section %d", section.ID)
			}
		}
	}
}
