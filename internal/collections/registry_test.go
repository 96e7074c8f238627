// Ludarium - Personal Game Library Media Server
// Copyright 2026 Ludarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludarium/ludarium

package collections

import (
	"errors"
	"testing"
	"time"

	"github.com/ludarium/ludarium/internal/models"
)

// fixedClock makes timestamp ids deterministic and distinct per creation.
func fixedClock(start int64) func() time.Time {
	t := start
	return func() time.Time {
		t++
		return time.UnixMilli(t)
	}
}

func TestCreateAssignsTimestampID(t *testing.T) {
	r := NewRegistry(t.TempDir(), Collections)
	r.now = fixedClock(1700000000000)

	c, err := r.Create("My Favorites", "hand-picked")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if c.ID != 1700000000001 {
		t.Errorf("Expected timestamp id, got %d", c.ID)
	}
	if len(c.Games) != 0 {
		t.Errorf("Expected empty membership, got %v", c.Games)
	}

	loaded, ok := r.FindByID(c.ID)
	if !ok {
		t.Fatal("Expected collection to load back")
	}
	if loaded.Title != "My Favorites" || loaded.Summary != "hand-picked" {
		t.Errorf("Unexpected round trip: %+v", loaded)
	}
}

func TestCreateTitleConflict(t *testing.T) {
	r := NewRegistry(t.TempDir(), Collections)
	r.now = fixedClock(1700000000000)

	if _, err := r.Create("Backlog", ""); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	existing, err := r.Create("BACKLOG", "")
	if !errors.Is(err, ErrTitleExists) {
		t.Fatalf("Expected ErrTitleExists, got %v", err)
	}
	if existing.Title != "Backlog" {
		t.Errorf("Expected original casing echoed, got %q", existing.Title)
	}
}

func TestEnsureBatchMaterializesAndAppends(t *testing.T) {
	r := NewRegistry(t.TempDir(), Developers)

	items := []EnsureItem{
		{ID: 70, Name: "Nintendo", Logo: "//images.example/nintendo.png"},
		{ID: 0, Name: "invalid, skipped"},
		{ID: 51, Name: "  Capcom  "},
	}
	if err := r.EnsureBatch(items, 42); err != nil {
		t.Fatalf("EnsureBatch failed: %v", err)
	}

	dev, ok := r.FindByID(70)
	if !ok {
		t.Fatal("Expected developer 70 to exist")
	}
	if dev.IGDBCover != "//images.example/nintendo.png" {
		t.Errorf("Expected logo carried over, got %q", dev.IGDBCover)
	}
	if !dev.HasGame(42) {
		t.Error("Expected game 42 in membership")
	}

	capcom, ok := r.FindByID(51)
	if !ok {
		t.Fatal("Expected developer 51 to exist")
	}
	if capcom.Title != "Capcom" {
		t.Errorf("Expected trimmed title, got %q", capcom.Title)
	}

	// Re-ensuring the same game is idempotent.
	if err := r.EnsureBatch(items[:1], 42); err != nil {
		t.Fatalf("EnsureBatch failed: %v", err)
	}
	dev, _ = r.FindByID(70)
	if len(dev.Games) != 1 {
		t.Errorf("Expected membership unchanged, got %v", dev.Games)
	}

	// A second game appends without disturbing the first.
	if err := r.EnsureBatch(items[:1], 99); err != nil {
		t.Fatalf("EnsureBatch failed: %v", err)
	}
	dev, _ = r.FindByID(70)
	if len(dev.Games) != 2 || dev.Games[0] != 42 || dev.Games[1] != 99 {
		t.Errorf("Expected [42 99], got %v", dev.Games)
	}
}

func TestEnsureBatchKeepsStoredTitle(t *testing.T) {
	r := NewRegistry(t.TempDir(), Publishers)

	if err := r.EnsureBatch([]EnsureItem{{ID: 7, Name: "Devolver Digital"}}, 1); err != nil {
		t.Fatalf("EnsureBatch failed: %v", err)
	}

	// Upstream renamed the company; the stored title wins.
	if err := r.EnsureBatch([]EnsureItem{{ID: 7, Name: "Devolver"}}, 2); err != nil {
		t.Fatalf("EnsureBatch failed: %v", err)
	}

	pub, _ := r.FindByID(7)
	if pub.Title != "Devolver Digital" {
		t.Errorf("Expected stored title kept, got %q", pub.Title)
	}
	if len(pub.Games) != 2 {
		t.Errorf("Expected both games, got %v", pub.Games)
	}
}

func TestRemoveGameFromAll(t *testing.T) {
	r := NewRegistry(t.TempDir(), Developers)

	if err := r.EnsureBatch([]EnsureItem{{ID: 10, Name: "A"}, {ID: 20, Name: "B"}}, 5); err != nil {
		t.Fatalf("EnsureBatch failed: %v", err)
	}
	if err := r.EnsureBatch([]EnsureItem{{ID: 20, Name: "B"}}, 6); err != nil {
		t.Fatalf("EnsureBatch failed: %v", err)
	}

	changed, err := r.RemoveGameFromAll(5)
	if err != nil {
		t.Fatalf("RemoveGameFromAll failed: %v", err)
	}
	if changed != 2 {
		t.Errorf("Expected 2 entities changed, got %d", changed)
	}

	a, _ := r.FindByID(10)
	if len(a.Games) != 0 {
		t.Errorf("Expected empty membership, got %v", a.Games)
	}
	b, _ := r.FindByID(20)
	if len(b.Games) != 1 || b.Games[0] != 6 {
		t.Errorf("Expected [6], got %v", b.Games)
	}

	// Absent everywhere: zero changes, no error.
	changed, err = r.RemoveGameFromAll(12345)
	if err != nil {
		t.Fatalf("RemoveGameFromAll failed: %v", err)
	}
	if changed != 0 {
		t.Errorf("Expected no changes, got %d", changed)
	}
}

func TestDeleteNotFound(t *testing.T) {
	r := NewRegistry(t.TempDir(), Collections)

	if err := r.Delete(123); !errors.Is(err, ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func released(id, year, month, day int) *models.Game {
	return &models.Game{ID: id, ReleaseYear: year, ReleaseMonth: month, ReleaseDay: day}
}

func TestApplyOrderSingleAddition(t *testing.T) {
	r := NewRegistry(t.TempDir(), Collections)
	r.now = fixedClock(1700000000000)

	c, err := r.Create("My Favorites", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	games := map[int]*models.Game{
		3: released(3, 1998, 11, 21),
		5: released(5, 2004, 3, 1),
	}

	order, err := r.ApplyOrder(c.ID, []int{5}, games)
	if err != nil {
		t.Fatalf("ApplyOrder failed: %v", err)
	}
	if len(order) != 1 || order[0] != 5 {
		t.Fatalf("Expected [5], got %v", order)
	}

	// Game 3 releases earlier than 5: inserted before, not appended.
	order, err = r.ApplyOrder(c.ID, []int{5, 3}, games)
	if err != nil {
		t.Fatalf("ApplyOrder failed: %v", err)
	}
	if len(order) != 2 || order[0] != 3 || order[1] != 5 {
		t.Errorf("Expected [3 5], got %v", order)
	}
}

func TestApplyOrderFullReorder(t *testing.T) {
	r := NewRegistry(t.TempDir(), Collections)
	r.now = fixedClock(1700000000000)

	c, err := r.Create("Chronological", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	games := map[int]*models.Game{
		1: released(1, 2010, 1, 1),
		2: released(2, 1995, 6, 15),
		3: {ID: 3}, // undated, sorts last
		4: released(4, 2001, 2, 2),
	}

	order, err := r.ApplyOrder(c.ID, []int{1, 2, 3, 4}, games)
	if err != nil {
		t.Fatalf("ApplyOrder failed: %v", err)
	}

	want := []int{2, 4, 1, 3}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("Expected %v, got %v", want, order)
		}
	}
}

func TestApplyOrderDeduplicates(t *testing.T) {
	r := NewRegistry(t.TempDir(), Collections)
	r.now = fixedClock(1700000000000)

	c, err := r.Create("Dupes", "")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	games := map[int]*models.Game{
		1: released(1, 2000, 1, 1),
		2: released(2, 1990, 1, 1),
	}

	order, err := r.ApplyOrder(c.ID, []int{1, 2, 1, 2, 1}, games)
	if err != nil {
		t.Fatalf("ApplyOrder failed: %v", err)
	}
	if len(order) != 2 || order[0] != 2 || order[1] != 1 {
		t.Errorf("Expected deduplicated [2 1], got %v", order)
	}
}
