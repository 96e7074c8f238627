// Ludarium - Personal Game Library Media Server
// Copyright 2026 Ludarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludarium/ludarium

package models

import (
	"fmt"

	"github.com/goccy/go-json"
)

// FlexRef is a reference to a tag entity that may still be stored in the
// legacy on-disk form. New data carries the numeric tag id; data written
// before the id migration carries the tag title instead. Exactly one of ID
// and Title is meaningful: Title == "" means the reference is an id.
type FlexRef struct {
	ID    int
	Title string
}

// IsLegacy reports whether the reference is still title-keyed.
func (f FlexRef) IsLegacy() bool {
	return f.Title != ""
}

// UnmarshalJSON accepts either a JSON number (id form) or a JSON string
// (legacy title form). A string is always a title, even when it is all
// digits: an id reference was never written with quotes, and a tag titled
// "1984" must migrate through the registry, not masquerade as id 1984.
func (f *FlexRef) UnmarshalJSON(data []byte) error {
	var id int
	if err := json.Unmarshal(data, &id); err == nil {
		*f = FlexRef{ID: id}
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("tag reference must be a number or string: %w", err)
	}
	*f = FlexRef{Title: s}
	return nil
}

// MarshalJSON writes the id form unless the reference is still legacy.
func (f FlexRef) MarshalJSON() ([]byte, error) {
	if f.IsLegacy() {
		return json.Marshal(f.Title)
	}
	return json.Marshal(f.ID)
}

// FlexRefs is a tag-reference list as stored on a game field.
type FlexRefs []FlexRef

// HasLegacy reports whether any element is still title-keyed. The migration
// detection rule is per-element: a mixed list still needs migration.
func (fs FlexRefs) HasLegacy() bool {
	for _, f := range fs {
		if f.IsLegacy() {
			return true
		}
	}
	return false
}

// IDs returns the numeric ids, skipping legacy elements.
func (fs FlexRefs) IDs() []int {
	ids := make([]int, 0, len(fs))
	for _, f := range fs {
		if !f.IsLegacy() {
			ids = append(ids, f.ID)
		}
	}
	return ids
}

// ContainsID reports whether the list contains the given id.
func (fs FlexRefs) ContainsID(id int) bool {
	for _, f := range fs {
		if !f.IsLegacy() && f.ID == id {
			return true
		}
	}
	return false
}

// RefsFromIDs builds a pure-id reference list.
func RefsFromIDs(ids []int) FlexRefs {
	refs := make(FlexRefs, len(ids))
	for i, id := range ids {
		refs[i] = FlexRef{ID: id}
	}
	return refs
}

// CompanyRef references a developer or publisher entity by its upstream
// catalog id, carrying the display name alongside for frontend convenience.
type CompanyRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// NameRef references a franchise, series, or collection. Legacy data stored
// bare strings; new data stores {id, name} objects. ID == 0 marks a bare
// string that was never resolved against an entity.
type NameRef struct {
	ID   int    `json:"id,omitempty"`
	Name string `json:"name"`
}

// UnmarshalJSON accepts either a bare string or an {id, name} object.
func (n *NameRef) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*n = NameRef{Name: s}
		return nil
	}

	type alias NameRef
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return fmt.Errorf("reference must be a string or {id, name} object: %w", err)
	}
	*n = NameRef(a)
	return nil
}

// Game is a library entry. The numeric id is the directory name under
// content/games and is never written into metadata.json; Save strips it and
// Load injects it back.
type Game struct {
	ID int `json:"id,omitempty"`

	Title   string `json:"title,omitempty"`
	Summary string `json:"summary,omitempty"`

	ReleaseDay   int `json:"releaseDay,omitempty"`
	ReleaseMonth int `json:"releaseMonth,omitempty"`
	ReleaseYear  int `json:"releaseYear,omitempty"`

	// Rating is the user's star rating; CriticRating and UserRating mirror
	// the upstream catalog's aggregated critic and community scores.
	Rating       float64 `json:"rating,omitempty"`
	CriticRating float64 `json:"criticRating,omitempty"`
	UserRating   float64 `json:"userRating,omitempty"`

	// Tag reference fields. Stored as id arrays after migration; FlexRefs
	// tolerates the legacy title-string form on read.
	Genres             FlexRefs `json:"genre,omitempty"`
	Themes             FlexRefs `json:"themes,omitempty"`
	Platforms          FlexRefs `json:"platforms,omitempty"`
	GameEngines        FlexRefs `json:"gameEngines,omitempty"`
	GameModes          FlexRefs `json:"gameModes,omitempty"`
	PlayerPerspectives FlexRefs `json:"playerPerspectives,omitempty"`

	Developers []CompanyRef `json:"developers,omitempty"`
	Publishers []CompanyRef `json:"publishers,omitempty"`

	Franchises  []NameRef `json:"franchises,omitempty"`
	Series      []NameRef `json:"series,omitempty"`
	Collections []NameRef `json:"collection,omitempty"`

	Keywords         []string  `json:"keywords,omitempty"`
	AlternativeNames []string  `json:"alternativeNames,omitempty"`
	SimilarGames     []NameRef `json:"similarGames,omitempty"`

	// Executables lists launchable scripts in the game directory, in launch
	// order. Recomputed against the directory contents on every load.
	Executables []string `json:"executables,omitempty"`

	ShowTitle bool `json:"showTitle,omitempty"`
}

// TagField names a game field that holds tag references.
type TagField string

// Tag reference fields addressable by registries.
const (
	FieldGenres             TagField = "genre"
	FieldThemes             TagField = "themes"
	FieldPlatforms          TagField = "platforms"
	FieldGameEngines        TagField = "gameEngines"
	FieldGameModes          TagField = "gameModes"
	FieldPlayerPerspectives TagField = "playerPerspectives"
)

// TagRefs returns the reference list stored on the given field.
func (g *Game) TagRefs(field TagField) FlexRefs {
	switch field {
	case FieldGenres:
		return g.Genres
	case FieldThemes:
		return g.Themes
	case FieldPlatforms:
		return g.Platforms
	case FieldGameEngines:
		return g.GameEngines
	case FieldGameModes:
		return g.GameModes
	case FieldPlayerPerspectives:
		return g.PlayerPerspectives
	default:
		return nil
	}
}

// SetTagRefs replaces the reference list stored on the given field.
func (g *Game) SetTagRefs(field TagField, refs FlexRefs) {
	switch field {
	case FieldGenres:
		g.Genres = refs
	case FieldThemes:
		g.Themes = refs
	case FieldPlatforms:
		g.Platforms = refs
	case FieldGameEngines:
		g.GameEngines = refs
	case FieldGameModes:
		g.GameModes = refs
	case FieldPlayerPerspectives:
		g.PlayerPerspectives = refs
	}
}

// ReleaseBefore orders games by release date, comparing year, then month,
// then day. Games without a release year sort after dated games.
func (g *Game) ReleaseBefore(other *Game) bool {
	if g.ReleaseYear == 0 || other.ReleaseYear == 0 {
		return other.ReleaseYear == 0 && g.ReleaseYear != 0
	}
	if g.ReleaseYear != other.ReleaseYear {
		return g.ReleaseYear < other.ReleaseYear
	}
	if g.ReleaseMonth != other.ReleaseMonth {
		return g.ReleaseMonth < other.ReleaseMonth
	}
	return g.ReleaseDay < other.ReleaseDay
}
