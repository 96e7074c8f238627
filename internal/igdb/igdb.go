// Ludarium - Personal Game Library Media Server
// Copyright 2026 Ludarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludarium/ludarium

// Package igdb defines the interface to the upstream game catalog and the
// validated shapes it returns. The HTTP client and its OAuth flow live
// outside the storage core; the library store consumes only this interface,
// and tests substitute fixtures for it.
package igdb

import "context"

// Company is a developer or publisher as the catalog reports it.
type Company struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Logo        string `json:"logo,omitempty"`
	Description string `json:"description,omitempty"`
}

// SimilarGame is a lightweight stub of a related catalog entry.
type SimilarGame struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// ValidatedGame is a catalog entry with every multi-valued field already
// normalized to a (possibly nil) array. FirstReleaseDate is the raw value
// as the catalog sent it: a UNIX-seconds timestamp, a bare year, or legacy
// garbage - the import path disambiguates.
type ValidatedGame struct {
	ID               int           `json:"id"`
	Title            string        `json:"name"`
	Summary          string        `json:"summary,omitempty"`
	FirstReleaseDate int64         `json:"firstReleaseDate,omitempty"`
	Rating           float64       `json:"rating,omitempty"`
	AggregatedRating float64       `json:"aggregatedRating,omitempty"`
	Genres           []string      `json:"genres,omitempty"`
	Themes           []string      `json:"themes,omitempty"`
	Platforms        []string      `json:"platforms,omitempty"`
	GameEngines      []string      `json:"gameEngines,omitempty"`
	GameModes        []string      `json:"gameModes,omitempty"`
	Perspectives     []string      `json:"playerPerspectives,omitempty"`
	Developers       []Company     `json:"developers,omitempty"`
	Publishers       []Company     `json:"publishers,omitempty"`
	Franchises       []string      `json:"franchises,omitempty"`
	Keywords         []string      `json:"keywords,omitempty"`
	AlternativeNames []string      `json:"alternativeNames,omitempty"`
	SimilarGames     []SimilarGame `json:"similarGames,omitempty"`
	CoverURL         string        `json:"coverUrl,omitempty"`
}

// SearchResult is one hit of a title search.
type SearchResult struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	CoverURL string `json:"coverUrl,omitempty"`
	Year     int    `json:"year,omitempty"`
}

// Client is the upstream catalog API. Implementations handle transport,
// authentication, and response validation.
type Client interface {
	// SearchByTitle returns catalog entries matching a title query.
	SearchByTitle(ctx context.Context, title string) ([]SearchResult, error)

	// FetchByID returns the full validated entry for a catalog id.
	FetchByID(ctx context.Context, id int) (*ValidatedGame, error)
}
