// Ludarium - Personal Game Library Media Server
// Copyright 2026 Ludarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludarium/ludarium

package models

// Tag is a title-keyed classification entity. Its id is derived from the
// normalized title, so the id is stable across recreations and identical for
// every casing of the same title.
type Tag struct {
	ID        int    `json:"id,omitempty"`
	Title     string `json:"title"`
	ShowTitle bool   `json:"showTitle,omitempty"`

	// Cover is the serving URL for the tag's cover image, filled by the API
	// layer when the image file exists. Never persisted.
	Cover string `json:"cover,omitempty"`
}

// Collection is an id-keyed entity that owns a game-id membership list.
// It backs three entity kinds: user-created collections (timestamp ids),
// developers, and publishers (upstream catalog ids).
type Collection struct {
	ID        int    `json:"id,omitempty"`
	Title     string `json:"title"`
	Summary   string `json:"summary,omitempty"`
	Games     []int  `json:"games"`
	ShowTitle bool   `json:"showTitle,omitempty"`

	// IGDBCover carries the upstream catalog's logo/cover URL for
	// developers and publishers that have no locally uploaded image.
	IGDBCover string `json:"igdbCover,omitempty"`
}

// HasGame reports whether the membership list contains the given game id.
func (c *Collection) HasGame(gameID int) bool {
	for _, id := range c.Games {
		if id == gameID {
			return true
		}
	}
	return false
}

// Section is a recommended section: an ordered list of game ids grouped
// under a keyword-derived title.
type Section struct {
	ID    int    `json:"id,omitempty"`
	Title string `json:"title"`
	Games []int  `json:"games"`
}

// Settings is the root-level settings.json object. Readers synthesize
// defaults on a missing or corrupt file; Language is always non-empty after
// load.
type Settings struct {
	Language string `json:"language"`
}

// DefaultSettings returns the settings used when settings.json is missing
// or unreadable.
func DefaultSettings() Settings {
	return Settings{Language: "en"}
}

// TokenSet is one entry of the tokens.json map, keyed by the upstream
// identity provider's user id.
type TokenSet struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	UserID       string `json:"userId"`
	UserName     string `json:"userName,omitempty"`
	UserImage    string `json:"userImage,omitempty"`
	ExpiresAt    int64  `json:"expiresAt"`
}
