// Ludarium - Personal Game Library Media Server
// Copyright 2026 Ludarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludarium/ludarium

// Package settings persists the two root-level JSON objects that live
// outside the content tree: settings.json and tokens.json. Both follow the
// whole-file read/write pattern and synthesize defaults instead of failing
// on missing or corrupt files.
package settings

import (
	"fmt"
	"path/filepath"

	"github.com/ludarium/ludarium/internal/models"
	"github.com/ludarium/ludarium/internal/storage"
)

// SettingsFile and TokensFile are the root-level file names.
const (
	SettingsFile = "settings.json"
	TokensFile   = "tokens.json"
)

// Store reads and writes the root-level objects.
type Store struct {
	root string
}

// NewStore creates a settings store rooted at the metadata root.
func NewStore(root string) *Store {
	return &Store{root: root}
}

// Load returns the settings, synthesizing defaults when the file is missing
// or unreadable. Never fails.
func (s *Store) Load() models.Settings {
	settings := models.DefaultSettings()
	storage.ReadJSON(filepath.Join(s.root, SettingsFile), &settings)
	if settings.Language == "" {
		settings.Language = models.DefaultSettings().Language
	}
	return settings
}

// Save persists the settings.
func (s *Store) Save(settings models.Settings) error {
	if err := storage.WriteJSON(filepath.Join(s.root, SettingsFile), settings); err != nil {
		return fmt.Errorf("save settings: %w", err)
	}
	return nil
}

// SetLanguage updates the language while keeping every other key already in
// settings.json. The frontend writes keys this server does not model, and
// those must survive a round trip through the API.
func (s *Store) SetLanguage(language string) (models.Settings, error) {
	path := filepath.Join(s.root, SettingsFile)

	raw := make(map[string]interface{})
	storage.ReadJSON(path, &raw)
	raw["language"] = language

	if err := storage.WriteJSON(path, raw); err != nil {
		return models.Settings{}, fmt.Errorf("save settings: %w", err)
	}
	return s.Load(), nil
}

// LoadTokens returns the token map keyed by upstream user id. Missing or
// corrupt files yield an empty map.
func (s *Store) LoadTokens() map[string]models.TokenSet {
	tokens := make(map[string]models.TokenSet)
	storage.ReadJSON(filepath.Join(s.root, TokensFile), &tokens)
	return tokens
}

// SaveToken upserts one user's token set and persists the whole map.
func (s *Store) SaveToken(token models.TokenSet) error {
	tokens := s.LoadTokens()
	tokens[token.UserID] = token

	if err := storage.WriteJSON(filepath.Join(s.root, TokensFile), tokens); err != nil {
		return fmt.Errorf("save tokens: %w", err)
	}
	return nil
}

// DeleteToken removes one user's token set. Unknown users are a no-op.
func (s *Store) DeleteToken(userID string) error {
	tokens := s.LoadTokens()
	if _, ok := tokens[userID]; !ok {
		return nil
	}
	delete(tokens, userID)

	if err := storage.WriteJSON(filepath.Join(s.root, TokensFile), tokens); err != nil {
		return fmt.Errorf("save tokens: %w", err)
	}
	return nil
}
