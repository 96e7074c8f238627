// Ludarium - Personal Game Library Media Server
// Copyright 2026 Ludarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludarium/ludarium

package library

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ludarium/ludarium/internal/logging"
	"github.com/ludarium/ludarium/internal/models"
	"github.com/ludarium/ludarium/internal/storage"
)

// script extensions recognized as launchable.
var scriptExtensions = map[string]bool{".sh": true, ".bat": true}

// ErrBadExtension indicates an executable upload with an unsupported
// extension.
var ErrBadExtension = errors.New("executable extension must be .sh or .bat")

// SanitizeExecutableName makes a user-supplied executable label safe to use
// as a file name: path separators and other reserved characters collapse to
// underscores, and the result is trimmed.
func SanitizeExecutableName(label string) string {
	replacer := strings.NewReplacer(
		"/", "_", "\\", "_", ":", "_", "*", "_", "?", "_",
		"\"", "_", "<", "_", ">", "_", "|", "_", "\x00", "_",
	)
	sanitized := replacer.Replace(strings.TrimSpace(label))
	return strings.Trim(sanitized, ". ")
}

// scanExecutables lists the labels (file names minus extension) of every
// script file in the game directory, in the derived default order: any file
// literally named script.* first, the rest alphabetical.
func scanExecutables(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	labels := make([]string, 0)
	seen := make(map[string]bool)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !scriptExtensions[ext] {
			continue
		}
		label := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
		if seen[label] {
			continue
		}
		seen[label] = true
		labels = append(labels, label)
	}

	sort.SliceStable(labels, func(i, j int) bool {
		if (labels[i] == "script") != (labels[j] == "script") {
			return labels[i] == "script"
		}
		return strings.ToLower(labels[i]) < strings.ToLower(labels[j])
	})
	return labels
}

// hasBackingFile reports whether a script file exists for the label.
func hasBackingFile(dir, label string) bool {
	for ext := range scriptExtensions {
		if _, err := os.Stat(filepath.Join(dir, label+ext)); err == nil {
			return true
		}
	}
	return false
}

// resolveExecutables recomputes a game's executables against the files
// physically present in its directory. The metadata-declared order wins
// when every declared label still has a backing file; otherwise the
// directory-scan order stands in.
func (s *Store) resolveExecutables(game *models.Game) []string {
	dir := s.GameDir(game.ID)

	if len(game.Executables) > 0 {
		complete := true
		for _, label := range game.Executables {
			if !hasBackingFile(dir, label) {
				complete = false
				break
			}
		}
		if complete {
			return game.Executables
		}
	}

	return scanExecutables(dir)
}

// AddExecutable stores a labeled script file in the game directory and
// appends the label to the game's declared launch order.
func (s *Store) AddExecutable(gameID int, label, ext string, script []byte) (*models.Game, error) {
	game, ok := s.games.Get(gameID)
	if !ok {
		return nil, fmt.Errorf("game %d: %w", gameID, ErrNotFound)
	}

	ext = strings.ToLower(ext)
	if !scriptExtensions[ext] {
		return nil, fmt.Errorf("%q: %w", ext, ErrBadExtension)
	}

	label = SanitizeExecutableName(label)
	if label == "" {
		return nil, errors.New("executable name must not be blank")
	}

	dir := s.GameDir(gameID)
	if err := storage.EnsureDir(dir); err != nil {
		return nil, err
	}
	if err := os.WriteFile(filepath.Join(dir, label+ext), script, 0o755); err != nil {
		return nil, fmt.Errorf("write executable %q for game %d: %w", label, gameID, err)
	}

	updated := *game
	updated.Executables = appendMissing(game.Executables, label)

	if err := s.Save(&updated); err != nil {
		return nil, err
	}
	logging.Info().Int("game", gameID).Str("executable", label).Msg("Executable added")
	return &updated, nil
}

// appendMissing appends the label unless already present.
func appendMissing(labels []string, label string) []string {
	for _, l := range labels {
		if l == label {
			return labels
		}
	}
	result := make([]string, 0, len(labels)+1)
	result = append(result, labels...)
	return append(result, label)
}

// deleteAllExecutables removes every script file in the game directory.
func (s *Store) deleteAllExecutables(gameID int) error {
	dir := s.GameDir(gameID)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("scan game %d directory: %w", gameID, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !scriptExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		if err := os.Remove(filepath.Join(dir, entry.Name())); err != nil {
			return fmt.Errorf("remove executable %s: %w", entry.Name(), err)
		}
	}
	return nil
}

// applyExecutables applies an executables patch: the requested names are
// the authoritative desired set. Script files whose label is not requested
// (after sanitization) are deleted, and the stored value is the
// intersection of the requested names and those that still have a backing
// file, preserving the requested order.
func (s *Store) applyExecutables(game *models.Game, requested []string) error {
	dir := s.GameDir(game.ID)

	wanted := make(map[string]bool, len(requested))
	order := make([]string, 0, len(requested))
	for _, name := range requested {
		label := SanitizeExecutableName(name)
		if label == "" || wanted[label] {
			continue
		}
		wanted[label] = true
		order = append(order, label)
	}

	for _, label := range scanExecutables(dir) {
		if wanted[label] {
			continue
		}
		for ext := range scriptExtensions {
			path := filepath.Join(dir, label+ext)
			if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("remove executable %s: %w", path, err)
			}
		}
	}

	kept := make([]string, 0, len(order))
	for _, label := range order {
		if hasBackingFile(dir, label) {
			kept = append(kept, label)
		}
	}
	game.Executables = kept
	return nil
}
