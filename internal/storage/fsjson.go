// Ludarium - Personal Game Library Media Server
// Copyright 2026 Ludarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludarium/ludarium

package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"github.com/goccy/go-json"

	"github.com/ludarium/ludarium/internal/logging"
	"github.com/ludarium/ludarium/internal/metrics"
)

// MetadataFile is the canonical per-entity metadata file name.
const MetadataFile = "metadata.json"

// ContentDir is the directory under the metadata root holding all entity
// folders.
const ContentDir = "content"

// EnsureDir creates the directory and any missing parents. It is idempotent:
// an existing directory is not an error.
func EnsureDir(path string) error {
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("create directory %s: %w", path, err)
	}
	return nil
}

// ReadJSON unmarshals the file at path into v. It returns false when the
// file is missing or holds invalid JSON - the caller's zero value or default
// stands in. Read failures never propagate; the store must stay usable after
// a partial write.
func ReadJSON(path string, v interface{}) bool {
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logging.Warn().Err(err).Str("path", path).Msg("Failed to read metadata file")
		}
		metrics.StoreReads.WithLabelValues("miss").Inc()
		return false
	}

	if err := json.Unmarshal(data, v); err != nil {
		logging.Warn().Err(err).Str("path", path).Msg("Corrupt metadata file, using defaults")
		metrics.StoreReads.WithLabelValues("corrupt").Inc()
		return false
	}

	metrics.StoreReads.WithLabelValues("ok").Inc()
	return true
}

// WriteJSON writes v to path as pretty-printed JSON, creating parent
// directories as needed and overwriting any existing file. Unlike reads,
// write failures are hard errors and propagate to the caller.
func WriteJSON(path string, v interface{}) error {
	if err := EnsureDir(filepath.Dir(path)); err != nil {
		metrics.StoreWrites.WithLabelValues("error").Inc()
		return err
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		metrics.StoreWrites.WithLabelValues("error").Inc()
		return fmt.Errorf("marshal %s: %w", path, err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		metrics.StoreWrites.WithLabelValues("error").Inc()
		return fmt.Errorf("write %s: %w", path, err)
	}

	metrics.StoreWrites.WithLabelValues("ok").Inc()
	return nil
}

// RemoveFile deletes the file at path. Missing files are not an error.
func RemoveFile(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", path, err)
	}
	return nil
}

// RemoveDirIfEmpty removes the directory when it has no entries. Non-empty
// and missing directories are left alone; the function never fails. Entity
// directories may hold cover art or scripts beside metadata.json, and those
// must survive a metadata delete.
func RemoveDirIfEmpty(path string) {
	entries, err := os.ReadDir(path)
	if err != nil || len(entries) > 0 {
		return
	}
	if err := os.Remove(path); err != nil {
		logging.Warn().Err(err).Str("path", path).Msg("Failed to remove empty directory")
	}
}

// NumericSubdirs lists the immediate subdirectories of dir whose names parse
// as non-negative integers, returning the parsed ids in ascending order.
// Non-numeric names are legacy-format folders and are silently skipped. A
// missing dir yields an empty slice.
func NumericSubdirs(dir string) []int {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}

	ids := make([]int, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		id, err := strconv.Atoi(entry.Name())
		if err != nil || id < 0 {
			continue
		}
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// EntityDir returns {root}/content/{folder}/{id}.
func EntityDir(root, folder string, id int) string {
	return filepath.Join(root, ContentDir, folder, strconv.Itoa(id))
}

// EntityFile returns the metadata.json path for an entity.
func EntityFile(root, folder string, id int) string {
	return filepath.Join(EntityDir(root, folder, id), MetadataFile)
}

// FolderDir returns {root}/content/{folder}.
func FolderDir(root, folder string) string {
	return filepath.Join(root, ContentDir, folder)
}
