// Ludarium - Personal Game Library Media Server
// Copyright 2026 Ludarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludarium/ludarium

// Package storage provides the flat-file store primitives every registry is
// built on: a deterministic title hash for deriving entity folder names, and
// read/write/ensure/remove helpers for the one-metadata.json-per-directory
// layout under the metadata root.
//
// Layout convention:
//
//	{root}/content/{folder}/{id}/metadata.json
//
// Read paths never fail on missing or corrupt files - callers supply a typed
// default instead. Write failures are hard errors and propagate. The store
// has no transactional guarantees; a partial write must never brick the
// catalog, which is why every reader substitutes defaults.
package storage
