// Ludarium - Personal Game Library Media Server
// Copyright 2026 Ludarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludarium/ludarium

// Package tags implements the title-keyed tag registry backing the six
// classification entity kinds: categories (genres), themes, platforms, game
// engines, game modes, and player perspectives.
//
// A tag's numeric id is derived from its normalized title via
// storage.TitleHash, so repeated creation attempts with any casing of the
// same title resolve to the same entity folder. Title uniqueness is always
// checked case-insensitively, and deletion is gated on zero remaining
// references across the game library - never forced.
//
// One Registry instance serves one kind; all six share the same code path,
// parameterized by Kind.
package tags
