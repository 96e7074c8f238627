// Ludarium - Personal Game Library Media Server
// Copyright 2026 Ludarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludarium/ludarium

package storage

import (
	"strings"
	"unicode/utf16"
)

// TitleHash derives the numeric id for a title-keyed entity. The title is
// lower-cased and trimmed first, so every casing and padding of the same
// logical title maps to the same folder. The fold runs over UTF-16 code
// units with 32-bit signed wraparound, matching the historical on-disk ids,
// and the result is the absolute value.
//
// Collisions between distinct titles are not detected: two titles that hash
// alike silently share a folder. This is a known limitation of the scheme,
// kept for compatibility with existing metadata roots.
func TitleHash(title string) int {
	normalized := strings.ToLower(strings.TrimSpace(title))

	var h int32
	for _, unit := range utf16.Encode([]rune(normalized)) {
		h = (h << 5) - h + int32(unit)
	}

	// abs through int64: int32 min has no positive counterpart in int32.
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return int(v)
}
