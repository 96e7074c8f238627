// Ludarium - Personal Game Library Media Server
// Copyright 2026 Ludarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludarium/ludarium

// Package models defines the domain types persisted to the metadata root and
// the API response envelope shared by all HTTP endpoints.
//
// Persisted entity types:
//   - Game: a library entry, one directory per game under content/games/{id}
//   - Tag: a title-keyed classification entity (category, theme, platform,
//     game engine, game mode, player perspective)
//   - Collection: an id-keyed entity owning a game-id membership list
//     (collections, developers, publishers)
//   - Section: a recommended section holding an ordered game-id list
//   - Settings: the root-level settings.json object
//   - TokenSet: one entry of the root-level tokens.json map
//
// API types:
//   - APIResponse: standardized response wrapper
//   - APIError: structured error details
//
// Several game fields predate the id migration and may still hold title
// strings on disk. FlexRef and FlexRefs model that mixed representation; the
// startup migration pass rewrites them to pure ids.
package models
