// Ludarium - Personal Game Library Media Server
// Copyright 2026 Ludarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludarium/ludarium

// Package collections implements the id-keyed registry backing the three
// entity kinds that own a game-id membership list: user-created collections,
// developers, and publishers.
//
// Unlike tags, ids here are never derived from the title. Collections take a
// timestamp id at creation; developers and publishers carry the upstream
// catalog's id and are materialized implicitly via EnsureBatch when a game
// referencing them is ingested - there is no explicit create route for them.
//
// The membership list is the entity-to-game direction of the relation. The
// game-to-entity direction (a game's developers/publishers fields) lives on
// the game itself, and both directions are kept consistent by the library
// store's integrity pass.
package collections
