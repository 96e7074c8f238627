// Ludarium - Personal Game Library Media Server
// Copyright 2026 Ludarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludarium/ludarium

// Package library implements the root entity collection: one directory per
// game under content/games, keyed by numeric id. The store owns the game
// lifecycle (manual add, catalog import, allow-listed patch, delete) and the
// cross-reference integrity pass that keeps every tag registry, membership
// list, and recommended section consistent when a game changes or goes away.
//
// The store keeps the injected in-memory game cache in sync with the disk on
// every mutation. Reads are side-effect-free; the one historical exception -
// rewriting legacy title-keyed tag fields during load - is an explicit
// startup pass, MigrateLegacyTagFields, invoked before the cache is warmed.
package library
