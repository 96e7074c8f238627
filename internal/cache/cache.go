// Ludarium - Personal Game Library Media Server
// Copyright 2026 Ludarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludarium/ludarium

// Package cache holds the process-wide in-memory game index and the derived
// response cache.
//
// The game cache is the authoritative in-memory mirror of the on-disk
// library: it is warmed once at startup and patched in place by every
// mutating operation, so API reads never rescan the disk. The response cache
// memoizes fully built list payloads keyed by sort order and is cleared
// whenever the game cache changes - stale list responses are never served.
//
// Both caches are explicitly constructed and injected into request handlers;
// there is no package-level singleton.
package cache

import (
	"sync"

	"github.com/ludarium/ludarium/internal/metrics"
	"github.com/ludarium/ludarium/internal/models"
)

// GameCache is a thread-safe map from game id to game object with an
// attached response cache that is invalidated on every mutation.
type GameCache struct {
	mu        sync.RWMutex
	games     map[int]*models.Game
	responses *ResponseCache
}

// NewGameCache creates an empty game cache.
func NewGameCache() *GameCache {
	return &GameCache{
		games:     make(map[int]*models.Game),
		responses: NewResponseCache(),
	}
}

// Responses returns the attached response cache.
func (c *GameCache) Responses() *ResponseCache {
	return c.responses
}

// Load replaces the entire cache contents. Called at startup and when an
// external change to the metadata root is detected.
func (c *GameCache) Load(games map[int]*models.Game) {
	c.mu.Lock()
	if games == nil {
		games = make(map[int]*models.Game)
	}
	c.games = games
	c.mu.Unlock()

	c.responses.Clear("load")
	metrics.LibrarySize.Set(float64(len(games)))
}

// Get returns the cached game with the given id. The returned pointer is
// shared; callers must not mutate it - mutations go through the library
// store, which replaces the entry via Put.
func (c *GameCache) Get(id int) (*models.Game, bool) {
	c.mu.RLock()
	game, ok := c.games[id]
	c.mu.RUnlock()

	if ok {
		metrics.CacheHits.WithLabelValues("games").Inc()
	} else {
		metrics.CacheMisses.WithLabelValues("games").Inc()
	}
	return game, ok
}

// Has reports whether the id is cached, without touching hit/miss counters.
func (c *GameCache) Has(id int) bool {
	c.mu.RLock()
	_, ok := c.games[id]
	c.mu.RUnlock()
	return ok
}

// Snapshot returns a copy of the id-to-game map. The map is the caller's to
// keep; the game pointers are shared and read-only. Integrity scans after a
// delete run against this snapshot, never a fresh disk read, so the snapshot
// already reflects the removal.
func (c *GameCache) Snapshot() map[int]*models.Game {
	c.mu.RLock()
	defer c.mu.RUnlock()

	snapshot := make(map[int]*models.Game, len(c.games))
	for id, game := range c.games {
		snapshot[id] = game
	}
	return snapshot
}

// All returns every cached game in unspecified order.
func (c *GameCache) All() []*models.Game {
	c.mu.RLock()
	defer c.mu.RUnlock()

	games := make([]*models.Game, 0, len(c.games))
	for _, game := range c.games {
		games = append(games, game)
	}
	return games
}

// Len returns the number of cached games.
func (c *GameCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.games)
}

// Put inserts or replaces a game and invalidates the response cache.
func (c *GameCache) Put(game *models.Game) {
	c.mu.Lock()
	c.games[game.ID] = game
	size := len(c.games)
	c.mu.Unlock()

	c.responses.Clear("mutation")
	metrics.LibrarySize.Set(float64(size))
}

// Remove drops a game and invalidates the response cache. Unknown ids are a
// no-op.
func (c *GameCache) Remove(id int) {
	c.mu.Lock()
	delete(c.games, id)
	size := len(c.games)
	c.mu.Unlock()

	c.responses.Clear("mutation")
	metrics.LibrarySize.Set(float64(size))
}

// ResponseCache memoizes built list payloads keyed by sort order. Entries
// have no TTL: the cache lives exactly as long as the game cache is
// unchanged, and every game mutation clears it whole.
type ResponseCache struct {
	mu      sync.RWMutex
	entries map[string]interface{}
}

// NewResponseCache creates an empty response cache.
func NewResponseCache() *ResponseCache {
	return &ResponseCache{entries: make(map[string]interface{})}
}

// Get returns the payload cached under the sort key.
func (rc *ResponseCache) Get(key string) (interface{}, bool) {
	rc.mu.RLock()
	payload, ok := rc.entries[key]
	rc.mu.RUnlock()

	if ok {
		metrics.CacheHits.WithLabelValues("response").Inc()
	} else {
		metrics.CacheMisses.WithLabelValues("response").Inc()
	}
	return payload, ok
}

// Set stores a payload under the sort key.
func (rc *ResponseCache) Set(key string, payload interface{}) {
	rc.mu.Lock()
	rc.entries[key] = payload
	rc.mu.Unlock()
}

// Clear drops every entry. The reason label feeds the invalidation counter:
// "load", "mutation", "watch", or "manual".
func (rc *ResponseCache) Clear(reason string) {
	rc.mu.Lock()
	rc.entries = make(map[string]interface{})
	rc.mu.Unlock()

	metrics.CacheInvalidations.WithLabelValues("response", reason).Inc()
}
