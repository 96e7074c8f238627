// Ludarium - Personal Game Library Media Server
// Copyright 2026 Ludarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludarium/ludarium

package api

import (
	"math/rand"
	"sync"
	"time"

	"github.com/ludarium/ludarium/internal/igdb"
	"github.com/ludarium/ludarium/internal/library"
	"github.com/ludarium/ludarium/internal/models"
	"github.com/ludarium/ludarium/internal/settings"
)

// Handler holds all HTTP handler dependencies.
type Handler struct {
	store    *library.Store
	settings *settings.Store

	// catalog is nil when no upstream catalog credentials are configured;
	// the import route then answers 503.
	catalog igdb.Client

	// frontendURL, when set, redirects absent by-id cover requests to the
	// companion frontend instead of answering 404.
	frontendURL string

	// rngMu guards rng; math/rand.Rand is not safe for concurrent use and
	// every recommended request samples through the same source.
	rngMu sync.Mutex
	rng   *rand.Rand
}

// sample picks up to n sections while holding the rng lock.
func (h *Handler) sample(n int) []models.Section {
	h.rngMu.Lock()
	defer h.rngMu.Unlock()
	return h.store.Sections().Sample(n, h.rng)
}

// NewHandler creates a Handler. catalog may be nil for standalone mode.
func NewHandler(store *library.Store, settingsStore *settings.Store, catalog igdb.Client, frontendURL string) *Handler {
	return &Handler{
		store:       store,
		settings:    settingsStore,
		catalog:     catalog,
		frontendURL: frontendURL,
		rng:         rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}
