// Ludarium - Personal Game Library Media Server
// Copyright 2026 Ludarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludarium/ludarium

package api

import (
	"net/http"
	"strings"

	"github.com/ludarium/ludarium/internal/models"
)

// maxRecommendedSections caps how many sections one response carries.
const maxRecommendedSections = 9

// recommendedSection is the wire shape of one recommended section. The id
// is deliberately the title, not the internal numeric id, so the frontend
// keeps stable keys across section re-derivation.
type recommendedSection struct {
	ID    string         `json:"id"`
	Title string         `json:"title"`
	Games []*models.Game `json:"games"`
}

// Recommended returns up to nine sections chosen uniformly at random,
// resolving members through the live game cache and dropping ids that no
// longer resolve.
func (h *Handler) Recommended(w http.ResponseWriter, r *http.Request) {
	sections := h.sample(maxRecommendedSections)

	result := make([]recommendedSection, 0, len(sections))
	for _, section := range sections {
		games := make([]*models.Game, 0, len(section.Games))
		for _, id := range section.Games {
			if game, ok := h.store.Cache().Get(id); ok {
				games = append(games, game)
			}
		}
		result = append(result, recommendedSection{
			ID:    section.Title,
			Title: section.Title,
			Games: games,
		})
	}
	respondSuccess(w, http.StatusOK, result, false)
}

// GetSettings returns the settings object, defaults included.
func (h *Handler) GetSettings(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, h.settings.Load(), false)
}

// updateSettingsRequest is the settings update body.
type updateSettingsRequest struct {
	Language string `json:"language" validate:"required,min=2,max=16"`
}

// UpdateSettings persists the settings object.
func (h *Handler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	var req updateSettingsRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "request body is not valid JSON", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	updated, err := h.settings.SetLanguage(strings.TrimSpace(req.Language))
	if err != nil {
		respondStorageError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, updated, false)
}

// Health reports process liveness and the warm cache size.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, map[string]interface{}{
		"status": "ok",
		"games":  h.store.Cache().Len(),
	}, false)
}
