// Ludarium - Personal Game Library Media Server
// Copyright 2026 Ludarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludarium/ludarium

package api

import (
	"fmt"
	"net/http"

	"github.com/ludarium/ludarium/internal/collections"
	"github.com/ludarium/ludarium/internal/logging"
	"github.com/ludarium/ludarium/internal/storage"
)

// ListCollectionLike lists every entity of a collection-like registry:
// collections, developers, or publishers.
func (h *Handler) ListCollectionLike(registry *collections.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respondSuccess(w, http.StatusOK, registry.Load(), false)
	}
}

// createCollectionRequest is the collection create body. Developers and
// publishers have no create route; they materialize implicitly.
type createCollectionRequest struct {
	Title   string `json:"title" validate:"required,min=1,max=200"`
	Summary string `json:"summary" validate:"max=2000"`
}

// CreateCollection creates a user collection with a timestamp id.
func (h *Handler) CreateCollection(w http.ResponseWriter, r *http.Request) {
	var req createCollectionRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "request body is not valid JSON", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	created, err := h.store.Collections().Create(req.Title, req.Summary)
	if err != nil {
		respondStorageError(w, err)
		return
	}
	respondSuccess(w, http.StatusCreated, created, false)
}

// DeleteCollectionLike deletes an entity of a collection-like registry by id.
func (h *Handler) DeleteCollectionLike(registry *collections.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlParamInt(r, "id")
		if err != nil {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
			return
		}

		if err := registry.Delete(id); err != nil {
			respondStorageError(w, err)
			return
		}

		logging.Info().Str("kind", registry.Kind().Name).Int("id", id).Msg("Entity deleted via API")
		respondSuccess(w, http.StatusOK, map[string]int{"deleted": id}, false)
	}
}

// GetRegistryImage serves a collection-like entity's cover or background.
func (h *Handler) GetRegistryImage(pathFor func(int) string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlParamInt(r, "id")
		if err != nil {
			respondMissingImage(w)
			return
		}
		serveImage(w, r, pathFor(id))
	}
}

// UploadRegistryImage stores a cover or background for an existing entity.
func (h *Handler) UploadRegistryImage(registry *collections.Registry, pathFor func(int) string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlParamInt(r, "id")
		if err != nil {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
			return
		}
		if _, ok := registry.FindByID(id); !ok {
			respondError(w, http.StatusNotFound, "NOT_FOUND",
				fmt.Sprintf("%s %d not found", registry.Kind().Name, id), nil)
			return
		}
		h.writeImage(w, r, pathFor(id))
	}
}

// DeleteRegistryImage removes a cover or background. Deleting an absent
// image still answers 200.
func (h *Handler) DeleteRegistryImage(pathFor func(int) string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlParamInt(r, "id")
		if err != nil {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
			return
		}
		if err := storage.RemoveFile(pathFor(id)); err != nil {
			respondStorageError(w, err)
			return
		}
		h.store.Cache().Responses().Clear("image_delete")
		respondSuccess(w, http.StatusOK, map[string]int{"id": id}, false)
	}
}

// orderRequest is the membership ordering body.
type orderRequest struct {
	Games []int `json:"games"`
}

// OrderCollectionGames reorders a collection's membership list. A list one
// longer than the stored one is treated as a single addition and inserted
// by release date; anything else is a full reorder sorted by release date.
func (h *Handler) OrderCollectionGames(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	var req orderRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "request body is not valid JSON", err)
		return
	}

	ordered, err := h.store.Collections().ApplyOrder(id, req.Games, h.store.Cache().Snapshot())
	if err != nil {
		respondStorageError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, map[string]interface{}{"id": id, "games": ordered}, false)
}
