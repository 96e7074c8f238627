// Ludarium - Personal Game Library Media Server
// Copyright 2026 Ludarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludarium/ludarium

package api

import (
	"fmt"
	"net/http"
	"os"

	"github.com/ludarium/ludarium/internal/overlay"
)

// ListOverlay lists series or franchise entities derived from the library,
// filling the Cover URL for entities with an uploaded cover image.
func (h *Handler) ListOverlay(store *overlay.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list := store.List(h.store.Cache().Snapshot())
		folder := store.Kind().Folder
		for i := range list {
			if _, err := os.Stat(store.CoverPath(list[i].ID)); err == nil {
				list[i].Cover = fmt.Sprintf("/api/v1/%s/%d/cover", folder, list[i].ID)
			}
		}
		respondSuccess(w, http.StatusOK, list, false)
	}
}

// GetOverlayCover serves an overlay cover by id, falling back to the
// frontend redirect the same way tag covers do.
func (h *Handler) GetOverlayCover(store *overlay.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlParamInt(r, "id")
		if err != nil {
			respondMissingImage(w)
			return
		}

		path := store.CoverPath(id)
		if _, err := os.Stat(path); err != nil {
			if h.frontendURL != "" {
				redirectToFrontend(w, r, h.frontendURL)
				return
			}
			respondMissingImage(w)
			return
		}
		serveImage(w, r, path)
	}
}

// UploadOverlayCover stores a cover for a derived entity. The id must
// resolve against the current library; the entity's metadata file is
// written alongside the first upload.
func (h *Handler) UploadOverlayCover(store *overlay.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlParamInt(r, "id")
		if err != nil {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
			return
		}

		entity, ok := store.Find(id, h.store.Cache().Snapshot())
		if !ok {
			respondError(w, http.StatusNotFound, "NOT_FOUND",
				fmt.Sprintf("%s %d is not referenced by any game", store.Kind().Name, id), nil)
			return
		}
		if err := store.EnsureMeta(id, entity.Title); err != nil {
			respondStorageError(w, err)
			return
		}
		h.writeImage(w, r, store.CoverPath(id))
	}
}
