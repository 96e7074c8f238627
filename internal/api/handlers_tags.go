// Ludarium - Personal Game Library Media Server
// Copyright 2026 Ludarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludarium/ludarium

package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ludarium/ludarium/internal/models"
	"github.com/ludarium/ludarium/internal/tags"
)

// urlParamTitle extracts and percent-decodes a title URL parameter.
func urlParamTitle(r *http.Request, key string) string {
	raw := chi.URLParam(r, key)
	if decoded, err := url.PathUnescape(raw); err == nil {
		return decoded
	}
	return raw
}

// ListTags lists every tag of one kind, filling the Cover URL for tags that
// have a local cover image.
func (h *Handler) ListTags(registry *tags.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list := registry.Load()
		folder := registry.Kind().Folder
		for i := range list {
			if _, err := os.Stat(registry.CoverPath(list[i].ID)); err == nil {
				list[i].Cover = fmt.Sprintf("/api/v1/%s/by-id/%d/cover", folder, list[i].ID)
			}
		}
		respondSuccess(w, http.StatusOK, list, false)
	}
}

// createTagRequest is the tag create body.
type createTagRequest struct {
	Title string `json:"title" validate:"required,min=1,max=200"`
}

// CreateTag creates a tag of one kind. A title that collides with an
// existing tag (case-insensitively) answers 409 and echoes the stored
// casing in the error details.
func (h *Handler) CreateTag(registry *tags.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req createTagRequest
		if err := decodeBody(r, &req); err != nil {
			respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "request body is not valid JSON", err)
			return
		}
		if apiErr := validateRequest(&req); apiErr != nil {
			respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
			return
		}

		tag, err := registry.Create(req.Title)
		if err != nil {
			if errors.Is(err, tags.ErrTitleExists) {
				respondJSON(w, http.StatusConflict, &models.APIResponse{
					Status:   "error",
					Metadata: models.Metadata{Timestamp: time.Now()},
					Error: &models.APIError{
						Code:    "CONFLICT",
						Message: err.Error(),
						Details: map[string]interface{}{"existingTitle": tag.Title},
					},
				})
				return
			}
			respondStorageError(w, err)
			return
		}
		respondSuccess(w, http.StatusCreated, tag, false)
	}
}

// DeleteTag removes a tag by title unless games still reference it.
func (h *Handler) DeleteTag(registry *tags.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		title := urlParamTitle(r, "title")

		tag, ok := registry.Find(title)
		if !ok {
			respondError(w, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("%s %q not found", registry.Kind().Name, title), nil)
			return
		}

		deleted, err := registry.DeleteIfUnused(title, h.store.Cache().Snapshot())
		if err != nil {
			respondStorageError(w, err)
			return
		}
		if !deleted {
			respondError(w, http.StatusConflict, "TAG_IN_USE",
				fmt.Sprintf("%s %q is still referenced by games", registry.Kind().Name, tag.Title), nil)
			return
		}
		respondSuccess(w, http.StatusOK, map[string]string{"deleted": tag.Title}, false)
	}
}

// GetTagCoverByTitle serves a tag cover image resolved by title lookup.
func (h *Handler) GetTagCoverByTitle(registry *tags.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		title := urlParamTitle(r, "title")
		tag, ok := registry.Find(title)
		if !ok {
			respondMissingImage(w)
			return
		}
		serveImage(w, r, registry.CoverPath(tag.ID))
	}
}

// GetTagCoverByID serves a tag cover image by id. When the local file is
// absent and a frontend URL is configured, the request redirects to the
// frontend's equivalent path instead of answering 404.
func (h *Handler) GetTagCoverByID(registry *tags.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := urlParamInt(r, "id")
		if err != nil {
			respondMissingImage(w)
			return
		}

		path := registry.CoverPath(id)
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

// UploadTagCover stores a tag cover image, resolved by title lookup.
func (h *Handler) UploadTagCover(registry *tags.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		title := urlParamTitle(r, "title")
		tag, ok := registry.Find(title)
		if !ok {
			respondError(w, http.StatusNotFound, "NOT_FOUND", fmt.Sprintf("%s %q not found", registry.Kind().Name, title), nil)
			return
		}
		h.writeImage(w, r, registry.CoverPath(tag.ID))
	}
}
