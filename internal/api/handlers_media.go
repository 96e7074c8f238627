// Ludarium - Personal Game Library Media Server
// Copyright 2026 Ludarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludarium/ludarium

package api

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/ludarium/ludarium/internal/logging"
	"github.com/ludarium/ludarium/internal/storage"
)

// maxUploadBytes caps image and script uploads.
const maxUploadBytes = 32 << 20

// serveImage sends the file at path, or a 404 with image/webp content type
// and an empty body when it is absent. The empty-body form avoids browser
// CORB warnings on missing images.
func serveImage(w http.ResponseWriter, r *http.Request, path string) {
	if _, err := os.Stat(path); err != nil {
		respondMissingImage(w)
		return
	}
	w.Header().Set("Content-Type", "image/webp")
	http.ServeFile(w, r, path)
}

func respondMissingImage(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "image/webp")
	w.WriteHeader(http.StatusNotFound)
}

// redirectToFrontend 302-redirects to the frontend's equivalent path,
// stripping a trailing /app segment from the configured URL.
func redirectToFrontend(w http.ResponseWriter, r *http.Request, frontendURL string) {
	base := strings.TrimSuffix(frontendURL, "/")
	base = strings.TrimSuffix(base, "/app")
	http.Redirect(w, r, base+r.URL.Path, http.StatusFound)
}

// GetGameCover serves a game's cover image.
func (h *Handler) GetGameCover(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "id")
	if err != nil {
		respondMissingImage(w)
		return
	}
	serveImage(w, r, h.store.CoverPath(id))
}

// GetGameBackground serves a game's background image.
func (h *Handler) GetGameBackground(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "id")
	if err != nil {
		respondMissingImage(w)
		return
	}
	serveImage(w, r, h.store.BackgroundPath(id))
}

// uploadGameImage stores the raw request body as the given image file.
// Multipart parsing happens in the companion frontend; the API accepts the
// image bytes directly.
func (h *Handler) uploadGameImage(w http.ResponseWriter, r *http.Request, pathFor func(int) string) {
	id, err := urlParamInt(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	if _, err := h.store.Get(id); err != nil {
		respondStorageError(w, err)
		return
	}

	h.writeImage(w, r, pathFor(id))
}

// writeImage stores the raw request body at path, creating the parent
// directory as needed, and clears the response cache.
func (h *Handler) writeImage(w http.ResponseWriter, r *http.Request, path string) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "failed to read image body", err)
		return
	}
	if len(body) == 0 {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "image body must not be empty", nil)
		return
	}

	if err := storage.EnsureDir(filepath.Dir(path)); err != nil {
		respondStorageError(w, err)
		return
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		respondStorageError(w, err)
		return
	}

	h.store.Cache().Responses().Clear("image_upload")
	respondSuccess(w, http.StatusOK, map[string]string{"stored": filepath.Base(path)}, false)
}

// deleteGameImage removes an image file. Deleting an absent image still
// answers 200.
func (h *Handler) deleteGameImage(w http.ResponseWriter, r *http.Request, pathFor func(int) string) {
	id, err := urlParamInt(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}
	if _, err := h.store.Get(id); err != nil {
		respondStorageError(w, err)
		return
	}

	if err := storage.RemoveFile(pathFor(id)); err != nil {
		respondStorageError(w, err)
		return
	}

	h.store.Cache().Responses().Clear("image_delete")
	respondSuccess(w, http.StatusOK, map[string]int{"id": id}, false)
}

// UploadGameCover stores a game's cover image.
func (h *Handler) UploadGameCover(w http.ResponseWriter, r *http.Request) {
	h.uploadGameImage(w, r, h.store.CoverPath)
}

// DeleteGameCover removes a game's cover image.
func (h *Handler) DeleteGameCover(w http.ResponseWriter, r *http.Request) {
	h.deleteGameImage(w, r, h.store.CoverPath)
}

// UploadGameBackground stores a game's background image.
func (h *Handler) UploadGameBackground(w http.ResponseWriter, r *http.Request) {
	h.uploadGameImage(w, r, h.store.BackgroundPath)
}

// DeleteGameBackground removes a game's background image.
func (h *Handler) DeleteGameBackground(w http.ResponseWriter, r *http.Request) {
	h.deleteGameImage(w, r, h.store.BackgroundPath)
}

// UploadExecutable stores a labeled launch script in the game directory.
// The label comes from the name query parameter, the extension from ext
// (default .sh), the script body from the raw request body.
func (h *Handler) UploadExecutable(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	name := r.URL.Query().Get("name")
	if strings.TrimSpace(name) == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "query parameter name is required", nil)
		return
	}
	ext := r.URL.Query().Get("ext")
	if ext == "" {
		ext = ".sh"
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxUploadBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "failed to read script body", err)
		return
	}

	game, err := h.store.AddExecutable(id, name, ext, body)
	if err != nil {
		respondStorageError(w, err)
		return
	}

	logging.Info().Int("game", id).Str("name", sanitizeLogValue(name)).Msg("Executable uploaded")
	respondSuccess(w, http.StatusOK, game, false)
}
