// Ludarium - Personal Game Library Media Server
// Copyright 2026 Ludarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludarium/ludarium

package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/ludarium/ludarium/internal/collections"
	"github.com/ludarium/ludarium/internal/library"
	"github.com/ludarium/ludarium/internal/logging"
	"github.com/ludarium/ludarium/internal/models"
	"github.com/ludarium/ludarium/internal/tags"
	"github.com/ludarium/ludarium/internal/validation"
)

// sanitizeLogValue replaces control characters so request-supplied strings
// cannot forge log entries.
func sanitizeLogValue(s string) string {
	var result strings.Builder
	result.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			result.WriteString(fmt.Sprintf("\\x%02x", r))
		} else {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// respondJSON sends a JSON envelope with proper headers.
func respondJSON(w http.ResponseWriter, status int, response *models.APIResponse) {
	w.Header().Set("Content-Type", "application/json")

	data, err := json.Marshal(response)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("ETag", generateETag(data))

	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// generateETag creates a simple ETag using FNV-1a.
func generateETag(data []byte) string {
	hash := uint32(2166136261)
	for _, b := range data {
		hash ^= uint32(b)
		hash *= 16777619
	}
	return strconv.FormatUint(uint64(hash), 16)
}

// respondSuccess wraps data in a success envelope.
func respondSuccess(w http.ResponseWriter, status int, data interface{}, cached bool) {
	respondJSON(w, status, &models.APIResponse{
		Status: "success",
		Data:   data,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
			Cached:    cached,
		},
	})
}

// respondError sends an error envelope.
func respondError(w http.ResponseWriter, status int, code, message string, err error) {
	if err != nil {
		logging.Error().Str("code", sanitizeLogValue(code)).Str("error", sanitizeLogValue(err.Error())).Msg("API Error")
	}

	respondJSON(w, status, &models.APIResponse{
		Status: "error",
		Data:   nil,
		Metadata: models.Metadata{
			Timestamp: time.Now(),
		},
		Error: &models.APIError{
			Code:    code,
			Message: message,
		},
	})
}

// respondStorageError maps storage sentinel errors to HTTP status codes,
// falling back to 500 STORAGE_ERROR.
func respondStorageError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, library.ErrNotFound), errors.Is(err, tags.ErrNotFound), errors.Is(err, collections.ErrNotFound):
		respondError(w, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	case errors.Is(err, library.ErrAlreadyExists), errors.Is(err, tags.ErrTitleExists), errors.Is(err, collections.ErrTitleExists):
		respondError(w, http.StatusConflict, "CONFLICT", err.Error(), nil)
	case errors.Is(err, tags.ErrInUse):
		respondError(w, http.StatusConflict, "TAG_IN_USE", err.Error(), nil)
	case errors.Is(err, library.ErrBadExtension):
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
	default:
		respondError(w, http.StatusInternalServerError, "STORAGE_ERROR", "storage operation failed", err)
	}
}

// validateRequest validates a struct and converts failures to the API's
// error shape.
func validateRequest(v interface{}) *models.APIError {
	validationErr := validation.ValidateStruct(v)
	if validationErr == nil {
		return nil
	}

	apiErr := validationErr.ToAPIError()
	return &models.APIError{
		Code:    apiErr.Code,
		Message: apiErr.Message,
		Details: apiErr.Details,
	}
}

// decodeBody decodes a JSON request body into v.
func decodeBody(r *http.Request, v interface{}) error {
	return json.NewDecoder(r.Body).Decode(v)
}

// urlParamInt extracts a numeric chi URL parameter.
func urlParamInt(r *http.Request, key string) (int, error) {
	value := chi.URLParam(r, key)
	id, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("parameter %s must be numeric", key)
	}
	return id, nil
}
