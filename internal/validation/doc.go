// Ludarium - Personal Game Library Media Server
// Copyright 2026 Ludarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludarium/ludarium

// Package validation provides struct validation using go-playground/validator
// v10 behind a thread-safe singleton, with error translation into the API's
// VALIDATION_ERROR response format.
//
// Example:
//
//	type createRequest struct {
//	    Title      string  `validate:"required,min=1,max=500"`
//	    UserRating float64 `validate:"gte=0,lte=100"`
//	}
//
//	if err := validation.ValidateStruct(&req); err != nil {
//	    apiErr := err.ToAPIError()
//	    respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details)
//	    return
//	}
package validation
