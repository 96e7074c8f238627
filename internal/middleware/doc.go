// Ludarium - Personal Game Library Media Server
// Copyright 2026 Ludarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludarium/ludarium

// Package middleware provides HTTP middleware: request ID propagation,
// Prometheus instrumentation, and the optional bearer token gate for
// mutating endpoints. CORS and rate limiting come from go-chi/cors and
// go-chi/httprate and are wired directly in the router.
package middleware
