// Ludarium - Personal Game Library Media Server
// Copyright 2026 Ludarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludarium/ludarium

// Package api provides the HTTP surface using the chi router. All JSON
// responses use the APIResponse envelope; image routes respond with raw
// bytes. Handlers hold their dependencies explicitly, there are no package
// globals beyond the shared metrics collectors.
package api
