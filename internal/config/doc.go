// Ludarium - Personal Game Library Media Server
// Copyright 2026 Ludarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludarium/ludarium

// Package config loads application configuration with Koanf v2 from
// layered sources: built-in defaults, an optional YAML file, and
// environment variables, in ascending precedence.
package config
