// Ludarium - Personal Game Library Media Server
// Copyright 2026 Ludarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludarium/ludarium

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in
// order of priority. The first file found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/ludarium/config.yaml",
	"/etc/ludarium/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// EnvPrefix namespaces all ludarium environment variables.
const EnvPrefix = "LUDARIUM_"

// envAliases maps bare legacy environment variables to koanf paths. These
// take effect only when set and sit between the config file and the
// prefixed variables in precedence.
var envAliases = map[string]string{
	"METADATA_ROOT": "storage.root",
	"FRONTEND_URL":  "server.frontend_url",
	"PORT":          "server.port",
	"API_TOKEN":     "auth.token",
}

// Load loads configuration using Koanf v2 with layered sources:
// defaults, then an optional YAML file, then environment variables.
func Load() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	for name, path := range envAliases {
		if value := os.Getenv(name); value != "" {
			if err := k.Set(path, value); err != nil {
				return nil, fmt.Errorf("failed to apply %s: %w", name, err)
			}
		}
	}

	envProvider := env.Provider(EnvPrefix, ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// envTransformFunc converts a prefixed environment variable name to a koanf
// path: LUDARIUM_SERVER_FRONTEND_URL -> server.frontend_url. The first
// underscore separates the section; the rest stay as-is to match the
// koanf struct tags.
func envTransformFunc(name string) string {
	trimmed := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
	section, key, found := strings.Cut(trimmed, "_")
	if !found {
		return trimmed
	}
	return section + "." + key
}

// findConfigFile returns the first config file that exists, or "".
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// sliceConfigPaths lists paths that should be parsed as comma-separated
// slices when they arrive as strings from the environment.
var sliceConfigPaths = []string{
	"server.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		str, ok := val.(string)
		if !ok {
			continue
		}
		var parts []string
		for _, item := range strings.Split(str, ",") {
			if trimmed := strings.TrimSpace(item); trimmed != "" {
				parts = append(parts, trimmed)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return err
		}
	}
	return nil
}
