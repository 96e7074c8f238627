// Ludarium - Personal Game Library Media Server
// Copyright 2026 Ludarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludarium/ludarium

// Package main is the entry point for the Ludarium server.
//
// Ludarium tracks a personal library of locally installed games and their
// metadata in a directory-per-entity flat-file store and exposes it over
// HTTP for a companion frontend.
//
// The server initializes components in the following order:
//
//  1. Configuration: layered Koanf v2 sources (defaults, config.yaml, env)
//  2. Logging: zerolog, JSON or console format
//  3. Library store: legacy tag-field migration, then cache warm-up
//  4. Recommended sections: keyword-derived sections refreshed at startup
//  5. Filesystem watcher (optional): reload on external metadata edits
//  6. HTTP server: chi router with graceful shutdown
//
// Configuration comes from environment variables (LUDARIUM_ prefix, plus
// the bare METADATA_ROOT, FRONTEND_URL, PORT and API_TOKEN aliases), an
// optional config.yaml, and built-in defaults. A .env file in the working
// directory is loaded first when present.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ludarium/ludarium/internal/api"
	"github.com/ludarium/ludarium/internal/cache"
	"github.com/ludarium/ludarium/internal/config"
	"github.com/ludarium/ludarium/internal/library"
	"github.com/ludarium/ludarium/internal/logging"
	"github.com/ludarium/ludarium/internal/settings"
	"github.com/ludarium/ludarium/internal/watch"
)

func main() {
	// A missing .env file is fine; explicit environment still applies.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:     cfg.Logging.Level,
		Format:    cfg.Logging.Format,
		Timestamp: true,
	})

	logging.Info().
		Str("root", cfg.Storage.Root).
		Bool("auth", cfg.Auth.Token != "").
		Bool("watch", cfg.Watch.Enabled).
		Msg("Starting Ludarium")

	store := library.NewStore(cfg.Storage.Root, cache.NewGameCache())
	if err := store.Warm(); err != nil {
		logging.Fatal().Err(err).Msg("Failed to warm library store")
	}
	logging.Info().Int("games", store.Cache().Len()).Msg("Library loaded")

	if err := store.Sections().EnsureSectionsComplete(store.Cache().Snapshot()); err != nil {
		logging.Error().Err(err).Msg("Failed to refresh recommended sections")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.Watch.Enabled {
		watcher, err := watch.New(store, cfg.Watch.Debounce)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to start filesystem watcher")
		}
		go func() {
			if err := watcher.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logging.Error().Err(err).Msg("Filesystem watcher stopped")
			}
		}()
	}

	// The catalog client is nil until credentials wiring lands; the import
	// route answers 503 in standalone mode.
	handler := api.NewHandler(store, settings.NewStore(cfg.Storage.Root), nil, cfg.Server.FrontendURL)

	server := &http.Server{
		Addr:         cfg.Addr(),
		Handler:      api.NewRouter(cfg, handler),
		ReadTimeout:  cfg.Server.Timeout,
		WriteTimeout: cfg.Server.Timeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("addr", cfg.Addr()).Msg("HTTP server listening")
		errCh <- server.ListenAndServe()
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		logging.Info().Str("signal", sig.String()).Msg("Shutting down")
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Fatal().Err(err).Msg("HTTP server failed")
		}
	}

	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("Graceful shutdown failed")
	}
	logging.Info().Msg("Shutdown complete")
}
