// Ludarium - Personal Game Library Media Server
// Copyright 2026 Ludarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludarium/ludarium

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ludarium/ludarium/internal/collections"
	"github.com/ludarium/ludarium/internal/config"
	"github.com/ludarium/ludarium/internal/middleware"
	"github.com/ludarium/ludarium/internal/overlay"
	"github.com/ludarium/ludarium/internal/tags"
)

// NewRouter wires all routes. Read routes are open; mutating routes sit
// behind the bearer token gate when one is configured.
func NewRouter(cfg *config.Config, h *Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.Server.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID", "ETag"},
		AllowCredentials: false,
		MaxAge:           300,
	}))
	if cfg.Server.RateLimitReqs > 0 {
		r.Use(httprate.LimitByIP(cfg.Server.RateLimitReqs, cfg.Server.RateLimitWindow))
	}

	auth := middleware.BearerAuth(cfg.Auth.Token)

	r.Get("/health", h.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middleware.PrometheusMetrics)

		r.Route("/games", func(r chi.Router) {
			r.Get("/", h.ListGames)
			r.With(auth).Post("/", h.CreateGame)
			r.With(auth).Post("/import", h.ImportGame)
			r.Get("/search", h.SearchCatalog)

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", h.GetGame)
				r.With(auth).Put("/", h.UpdateGame)
				r.With(auth).Delete("/", h.DeleteGame)

				r.Get("/cover", h.GetGameCover)
				r.With(auth).Post("/cover", h.UploadGameCover)
				r.With(auth).Delete("/cover", h.DeleteGameCover)

				r.Get("/background", h.GetGameBackground)
				r.With(auth).Post("/background", h.UploadGameBackground)
				r.With(auth).Delete("/background", h.DeleteGameBackground)

				r.With(auth).Post("/executables", h.UploadExecutable)
			})
		})

		for _, kind := range tags.Kinds {
			registry := h.store.TagRegistry(kind.GameField)
			r.Route("/"+kind.Folder, func(r chi.Router) {
				r.Get("/", h.ListTags(registry))
				r.With(auth).Post("/", h.CreateTag(registry))
				r.Get("/by-id/{id}/cover", h.GetTagCoverByID(registry))
				r.Get("/{title}/cover", h.GetTagCoverByTitle(registry))
				r.With(auth).Post("/{title}/cover", h.UploadTagCover(registry))
				r.With(auth).Delete("/{title}", h.DeleteTag(registry))
			})
		}

		for _, kind := range overlay.Kinds {
			store := overlay.NewStore(h.store.Root(), kind)
			r.Route("/"+kind.Folder, func(r chi.Router) {
				r.Get("/", h.ListOverlay(store))
				r.Get("/{id}/cover", h.GetOverlayCover(store))
				r.With(auth).Post("/{id}/cover", h.UploadOverlayCover(store))
			})
		}

		registryImages := func(r chi.Router, registry *collections.Registry) {
			r.Get("/{id}/cover", h.GetRegistryImage(registry.CoverPath))
			r.With(auth).Post("/{id}/cover", h.UploadRegistryImage(registry, registry.CoverPath))
			r.With(auth).Delete("/{id}/cover", h.DeleteRegistryImage(registry.CoverPath))
			r.Get("/{id}/background", h.GetRegistryImage(registry.BackgroundPath))
			r.With(auth).Post("/{id}/background", h.UploadRegistryImage(registry, registry.BackgroundPath))
			r.With(auth).Delete("/{id}/background", h.DeleteRegistryImage(registry.BackgroundPath))
		}

		r.Route("/collections", func(r chi.Router) {
			r.Get("/", h.ListCollectionLike(h.store.Collections()))
			r.With(auth).Post("/", h.CreateCollection)
			r.With(auth).Put("/{id}/games/order", h.OrderCollectionGames)
			registryImages(r, h.store.Collections())
			r.With(auth).Delete("/{id}", h.DeleteCollectionLike(h.store.Collections()))
		})

		companyRoutes := func(registry *collections.Registry) func(chi.Router) {
			return func(r chi.Router) {
				r.Get("/", h.ListCollectionLike(registry))
				registryImages(r, registry)
				r.With(auth).Delete("/{id}", h.DeleteCollectionLike(registry))
			}
		}
		r.Route("/developers", companyRoutes(h.store.Developers()))
		r.Route("/publishers", companyRoutes(h.store.Publishers()))

		r.Get("/recommended", h.Recommended)

		r.Get("/settings", h.GetSettings)
		r.With(auth).Put("/settings", h.UpdateSettings)
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusNotFound, "NOT_FOUND", "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, http.StatusMethodNotAllowed, "VALIDATION_ERROR", "method not allowed", nil)
	})

	return r
}
