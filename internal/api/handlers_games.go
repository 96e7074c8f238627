// Ludarium - Personal Game Library Media Server
// Copyright 2026 Ludarium contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/ludarium/ludarium

package api

import (
	"net/http"
	"sort"
	"strings"

	"github.com/goccy/go-json"

	"github.com/ludarium/ludarium/internal/library"
	"github.com/ludarium/ludarium/internal/logging"
	"github.com/ludarium/ludarium/internal/models"
)

// listGamesRequest carries the query parameters of the games list route.
type listGamesRequest struct {
	Sort string `validate:"omitempty,oneof=title rating releaseDate"`
}

// ListGames returns the whole library sorted by the requested key. Results
// are served from the response cache when the library has not changed since
// the last request with the same sort key.
func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request) {
	req := listGamesRequest{Sort: r.URL.Query().Get("sort")}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}
	sortKey := req.Sort
	if sortKey == "" {
		sortKey = "title"
	}

	cacheKey := "games:" + sortKey
	if payload, ok := h.store.Cache().Responses().Get(cacheKey); ok {
		respondSuccess(w, http.StatusOK, payload, true)
		return
	}

	games := h.store.Cache().All()
	sortGames(games, sortKey)

	h.store.Cache().Responses().Set(cacheKey, games)
	respondSuccess(w, http.StatusOK, games, false)
}

// sortGames orders the list in place by the given key. Title order is
// case-insensitive; rating sorts descending with unrated games last;
// releaseDate sorts ascending with undated games last.
func sortGames(games []*models.Game, key string) {
	switch key {
	case "rating":
		sort.SliceStable(games, func(i, j int) bool {
			if (games[i].Rating == 0) != (games[j].Rating == 0) {
				return games[j].Rating == 0
			}
			return games[i].Rating > games[j].Rating
		})
	case "releaseDate":
		sort.SliceStable(games, func(i, j int) bool {
			return games[i].ReleaseBefore(games[j])
		})
	default:
		sort.SliceStable(games, func(i, j int) bool {
			return strings.ToLower(games[i].Title) < strings.ToLower(games[j].Title)
		})
	}
}

// GetGame returns a single game by id.
func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	game, err := h.store.Get(id)
	if err != nil {
		respondStorageError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, game, false)
}

// createGameRequest is the manual-add body. Everything beyond the title is
// optional.
type createGameRequest struct {
	Title        string          `json:"title" validate:"required,min=1,max=500"`
	Summary      string          `json:"summary"`
	ReleaseDay   int             `json:"releaseDay" validate:"gte=0,lte=31"`
	ReleaseMonth int             `json:"releaseMonth" validate:"gte=0,lte=12"`
	ReleaseYear  int             `json:"releaseYear" validate:"gte=0,lte=2100"`
	Rating       float64         `json:"rating" validate:"gte=0,lte=100"`
	Genres       models.FlexRefs `json:"genre"`
	Themes       models.FlexRefs `json:"themes"`
	Platforms    models.FlexRefs `json:"platforms"`
	Keywords     []string        `json:"keywords"`
}

// CreateGame adds a game manually, outside the catalog import path.
func (h *Handler) CreateGame(w http.ResponseWriter, r *http.Request) {
	var req createGameRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "request body is not valid JSON", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	game := &models.Game{
		Title:        req.Title,
		Summary:      req.Summary,
		ReleaseDay:   req.ReleaseDay,
		ReleaseMonth: req.ReleaseMonth,
		ReleaseYear:  req.ReleaseYear,
		Rating:       req.Rating,
		Genres:       req.Genres,
		Themes:       req.Themes,
		Platforms:    req.Platforms,
		Keywords:     req.Keywords,
	}
	if err := h.store.Create(game); err != nil {
		respondStorageError(w, err)
		return
	}
	respondSuccess(w, http.StatusCreated, game, false)
}

// importGameRequest identifies the catalog entry to import.
type importGameRequest struct {
	ID int `json:"id" validate:"required,gt=0"`
}

// ImportGame fetches a catalog entry and materializes it as a library game.
func (h *Handler) ImportGame(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		respondError(w, http.StatusServiceUnavailable, "STORAGE_ERROR", "catalog integration is not configured", nil)
		return
	}

	var req importGameRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "request body is not valid JSON", err)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondError(w, http.StatusBadRequest, apiErr.Code, apiErr.Message, nil)
		return
	}

	entry, err := h.catalog.FetchByID(r.Context(), req.ID)
	if err != nil {
		respondError(w, http.StatusBadGateway, "STORAGE_ERROR", "catalog lookup failed", err)
		return
	}

	game, err := h.store.Import(entry)
	if err != nil {
		respondStorageError(w, err)
		return
	}
	respondSuccess(w, http.StatusCreated, game, false)
}

// SearchCatalog proxies a title search to the upstream catalog.
func (h *Handler) SearchCatalog(w http.ResponseWriter, r *http.Request) {
	if h.catalog == nil {
		respondError(w, http.StatusServiceUnavailable, "STORAGE_ERROR", "catalog integration is not configured", nil)
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "query parameter q is required", nil)
		return
	}

	results, err := h.catalog.SearchByTitle(r.Context(), query)
	if err != nil {
		respondError(w, http.StatusBadGateway, "STORAGE_ERROR", "catalog search failed", err)
		return
	}
	respondSuccess(w, http.StatusOK, results, false)
}

// updateGameRequest mirrors the writable game fields with pointer-optional
// decoding. Executables is raw so absent, null and array bodies can be told
// apart.
type updateGameRequest struct {
	Title   *string `json:"title"`
	Summary *string `json:"summary"`

	ReleaseDay   *int `json:"releaseDay"`
	ReleaseMonth *int `json:"releaseMonth"`
	ReleaseYear  *int `json:"releaseYear"`

	Rating       *float64 `json:"rating"`
	CriticRating *float64 `json:"criticRating"`
	UserRating   *float64 `json:"userRating"`

	Genres             *models.FlexRefs `json:"genre"`
	Themes             *models.FlexRefs `json:"themes"`
	Platforms          *models.FlexRefs `json:"platforms"`
	GameEngines        *models.FlexRefs `json:"gameEngines"`
	GameModes          *models.FlexRefs `json:"gameModes"`
	PlayerPerspectives *models.FlexRefs `json:"playerPerspectives"`

	Developers *[]models.CompanyRef `json:"developers"`
	Publishers *[]models.CompanyRef `json:"publishers"`

	Franchises  *[]models.NameRef `json:"franchises"`
	Series      *[]models.NameRef `json:"series"`
	Collections *[]models.NameRef `json:"collection"`
	Keywords    *[]string         `json:"keywords"`

	Executables json.RawMessage `json:"executables"`

	ShowTitle *bool `json:"showTitle"`

	// hasExecutables records whether the key appeared in the body at all.
	hasExecutables bool
}

// UnmarshalJSON decodes the patch and records key presence for the
// executables field.
func (req *updateGameRequest) UnmarshalJSON(data []byte) error {
	type alias updateGameRequest
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}

	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	_, a.hasExecutables = keys["executables"]

	*req = updateGameRequest(a)
	return nil
}

// toPatch converts the request to the store's typed patch. The executables
// field is special: an absent key or explicit null deletes every script
// file, an array is the authoritative desired set.
func (req *updateGameRequest) toPatch() (*library.GamePatch, error) {
	patch := &library.GamePatch{
		Title:              req.Title,
		Summary:            req.Summary,
		ReleaseDay:         req.ReleaseDay,
		ReleaseMonth:       req.ReleaseMonth,
		ReleaseYear:        req.ReleaseYear,
		Rating:             req.Rating,
		CriticRating:       req.CriticRating,
		UserRating:         req.UserRating,
		Genres:             req.Genres,
		Themes:             req.Themes,
		Platforms:          req.Platforms,
		GameEngines:        req.GameEngines,
		GameModes:          req.GameModes,
		PlayerPerspectives: req.PlayerPerspectives,
		Developers:         req.Developers,
		Publishers:         req.Publishers,
		Franchises:         req.Franchises,
		Series:             req.Series,
		Collections:        req.Collections,
		Keywords:           req.Keywords,
		ShowTitle:          req.ShowTitle,
	}

	if !req.hasExecutables || string(req.Executables) == "null" {
		patch.Executables = &library.ExecutablesPatch{Clear: true}
		return patch, nil
	}

	var names []string
	if err := json.Unmarshal(req.Executables, &names); err != nil {
		return nil, err
	}
	patch.Executables = &library.ExecutablesPatch{Names: names}
	return patch, nil
}

// UpdateGame applies an allow-listed patch to a game.
func (h *Handler) UpdateGame(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	var req updateGameRequest
	if err := decodeBody(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "request body is not valid JSON", err)
		return
	}

	patch, err := req.toPatch()
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", "executables must be null or an array of names", err)
		return
	}

	game, err := h.store.Update(id, patch)
	if err != nil {
		respondStorageError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, game, false)
}

// DeleteGame removes a game and cascades reference cleanup.
func (h *Handler) DeleteGame(w http.ResponseWriter, r *http.Request) {
	id, err := urlParamInt(r, "id")
	if err != nil {
		respondError(w, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
		return
	}

	if err := h.store.Delete(id); err != nil {
		respondStorageError(w, err)
		return
	}

	logging.Info().Int("game", id).Msg("Game deleted via API")
	respondSuccess(w, http.StatusOK, map[string]int{"deleted": id}, false)
}
