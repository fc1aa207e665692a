package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/yurfit/steam-scout/internal/service"
	"github.com/yurfit/steam-scout/pkg/errors"
	"github.com/yurfit/steam-scout/pkg/logger"
)

// SteamHandler exposes the Steam proxy endpoints.
type SteamHandler struct {
	steamService service.SteamService
	logger       *logger.Logger
}

// NewSteamHandler creates a new Steam handler.
func NewSteamHandler(steamService service.SteamService, logger *logger.Logger) *SteamHandler {
	return &SteamHandler{
		steamService: steamService,
		logger:       logger,
	}
}

// RegisterRoutes mounts the Steam proxy routes on r.
func (h *SteamHandler) RegisterRoutes(r chi.Router) {
	r.Get("/top-games", h.GetTopGames)
	r.Get("/search", h.SearchGames)
	r.Get("/games/{appID}", h.GetGameDetails)
}

// GetTopGames handles GET /api/steam/top-games
func (h *SteamHandler) GetTopGames(w http.ResponseWriter, r *http.Request) {
	result, err := h.steamService.GetTopGames(r.Context())
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, result, h.logger)
}

// SearchGames handles GET /api/steam/search?term=...
func (h *SteamHandler) SearchGames(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("term"))
	if term == "" {
		writeError(w, r, errors.NewValidationError("Search term is required", map[string]interface{}{
			"field": "term",
		}), h.logger)
		return
	}

	results, err := h.steamService.SearchGames(r.Context(), term)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, results, h.logger)
}

// GetGameDetails handles GET /api/steam/games/{appID}
func (h *SteamHandler) GetGameDetails(w http.ResponseWriter, r *http.Request) {
	appID, err := strconv.Atoi(chi.URLParam(r, "appID"))
	if err != nil || appID <= 0 {
		writeError(w, r, errors.NewValidationError("App id must be a positive number", map[string]interface{}{
			"field": "appID",
		}), h.logger)
		return
	}

	record, err := h.steamService.GetGameDetails(r.Context(), appID)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, record, h.logger)
}
