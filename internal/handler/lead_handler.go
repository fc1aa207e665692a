package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/yurfit/steam-scout/internal/domain"
	"github.com/yurfit/steam-scout/internal/middleware"
	"github.com/yurfit/steam-scout/internal/service"
	"github.com/yurfit/steam-scout/pkg/errors"
	"github.com/yurfit/steam-scout/pkg/logger"
)

// LeadHandler exposes the lead CRUD endpoints. Every route requires an
// authenticated user.
type LeadHandler struct {
	leadService service.LeadService
	logger      *logger.Logger
}

// NewLeadHandler creates a new lead handler.
func NewLeadHandler(leadService service.LeadService, logger *logger.Logger) *LeadHandler {
	return &LeadHandler{
		leadService: leadService,
		logger:      logger,
	}
}

// RegisterRoutes mounts the lead routes on r.
func (h *LeadHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.CreateLead)
	r.Get("/", h.ListLeads)
	r.Get("/{id}", h.GetLead)
	r.Put("/{id}", h.UpdateLead)
	r.Delete("/{id}", h.DeleteLead)
}

// CreateLead handles POST /api/leads
func (h *LeadHandler) CreateLead(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, r, errors.NewAuthenticationError("User not authenticated"), h.logger)
		return
	}

	req, err := decodeLeadRequest(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	lead, err := h.leadService.CreateLead(r.Context(), user.Sub, req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, lead, h.logger)
}

// ListLeads handles GET /api/leads
func (h *LeadHandler) ListLeads(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, r, errors.NewAuthenticationError("User not authenticated"), h.logger)
		return
	}

	leads, err := h.leadService.ListLeads(r.Context(), user.Sub)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, leads, h.logger)
}

// GetLead handles GET /api/leads/{id}
func (h *LeadHandler) GetLead(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, r, errors.NewAuthenticationError("User not authenticated"), h.logger)
		return
	}

	id, err := leadIDParam(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	lead, err := h.leadService.GetLead(r.Context(), user.Sub, id)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, lead, h.logger)
}

// UpdateLead handles PUT /api/leads/{id}
func (h *LeadHandler) UpdateLead(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, r, errors.NewAuthenticationError("User not authenticated"), h.logger)
		return
	}

	id, err := leadIDParam(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	req, err := decodeLeadRequest(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	lead, err := h.leadService.UpdateLead(r.Context(), user.Sub, id, req)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	writeJSON(w, http.StatusOK, lead, h.logger)
}

// DeleteLead handles DELETE /api/leads/{id}
func (h *LeadHandler) DeleteLead(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		writeError(w, r, errors.NewAuthenticationError("User not authenticated"), h.logger)
		return
	}

	id, err := leadIDParam(r)
	if err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	if err := h.leadService.DeleteLead(r.Context(), user.Sub, id); err != nil {
		writeError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func decodeLeadRequest(r *http.Request) (*domain.LeadRequest, error) {
	var req domain.LeadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return nil, errors.NewValidationError("Request body is not valid JSON", nil)
	}
	return &req, nil
}

func leadIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewValidationError("Lead id must be a positive number", map[string]interface{}{
			"field": "id",
		})
	}
	return id, nil
}
