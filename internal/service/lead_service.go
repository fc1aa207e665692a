package service

import (
	"context"
	"errors"
	"strings"

	"github.com/yurfit/steam-scout/internal/domain"
	"github.com/yurfit/steam-scout/internal/repository"
	apperrors "github.com/yurfit/steam-scout/pkg/errors"
	"github.com/yurfit/steam-scout/pkg/logger"
)

// leadService implements LeadService with validation, ownership scoping, and
// cache invalidation on writes. cacheService may be nil when Redis is not
// configured.
type leadService struct {
	repo         repository.LeadRepository
	cacheService *CacheService
	logger       *logger.Logger
}

// NewLeadService creates the lead service.
func NewLeadService(repo repository.LeadRepository, cacheService *CacheService, logger *logger.Logger) LeadService {
	return &leadService{
		repo:         repo,
		cacheService: cacheService,
		logger:       logger,
	}
}

func (s *leadService) CreateLead(ctx context.Context, userID string, req *domain.LeadRequest) (*domain.Lead, error) {
	if err := validateLeadRequest(req); err != nil {
		return nil, err
	}

	lead := &domain.Lead{
		UserID:       userID,
		StudioName:   strings.TrimSpace(req.StudioName),
		ContactName:  strings.TrimSpace(req.ContactName),
		ContactEmail: strings.TrimSpace(req.ContactEmail),
		SteamAppID:   req.SteamAppID,
		Status:       req.Status,
		Notes:        req.Notes,
	}
	if lead.Status == "" {
		lead.Status = domain.LeadStatusNew
	}

	if err := s.repo.Create(ctx, lead); err != nil {
		s.logger.WithError(err).Error("Failed to create lead")
		return nil, apperrors.NewInternalError("Failed to create lead", err)
	}

	s.invalidateCaches(userID)

	s.logger.WithFields(map[string]interface{}{
		"lead_id": lead.ID,
		"user_id": userID,
	}).Info("Lead created")

	return lead, nil
}

func (s *leadService) GetLead(ctx context.Context, userID string, id int64) (*domain.Lead, error) {
	var (
		lead *domain.Lead
		err  error
	)

	if s.cacheService != nil {
		lead, err = s.cacheService.GetLeadWithCache(ctx, userID, id, s.repo.GetByID)
	} else {
		lead, err = s.repo.GetByID(ctx, userID, id)
	}

	if errors.Is(err, repository.ErrLeadNotFound) {
		return nil, apperrors.NewNotFoundError("Lead not found")
	}
	if err != nil {
		s.logger.WithError(err).Error("Failed to get lead")
		return nil, apperrors.NewInternalError("Failed to get lead", err)
	}
	return lead, nil
}

func (s *leadService) ListLeads(ctx context.Context, userID string) ([]domain.Lead, error) {
	var (
		leads []domain.Lead
		err   error
	)

	if s.cacheService != nil {
		leads, err = s.cacheService.GetLeadsWithCache(ctx, userID, s.repo.ListByUser)
	} else {
		leads, err = s.repo.ListByUser(ctx, userID)
	}

	if err != nil {
		s.logger.WithError(err).Error("Failed to list leads")
		return nil, apperrors.NewInternalError("Failed to list leads", err)
	}
	return leads, nil
}

func (s *leadService) UpdateLead(ctx context.Context, userID string, id int64, req *domain.LeadRequest) (*domain.Lead, error) {
	if err := validateLeadRequest(req); err != nil {
		return nil, err
	}

	lead, err := s.repo.GetByID(ctx, userID, id)
	if errors.Is(err, repository.ErrLeadNotFound) {
		return nil, apperrors.NewNotFoundError("Lead not found")
	}
	if err != nil {
		return nil, apperrors.NewInternalError("Failed to load lead", err)
	}

	lead.StudioName = strings.TrimSpace(req.StudioName)
	lead.ContactName = strings.TrimSpace(req.ContactName)
	lead.ContactEmail = strings.TrimSpace(req.ContactEmail)
	lead.SteamAppID = req.SteamAppID
	lead.Notes = req.Notes
	if req.Status != "" {
		lead.Status = req.Status
	}

	if err := s.repo.Update(ctx, lead); err != nil {
		if errors.Is(err, repository.ErrLeadNotFound) {
			return nil, apperrors.NewNotFoundError("Lead not found")
		}
		s.logger.WithError(err).Error("Failed to update lead")
		return nil, apperrors.NewInternalError("Failed to update lead", err)
	}

	s.invalidateCaches(userID, id)

	return lead, nil
}

func (s *leadService) DeleteLead(ctx context.Context, userID string, id int64) error {
	err := s.repo.Delete(ctx, userID, id)
	if errors.Is(err, repository.ErrLeadNotFound) {
		return apperrors.NewNotFoundError("Lead not found")
	}
	if err != nil {
		s.logger.WithError(err).Error("Failed to delete lead")
		return apperrors.NewInternalError("Failed to delete lead", err)
	}

	s.invalidateCaches(userID, id)

	s.logger.WithFields(map[string]interface{}{
		"lead_id": id,
		"user_id": userID,
	}).Info("Lead deleted")

	return nil
}

func (s *leadService) invalidateCaches(userID string, leadIDs ...int64) {
	if s.cacheService != nil {
		s.cacheService.InvalidateLeadCaches(userID, leadIDs...)
	}
}

// validateLeadRequest checks the write payload. Status is optional on create
// (defaults to "new") but must be a known value when present.
func validateLeadRequest(req *domain.LeadRequest) error {
	if strings.TrimSpace(req.StudioName) == "" {
		return apperrors.NewValidationError("Studio name is required", map[string]interface{}{
			"field": "studio_name",
		})
	}

	if req.Status != "" && !domain.IsValidLeadStatus(req.Status) {
		return apperrors.NewValidationError("Unknown lead status", map[string]interface{}{
			"field":  "status",
			"value":  req.Status,
			"values": domain.ValidLeadStatuses,
		})
	}

	if email := strings.TrimSpace(req.ContactEmail); email != "" {
		at := strings.Index(email, "@")
		if at <= 0 || at == len(email)-1 || !strings.Contains(email[at:], ".") {
			return apperrors.NewValidationError("Contact email is not valid", map[string]interface{}{
				"field": "contact_email",
			})
		}
	}

	if req.SteamAppID != nil && *req.SteamAppID <= 0 {
		return apperrors.NewValidationError("Steam app id must be positive", map[string]interface{}{
			"field": "steam_app_id",
		})
	}

	return nil
}
