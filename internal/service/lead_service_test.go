package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yurfit/steam-scout/internal/domain"
	"github.com/yurfit/steam-scout/internal/repository"
	apperrors "github.com/yurfit/steam-scout/pkg/errors"
	"github.com/yurfit/steam-scout/pkg/logger"
)

// fakeLeadRepo is an in-memory LeadRepository.
type fakeLeadRepo struct {
	nextID int64
	leads  map[int64]*domain.Lead
}

func newFakeLeadRepo() *fakeLeadRepo {
	return &fakeLeadRepo{leads: make(map[int64]*domain.Lead)}
}

func (f *fakeLeadRepo) Create(ctx context.Context, lead *domain.Lead) error {
	f.nextID++
	lead.ID = f.nextID
	copied := *lead
	f.leads[lead.ID] = &copied
	return nil
}

func (f *fakeLeadRepo) GetByID(ctx context.Context, userID string, id int64) (*domain.Lead, error) {
	lead, ok := f.leads[id]
	if !ok || lead.UserID != userID {
		return nil, repository.ErrLeadNotFound
	}
	copied := *lead
	return &copied, nil
}

func (f *fakeLeadRepo) ListByUser(ctx context.Context, userID string) ([]domain.Lead, error) {
	out := make([]domain.Lead, 0)
	for _, lead := range f.leads {
		if lead.UserID == userID {
			out = append(out, *lead)
		}
	}
	return out, nil
}

func (f *fakeLeadRepo) Update(ctx context.Context, lead *domain.Lead) error {
	existing, ok := f.leads[lead.ID]
	if !ok || existing.UserID != lead.UserID {
		return repository.ErrLeadNotFound
	}
	copied := *lead
	f.leads[lead.ID] = &copied
	return nil
}

func (f *fakeLeadRepo) Delete(ctx context.Context, userID string, id int64) error {
	lead, ok := f.leads[id]
	if !ok || lead.UserID != userID {
		return repository.ErrLeadNotFound
	}
	delete(f.leads, id)
	return nil
}

func newTestLeadService(repo repository.LeadRepository) LeadService {
	return NewLeadService(repo, nil, logger.NewNop())
}

func TestCreateLead(t *testing.T) {
	svc := newTestLeadService(newFakeLeadRepo())

	lead, err := svc.CreateLead(context.Background(), "user-1", &domain.LeadRequest{
		StudioName:   "Coffee Stain",
		ContactName:  "Anna",
		ContactEmail: "anna@example.com",
	})
	require.NoError(t, err)
	assert.NotZero(t, lead.ID)
	assert.Equal(t, "user-1", lead.UserID)
	assert.Equal(t, domain.LeadStatusNew, lead.Status, "status defaults to new")
}

func TestCreateLead_Validation(t *testing.T) {
	svc := newTestLeadService(newFakeLeadRepo())
	negative := -1

	tests := []struct {
		name string
		req  *domain.LeadRequest
	}{
		{
			name: "missing studio name",
			req:  &domain.LeadRequest{ContactName: "Anna"},
		},
		{
			name: "unknown status",
			req:  &domain.LeadRequest{StudioName: "X", Status: "maybe"},
		},
		{
			name: "bad email",
			req:  &domain.LeadRequest{StudioName: "X", ContactEmail: "not-an-email"},
		},
		{
			name: "negative app id",
			req:  &domain.LeadRequest{StudioName: "X", SteamAppID: &negative},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateLead(context.Background(), "user-1", tt.req)
			require.Error(t, err)
			appErr, ok := apperrors.AsAppError(err)
			require.True(t, ok)
			assert.Equal(t, apperrors.ErrorTypeValidation, appErr.Type)
		})
	}
}

func TestGetLead_OwnershipEnforced(t *testing.T) {
	repo := newFakeLeadRepo()
	svc := newTestLeadService(repo)

	lead, err := svc.CreateLead(context.Background(), "user-1", &domain.LeadRequest{StudioName: "X"})
	require.NoError(t, err)

	_, err = svc.GetLead(context.Background(), "user-2", lead.ID)
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeNotFound, appErr.Type, "foreign rows look like missing rows")
}

func TestUpdateLead(t *testing.T) {
	repo := newFakeLeadRepo()
	svc := newTestLeadService(repo)

	lead, err := svc.CreateLead(context.Background(), "user-1", &domain.LeadRequest{StudioName: "X"})
	require.NoError(t, err)

	updated, err := svc.UpdateLead(context.Background(), "user-1", lead.ID, &domain.LeadRequest{
		StudioName: "X",
		Status:     domain.LeadStatusContacted,
		Notes:      "sent intro email",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.LeadStatusContacted, updated.Status)
	assert.Equal(t, "sent intro email", updated.Notes)

	_, err = svc.UpdateLead(context.Background(), "user-1", 9999, &domain.LeadRequest{StudioName: "X"})
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeNotFound, appErr.Type)
}

func TestDeleteLead(t *testing.T) {
	repo := newFakeLeadRepo()
	svc := newTestLeadService(repo)

	lead, err := svc.CreateLead(context.Background(), "user-1", &domain.LeadRequest{StudioName: "X"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteLead(context.Background(), "user-1", lead.ID))

	err = svc.DeleteLead(context.Background(), "user-1", lead.ID)
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok)
	assert.Equal(t, apperrors.ErrorTypeNotFound, appErr.Type)
}

func TestListLeads(t *testing.T) {
	repo := newFakeLeadRepo()
	svc := newTestLeadService(repo)

	_, err := svc.CreateLead(context.Background(), "user-1", &domain.LeadRequest{StudioName: "A"})
	require.NoError(t, err)
	_, err = svc.CreateLead(context.Background(), "user-2", &domain.LeadRequest{StudioName: "B"})
	require.NoError(t, err)

	leads, err := svc.ListLeads(context.Background(), "user-1")
	require.NoError(t, err)
	require.Len(t, leads, 1)
	assert.Equal(t, "A", leads[0].StudioName)
}
