package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yurfit/steam-scout/internal/domain"
	"github.com/yurfit/steam-scout/internal/middleware"
	"github.com/yurfit/steam-scout/pkg/errors"
	"github.com/yurfit/steam-scout/pkg/logger"
)

// fakeLeadService scripts the service responses.
type fakeLeadService struct {
	lead  *domain.Lead
	leads []domain.Lead
	err   error
}

func (f *fakeLeadService) CreateLead(ctx context.Context, userID string, req *domain.LeadRequest) (*domain.Lead, error) {
	return f.lead, f.err
}

func (f *fakeLeadService) GetLead(ctx context.Context, userID string, id int64) (*domain.Lead, error) {
	return f.lead, f.err
}

func (f *fakeLeadService) ListLeads(ctx context.Context, userID string) ([]domain.Lead, error) {
	return f.leads, f.err
}

func (f *fakeLeadService) UpdateLead(ctx context.Context, userID string, id int64, req *domain.LeadRequest) (*domain.Lead, error) {
	return f.lead, f.err
}

func (f *fakeLeadService) DeleteLead(ctx context.Context, userID string, id int64) error {
	return f.err
}

func newLeadRouter(svc *fakeLeadService, authenticated bool) chi.Router {
	r := chi.NewRouter()
	if authenticated {
		r.Use(func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
				ctx := context.WithValue(req.Context(), middleware.UserContextKey, &domain.UserProfile{Sub: "user_1"})
				next.ServeHTTP(w, req.WithContext(ctx))
			})
		})
	}
	NewLeadHandler(svc, logger.NewNop()).RegisterRoutes(r)
	return r
}

func TestLeadRoutes_RequireAuthenticatedUser(t *testing.T) {
	router := newLeadRouter(&fakeLeadService{}, false)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCreateLead_HTTP(t *testing.T) {
	router := newLeadRouter(&fakeLeadService{
		lead: &domain.Lead{ID: 1, UserID: "user_1", StudioName: "Coffee Stain", Status: domain.LeadStatusNew},
	}, true)

	body := strings.NewReader(`{"studio_name": "Coffee Stain"}`)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", body))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), "Coffee Stain")
}

func TestCreateLead_MalformedBody(t *testing.T) {
	router := newLeadRouter(&fakeLeadService{}, true)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{not json")))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetLead_InvalidID(t *testing.T) {
	router := newLeadRouter(&fakeLeadService{}, true)

	for _, path := range []string{"/abc", "/0", "/-3"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}

func TestGetLead_NotFound(t *testing.T) {
	router := newLeadRouter(&fakeLeadService{
		err: errors.NewNotFoundError("Lead not found"),
	}, true)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/42", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteLead_HTTP(t *testing.T) {
	router := newLeadRouter(&fakeLeadService{}, true)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/42", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}

func TestListLeads_HTTP(t *testing.T) {
	router := newLeadRouter(&fakeLeadService{
		leads: []domain.Lead{
			{ID: 1, UserID: "user_1", StudioName: "A"},
			{ID: 2, UserID: "user_1", StudioName: "B"},
		},
	}, true)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"A"`)
	assert.Contains(t, rec.Body.String(), `"B"`)
}
