package repository

import (
	"context"

	"github.com/yurfit/steam-scout/internal/domain"
)

// LeadRepository persists sales leads. Every query is scoped by the owning
// user id.
type LeadRepository interface {
	Create(ctx context.Context, lead *domain.Lead) error
	GetByID(ctx context.Context, userID string, id int64) (*domain.Lead, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Lead, error)
	Update(ctx context.Context, lead *domain.Lead) error
	Delete(ctx context.Context, userID string, id int64) error
}
