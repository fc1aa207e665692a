package service

import (
	"context"

	"github.com/yurfit/steam-scout/internal/domain"
	"github.com/yurfit/steam-scout/internal/steam"
)

// SteamAPI is the upstream surface the aggregation service consumes. The
// concrete implementation lives in internal/steam.
type SteamAPI interface {
	// GetAppDetails fetches static store metadata for one app.
	GetAppDetails(ctx context.Context, appID int) (*steam.AppMetadata, error)

	// GetPlayerCount fetches the live concurrent-player count for one app.
	GetPlayerCount(ctx context.Context, appID int) (int, error)

	// SearchStore runs a free-text search against the Steam store.
	SearchStore(ctx context.Context, term string) ([]domain.GameSearchResult, error)
}

// SteamService aggregates and caches Steam data for the tracked app set.
type SteamService interface {
	// GetTopGames returns the tracked games sorted by live player count,
	// plus studio rollups derived from them.
	GetTopGames(ctx context.Context) (*domain.TopGamesResult, error)

	// SearchGames proxies a free-text store search.
	SearchGames(ctx context.Context, term string) ([]domain.GameSearchResult, error)

	// GetGameDetails fetches the merged record for a single app.
	GetGameDetails(ctx context.Context, appID int) (*domain.GameRecord, error)
}

// AuthService verifies Clerk session tokens.
type AuthService interface {
	// VerifySessionToken validates a session JWT and returns the caller.
	VerifySessionToken(ctx context.Context, token string) (*domain.UserProfile, error)
}

// LeadService manages sales leads for authenticated users.
type LeadService interface {
	CreateLead(ctx context.Context, userID string, req *domain.LeadRequest) (*domain.Lead, error)
	GetLead(ctx context.Context, userID string, id int64) (*domain.Lead, error)
	ListLeads(ctx context.Context, userID string) ([]domain.Lead, error)
	UpdateLead(ctx context.Context, userID string, id int64, req *domain.LeadRequest) (*domain.Lead, error)
	DeleteLead(ctx context.Context, userID string, id int64) error
}

// Services aggregates all service interfaces.
type Services struct {
	Auth  AuthService
	Steam SteamService
	Leads LeadService
}
