package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/yurfit/steam-scout/internal/domain"
	"github.com/yurfit/steam-scout/pkg/database"
)

// ErrLeadNotFound is returned when a lead does not exist or belongs to
// another user.
var ErrLeadNotFound = errors.New("lead not found")

type leadRepository struct {
	db *database.PostgresDB
}

// NewLeadRepository creates the Postgres-backed lead repository.
func NewLeadRepository(db *database.PostgresDB) LeadRepository {
	return &leadRepository{db: db}
}

// EnsureSchema creates the leads table when it does not exist yet.
func EnsureSchema(ctx context.Context, db *database.PostgresDB) error {
	_, err := db.Pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS leads (
			id            BIGSERIAL PRIMARY KEY,
			user_id       TEXT NOT NULL,
			studio_name   TEXT NOT NULL,
			contact_name  TEXT NOT NULL DEFAULT '',
			contact_email TEXT NOT NULL DEFAULT '',
			steam_app_id  INTEGER,
			status        TEXT NOT NULL DEFAULT 'new',
			notes         TEXT NOT NULL DEFAULT '',
			created_at    TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at    TIMESTAMPTZ NOT NULL DEFAULT now()
		);
		CREATE INDEX IF NOT EXISTS idx_leads_user_id ON leads (user_id);
	`)
	if err != nil {
		return fmt.Errorf("failed to ensure leads schema: %w", err)
	}
	return nil
}

func (r *leadRepository) Create(ctx context.Context, lead *domain.Lead) error {
	query := `
		INSERT INTO leads (user_id, studio_name, contact_name, contact_email, steam_app_id, status, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		lead.UserID,
		lead.StudioName,
		lead.ContactName,
		lead.ContactEmail,
		lead.SteamAppID,
		lead.Status,
		lead.Notes,
	).Scan(&lead.ID, &lead.CreatedAt, &lead.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create lead: %w", err)
	}

	return nil
}

func (r *leadRepository) GetByID(ctx context.Context, userID string, id int64) (*domain.Lead, error) {
	var lead domain.Lead
	query := `
		SELECT id, user_id, studio_name, contact_name, contact_email, steam_app_id, status, notes, created_at, updated_at
		FROM leads
		WHERE id = $1 AND user_id = $2
	`

	err := r.db.Pool.QueryRow(ctx, query, id, userID).Scan(
		&lead.ID,
		&lead.UserID,
		&lead.StudioName,
		&lead.ContactName,
		&lead.ContactEmail,
		&lead.SteamAppID,
		&lead.Status,
		&lead.Notes,
		&lead.CreatedAt,
		&lead.UpdatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrLeadNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get lead: %w", err)
	}

	return &lead, nil
}

func (r *leadRepository) ListByUser(ctx context.Context, userID string) ([]domain.Lead, error) {
	query := `
		SELECT id, user_id, studio_name, contact_name, contact_email, steam_app_id, status, notes, created_at, updated_at
		FROM leads
		WHERE user_id = $1
		ORDER BY updated_at DESC
	`

	rows, err := r.db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	defer rows.Close()

	leads := make([]domain.Lead, 0)
	for rows.Next() {
		var lead domain.Lead
		if err := rows.Scan(
			&lead.ID,
			&lead.UserID,
			&lead.StudioName,
			&lead.ContactName,
			&lead.ContactEmail,
			&lead.SteamAppID,
			&lead.Status,
			&lead.Notes,
			&lead.CreatedAt,
			&lead.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		leads = append(leads, lead)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read leads: %w", err)
	}

	return leads, nil
}

func (r *leadRepository) Update(ctx context.Context, lead *domain.Lead) error {
	query := `
		UPDATE leads
		SET studio_name = $1, contact_name = $2, contact_email = $3, steam_app_id = $4,
		    status = $5, notes = $6, updated_at = now()
		WHERE id = $7 AND user_id = $8
		RETURNING updated_at
	`

	err := r.db.Pool.QueryRow(ctx, query,
		lead.StudioName,
		lead.ContactName,
		lead.ContactEmail,
		lead.SteamAppID,
		lead.Status,
		lead.Notes,
		lead.ID,
		lead.UserID,
	).Scan(&lead.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return ErrLeadNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update lead: %w", err)
	}

	return nil
}

func (r *leadRepository) Delete(ctx context.Context, userID string, id int64) error {
	tag, err := r.db.Pool.Exec(ctx, `DELETE FROM leads WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("failed to delete lead: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrLeadNotFound
	}
	return nil
}
