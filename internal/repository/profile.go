package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/listkit/listkit/internal/model"
)

// ErrProfileNotFound is returned when no agent profile exists for a user.
var ErrProfileNotFound = errors.New("agent profile not found")

// GetProfileByUserID retrieves the agent profile for a user.
func (r *Repository) GetProfileByUserID(ctx context.Context, userID string) (*model.AgentProfile, error) {
	query := `
		SELECT user_id, agent_name, brokerage, phone, tone, updated_at
		FROM agent_profiles
		WHERE user_id = $1
	`

	var profile model.AgentProfile
	err := r.pool.QueryRow(ctx, query, userID).Scan(
		&profile.UserID,
		&profile.AgentName,
		&profile.Brokerage,
		&profile.Phone,
		&profile.Tone,
		&profile.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}

	return &profile, nil
}

// UpsertProfile creates or replaces the agent profile for a user.
func (r *Repository) UpsertProfile(ctx context.Context, profile *model.AgentProfile) error {
	query := `
		INSERT INTO agent_profiles (user_id, agent_name, brokerage, phone, tone, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id) DO UPDATE SET
			agent_name = EXCLUDED.agent_name,
			brokerage = EXCLUDED.brokerage,
			phone = EXCLUDED.phone,
			tone = EXCLUDED.tone,
			updated_at = EXCLUDED.updated_at
	`

	_, err := r.pool.Exec(ctx, query,
		profile.UserID,
		profile.AgentName,
		profile.Brokerage,
		profile.Phone,
		profile.Tone,
		profile.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert profile: %w", err)
	}

	return nil
}
