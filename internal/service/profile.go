package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/listkit/listkit/internal/model"
	"github.com/listkit/listkit/internal/repository"
)

// ErrInvalidTone is returned for tone values outside the fixed set.
var ErrInvalidTone = errors.New("invalid tone")

// ProfileStore defines the persistence operations the profile service uses.
type ProfileStore interface {
	GetProfileByUserID(ctx context.Context, userID string) (*model.AgentProfile, error)
	UpsertProfile(ctx context.Context, profile *model.AgentProfile) error
}

// ProfileService reads and updates the agent-facing identity settings.
type ProfileService struct {
	store        ProfileStore
	entitlements *EntitlementChecker
}

// NewProfileService creates a new ProfileService.
func NewProfileService(store ProfileStore, entitlements *EntitlementChecker) *ProfileService {
	return &ProfileService{
		store:        store,
		entitlements: entitlements,
	}
}

// ProfileOutput bundles the profile with the current entitlement summary,
// which the settings page shows alongside it.
type ProfileOutput struct {
	Profile     *model.AgentProfile `json:"profile"`
	Entitlement *Entitlement        `json:"entitlement"`
}

// GetProfile returns the user's profile and entitlement state.
// A shell or missing profile row comes back with zero-value fields.
func (s *ProfileService) GetProfile(ctx context.Context, userID string) (*ProfileOutput, error) {
	profile, err := s.store.GetProfileByUserID(ctx, userID)
	if err != nil {
		if !errors.Is(err, repository.ErrProfileNotFound) {
			return nil, err
		}
		profile = &model.AgentProfile{UserID: userID}
	}

	ent, err := s.entitlements.Check(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("check entitlement: %w", err)
	}

	return &ProfileOutput{Profile: profile, Entitlement: ent}, nil
}

// UpdateProfileInput defines the mutable profile fields.
type UpdateProfileInput struct {
	AgentName string
	Brokerage string
	Phone     string
	Tone      string
}

// UpdateProfile upserts the profile. An empty tone defaults to luxury.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, input UpdateProfileInput) (*model.AgentProfile, error) {
	tone := model.Tone(input.Tone)
	if input.Tone == "" {
		tone = model.ToneLuxury
	}
	if !tone.IsValid() {
		return nil, ErrInvalidTone
	}

	profile := &model.AgentProfile{
		UserID:    userID,
		AgentName: strings.TrimSpace(input.AgentName),
		Brokerage: strings.TrimSpace(input.Brokerage),
		Phone:     strings.TrimSpace(input.Phone),
		Tone:      tone,
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.store.UpsertProfile(ctx, profile); err != nil {
		return nil, fmt.Errorf("upsert profile: %w", err)
	}

	return profile, nil
}
