package dto

import (
	"time"

	"github.com/listkit/listkit/internal/model"
	"github.com/listkit/listkit/internal/service"
)

// UpdateProfileRequest represents the request body for profile updates.
type UpdateProfileRequest struct {
	AgentName string `json:"agent_name"`
	Brokerage string `json:"brokerage,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Tone      string `json:"tone,omitempty"`
}

// ProfileResponse represents the agent profile in API responses.
type ProfileResponse struct {
	AgentName string    `json:"agent_name"`
	Brokerage string    `json:"brokerage"`
	Phone     string    `json:"phone"`
	Tone      string    `json:"tone"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EntitlementResponse summarizes the user's generation allowance.
type EntitlementResponse struct {
	Allowed            bool `json:"allowed"`
	ActiveSubscription bool `json:"active_subscription"`
	CreditsRemaining   int  `json:"credits_remaining"`
}

// SettingsResponse bundles profile and entitlement for the settings page.
type SettingsResponse struct {
	Profile     ProfileResponse     `json:"profile"`
	Entitlement EntitlementResponse `json:"entitlement"`
}

// CheckoutRequest represents the request body for starting a checkout.
type CheckoutRequest struct {
	PriceType string `json:"price_type"`
}

// CheckoutResponse carries the hosted checkout URL.
type CheckoutResponse struct {
	URL string `json:"url"`
}

// ToProfileResponse converts an AgentProfile model to ProfileResponse DTO.
func ToProfileResponse(profile *model.AgentProfile) ProfileResponse {
	return ProfileResponse{
		AgentName: profile.AgentName,
		Brokerage: profile.Brokerage,
		Phone:     profile.Phone,
		Tone:      string(profile.Tone),
		UpdatedAt: profile.UpdatedAt,
	}
}

// ToSettingsResponse converts a ProfileOutput to SettingsResponse DTO.
func ToSettingsResponse(out *service.ProfileOutput) *SettingsResponse {
	return &SettingsResponse{
		Profile: ToProfileResponse(out.Profile),
		Entitlement: EntitlementResponse{
			Allowed:            out.Entitlement.Allowed,
			ActiveSubscription: out.Entitlement.ActiveSubscription,
			CreditsRemaining:   out.Entitlement.CreditsRemaining(),
		},
	}
}
