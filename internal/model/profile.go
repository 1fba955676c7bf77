package model

import "time"

// Tone is a content-style modifier applied to generated copy.
type Tone string

const (
	ToneLuxury   Tone = "luxury"
	ToneFamily   Tone = "family"
	ToneInvestor Tone = "investor"
)

// IsValid checks if the tone is one of the known values.
func (t Tone) IsValid() bool {
	return t == ToneLuxury || t == ToneFamily || t == ToneInvestor
}

// AgentProfile holds the agent-facing identity used in generated copy.
// One-to-one with User, upserted via settings.
type AgentProfile struct {
	UserID    string    `json:"user_id"`
	AgentName string    `json:"agent_name"`
	Brokerage string    `json:"brokerage"`
	Phone     string    `json:"phone"`
	Tone      Tone      `json:"tone"`
	UpdatedAt time.Time `json:"updated_at"`
}
