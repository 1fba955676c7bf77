package model

import "time"

// Subscription statuses reported by the payment processor.
const (
	SubscriptionStatusActive   = "active"
	SubscriptionStatusInactive = "inactive"
)

// Subscription mirrors the payment processor's subscription state for a user.
// The shell row is created at registration with an empty status and is only
// mutated by webhook events and lazy customer provisioning.
type Subscription struct {
	ID               string     `json:"id"`
	UserID           string     `json:"user_id"`
	StripeCustomerID string     `json:"stripe_customer_id,omitempty"`
	StripeSubID      string     `json:"stripe_sub_id,omitempty"`
	Status           string     `json:"status"`
	CurrentPeriodEnd *time.Time `json:"current_period_end,omitempty"`
	Plan             string     `json:"plan,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// IsActive reports whether the subscription entitles the user to generate,
// meaning the processor marked it active and the paid period has not lapsed.
func (s *Subscription) IsActive(now time.Time) bool {
	return s.Status == SubscriptionStatusActive &&
		s.CurrentPeriodEnd != nil &&
		s.CurrentPeriodEnd.After(now)
}
