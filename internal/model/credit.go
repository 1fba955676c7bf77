package model

import "time"

// UsageCredit is a purchased generation credit tied to a one-time payment.
// Rows are append-only; consumption is derived by counting listings, never
// recorded per credit.
type UsageCredit struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	Credits         int       `json:"credits"`
	StripePaymentID string    `json:"stripe_payment_id"`
	CreatedAt       time.Time `json:"created_at"`
}
