package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/listkit/listkit/internal/model"
)

// ErrDuplicatePayment is returned when a usage credit for the same payment id
// already exists. Webhook redelivery hits this and treats it as applied.
var ErrDuplicatePayment = errors.New("payment already credited")

// CreateUsageCredit inserts a purchased generation credit.
// stripe_payment_id carries a unique constraint so one completed payment can
// never yield more than one credit row.
func (r *Repository) CreateUsageCredit(ctx context.Context, credit *model.UsageCredit) error {
	query := `
		INSERT INTO usage_credits (id, user_id, credits, stripe_payment_id, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`

	_, err := r.pool.Exec(ctx, query,
		credit.ID,
		credit.UserID,
		credit.Credits,
		credit.StripePaymentID,
		credit.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicatePayment
		}
		return fmt.Errorf("failed to create usage credit: %w", err)
	}

	return nil
}

// SumCreditsByUserID returns the total purchased credits for a user.
func (r *Repository) SumCreditsByUserID(ctx context.Context, userID string) (int, error) {
	query := `
		SELECT COALESCE(SUM(credits), 0)
		FROM usage_credits
		WHERE user_id = $1
	`

	var total int
	if err := r.pool.QueryRow(ctx, query, userID).Scan(&total); err != nil {
		return 0, fmt.Errorf("failed to sum credits: %w", err)
	}

	return total, nil
}
