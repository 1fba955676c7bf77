package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/listkit/listkit/internal/model"
)

// ErrSubscriptionNotFound is returned when no subscription row exists.
var ErrSubscriptionNotFound = errors.New("subscription not found")

const subscriptionColumns = `
	id, user_id, stripe_customer_id, stripe_sub_id, status,
	current_period_end, plan, created_at, updated_at
`

// GetSubscriptionByUserID retrieves the subscription row for a user.
func (r *Repository) GetSubscriptionByUserID(ctx context.Context, userID string) (*model.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE user_id = $1`
	return r.scanSubscription(r.pool.QueryRow(ctx, query, userID))
}

// GetSubscriptionByCustomerID retrieves the subscription row for a payment
// processor customer. Used by webhook event application.
func (r *Repository) GetSubscriptionByCustomerID(ctx context.Context, customerID string) (*model.Subscription, error) {
	query := `SELECT ` + subscriptionColumns + ` FROM subscriptions WHERE stripe_customer_id = $1`
	return r.scanSubscription(r.pool.QueryRow(ctx, query, customerID))
}

// SetSubscriptionCustomerID records the lazily provisioned processor customer id.
func (r *Repository) SetSubscriptionCustomerID(ctx context.Context, userID, customerID string) error {
	query := `
		UPDATE subscriptions
		SET stripe_customer_id = $2, updated_at = $3
		WHERE user_id = $1
	`

	tag, err := r.pool.Exec(ctx, query, userID, customerID, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to set customer id: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSubscriptionNotFound
	}

	return nil
}

// ActivateSubscription marks the user's subscription active after a completed
// subscription checkout.
func (r *Repository) ActivateSubscription(ctx context.Context, userID, stripeSubID, plan string) error {
	query := `
		UPDATE subscriptions
		SET stripe_sub_id = $2, status = $3, plan = $4, updated_at = $5
		WHERE user_id = $1
	`

	tag, err := r.pool.Exec(ctx, query, userID, stripeSubID, model.SubscriptionStatusActive, plan, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to activate subscription: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSubscriptionNotFound
	}

	return nil
}

// UpdateSubscriptionStatus applies a subscription-lifecycle webhook event.
// periodEnd is optional; nil leaves the stored period end untouched.
func (r *Repository) UpdateSubscriptionStatus(ctx context.Context, id, status string, periodEnd *time.Time) error {
	query := `
		UPDATE subscriptions
		SET status = $2,
			current_period_end = COALESCE($3, current_period_end),
			updated_at = $4
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query, id, status, periodEnd, time.Now().UTC())
	if err != nil {
		return fmt.Errorf("failed to update subscription status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrSubscriptionNotFound
	}

	return nil
}

func (r *Repository) scanSubscription(row pgx.Row) (*model.Subscription, error) {
	var sub model.Subscription
	err := row.Scan(
		&sub.ID,
		&sub.UserID,
		&sub.StripeCustomerID,
		&sub.StripeSubID,
		&sub.Status,
		&sub.CurrentPeriodEnd,
		&sub.Plan,
		&sub.CreatedAt,
		&sub.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSubscriptionNotFound
		}
		return nil, fmt.Errorf("failed to scan subscription: %w", err)
	}

	return &sub, nil
}
