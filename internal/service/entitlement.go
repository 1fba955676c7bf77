// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"time"

	"github.com/listkit/listkit/internal/metrics"
	"github.com/listkit/listkit/internal/model"
	"github.com/listkit/listkit/internal/repository"
)

// EntitlementStore defines the persistence reads the checker depends on.
// *repository.Repository satisfies it; tests substitute fakes.
type EntitlementStore interface {
	GetSubscriptionByUserID(ctx context.Context, userID string) (*model.Subscription, error)
	SumCreditsByUserID(ctx context.Context, userID string) (int, error)
	CountListingsByUserID(ctx context.Context, userID string) (int, error)
}

// Entitlement summarizes whether a user may generate content and why.
type Entitlement struct {
	Allowed            bool `json:"allowed"`
	ActiveSubscription bool `json:"active_subscription"`
	CreditsTotal       int  `json:"credits_total"`
	CreditsUsed        int  `json:"credits_used"`
}

// CreditsRemaining returns the unconsumed credit balance, never negative.
func (e *Entitlement) CreditsRemaining() int {
	if remaining := e.CreditsTotal - e.CreditsUsed; remaining > 0 {
		return remaining
	}
	return 0
}

// EntitlementChecker decides whether a user may start a generation.
// An active subscription grants unlimited use; otherwise purchased credits
// must exceed listings already created. The check is advisory: nothing is
// reserved, so a concurrent pair of requests can both pass on one credit.
type EntitlementChecker struct {
	store   EntitlementStore
	metrics metrics.Recorder
}

// NewEntitlementChecker creates a new EntitlementChecker.
func NewEntitlementChecker(store EntitlementStore, recorder metrics.Recorder) *EntitlementChecker {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &EntitlementChecker{
		store:   store,
		metrics: recorder,
	}
}

// Check evaluates the user's entitlement at this instant.
func (c *EntitlementChecker) Check(ctx context.Context, userID string) (*Entitlement, error) {
	sub, err := c.store.GetSubscriptionByUserID(ctx, userID)
	if err != nil && !errors.Is(err, repository.ErrSubscriptionNotFound) {
		return nil, err
	}

	ent := &Entitlement{}
	if sub != nil && sub.IsActive(time.Now()) {
		ent.Allowed = true
		ent.ActiveSubscription = true
		return ent, nil
	}

	total, err := c.store.SumCreditsByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	used, err := c.store.CountListingsByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	ent.CreditsTotal = total
	ent.CreditsUsed = used
	ent.Allowed = total > used
	if !ent.Allowed {
		c.metrics.IncEntitlementDenied()
	}

	return ent, nil
}
