package service

import (
	"context"
	"testing"
	"time"

	"github.com/listkit/listkit/internal/model"
)

func futureTime(d time.Duration) *time.Time {
	t := time.Now().Add(d)
	return &t
}

func TestEntitlementChecker_ActiveSubscription(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.sub = &model.Subscription{
		ID:               "sub1",
		UserID:           "u1",
		Status:           model.SubscriptionStatusActive,
		CurrentPeriodEnd: futureTime(24 * time.Hour),
	}
	// Credit queries must not run when the subscription short-circuits
	store.creditsErr = context.DeadlineExceeded

	checker := NewEntitlementChecker(store, nil)

	ent, err := checker.Check(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Check() error = %v", err)
	}
	if !ent.Allowed || !ent.ActiveSubscription {
		t.Errorf("entitlement = %+v, want allowed via subscription", ent)
	}
}

func TestEntitlementChecker_Credits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		sub         *model.Subscription
		total       int
		used        int
		wantAllowed bool
	}{
		{
			name:        "credits remaining without subscription",
			total:       3,
			used:        2,
			wantAllowed: true,
		},
		{
			name:        "credits exhausted",
			total:       2,
			used:        2,
			wantAllowed: false,
		},
		{
			name:        "no purchases at all",
			total:       0,
			used:        0,
			wantAllowed: false,
		},
		{
			name: "lapsed subscription falls back to credits",
			sub: &model.Subscription{
				Status:           model.SubscriptionStatusActive,
				CurrentPeriodEnd: futureTime(-time.Hour),
			},
			total:       1,
			used:        0,
			wantAllowed: true,
		},
		{
			name: "inactive subscription falls back to credits",
			sub: &model.Subscription{
				Status:           model.SubscriptionStatusInactive,
				CurrentPeriodEnd: futureTime(24 * time.Hour),
			},
			total:       0,
			used:        1,
			wantAllowed: false,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := newFakeStore()
			store.sub = tt.sub
			store.creditsTotal = tt.total
			store.listingCount = tt.used

			checker := NewEntitlementChecker(store, nil)

			ent, err := checker.Check(context.Background(), "u1")
			if err != nil {
				t.Fatalf("Check() error = %v", err)
			}
			if ent.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v", ent.Allowed, tt.wantAllowed)
			}
			if ent.ActiveSubscription {
				t.Error("ActiveSubscription should be false on the credit path")
			}
			if ent.CreditsTotal != tt.total || ent.CreditsUsed != tt.used {
				t.Errorf("credits = %d/%d, want %d/%d", ent.CreditsTotal, ent.CreditsUsed, tt.total, tt.used)
			}
		})
	}
}

func TestEntitlement_CreditsRemaining(t *testing.T) {
	t.Parallel()

	ent := &Entitlement{CreditsTotal: 2, CreditsUsed: 5}
	if got := ent.CreditsRemaining(); got != 0 {
		t.Errorf("CreditsRemaining() = %d, want 0", got)
	}

	ent = &Entitlement{CreditsTotal: 5, CreditsUsed: 2}
	if got := ent.CreditsRemaining(); got != 3 {
		t.Errorf("CreditsRemaining() = %d, want 3", got)
	}
}
