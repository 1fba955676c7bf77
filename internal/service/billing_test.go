package service

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/listkit/listkit/internal/billing"
	"github.com/listkit/listkit/internal/model"
)

func mustParseEvent(t *testing.T, payload string) *billing.Event {
	t.Helper()
	event, err := billing.ParseEvent([]byte(payload))
	if err != nil {
		t.Fatalf("ParseEvent() error = %v", err)
	}
	return event
}

func TestHandleEvent_SubscriptionCheckout(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	svc := NewBillingService(store, slog.Default(), nil)

	event := mustParseEvent(t, `{
		"id": "evt_1",
		"type": "checkout.session.completed",
		"data": {"object": {"id": "cs_1", "customer": "cus_9", "subscription": "sub_42",
			"metadata": {"userId": "u1", "priceType": "subscription"}}}
	}`)

	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}

	if len(store.activations) != 1 {
		t.Fatalf("activations = %d, want 1", len(store.activations))
	}
	got := store.activations[0]
	if got.userID != "u1" || got.subID != "sub_42" || got.plan != PlanMonthly {
		t.Errorf("activation = %+v", got)
	}
}

func TestHandleEvent_PerListingCheckout(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	svc := NewBillingService(store, slog.Default(), nil)

	event := mustParseEvent(t, `{
		"id": "evt_2",
		"type": "checkout.session.completed",
		"data": {"object": {"id": "cs_2", "payment_intent": "pi_7",
			"metadata": {"userId": "u1", "priceType": "per_listing"}}}
	}`)

	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}

	if len(store.credits) != 1 {
		t.Fatalf("credits = %d, want 1", len(store.credits))
	}
	credit := store.credits[0]
	if credit.UserID != "u1" || credit.Credits != 1 || credit.StripePaymentID != "pi_7" {
		t.Errorf("credit = %+v", credit)
	}

	// Redelivery of the same payment is acknowledged without a second credit
	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("replayed HandleEvent() error = %v", err)
	}
	if len(store.credits) != 1 {
		t.Errorf("credits after replay = %d, want 1", len(store.credits))
	}
}

func TestHandleEvent_PerListingFallsBackToSessionID(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	svc := NewBillingService(store, slog.Default(), nil)

	event := mustParseEvent(t, `{
		"id": "evt_3",
		"type": "checkout.session.completed",
		"data": {"object": {"id": "cs_3",
			"metadata": {"userId": "u1", "priceType": "per_listing"}}}
	}`)

	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleEvent() error = %v", err)
	}
	if store.credits[0].StripePaymentID != "cs_3" {
		t.Errorf("payment id = %q, want session id fallback", store.credits[0].StripePaymentID)
	}
}

func TestHandleEvent_MissingUserMetadata(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	svc := NewBillingService(store, slog.Default(), nil)

	event := mustParseEvent(t, `{
		"id": "evt_4",
		"type": "checkout.session.completed",
		"data": {"object": {"id": "cs_4", "metadata": {"priceType": "per_listing"}}}
	}`)

	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleEvent() error = %v, unattributable events are acked", err)
	}
	if len(store.credits) != 0 || len(store.activations) != 0 {
		t.Error("unattributable event must not mutate state")
	}
}

func TestHandleEvent_SubscriptionUpdated(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		eventType  string
		status     string
		wantStatus string
	}{
		{"renewal stays active", "customer.subscription.updated", "active", model.SubscriptionStatusActive},
		{"past due goes inactive", "customer.subscription.updated", "past_due", model.SubscriptionStatusInactive},
		{"deletion goes inactive", "customer.subscription.deleted", "active", model.SubscriptionStatusInactive},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := newFakeStore()
			store.subByCustomer["cus_9"] = &model.Subscription{ID: "sub-row", UserID: "u1"}
			svc := NewBillingService(store, slog.Default(), nil)

			event := mustParseEvent(t, `{
				"id": "evt_5",
				"type": "`+tt.eventType+`",
				"data": {"object": {"id": "sub_42", "customer": "cus_9",
					"status": "`+tt.status+`", "current_period_end": 1767225600}}
			}`)

			if err := svc.HandleEvent(context.Background(), event); err != nil {
				t.Fatalf("HandleEvent() error = %v", err)
			}

			if len(store.statusUpdates) != 1 {
				t.Fatalf("status updates = %d, want 1", len(store.statusUpdates))
			}
			update := store.statusUpdates[0]
			if update.id != "sub-row" || update.status != tt.wantStatus {
				t.Errorf("update = %+v, want status %q", update, tt.wantStatus)
			}
			if update.periodEnd == nil || !update.periodEnd.Equal(time.Unix(1767225600, 0).UTC()) {
				t.Errorf("period end = %v", update.periodEnd)
			}
		})
	}
}

func TestHandleEvent_UnknownCustomer(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	svc := NewBillingService(store, slog.Default(), nil)

	event := mustParseEvent(t, `{
		"id": "evt_6",
		"type": "customer.subscription.deleted",
		"data": {"object": {"id": "sub_42", "customer": "cus_unknown", "status": "canceled"}}
	}`)

	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Fatalf("HandleEvent() error = %v, unknown customers are acked", err)
	}
	if len(store.statusUpdates) != 0 {
		t.Error("unknown customer must not mutate state")
	}
}

func TestHandleEvent_UnhandledType(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	svc := NewBillingService(store, slog.Default(), nil)

	event := mustParseEvent(t, `{
		"id": "evt_7",
		"type": "invoice.paid",
		"data": {"object": {}}
	}`)

	if err := svc.HandleEvent(context.Background(), event); err != nil {
		t.Errorf("HandleEvent() error = %v, unhandled types are acked", err)
	}
}
