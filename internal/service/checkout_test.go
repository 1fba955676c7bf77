package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/listkit/listkit/internal/billing"
	"github.com/listkit/listkit/internal/model"
)

func newCheckoutService(store *fakeStore, gateway *fakeGateway) *CheckoutService {
	return NewCheckoutService(store, gateway, "price_sub", "price_listing", "https://app.example.com/", slog.Default())
}

func TestCreateCheckoutSession_UnknownPriceType(t *testing.T) {
	t.Parallel()

	svc := newCheckoutService(newFakeStore(), &fakeGateway{})

	_, err := svc.CreateCheckoutSession(context.Background(), "u1", "lifetime")
	if !errors.Is(err, ErrUnknownPriceType) {
		t.Errorf("CreateCheckoutSession() error = %v, want ErrUnknownPriceType", err)
	}
}

func TestCreateCheckoutSession_LazyCustomer(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.usersByID["u1"] = &model.User{ID: "u1", Email: "agent@example.com"}
	store.sub = &model.Subscription{ID: "s1", UserID: "u1"} // shell, no customer yet
	gateway := &fakeGateway{customerID: "cus_new", checkoutURL: "https://checkout.example.com/cs_1"}

	svc := newCheckoutService(store, gateway)

	url, err := svc.CreateCheckoutSession(context.Background(), "u1", billing.PriceTypeSubscription)
	if err != nil {
		t.Fatalf("CreateCheckoutSession() error = %v", err)
	}
	if url != "https://checkout.example.com/cs_1" {
		t.Errorf("url = %q", url)
	}

	if len(gateway.customersCreated) != 1 || gateway.customersCreated[0] != "agent@example.com" {
		t.Errorf("customers created = %v", gateway.customersCreated)
	}
	if store.customerIDs["u1"] != "cus_new" {
		t.Errorf("stored customer ID = %q, want cus_new", store.customerIDs["u1"])
	}

	params := gateway.checkoutParams[0]
	if params.CustomerID != "cus_new" || params.PriceID != "price_sub" || params.UserID != "u1" {
		t.Errorf("checkout params = %+v", params)
	}
	if params.SuccessURL != "https://app.example.com/generate?success=true" {
		t.Errorf("success url = %q", params.SuccessURL)
	}
	if params.CancelURL != "https://app.example.com/generate?canceled=true" {
		t.Errorf("cancel url = %q", params.CancelURL)
	}
}

func TestCreateCheckoutSession_ReusesCustomer(t *testing.T) {
	t.Parallel()

	store := newFakeStore()
	store.usersByID["u1"] = &model.User{ID: "u1", Email: "agent@example.com"}
	store.sub = &model.Subscription{ID: "s1", UserID: "u1", StripeCustomerID: "cus_existing"}
	gateway := &fakeGateway{checkoutURL: "https://checkout.example.com/cs_2"}

	svc := newCheckoutService(store, gateway)

	if _, err := svc.CreateCheckoutSession(context.Background(), "u1", billing.PriceTypePerListing); err != nil {
		t.Fatalf("CreateCheckoutSession() error = %v", err)
	}

	if len(gateway.customersCreated) != 0 {
		t.Error("existing customer must be reused, not recreated")
	}
	if gateway.checkoutParams[0].CustomerID != "cus_existing" {
		t.Errorf("customer ID = %q", gateway.checkoutParams[0].CustomerID)
	}
	if gateway.checkoutParams[0].PriceID != "price_listing" {
		t.Errorf("price ID = %q", gateway.checkoutParams[0].PriceID)
	}
}
