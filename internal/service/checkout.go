package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/listkit/listkit/internal/billing"
	"github.com/listkit/listkit/internal/model"
	"github.com/listkit/listkit/internal/repository"
)

// ErrUnknownPriceType is returned for checkout requests outside the two
// sold price types.
var ErrUnknownPriceType = errors.New("unknown price type")

// CheckoutStore defines the persistence operations checkout uses.
type CheckoutStore interface {
	GetUserByID(ctx context.Context, id string) (*model.User, error)
	GetSubscriptionByUserID(ctx context.Context, userID string) (*model.Subscription, error)
	SetSubscriptionCustomerID(ctx context.Context, userID, customerID string) error
}

// BillingGateway is the payment processor API surface checkout needs.
// *billing.Client satisfies it.
type BillingGateway interface {
	CreateCustomer(ctx context.Context, email, userID string) (string, error)
	CreateCheckoutSession(ctx context.Context, params billing.CheckoutParams) (string, error)
}

// CheckoutService starts hosted checkout flows, provisioning the processor
// customer lazily on first purchase.
type CheckoutService struct {
	store             CheckoutStore
	gateway           BillingGateway
	priceSubscription string
	pricePerListing   string
	baseURL           string
	logger            *slog.Logger
}

// NewCheckoutService creates a new CheckoutService.
func NewCheckoutService(store CheckoutStore, gateway BillingGateway, priceSubscription, pricePerListing, baseURL string, logger *slog.Logger) *CheckoutService {
	return &CheckoutService{
		store:             store,
		gateway:           gateway,
		priceSubscription: priceSubscription,
		pricePerListing:   pricePerListing,
		baseURL:           strings.TrimSuffix(baseURL, "/"),
		logger:            logger.With("component", "service.checkout"),
	}
}

// CreateCheckoutSession returns a hosted checkout URL for the price type.
func (s *CheckoutService) CreateCheckoutSession(ctx context.Context, userID, priceType string) (string, error) {
	var priceID string
	switch priceType {
	case billing.PriceTypeSubscription:
		priceID = s.priceSubscription
	case billing.PriceTypePerListing:
		priceID = s.pricePerListing
	default:
		return "", ErrUnknownPriceType
	}

	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("lookup user: %w", err)
	}

	customerID, err := s.ensureCustomer(ctx, user)
	if err != nil {
		return "", err
	}

	url, err := s.gateway.CreateCheckoutSession(ctx, billing.CheckoutParams{
		CustomerID: customerID,
		PriceID:    priceID,
		PriceType:  priceType,
		UserID:     userID,
		SuccessURL: s.baseURL + "/generate?success=true",
		CancelURL:  s.baseURL + "/generate?canceled=true",
	})
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}

	return url, nil
}

// ensureCustomer returns the stored processor customer ID, creating one on
// first use and persisting it on the subscription shell.
func (s *CheckoutService) ensureCustomer(ctx context.Context, user *model.User) (string, error) {
	sub, err := s.store.GetSubscriptionByUserID(ctx, user.ID)
	if err != nil && !errors.Is(err, repository.ErrSubscriptionNotFound) {
		return "", fmt.Errorf("lookup subscription: %w", err)
	}
	if sub != nil && sub.StripeCustomerID != "" {
		return sub.StripeCustomerID, nil
	}

	customerID, err := s.gateway.CreateCustomer(ctx, user.Email, user.ID)
	if err != nil {
		return "", fmt.Errorf("create customer: %w", err)
	}
	if err := s.store.SetSubscriptionCustomerID(ctx, user.ID, customerID); err != nil {
		return "", fmt.Errorf("store customer id: %w", err)
	}

	s.logger.Info("billing customer provisioned", "user_id", user.ID)

	return customerID, nil
}
