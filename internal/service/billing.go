package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/listkit/listkit/internal/billing"
	"github.com/listkit/listkit/internal/metrics"
	"github.com/listkit/listkit/internal/model"
	"github.com/listkit/listkit/internal/repository"
)

// PlanMonthly is the only subscription plan currently sold.
const PlanMonthly = "monthly"

// BillingStore defines the persistence operations webhook handling uses.
type BillingStore interface {
	ActivateSubscription(ctx context.Context, userID, stripeSubID, plan string) error
	CreateUsageCredit(ctx context.Context, credit *model.UsageCredit) error
	GetSubscriptionByCustomerID(ctx context.Context, customerID string) (*model.Subscription, error)
	UpdateSubscriptionStatus(ctx context.Context, id, status string, periodEnd *time.Time) error
}

// BillingService applies verified payment processor events to local state.
// Handlers are idempotent: replayed events and unknown subjects are
// acknowledged without effect so the processor stops retrying.
type BillingService struct {
	store   BillingStore
	logger  *slog.Logger
	metrics metrics.Recorder
}

// NewBillingService creates a new BillingService.
func NewBillingService(store BillingStore, logger *slog.Logger, recorder metrics.Recorder) *BillingService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &BillingService{
		store:   store,
		logger:  logger.With("component", "service.billing"),
		metrics: recorder,
	}
}

// HandleEvent dispatches a parsed billing event. A nil return means the
// event was applied or deliberately ignored; an error asks for a retry.
func (s *BillingService) HandleEvent(ctx context.Context, event *billing.Event) error {
	var err error
	switch event.Type {
	case billing.EventCheckoutCompleted:
		err = s.handleCheckoutCompleted(ctx, event)
	case billing.EventSubscriptionUpdated, billing.EventSubscriptionDeleted:
		err = s.handleSubscriptionChange(ctx, event)
	default:
		s.logger.Debug("ignoring unhandled billing event", "type", event.Type)
		return nil
	}

	if err != nil {
		return err
	}
	s.metrics.IncBillingEventProcessed(event.Type)
	return nil
}

func (s *BillingService) handleCheckoutCompleted(ctx context.Context, event *billing.Event) error {
	session, err := event.CheckoutSession()
	if err != nil {
		return fmt.Errorf("decode checkout session: %w", err)
	}

	userID := session.Metadata["userId"]
	if userID == "" {
		s.logger.Warn("checkout event without userId metadata", "event_id", event.ID)
		return nil
	}

	switch session.Metadata["priceType"] {
	case billing.PriceTypeSubscription:
		if session.Subscription == "" {
			s.logger.Warn("subscription checkout without subscription id", "event_id", event.ID)
			return nil
		}
		if err := s.store.ActivateSubscription(ctx, userID, session.Subscription, PlanMonthly); err != nil {
			return fmt.Errorf("activate subscription: %w", err)
		}
		s.logger.Info("subscription activated", "user_id", userID)

	case billing.PriceTypePerListing:
		paymentID := session.PaymentIntent
		if paymentID == "" {
			paymentID = session.ID
		}
		credit := &model.UsageCredit{
			ID:              ulid.Make().String(),
			UserID:          userID,
			Credits:         1,
			StripePaymentID: paymentID,
			CreatedAt:       time.Now().UTC(),
		}
		if err := s.store.CreateUsageCredit(ctx, credit); err != nil {
			if errors.Is(err, repository.ErrDuplicatePayment) {
				s.logger.Info("payment already credited", "payment_id", paymentID)
				return nil
			}
			return fmt.Errorf("create usage credit: %w", err)
		}
		s.logger.Info("usage credit granted", "user_id", userID, "payment_id", paymentID)

	default:
		s.logger.Warn("checkout event with unknown priceType",
			"event_id", event.ID,
			"price_type", session.Metadata["priceType"],
		)
	}

	return nil
}

func (s *BillingService) handleSubscriptionChange(ctx context.Context, event *billing.Event) error {
	obj, err := event.Subscription()
	if err != nil {
		return fmt.Errorf("decode subscription object: %w", err)
	}

	sub, err := s.store.GetSubscriptionByCustomerID(ctx, obj.Customer)
	if err != nil {
		if errors.Is(err, repository.ErrSubscriptionNotFound) {
			s.logger.Warn("billing event for unknown customer", "customer_id", obj.Customer)
			return nil
		}
		return fmt.Errorf("lookup subscription: %w", err)
	}

	status := model.SubscriptionStatusInactive
	if event.Type == billing.EventSubscriptionUpdated && obj.Status == model.SubscriptionStatusActive {
		status = model.SubscriptionStatusActive
	}

	var periodEnd *time.Time
	if obj.CurrentPeriodEnd > 0 {
		t := time.Unix(obj.CurrentPeriodEnd, 0).UTC()
		periodEnd = &t
	}

	if err := s.store.UpdateSubscriptionStatus(ctx, sub.ID, status, periodEnd); err != nil {
		return fmt.Errorf("update subscription status: %w", err)
	}

	s.logger.Info("subscription status updated",
		"subscription_id", sub.ID,
		"status", status,
	)
	return nil
}
