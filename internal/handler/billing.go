package handler

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/listkit/listkit/internal/auth"
	"github.com/listkit/listkit/internal/billing"
	"github.com/listkit/listkit/internal/handler/dto"
	"github.com/listkit/listkit/internal/metrics"
	"github.com/listkit/listkit/internal/service"
)

// maxWebhookBodySize caps webhook payloads independently of the general
// request body limit.
const maxWebhookBodySize = 1 << 20

// BillingHandler handles checkout initiation and processor webhooks.
type BillingHandler struct {
	checkout      *service.CheckoutService
	events        *service.BillingService
	webhookSecret string
	logger        *slog.Logger
	metrics       metrics.Recorder
}

// NewBillingHandler creates a new BillingHandler.
func NewBillingHandler(checkout *service.CheckoutService, events *service.BillingService, webhookSecret string, logger *slog.Logger, recorder metrics.Recorder) *BillingHandler {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &BillingHandler{
		checkout:      checkout,
		events:        events,
		webhookSecret: webhookSecret,
		logger:        logger.With("handler", "billing"),
		metrics:       recorder,
	}
}

// Checkout handles POST /api/v1/billing/checkout.
func (h *BillingHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing session")
		return
	}

	var req dto.CheckoutRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	url, err := h.checkout.CreateCheckoutSession(r.Context(), userID, req.PriceType)
	if err != nil {
		if errors.Is(err, service.ErrUnknownPriceType) {
			writeError(w, http.StatusBadRequest, "INVALID_PRICE_TYPE", "price_type must be subscription or per_listing")
			return
		}
		h.logger.Error("checkout failed", "error", err, "user_id", userID)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	writeJSON(w, http.StatusOK, dto.CheckoutResponse{URL: url})
}

// Webhook handles POST /webhooks/billing.
// The signature is verified over the exact raw body before any parsing;
// a failed check rejects the request with no state change. Verified events
// are always acknowledged with 200 so the processor stops retrying, even
// when the type is unhandled.
func (h *BillingHandler) Webhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, maxWebhookBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_BODY", "Could not read request body")
		return
	}

	header := r.Header.Get(billing.SignatureHeader)
	if err := billing.VerifySignature(h.webhookSecret, header, body, billing.DefaultTolerance); err != nil {
		h.logger.Warn("webhook signature rejected",
			"error", err,
			"ip", r.RemoteAddr,
		)
		h.metrics.IncBillingEventRejected("signature")
		writeError(w, http.StatusBadRequest, "INVALID_SIGNATURE", "Webhook signature verification failed")
		return
	}

	event, err := billing.ParseEvent(body)
	if err != nil {
		h.logger.Warn("webhook payload rejected", "error", err)
		h.metrics.IncBillingEventRejected("payload")
		writeError(w, http.StatusBadRequest, "INVALID_PAYLOAD", "Could not parse event payload")
		return
	}

	if err := h.events.HandleEvent(r.Context(), event); err != nil {
		// Non-2xx asks the processor to redeliver; handlers are idempotent
		h.logger.Error("webhook event failed", "error", err, "event_id", event.ID, "type", event.Type)
		writeError(w, http.StatusInternalServerError, "EVENT_FAILED", "Event processing failed")
		return
	}

	writeJSON(w, http.StatusOK, dto.WebhookAck{Received: true})
}
