package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/listkit/listkit/internal/auth"
	"github.com/listkit/listkit/internal/handler/dto"
	"github.com/listkit/listkit/internal/service"
)

// ListingHandler handles generation requests and listing reads.
type ListingHandler struct {
	svc    *service.GenerationService
	logger *slog.Logger
}

// NewListingHandler creates a new ListingHandler.
func NewListingHandler(svc *service.GenerationService, logger *slog.Logger) *ListingHandler {
	return &ListingHandler{
		svc:    svc,
		logger: logger.With("handler", "listing"),
	}
}

// Generate handles POST /api/v1/generate.
// Creates the listing and all six content variants in one request.
func (h *ListingHandler) Generate(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing session")
		return
	}

	var req dto.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	listing, err := h.svc.Generate(r.Context(), service.GenerateInput{
		UserID:      userID,
		Address:     req.Address,
		Price:       req.Price,
		Beds:        req.Beds,
		Baths:       req.Baths,
		Sqft:        req.Sqft,
		Description: req.Description,
		Features:    req.Features,
	})
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	h.logger.Info("listing_generated",
		"listing_id", listing.ID,
		"user_id", userID,
	)

	writeJSON(w, http.StatusCreated, dto.ToListingResponse(listing))
}

// List handles GET /api/v1/listings.
func (h *ListingHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing session")
		return
	}

	listings, err := h.svc.ListListings(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToListingListResponse(listings))
}

// Get handles GET /api/v1/listings/{id}.
func (h *ListingHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing session")
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "MISSING_ID", "Listing ID is required")
		return
	}

	listing, err := h.svc.GetListing(r.Context(), userID, id)
	if err != nil {
		h.handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, dto.ToListingResponse(listing))
}

// handleServiceError maps service errors to HTTP responses.
func (h *ListingHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrMissingAddress):
		writeError(w, http.StatusBadRequest, "MISSING_ADDRESS", "Address is required")
	case errors.Is(err, service.ErrNotEntitled):
		writeError(w, http.StatusPaymentRequired, "NOT_ENTITLED", "An active subscription or available credit is required")
	case errors.Is(err, service.ErrListingMissing):
		writeError(w, http.StatusNotFound, "LISTING_NOT_FOUND", "Listing not found")
	default:
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
	}
}
