package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/listkit/listkit/internal/auth"
	"github.com/listkit/listkit/internal/handler/dto"
	"github.com/listkit/listkit/internal/service"
)

// ProfileHandler handles agent profile settings.
type ProfileHandler struct {
	svc    *service.ProfileService
	logger *slog.Logger
}

// NewProfileHandler creates a new ProfileHandler.
func NewProfileHandler(svc *service.ProfileService, logger *slog.Logger) *ProfileHandler {
	return &ProfileHandler{
		svc:    svc,
		logger: logger.With("handler", "profile"),
	}
}

// Get handles GET /api/v1/profile.
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing session")
		return
	}

	out, err := h.svc.GetProfile(r.Context(), userID)
	if err != nil {
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	writeJSON(w, http.StatusOK, dto.ToSettingsResponse(out))
}

// Update handles PUT /api/v1/profile.
func (h *ProfileHandler) Update(w http.ResponseWriter, r *http.Request) {
	userID := auth.UserIDFromContext(r.Context())
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or missing session")
		return
	}

	var req dto.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}

	profile, err := h.svc.UpdateProfile(r.Context(), userID, service.UpdateProfileInput{
		AgentName: req.AgentName,
		Brokerage: req.Brokerage,
		Phone:     req.Phone,
		Tone:      req.Tone,
	})
	if err != nil {
		if errors.Is(err, service.ErrInvalidTone) {
			writeError(w, http.StatusBadRequest, "INVALID_TONE", "Tone must be luxury, family or investor")
			return
		}
		h.logger.Error("internal_error", "error", err)
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}

	writeJSON(w, http.StatusOK, dto.ToProfileResponse(profile))
}
