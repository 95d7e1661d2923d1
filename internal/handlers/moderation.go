package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"matrimony-backend/internal/middleware"
	"matrimony-backend/internal/models"
	"matrimony-backend/internal/services"
)

// ModerationService is what the moderation endpoints need from the service layer
type ModerationService interface {
	ListPending(ctx context.Context, limit, offset int) ([]*models.PendingFieldUpdate, error)
	Approve(ctx context.Context, id string) (*models.PendingFieldUpdate, error)
	Reject(ctx context.Context, id string) error
}

// PublicProfiles returns committed profile views
type PublicProfiles interface {
	PublicView(ctx context.Context, userID string) (*services.ProfileView, error)
}

// ModerationHandler handles the moderator endpoints
type ModerationHandler struct {
	moderation ModerationService
	profiles   PublicProfiles
}

// NewModerationHandler creates a new moderation handler
func NewModerationHandler(moderation ModerationService, profiles PublicProfiles) *ModerationHandler {
	return &ModerationHandler{moderation: moderation, profiles: profiles}
}

// ListPending handles GET /api/v1/moderation/pending?limit=&offset=
func (h *ModerationHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))

	updates, err := h.moderation.ListPending(r.Context(), limit, offset)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list pending updates")
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"updates": updates})
}

// Approve handles POST /api/v1/moderation/pending/{id}/approve
func (h *ModerationHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	update, err := h.moderation.Approve(r.Context(), id)
	if err != nil {
		log.Error().Err(err).Str("pending_id", id).Str("moderator_id", middleware.GetUserID(r.Context())).Msg("Failed to approve update")
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"update": update})
}

// Reject handles POST /api/v1/moderation/pending/{id}/reject
func (h *ModerationHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.moderation.Reject(r.Context(), id); err != nil {
		log.Error().Err(err).Str("pending_id", id).Str("moderator_id", middleware.GetUserID(r.Context())).Msg("Failed to reject update")
		respondServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetProfile handles GET /api/v1/moderation/profiles/{userID}
func (h *ModerationHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	view, err := h.profiles.PublicView(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to get public profile")
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}
