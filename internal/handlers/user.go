package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"matrimony-backend/internal/cache"
	"matrimony-backend/internal/middleware"
	"matrimony-backend/internal/models"
	"matrimony-backend/internal/services"
)

// UserService is what the user endpoints need from the service layer
type UserService interface {
	RecordLogin(ctx context.Context, id *services.Identity) (*models.User, error)
	UpdatePushToken(ctx context.Context, userID, pushToken string) error
}

// StatusSource returns the fast-path profile status of a user
type StatusSource interface {
	Status(ctx context.Context, userID string) (*cache.Status, error)
}

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	users  UserService
	status StatusSource
}

// NewUserHandler creates a new user handler
func NewUserHandler(users UserService, status StatusSource) *UserHandler {
	return &UserHandler{users: users, status: status}
}

// SessionResponse is returned when a session starts
type SessionResponse struct {
	User                 *models.User `json:"user"`
	HasProfile           bool         `json:"hasProfile"`
	IsProfileComplete    bool         `json:"isProfileComplete"`
	CompletionPercentage int          `json:"completionPercentage"`
	NextSection          *string      `json:"nextSection"`
}

// PushTokenRequest registers the device token for push notifications
type PushTokenRequest struct {
	PushToken string `json:"pushToken"`
}

// StartSession handles POST /api/v1/sessions
func (h *UserHandler) StartSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	identity := middleware.GetIdentity(ctx)
	if identity == nil {
		respondError(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	user, err := h.users.RecordLogin(ctx, identity)
	if err != nil {
		log.Error().Err(err).Str("user_id", identity.User.ID).Msg("Failed to record login")
		respondServiceError(w, err)
		return
	}

	st, err := h.status.Status(ctx, user.ID)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to get profile status")
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("user_id", user.ID).
		Int("login_count", user.LoginCount).
		Bool("has_profile", st.HasProfile).
		Msg("Session started")

	respondJSON(w, http.StatusOK, SessionResponse{
		User:                 user,
		HasProfile:           st.HasProfile,
		IsProfileComplete:    st.IsProfileComplete,
		CompletionPercentage: st.CompletionPercentage,
		NextSection:          st.NextSection,
	})
}

// UpdatePushToken handles PUT /api/v1/users/me/push-token
func (h *UserHandler) UpdatePushToken(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	var req PushTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.users.UpdatePushToken(r.Context(), userID, req.PushToken); err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to update push token")
		respondServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
