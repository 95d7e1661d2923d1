package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"matrimony-backend/internal/middleware"
	"matrimony-backend/internal/profile"
	"matrimony-backend/internal/services"
)

// ProfileService is what the profile endpoints need from the service layer
type ProfileService interface {
	GetOrCreate(ctx context.Context, userID string) (*services.ProfileView, error)
	Create(ctx context.Context, userID string) (*services.ProfileView, error)
	MarkReady(ctx context.Context, userID string) (*services.ProfileView, error)
	ReadSection(ctx context.Context, userID string, section profile.Section) (*services.SectionView, error)
	ApplySectionUpdate(ctx context.Context, userID string, payload profile.Payload) (*services.ProfileView, error)
}

// ProfileHandler handles the profile form endpoints
type ProfileHandler struct {
	profiles ProfileService
	maxBody  int64
}

// NewProfileHandler creates a new profile handler. maxBody bounds section request bodies.
func NewProfileHandler(profiles ProfileService, maxBody int64) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, maxBody: maxBody}
}

// SectionUpdateResponse is returned by a successful section submission
type SectionUpdateResponse struct {
	*services.ProfileView
	Success bool `json:"success"`
}

// GetProfile handles GET /api/v1/profile
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	view, err := h.profiles.GetOrCreate(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Msg("Failed to get profile")
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// CreateProfile handles POST /api/v1/profile
func (h *ProfileHandler) CreateProfile(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	view, err := h.profiles.Create(r.Context(), userID)
	if err != nil {
		if !errors.Is(err, services.ErrProfileExists) {
			log.Error().Err(err).Str("user_id", userID).Msg("Failed to create profile")
		}
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusCreated, view)
}

// MarkReady handles POST /api/v1/profile/ready
func (h *ProfileHandler) MarkReady(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	view, err := h.profiles.MarkReady(r.Context(), userID)
	if err != nil {
		if !errors.Is(err, services.ErrProfileIncomplete) {
			log.Error().Err(err).Str("user_id", userID).Msg("Failed to mark profile ready")
		}
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, view)
}

// GetSection handles GET /api/v1/profile/{section}
func (h *ProfileHandler) GetSection(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserID(r.Context())

	section, err := profile.ParseSection(chi.URLParam(r, "section"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	sv, err := h.profiles.ReadSection(r.Context(), userID, section)
	if err != nil {
		log.Error().Err(err).Str("user_id", userID).Str("section", string(section)).Msg("Failed to read section")
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, sv)
}

// UpdateSection handles PUT /api/v1/profile/{section}
func (h *ProfileHandler) UpdateSection(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	section, err := profile.ParseSection(chi.URLParam(r, "section"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBody))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, "Request body too large", http.StatusRequestEntityTooLarge)
			return
		}
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	payload, err := profile.Decode(section, body)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	view, err := h.profiles.ApplySectionUpdate(ctx, userID, payload)
	if errors.Is(err, services.ErrNotFound) {
		// first write before any profile read
		if _, err = h.profiles.GetOrCreate(ctx, userID); err == nil {
			view, err = h.profiles.ApplySectionUpdate(ctx, userID, payload)
		}
	}
	if err != nil {
		var invalid *profile.ValidationError
		if !errors.As(err, &invalid) {
			log.Error().Err(err).Str("user_id", userID).Str("section", string(section)).Msg("Failed to update section")
		}
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, SectionUpdateResponse{ProfileView: view, Success: true})
}
