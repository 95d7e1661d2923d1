package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"matrimony-backend/internal/profile"
	"matrimony-backend/internal/services"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string   `json:"error"`
	Details []string `json:"details,omitempty"`
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}

func respondJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Error().Err(err).Msg("Failed to encode response")
	}
}

// respondServiceError maps a service or profile error onto the error envelope
func respondServiceError(w http.ResponseWriter, err error) {
	var (
		unknown *profile.UnknownSectionError
		invalid *profile.ValidationError
	)
	switch {
	case errors.As(err, &unknown):
		respondError(w, "Invalid section", http.StatusBadRequest)
	case errors.As(err, &invalid):
		respondJSON(w, http.StatusBadRequest, ErrorResponse{Error: "Validation failed", Details: invalid.Details()})
	case errors.Is(err, profile.ErrMalformedPayload):
		respondError(w, "Invalid request body", http.StatusBadRequest)
	case errors.Is(err, services.ErrProfileExists):
		respondError(w, "Profile already exists", http.StatusBadRequest)
	case errors.Is(err, services.ErrProfileIncomplete):
		respondError(w, "Profile is incomplete", http.StatusConflict)
	case errors.Is(err, services.ErrNotFound):
		respondError(w, "Not found", http.StatusNotFound)
	case errors.Is(err, services.ErrUnauthorized):
		respondError(w, "Unauthorized", http.StatusUnauthorized)
	case errors.Is(err, services.ErrForbidden):
		respondError(w, "Forbidden", http.StatusForbidden)
	default:
		respondError(w, "Internal server error", http.StatusInternalServerError)
	}
}
