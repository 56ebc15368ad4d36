package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"commonplate-backend/internal/services"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

// respondError sends an error response
func respondError(w http.ResponseWriter, message string, statusCode int) {
	respondJSON(w, statusCode, ErrorResponse{Error: message})
}

// respondServiceError maps service-level errors to HTTP statuses
func respondServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, services.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, services.ErrNotOwner):
		status = http.StatusForbidden
	case errors.Is(err, services.ErrSessionLocked),
		errors.Is(err, services.ErrSessionNotLocked):
		status = http.StatusConflict
	case errors.Is(err, services.ErrInvalidName),
		errors.Is(err, services.ErrInvalidCode),
		errors.Is(err, services.ErrInvalidCategory),
		errors.Is(err, services.ErrInvalidOption),
		errors.Is(err, services.ErrInvalidDirection):
		status = http.StatusBadRequest
	}
	respondError(w, err.Error(), status)
}
