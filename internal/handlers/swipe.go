package handlers

import (
	"encoding/json"
	"net/http"

	"commonplate-backend/internal/middleware"
	"commonplate-backend/internal/models"
	"commonplate-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// SwipeHandler handles swipe ledger HTTP requests
type SwipeHandler struct {
	swipes *services.SwipeService
	sync   *services.Synchronizer
}

// NewSwipeHandler creates a new swipe handler
func NewSwipeHandler(swipes *services.SwipeService, sync *services.Synchronizer) *SwipeHandler {
	return &SwipeHandler{swipes: swipes, sync: sync}
}

// RecordSwipeRequest is the body for recording a swipe
type RecordSwipeRequest struct {
	RestaurantID string                `json:"restaurant_id"`
	Direction    models.SwipeDirection `json:"direction"`
}

// RecordSwipe handles POST /api/v1/sessions/{code}/swipes
func (h *SwipeHandler) RecordSwipe(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	userName := middleware.GetUserName(ctx)
	code := chi.URLParam(r, "code")

	var req RecordSwipeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.RestaurantID == "" {
		respondError(w, "restaurant_id is required", http.StatusBadRequest)
		return
	}

	if err := h.swipes.Record(ctx, code, req.RestaurantID, req.Direction, userID, userName); err != nil {
		log.Error().
			Err(err).
			Str("session_code", code).
			Str("user_id", userID).
			Str("restaurant_id", req.RestaurantID).
			Msg("Failed to record swipe")
		respondServiceError(w, err)
		return
	}

	h.sync.PushSession(ctx, code)
	h.sync.PushActivity(ctx, code)

	w.WriteHeader(http.StatusNoContent)
}
