package handlers

import (
	"errors"
	"net/http"

	"commonplate-backend/internal/middleware"
	"commonplate-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// WinnerHandler handles winner resolution HTTP requests
type WinnerHandler struct {
	resolver *services.WinnerResolver
	sync     *services.Synchronizer
}

// NewWinnerHandler creates a new winner handler
func NewWinnerHandler(resolver *services.WinnerResolver, sync *services.Synchronizer) *WinnerHandler {
	return &WinnerHandler{resolver: resolver, sync: sync}
}

// ResolveWinner handles POST /api/v1/sessions/{code}/winner. Repeated
// calls return the same stored record.
func (h *WinnerHandler) ResolveWinner(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	code := chi.URLParam(r, "code")

	winner, err := h.resolver.Resolve(ctx, code, userID)
	if err != nil {
		if errors.Is(err, services.ErrNoWinner) {
			respondError(w, "No restaurant has any likes yet", http.StatusConflict)
			return
		}
		log.Error().Err(err).Str("session_code", code).Msg("Failed to resolve winner")
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("session_code", code).
		Str("restaurant_id", winner.RestaurantID).
		Str("reason", winner.Reason).
		Msg("Winner resolved")

	h.sync.PushSession(ctx, code)

	respondJSON(w, http.StatusOK, winner)
}
