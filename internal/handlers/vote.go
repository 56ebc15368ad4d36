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

// VoteHandler handles vote ledger HTTP requests
type VoteHandler struct {
	votes *services.VoteService
	sync  *services.Synchronizer
}

// NewVoteHandler creates a new vote handler
func NewVoteHandler(votes *services.VoteService, sync *services.Synchronizer) *VoteHandler {
	return &VoteHandler{votes: votes, sync: sync}
}

// CastVoteRequest is the body for casting a preference vote
type CastVoteRequest struct {
	Category models.Category `json:"category"`
	Option   string          `json:"option"`
}

// CastVote handles POST /api/v1/sessions/{code}/votes
func (h *VoteHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	userName := middleware.GetUserName(ctx)
	code := chi.URLParam(r, "code")

	var req CastVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.votes.Cast(ctx, code, req.Category, req.Option, userID, userName); err != nil {
		log.Error().
			Err(err).
			Str("session_code", code).
			Str("user_id", userID).
			Str("category", string(req.Category)).
			Msg("Failed to cast vote")
		respondServiceError(w, err)
		return
	}

	h.sync.PushSession(ctx, code)
	h.sync.PushActivity(ctx, code)

	w.WriteHeader(http.StatusNoContent)
}

// MergedPreferencesResponse carries the merge output plus the canonical
// search phrase built from it
type MergedPreferencesResponse struct {
	Preferences  models.MergedPreferences `json:"preferences"`
	SearchPhrase string                   `json:"search_phrase"`
}

// GetMergedPreferences handles GET /api/v1/sessions/{code}/preferences.
// Query parameters carry the requester's own unvoted defaults, which fill
// in any category the group has not voted on.
func (h *VoteHandler) GetMergedPreferences(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	snapshot, err := h.votes.Snapshot(r.Context(), code)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	q := r.URL.Query()
	defaults := services.SelectionDefaults{
		Budget:   q.Get("budget"),
		Cuisine:  q.Get("cuisine"),
		Vibe:     q.Get("vibe"),
		Dietary:  q.Get("dietary"),
		Distance: q.Get("distance"),
	}

	merged := services.Merge(snapshot, defaults)
	respondJSON(w, http.StatusOK, MergedPreferencesResponse{
		Preferences:  merged,
		SearchPhrase: merged.SearchPhrase(),
	})
}
