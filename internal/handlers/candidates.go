package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"commonplate-backend/internal/directory"
	"commonplate-backend/internal/middleware"
	"commonplate-backend/internal/models"
	"commonplate-backend/internal/repository"
	"commonplate-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// DirectorySearcher runs deduplicated directory query variants
type DirectorySearcher interface {
	SearchAll(ctx context.Context, reqs ...directory.SearchRequest) ([]models.Restaurant, error)
}

// DetailStore caches per-restaurant detail blobs
type DetailStore interface {
	Put(ctx context.Context, code, restaurantID string, payload json.RawMessage) error
	Get(ctx context.Context, code, restaurantID string) (json.RawMessage, error)
}

// CandidateHandler handles candidate list HTTP requests
type CandidateHandler struct {
	sessions  *services.SessionService
	votes     *services.VoteService
	directory DirectorySearcher
	details   DetailStore
	sync      *services.Synchronizer
}

// NewCandidateHandler creates a new candidate handler
func NewCandidateHandler(
	sessions *services.SessionService,
	votes *services.VoteService,
	dir DirectorySearcher,
	details DetailStore,
	sync *services.Synchronizer,
) *CandidateHandler {
	return &CandidateHandler{
		sessions:  sessions,
		votes:     votes,
		directory: dir,
		details:   details,
		sync:      sync,
	}
}

// SetCandidatesRequest populates the candidate list. Either the owner
// supplies restaurants it already fetched, or it supplies coordinates and
// the server queries the directory with the merged preferences.
type SetCandidatesRequest struct {
	Restaurants []models.Restaurant `json:"restaurants,omitempty"`
	Latitude    float64             `json:"latitude,omitempty"`
	Longitude   float64             `json:"longitude,omitempty"`
	Limit       int                 `json:"limit,omitempty"`
}

// SetCandidates handles POST /api/v1/sessions/{code}/candidates
func (h *CandidateHandler) SetCandidates(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	code := chi.URLParam(r, "code")

	var req SetCandidatesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	candidates := req.Restaurants
	if len(candidates) == 0 {
		if req.Latitude == 0 && req.Longitude == 0 {
			respondError(w, "either restaurants or coordinates are required", http.StatusBadRequest)
			return
		}
		found, err := h.searchDirectory(ctx, code, req)
		if err != nil {
			log.Error().Err(err).Str("session_code", code).Msg("Directory search failed")
			respondError(w, "Restaurant directory is unavailable", http.StatusBadGateway)
			return
		}
		candidates = found
	}

	if err := h.sessions.SetCandidates(ctx, code, userID, candidates); err != nil {
		log.Error().Err(err).Str("session_code", code).Str("user_id", userID).Msg("Failed to set candidates")
		respondServiceError(w, err)
		return
	}

	log.Info().Str("session_code", code).Int("count", len(candidates)).Msg("Candidates populated")

	h.sync.PushSession(ctx, code)

	respondJSON(w, http.StatusOK, candidates)
}

// searchDirectory queries the directory using the group's merged
// preferences: one broad phrase variant and one filtered variant, merged
// and deduplicated by id.
func (h *CandidateHandler) searchDirectory(ctx context.Context, code string, req SetCandidatesRequest) ([]models.Restaurant, error) {
	snapshot, err := h.votes.Snapshot(ctx, code)
	if err != nil {
		return nil, err
	}
	merged := services.Merge(snapshot, services.SelectionDefaults{})

	base := directory.SearchRequest{
		Phrase:       merged.SearchPhrase(),
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		RadiusMeters: models.RadiusMeters(merged.Distance.Value),
		Limit:        req.Limit,
	}

	filtered := base
	filtered.Categories = merged.Cuisine.TiedOptions
	if filtered.Categories == nil && merged.Cuisine.Value != "" {
		filtered.Categories = []string{merged.Cuisine.Value}
	}
	if level := priceLevel(merged.Budget.Value); level > 0 {
		// Include every tier up to the merged budget so cheaper places
		// stay on the table.
		for i := 1; i <= level; i++ {
			filtered.PriceLevels = append(filtered.PriceLevels, i)
		}
	}

	return h.directory.SearchAll(ctx, base, filtered)
}

// priceLevel maps a budget option to the directory's 1-4 price tier
func priceLevel(budget string) int {
	for i, option := range models.BudgetOptions {
		if option == budget {
			return i + 1
		}
	}
	return 0
}

// PutDetail handles PUT /api/v1/sessions/{code}/restaurants/{id}/detail
func (h *CandidateHandler) PutDetail(w http.ResponseWriter, r *http.Request) {
	code := services.NormalizeCode(chi.URLParam(r, "code"))
	restaurantID := chi.URLParam(r, "id")

	payload, err := io.ReadAll(r.Body)
	if err != nil || len(payload) == 0 || !json.Valid(payload) {
		respondError(w, "valid JSON body required", http.StatusBadRequest)
		return
	}

	if err := h.details.Put(r.Context(), code, restaurantID, payload); err != nil {
		log.Error().Err(err).Str("session_code", code).Str("restaurant_id", restaurantID).Msg("Failed to cache detail")
		respondError(w, "Failed to cache detail", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetDetail handles GET /api/v1/sessions/{code}/restaurants/{id}/detail
func (h *CandidateHandler) GetDetail(w http.ResponseWriter, r *http.Request) {
	code := services.NormalizeCode(chi.URLParam(r, "code"))
	restaurantID := chi.URLParam(r, "id")

	payload, err := h.details.Get(r.Context(), code, restaurantID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			respondError(w, "No cached detail", http.StatusNotFound)
			return
		}
		respondError(w, "Failed to load detail", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(payload)
}
