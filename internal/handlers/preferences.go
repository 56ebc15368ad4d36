package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"commonplate-backend/internal/ai"

	"github.com/rs/zerolog/log"
)

// PreferenceExtractor turns free-form text into structured preferences
type PreferenceExtractor interface {
	ExtractPreferences(ctx context.Context, text string) (ai.PreferenceGuess, error)
}

// PreferenceHandler handles free-text preference analysis requests
type PreferenceHandler struct {
	extractor PreferenceExtractor
}

// NewPreferenceHandler creates a new preference handler. The extractor may
// be nil when no AI backend is configured.
func NewPreferenceHandler(extractor PreferenceExtractor) *PreferenceHandler {
	return &PreferenceHandler{extractor: extractor}
}

// AnalyzeRequest carries the free-form request text
type AnalyzeRequest struct {
	Text string `json:"text"`
}

// Analyze handles POST /api/v1/preferences/analyze. Extraction failures
// degrade to an empty guess so the client falls back to manual selection.
func (h *PreferenceHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		respondError(w, "text is required", http.StatusBadRequest)
		return
	}

	if h.extractor == nil {
		respondJSON(w, http.StatusOK, ai.PreferenceGuess{})
		return
	}

	guess, err := h.extractor.ExtractPreferences(r.Context(), req.Text)
	if err != nil {
		log.Warn().Err(err).Msg("Preference extraction failed, returning empty guess")
		respondJSON(w, http.StatusOK, ai.PreferenceGuess{})
		return
	}

	respondJSON(w, http.StatusOK, guess)
}
