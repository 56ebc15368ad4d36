package handlers

import (
	"encoding/json"
	"net/http"

	"commonplate-backend/internal/middleware"
	"commonplate-backend/internal/services"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"
)

// SessionHandler handles session lifecycle HTTP requests
type SessionHandler struct {
	sessions *services.SessionService
	sync     *services.Synchronizer
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions *services.SessionService, sync *services.Synchronizer) *SessionHandler {
	return &SessionHandler{sessions: sessions, sync: sync}
}

// JoinRequest is the body for hosting or joining a session
type JoinRequest struct {
	Name string `json:"name"`
}

// HostSession handles POST /api/v1/sessions
func (h *SessionHandler) HostSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)

	var req JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	code, err := h.sessions.GenerateUniqueCode(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Failed to generate session code")
		respondError(w, "Failed to create session", http.StatusInternalServerError)
		return
	}

	snapshot, err := h.sessions.Join(ctx, code, userID, req.Name)
	if err != nil {
		log.Error().Err(err).Str("session_code", code).Msg("Failed to host session")
		respondServiceError(w, err)
		return
	}

	log.Info().Str("session_code", code).Str("user_id", userID).Msg("Session hosted")
	respondJSON(w, http.StatusCreated, snapshot)
}

// JoinSession handles POST /api/v1/sessions/{code}/join
func (h *SessionHandler) JoinSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	code := chi.URLParam(r, "code")

	var req JoinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	snapshot, err := h.sessions.Join(ctx, code, userID, req.Name)
	if err != nil {
		log.Error().Err(err).Str("session_code", code).Str("user_id", userID).Msg("Failed to join session")
		respondServiceError(w, err)
		return
	}

	log.Info().Str("session_code", code).Str("user_id", userID).Msg("Participant joined")

	h.sync.PushUsers(ctx, code)
	h.sync.PushActivity(ctx, code)

	respondJSON(w, http.StatusOK, snapshot)
}

// GetSession handles GET /api/v1/sessions/{code}
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	snapshot, err := h.sessions.Snapshot(r.Context(), code)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snapshot)
}

// LockSession handles POST /api/v1/sessions/{code}/lock
func (h *SessionHandler) LockSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	code := chi.URLParam(r, "code")

	session, err := h.sessions.Lock(ctx, code, userID)
	if err != nil {
		log.Error().Err(err).Str("session_code", code).Str("user_id", userID).Msg("Failed to lock session")
		respondServiceError(w, err)
		return
	}

	log.Info().Str("session_code", code).Msg("Session locked")

	h.sync.PushSession(ctx, code)
	h.sync.PushActivity(ctx, code)

	respondJSON(w, http.StatusOK, session)
}

// LeaveSession handles POST /api/v1/sessions/{code}/leave
func (h *SessionHandler) LeaveSession(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.GetUserID(ctx)
	code := chi.URLParam(r, "code")

	if err := h.sessions.Leave(ctx, code, userID); err != nil {
		// Leave is best-effort; a failed removal leaves a stale entry
		// that subsequent merges tolerate.
		log.Warn().Err(err).Str("session_code", code).Str("user_id", userID).Msg("Failed to remove participant")
	}

	h.sync.PushUsers(ctx, code)

	w.WriteHeader(http.StatusNoContent)
}

// GetActivity handles GET /api/v1/sessions/{code}/activity
func (h *SessionHandler) GetActivity(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	activities, err := h.sessions.Activity(r.Context(), code)
	if err != nil {
		respondServiceError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, activities)
}
