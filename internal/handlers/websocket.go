package handlers

import (
	"context"
	"net/http"

	"commonplate-backend/internal/services"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins for MVP
	},
}

// WebSocketHandler handles WebSocket connections
type WebSocketHandler struct {
	sessions *services.SessionService
	sync     *services.Synchronizer
}

// NewWebSocketHandler creates a new WebSocket handler
func NewWebSocketHandler(sessions *services.SessionService, sync *services.Synchronizer) *WebSocketHandler {
	return &WebSocketHandler{sessions: sessions, sync: sync}
}

// HandleWebSocket handles GET /ws?code=&user_id=. The connection carries
// the session, users and activity streams until the client disconnects.
func (h *WebSocketHandler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	code := services.NormalizeCode(r.URL.Query().Get("code"))
	userID := r.URL.Query().Get("user_id")
	if code == "" || userID == "" {
		respondError(w, "code and user_id are required", http.StatusBadRequest)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error().Err(err).Msg("Failed to upgrade WebSocket connection")
		return
	}

	hub := h.sync.Hub()
	sub := hub.Subscribe(code, userID, conn)
	defer h.teardown(code, userID, sub)

	ctx := r.Context()
	if err := h.sync.InitialSync(ctx, code, sub); err != nil {
		log.Error().
			Err(err).
			Str("session_code", code).
			Str("user_id", userID).
			Msg("Failed to send initial sync")
		return
	}

	log.Info().Str("session_code", code).Str("user_id", userID).Msg("WebSocket connection established")

	// Clients never send application messages; the read loop only detects
	// the close.
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				log.Error().Err(err).Str("user_id", userID).Msg("WebSocket error")
			}
			break
		}
	}
}

// teardown drops the subscription and removes the participant from the
// roster so the remaining clients see them leave. The request context is
// already canceled at this point, so cleanup runs on a fresh one.
func (h *WebSocketHandler) teardown(code, userID string, sub *services.Subscriber) {
	h.sync.Hub().Unsubscribe(code, sub)

	ctx := context.Background()
	if err := h.sessions.Leave(ctx, code, userID); err != nil {
		log.Warn().Err(err).Str("session_code", code).Str("user_id", userID).Msg("Failed to remove participant on disconnect")
	}
	h.sync.PushUsers(ctx, code)
}
