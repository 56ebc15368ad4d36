package services

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
)

// StreamType identifies one of the three live streams a client subscribes
// to when it enters a session.
type StreamType string

const (
	StreamSession  StreamType = "session"
	StreamUsers    StreamType = "users"
	StreamActivity StreamType = "activity"
)

// StreamMessage is the wire shape of a push. Data is always a wholesale
// snapshot of the stream: clients replace their local state, they never
// merge stale with fresh.
type StreamMessage struct {
	Type StreamType  `json:"type"`
	Code string      `json:"code"`
	Data interface{} `json:"data"`
}

// wsConn is the subset of *websocket.Conn the hub needs. Tests plug in
// fakes; production uses gorilla connections.
type wsConn interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Subscriber is one client's live subscription to a session
type Subscriber struct {
	UserID string
	conn   wsConn
	// gorilla connections do not allow concurrent writers
	writeMu sync.Mutex
}

func (s *Subscriber) send(data []byte) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()
	return s.conn.WriteMessage(websocket.TextMessage, data)
}

// Hub manages the WebSocket subscriptions of all sessions
type Hub struct {
	mu    sync.RWMutex
	rooms map[string]map[*Subscriber]struct{}
}

// NewHub creates a new hub
func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*Subscriber]struct{})}
}

// Subscribe registers a connection as a subscriber of the session's streams
func (h *Hub) Subscribe(code, userID string, conn wsConn) *Subscriber {
	sub := &Subscriber{UserID: userID, conn: conn}

	h.mu.Lock()
	defer h.mu.Unlock()
	room, ok := h.rooms[code]
	if !ok {
		room = make(map[*Subscriber]struct{})
		h.rooms[code] = room
	}
	room[sub] = struct{}{}

	log.Info().Str("session_code", code).Str("user_id", userID).Msg("Subscriber registered")
	return sub
}

// Unsubscribe tears down a subscription and closes its connection
func (h *Hub) Unsubscribe(code string, sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if room, ok := h.rooms[code]; ok {
		if _, ok := room[sub]; ok {
			delete(room, sub)
			sub.conn.Close()
			log.Info().Str("session_code", code).Str("user_id", sub.UserID).Msg("Subscriber unregistered")
		}
		if len(room) == 0 {
			delete(h.rooms, code)
		}
	}
}

// Send delivers a message to a single subscriber
func (h *Hub) Send(sub *Subscriber, msg StreamMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	if err := sub.send(data); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// Broadcast delivers a message to every subscriber of a session.
// Subscribers whose connection fails are dropped from the room.
func (h *Hub) Broadcast(code string, msg StreamMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Error().Err(err).Str("session_code", code).Msg("Failed to marshal broadcast")
		return
	}

	h.mu.RLock()
	subs := make([]*Subscriber, 0, len(h.rooms[code]))
	for sub := range h.rooms[code] {
		subs = append(subs, sub)
	}
	h.mu.RUnlock()

	for _, sub := range subs {
		if err := sub.send(data); err != nil {
			log.Warn().
				Err(err).
				Str("session_code", code).
				Str("user_id", sub.UserID).
				Msg("Dropping unreachable subscriber")
			h.Unsubscribe(code, sub)
		}
	}
}

// SubscriberCount reports how many clients are subscribed to a session
func (h *Hub) SubscriberCount(code string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[code])
}
