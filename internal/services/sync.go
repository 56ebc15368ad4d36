package services

import (
	"context"

	"github.com/rs/zerolog/log"
)

// Synchronizer pushes fresh stream snapshots to a session's subscribers.
// Handlers call it after every successful mutation; clients replace local
// state wholesale on each push. Pushes are best-effort: a failed push is
// logged and the mutation that triggered it still stands.
type Synchronizer struct {
	hub      *Hub
	sessions *SessionService
}

// NewSynchronizer creates a new synchronizer
func NewSynchronizer(hub *Hub, sessions *SessionService) *Synchronizer {
	return &Synchronizer{hub: hub, sessions: sessions}
}

// Hub exposes the underlying hub for connection registration
func (s *Synchronizer) Hub() *Hub {
	return s.hub
}

// PushSession broadcasts the full session document snapshot
func (s *Synchronizer) PushSession(ctx context.Context, code string) {
	code = NormalizeCode(code)
	snapshot, err := s.sessions.Snapshot(ctx, code)
	if err != nil {
		log.Error().Err(err).Str("session_code", code).Msg("Failed to load session snapshot for push")
		return
	}
	s.hub.Broadcast(code, StreamMessage{Type: StreamSession, Code: code, Data: snapshot})
}

// PushUsers broadcasts the current user set
func (s *Synchronizer) PushUsers(ctx context.Context, code string) {
	code = NormalizeCode(code)
	participants, err := s.sessions.Participants(ctx, code)
	if err != nil {
		log.Error().Err(err).Str("session_code", code).Msg("Failed to load participants for push")
		return
	}
	s.hub.Broadcast(code, StreamMessage{Type: StreamUsers, Code: code, Data: participants})
}

// PushActivity broadcasts the activity feed, sorted by timestamp ascending
func (s *Synchronizer) PushActivity(ctx context.Context, code string) {
	code = NormalizeCode(code)
	activities, err := s.sessions.Activity(ctx, code)
	if err != nil {
		log.Error().Err(err).Str("session_code", code).Msg("Failed to load activity for push")
		return
	}
	s.hub.Broadcast(code, StreamMessage{Type: StreamActivity, Code: code, Data: activities})
}

// InitialSync sends all three streams to a freshly registered subscriber so
// it starts from the current state instead of waiting for the next change.
func (s *Synchronizer) InitialSync(ctx context.Context, code string, sub *Subscriber) error {
	code = NormalizeCode(code)
	snapshot, err := s.sessions.Snapshot(ctx, code)
	if err != nil {
		return err
	}
	if err := s.hub.Send(sub, StreamMessage{Type: StreamSession, Code: code, Data: snapshot}); err != nil {
		return err
	}
	if err := s.hub.Send(sub, StreamMessage{Type: StreamUsers, Code: code, Data: snapshot.Participants}); err != nil {
		return err
	}
	activities, err := s.sessions.Activity(ctx, code)
	if err != nil {
		return err
	}
	return s.hub.Send(sub, StreamMessage{Type: StreamActivity, Code: code, Data: activities})
}
