// Package testutil provides in-memory store implementations with the same
// semantics as the pgx repositories, so services and handlers can be tested
// without a database.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"commonplate-backend/internal/models"
	"commonplate-backend/internal/repository"
)

// SessionStore is an in-memory session store
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*models.Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*models.Session)}
}

func (s *SessionStore) CreateIfAbsent(ctx context.Context, session *models.Session) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[session.Code]; ok {
		return false, nil
	}
	copied := *session
	s.sessions[session.Code] = &copied
	return true, nil
}

func (s *SessionStore) GetByCode(ctx context.Context, code string) (*models.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[code]
	if !ok {
		return nil, fmt.Errorf("session %s: %w", code, repository.ErrNotFound)
	}
	copied := *session
	if session.Winner != nil {
		winner := *session.Winner
		copied.Winner = &winner
	}
	return &copied, nil
}

func (s *SessionStore) CodeExists(ctx context.Context, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.sessions[code]
	return ok, nil
}

func (s *SessionStore) Lock(ctx context.Context, code string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[code]
	if !ok || session.Locked {
		return false, nil
	}
	session.Locked = true
	return true, nil
}

func (s *SessionStore) SetWinner(ctx context.Context, code string, winner models.WinnerRecord) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[code]
	if !ok || session.Winner != nil {
		return false, nil
	}
	session.Winner = &winner
	return true, nil
}

// ParticipantStore is an in-memory participant store
type ParticipantStore struct {
	mu    sync.Mutex
	rooms map[string]map[string]models.Participant
}

func NewParticipantStore() *ParticipantStore {
	return &ParticipantStore{rooms: make(map[string]map[string]models.Participant)}
}

func (s *ParticipantStore) Upsert(ctx context.Context, code string, p *models.Participant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	room, ok := s.rooms[code]
	if !ok {
		room = make(map[string]models.Participant)
		s.rooms[code] = room
	}
	if existing, ok := room[p.ID]; ok {
		// rejoin keeps the original color and join time
		existing.Name = p.Name
		room[p.ID] = existing
		return nil
	}
	room[p.ID] = *p
	return nil
}

func (s *ParticipantStore) Remove(ctx context.Context, code, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.rooms[code], userID)
	return nil
}

func (s *ParticipantStore) List(ctx context.Context, code string) ([]models.Participant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	participants := make([]models.Participant, 0, len(s.rooms[code]))
	for _, p := range s.rooms[code] {
		participants = append(participants, p)
	}
	sort.Slice(participants, func(i, j int) bool {
		if !participants[i].JoinedAt.Equal(participants[j].JoinedAt) {
			return participants[i].JoinedAt.Before(participants[j].JoinedAt)
		}
		return participants[i].ID < participants[j].ID
	})
	return participants, nil
}

// VoteStore is an in-memory vote ledger
type VoteStore struct {
	mu    sync.Mutex
	votes map[string][]models.Vote
}

func NewVoteStore() *VoteStore {
	return &VoteStore{votes: make(map[string][]models.Vote)}
}

func (s *VoteStore) Upsert(ctx context.Context, code string, vote *models.Vote) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ledger := s.votes[code]
	for i, v := range ledger {
		if v.Category == vote.Category && v.VoterID == vote.VoterID {
			ledger[i] = *vote
			return nil
		}
	}
	s.votes[code] = append(ledger, *vote)
	return nil
}

func (s *VoteStore) ListBySession(ctx context.Context, code string) ([]models.Vote, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	votes := make([]models.Vote, len(s.votes[code]))
	copy(votes, s.votes[code])
	sort.SliceStable(votes, func(i, j int) bool {
		return votes[i].CastAt.Before(votes[j].CastAt)
	})
	return votes, nil
}

// SwipeStore is an in-memory swipe ledger
type SwipeStore struct {
	mu     sync.Mutex
	swipes map[string][]models.SwipeEvent
}

func NewSwipeStore() *SwipeStore {
	return &SwipeStore{swipes: make(map[string][]models.SwipeEvent)}
}

func (s *SwipeStore) Upsert(ctx context.Context, code string, swipe *models.SwipeEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	ledger := s.swipes[code]
	for i, sw := range ledger {
		if sw.RestaurantID == swipe.RestaurantID && sw.VoterID == swipe.VoterID {
			ledger[i] = *swipe
			return nil
		}
	}
	s.swipes[code] = append(ledger, *swipe)
	return nil
}

func (s *SwipeStore) ListBySession(ctx context.Context, code string) ([]models.SwipeEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	swipes := make([]models.SwipeEvent, len(s.swipes[code]))
	copy(swipes, s.swipes[code])
	return swipes, nil
}

// CandidateStore is an in-memory candidate list store
type CandidateStore struct {
	mu         sync.Mutex
	candidates map[string][]models.Restaurant
}

func NewCandidateStore() *CandidateStore {
	return &CandidateStore{candidates: make(map[string][]models.Restaurant)}
}

func (s *CandidateStore) Replace(ctx context.Context, code string, candidates []models.Restaurant) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := make([]models.Restaurant, len(candidates))
	copy(copied, candidates)
	s.candidates[code] = copied
	return nil
}

func (s *CandidateStore) List(ctx context.Context, code string) ([]models.Restaurant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	candidates := make([]models.Restaurant, len(s.candidates[code]))
	copy(candidates, s.candidates[code])
	return candidates, nil
}

// ActivityStore is an in-memory activity feed
type ActivityStore struct {
	mu         sync.Mutex
	activities map[string][]models.Activity
}

func NewActivityStore() *ActivityStore {
	return &ActivityStore{activities: make(map[string][]models.Activity)}
}

func (s *ActivityStore) Append(ctx context.Context, code string, activity *models.Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activities[code] = append(s.activities[code], *activity)
	return nil
}

func (s *ActivityStore) List(ctx context.Context, code string) ([]models.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	activities := make([]models.Activity, len(s.activities[code]))
	copy(activities, s.activities[code])
	return activities, nil
}
