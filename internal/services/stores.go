package services

import (
	"context"
	"errors"

	"commonplate-backend/internal/models"
)

// Store interfaces consumed by the services. The pgx repositories satisfy
// them in production; tests substitute in-memory implementations.

// SessionStore persists session documents
type SessionStore interface {
	CreateIfAbsent(ctx context.Context, session *models.Session) (bool, error)
	GetByCode(ctx context.Context, code string) (*models.Session, error)
	CodeExists(ctx context.Context, code string) (bool, error)
	Lock(ctx context.Context, code string) (bool, error)
	SetWinner(ctx context.Context, code string, winner models.WinnerRecord) (bool, error)
}

// ParticipantStore persists the session user set
type ParticipantStore interface {
	Upsert(ctx context.Context, code string, p *models.Participant) error
	Remove(ctx context.Context, code, userID string) error
	List(ctx context.Context, code string) ([]models.Participant, error)
}

// VoteStore persists the vote ledger
type VoteStore interface {
	Upsert(ctx context.Context, code string, vote *models.Vote) error
	ListBySession(ctx context.Context, code string) ([]models.Vote, error)
}

// SwipeStore persists the swipe ledger
type SwipeStore interface {
	Upsert(ctx context.Context, code string, swipe *models.SwipeEvent) error
	ListBySession(ctx context.Context, code string) ([]models.SwipeEvent, error)
}

// CandidateStore persists the candidate restaurant list
type CandidateStore interface {
	Replace(ctx context.Context, code string, candidates []models.Restaurant) error
	List(ctx context.Context, code string) ([]models.Restaurant, error)
}

// ActivityStore persists the append-only activity feed
type ActivityStore interface {
	Append(ctx context.Context, code string, activity *models.Activity) error
	List(ctx context.Context, code string) ([]models.Activity, error)
}

// Service-level error conditions mapped to HTTP statuses by the handlers.
var (
	ErrSessionNotFound  = errors.New("session not found")
	ErrSessionLocked    = errors.New("session preferences are locked")
	ErrSessionNotLocked = errors.New("session preferences are not locked yet")
	ErrNotOwner         = errors.New("only the session owner may do this")
	ErrNoWinner         = errors.New("no restaurant has any likes yet")
	ErrInvalidName      = errors.New("display name must be at least 2 characters")
	ErrInvalidCode      = errors.New("invalid session code")
	ErrInvalidCategory  = errors.New("unknown preference category")
	ErrInvalidOption    = errors.New("option is not in the category vocabulary")
	ErrInvalidDirection = errors.New("swipe direction must be like or dislike")
)
