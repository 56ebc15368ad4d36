package repository

import (
	"context"
	"errors"
	"fmt"

	"commonplate-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a requested row does not exist.
var ErrNotFound = errors.New("not found")

// SessionRepository handles database operations for sessions
type SessionRepository struct {
	db *pgxpool.Pool
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *pgxpool.Pool) *SessionRepository {
	return &SessionRepository{db: db}
}

// CreateIfAbsent inserts the session unless its code is already taken.
// It reports whether this call created the row, which makes the bootstrap
// race between two simultaneous joiners harmless: exactly one insert wins
// and the other caller proceeds against the existing session.
func (r *SessionRepository) CreateIfAbsent(ctx context.Context, session *models.Session) (bool, error) {
	query := `
		INSERT INTO sessions (code, owner_id, locked, created_at)
		VALUES ($1, $2, FALSE, $3)
		ON CONFLICT (code) DO NOTHING
	`
	tag, err := r.db.Exec(ctx, query, session.Code, session.OwnerID, session.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("failed to create session: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// GetByCode retrieves a session by its code
func (r *SessionRepository) GetByCode(ctx context.Context, code string) (*models.Session, error) {
	query := `
		SELECT code, owner_id, locked, winner_id, winner_reason, winner_likes, created_at
		FROM sessions
		WHERE code = $1
	`
	var (
		session      models.Session
		winnerID     *string
		winnerReason *string
		winnerLikes  *int
	)
	err := r.db.QueryRow(ctx, query, code).Scan(
		&session.Code, &session.OwnerID, &session.Locked,
		&winnerID, &winnerReason, &winnerLikes, &session.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("session %s: %w", code, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}
	if winnerID != nil {
		session.Winner = &models.WinnerRecord{RestaurantID: *winnerID}
		if winnerReason != nil {
			session.Winner.Reason = *winnerReason
		}
		if winnerLikes != nil {
			session.Winner.LikeCount = *winnerLikes
		}
	}
	return &session, nil
}

// CodeExists checks if a session code is already taken
func (r *SessionRepository) CodeExists(ctx context.Context, code string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM sessions WHERE code = $1)`
	var exists bool
	if err := r.db.QueryRow(ctx, query, code).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check code existence: %w", err)
	}
	return exists, nil
}

// Lock marks the session's preferences as finalized. The guard on the
// current value makes the false→true transition happen at most once; the
// return value reports whether this call performed it.
func (r *SessionRepository) Lock(ctx context.Context, code string) (bool, error) {
	query := `UPDATE sessions SET locked = TRUE WHERE code = $1 AND locked = FALSE`
	tag, err := r.db.Exec(ctx, query, code)
	if err != nil {
		return false, fmt.Errorf("failed to lock session: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// SetWinner persists the winner record unless one is already stored.
// The conditional write is what makes winner computation at-most-once even
// when several clients observe "swiping complete" at the same moment.
func (r *SessionRepository) SetWinner(ctx context.Context, code string, winner models.WinnerRecord) (bool, error) {
	query := `
		UPDATE sessions
		SET winner_id = $1, winner_reason = $2, winner_likes = $3
		WHERE code = $4 AND winner_id IS NULL
	`
	tag, err := r.db.Exec(ctx, query, winner.RestaurantID, winner.Reason, winner.LikeCount, code)
	if err != nil {
		return false, fmt.Errorf("failed to set winner: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}
