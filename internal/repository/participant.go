package repository

import (
	"context"
	"fmt"

	"commonplate-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ParticipantRepository handles database operations for session members
type ParticipantRepository struct {
	db *pgxpool.Pool
}

// NewParticipantRepository creates a new participant repository
func NewParticipantRepository(db *pgxpool.Pool) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

// Upsert adds a participant to the session's user set. Re-joining with the
// same id keeps the original color and join timestamp and only refreshes
// the display name.
func (r *ParticipantRepository) Upsert(ctx context.Context, code string, p *models.Participant) error {
	query := `
		INSERT INTO session_users (session_code, user_id, name, color, joined_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (session_code, user_id) DO UPDATE SET name = EXCLUDED.name
	`
	_, err := r.db.Exec(ctx, query, code, p.ID, p.Name, p.Color, p.JoinedAt)
	if err != nil {
		return fmt.Errorf("failed to add participant: %w", err)
	}
	return nil
}

// Remove deletes a participant from the session's user set. Removing an
// already-departed user is a no-op, which suits the best-effort leave on
// tab close.
func (r *ParticipantRepository) Remove(ctx context.Context, code, userID string) error {
	query := `DELETE FROM session_users WHERE session_code = $1 AND user_id = $2`
	if _, err := r.db.Exec(ctx, query, code, userID); err != nil {
		return fmt.Errorf("failed to remove participant: %w", err)
	}
	return nil
}

// List returns the session's participants in join order
func (r *ParticipantRepository) List(ctx context.Context, code string) ([]models.Participant, error) {
	query := `
		SELECT user_id, name, color, joined_at
		FROM session_users
		WHERE session_code = $1
		ORDER BY joined_at, user_id
	`
	rows, err := r.db.Query(ctx, query, code)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	participants := []models.Participant{}
	for rows.Next() {
		var p models.Participant
		if err := rows.Scan(&p.ID, &p.Name, &p.Color, &p.JoinedAt); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}
