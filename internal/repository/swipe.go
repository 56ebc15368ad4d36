package repository

import (
	"context"
	"fmt"

	"commonplate-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SwipeRepository handles database operations for the swipe ledger
type SwipeRepository struct {
	db *pgxpool.Pool
}

// NewSwipeRepository creates a new swipe repository
func NewSwipeRepository(db *pgxpool.Pool) *SwipeRepository {
	return &SwipeRepository{db: db}
}

// Upsert records a swipe. The primary key (session, restaurant, voter)
// keeps exactly one row per voter per restaurant, so a later swipe
// supersedes the earlier one in either direction.
func (r *SwipeRepository) Upsert(ctx context.Context, code string, swipe *models.SwipeEvent) error {
	query := `
		INSERT INTO swipes (session_code, restaurant_id, voter_id, voter_name, direction, swiped_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (session_code, restaurant_id, voter_id)
		DO UPDATE SET direction = EXCLUDED.direction, voter_name = EXCLUDED.voter_name, swiped_at = EXCLUDED.swiped_at
	`
	_, err := r.db.Exec(ctx, query, code, swipe.RestaurantID, swipe.VoterID, swipe.VoterName, swipe.Direction, swipe.SwipedAt)
	if err != nil {
		return fmt.Errorf("failed to record swipe: %w", err)
	}
	return nil
}

// ListBySession returns all current swipes for a session in swipe order
func (r *SwipeRepository) ListBySession(ctx context.Context, code string) ([]models.SwipeEvent, error) {
	query := `
		SELECT restaurant_id, voter_id, voter_name, direction, swiped_at
		FROM swipes
		WHERE session_code = $1
		ORDER BY swiped_at, voter_id
	`
	rows, err := r.db.Query(ctx, query, code)
	if err != nil {
		return nil, fmt.Errorf("failed to list swipes: %w", err)
	}
	defer rows.Close()

	swipes := []models.SwipeEvent{}
	for rows.Next() {
		var s models.SwipeEvent
		if err := rows.Scan(&s.RestaurantID, &s.VoterID, &s.VoterName, &s.Direction, &s.SwipedAt); err != nil {
			return nil, fmt.Errorf("failed to scan swipe: %w", err)
		}
		swipes = append(swipes, s)
	}
	return swipes, rows.Err()
}
