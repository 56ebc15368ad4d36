package repository

import (
	"context"
	"fmt"

	"commonplate-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// ActivityRepository handles database operations for the activity feed
type ActivityRepository struct {
	db *pgxpool.Pool
}

// NewActivityRepository creates a new activity repository
func NewActivityRepository(db *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// Append adds an entry to the session's append-only activity log
func (r *ActivityRepository) Append(ctx context.Context, code string, activity *models.Activity) error {
	query := `
		INSERT INTO activities (id, session_code, type, actor_name, actor_color, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query,
		activity.ID, code, activity.Type, activity.ActorName,
		activity.ActorColor, activity.Message, activity.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to append activity: %w", err)
	}
	return nil
}

// List returns the session's activity entries. Insertion order is not a
// global order across concurrent writers, so entries are returned sorted by
// their own timestamps.
func (r *ActivityRepository) List(ctx context.Context, code string) ([]models.Activity, error) {
	query := `
		SELECT id, type, actor_name, actor_color, message, created_at
		FROM activities
		WHERE session_code = $1
		ORDER BY created_at, id
	`
	rows, err := r.db.Query(ctx, query, code)
	if err != nil {
		return nil, fmt.Errorf("failed to list activities: %w", err)
	}
	defer rows.Close()

	activities := []models.Activity{}
	for rows.Next() {
		var a models.Activity
		if err := rows.Scan(&a.ID, &a.Type, &a.ActorName, &a.ActorColor, &a.Message, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan activity: %w", err)
		}
		activities = append(activities, a)
	}
	return activities, rows.Err()
}
