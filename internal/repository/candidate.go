package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"commonplate-backend/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// CandidateRepository handles database operations for the candidate list
type CandidateRepository struct {
	db *pgxpool.Pool
}

// NewCandidateRepository creates a new candidate repository
func NewCandidateRepository(db *pgxpool.Pool) *CandidateRepository {
	return &CandidateRepository{db: db}
}

// Replace swaps the session's candidate list wholesale inside one
// transaction. Candidates are never merged with an existing list.
func (r *CandidateRepository) Replace(ctx context.Context, code string, candidates []models.Restaurant) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM candidates WHERE session_code = $1`, code); err != nil {
		return fmt.Errorf("failed to clear candidates: %w", err)
	}

	for i, c := range candidates {
		payload, err := json.Marshal(c)
		if err != nil {
			return fmt.Errorf("failed to marshal candidate: %w", err)
		}
		_, err = tx.Exec(ctx, `
			INSERT INTO candidates (session_code, restaurant_id, position, payload)
			VALUES ($1, $2, $3, $4)
		`, code, c.ID, i, payload)
		if err != nil {
			return fmt.Errorf("failed to insert candidate: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit candidates: %w", err)
	}
	return nil
}

// List returns the session's candidates in their original search order
func (r *CandidateRepository) List(ctx context.Context, code string) ([]models.Restaurant, error) {
	query := `
		SELECT payload
		FROM candidates
		WHERE session_code = $1
		ORDER BY position
	`
	rows, err := r.db.Query(ctx, query, code)
	if err != nil {
		return nil, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	candidates := []models.Restaurant{}
	for rows.Next() {
		var payload []byte
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		var c models.Restaurant
		if err := json.Unmarshal(payload, &c); err != nil {
			return nil, fmt.Errorf("failed to unmarshal candidate: %w", err)
		}
		candidates = append(candidates, c)
	}
	return candidates, rows.Err()
}

// DetailRepository caches per-restaurant detail blobs fetched by clients
type DetailRepository struct {
	db *pgxpool.Pool
}

// NewDetailRepository creates a new detail repository
func NewDetailRepository(db *pgxpool.Pool) *DetailRepository {
	return &DetailRepository{db: db}
}

// Put stores or refreshes the cached detail blob for a restaurant
func (r *DetailRepository) Put(ctx context.Context, code, restaurantID string, payload json.RawMessage) error {
	query := `
		INSERT INTO restaurant_details (session_code, restaurant_id, payload, fetched_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (session_code, restaurant_id)
		DO UPDATE SET payload = EXCLUDED.payload, fetched_at = NOW()
	`
	if _, err := r.db.Exec(ctx, query, code, restaurantID, payload); err != nil {
		return fmt.Errorf("failed to cache restaurant detail: %w", err)
	}
	return nil
}

// Get returns the cached detail blob for a restaurant, or ErrNotFound
func (r *DetailRepository) Get(ctx context.Context, code, restaurantID string) (json.RawMessage, error) {
	query := `
		SELECT payload FROM restaurant_details
		WHERE session_code = $1 AND restaurant_id = $2
	`
	var payload []byte
	err := r.db.QueryRow(ctx, query, code, restaurantID).Scan(&payload)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, fmt.Errorf("detail %s/%s: %w", code, restaurantID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get restaurant detail: %w", err)
	}
	return payload, nil
}
