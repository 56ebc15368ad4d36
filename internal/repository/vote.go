package repository

import (
	"context"
	"fmt"

	"commonplate-backend/internal/models"

	"github.com/jackc/pgx/v5/pgxpool"
)

// VoteRepository handles database operations for the vote ledger
type VoteRepository struct {
	db *pgxpool.Pool
}

// NewVoteRepository creates a new vote repository
func NewVoteRepository(db *pgxpool.Pool) *VoteRepository {
	return &VoteRepository{db: db}
}

// Upsert casts a vote. The primary key (session, category, voter) makes
// retraction-on-recast a single atomic statement: a voter's new vote in a
// category replaces their previous one without touching anyone else's row.
func (r *VoteRepository) Upsert(ctx context.Context, code string, vote *models.Vote) error {
	query := `
		INSERT INTO votes (session_code, category, option, voter_id, voter_name, cast_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (session_code, category, voter_id)
		DO UPDATE SET option = EXCLUDED.option, voter_name = EXCLUDED.voter_name, cast_at = EXCLUDED.cast_at
	`
	_, err := r.db.Exec(ctx, query, code, vote.Category, vote.Option, vote.VoterID, vote.VoterName, vote.CastAt)
	if err != nil {
		return fmt.Errorf("failed to cast vote: %w", err)
	}
	return nil
}

// ListBySession returns all active votes for a session in cast order
func (r *VoteRepository) ListBySession(ctx context.Context, code string) ([]models.Vote, error) {
	query := `
		SELECT category, option, voter_id, voter_name, cast_at
		FROM votes
		WHERE session_code = $1
		ORDER BY cast_at, voter_id
	`
	rows, err := r.db.Query(ctx, query, code)
	if err != nil {
		return nil, fmt.Errorf("failed to list votes: %w", err)
	}
	defer rows.Close()

	votes := []models.Vote{}
	for rows.Next() {
		var v models.Vote
		if err := rows.Scan(&v.Category, &v.Option, &v.VoterID, &v.VoterName, &v.CastAt); err != nil {
			return nil, fmt.Errorf("failed to scan vote: %w", err)
		}
		votes = append(votes, v)
	}
	return votes, rows.Err()
}
