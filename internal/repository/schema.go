package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// CreateSchema creates all tables if they do not exist yet, so a fresh
// deployment needs nothing beyond a reachable database.
//
// Votes and swipes are keyed so that a voter's recast lands on the same row:
// the retraction-on-recast rule is a single-row upsert, which is the
// fine-grained atomic field merge that keeps concurrent writers from
// clobbering each other's categories.
func CreateSchema(ctx context.Context, db *pgxpool.Pool) error {
	_, err := db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS sessions (
			code TEXT PRIMARY KEY,
			owner_id TEXT NOT NULL,
			locked BOOLEAN NOT NULL DEFAULT FALSE,
			winner_id TEXT,
			winner_reason TEXT,
			winner_likes INT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);

		CREATE TABLE IF NOT EXISTS session_users (
			session_code TEXT NOT NULL REFERENCES sessions(code) ON DELETE CASCADE,
			user_id TEXT NOT NULL,
			name TEXT NOT NULL,
			color TEXT NOT NULL,
			joined_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (session_code, user_id)
		);

		CREATE TABLE IF NOT EXISTS votes (
			session_code TEXT NOT NULL REFERENCES sessions(code) ON DELETE CASCADE,
			category TEXT NOT NULL,
			option TEXT NOT NULL,
			voter_id TEXT NOT NULL,
			voter_name TEXT NOT NULL,
			cast_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (session_code, category, voter_id)
		);

		CREATE TABLE IF NOT EXISTS swipes (
			session_code TEXT NOT NULL REFERENCES sessions(code) ON DELETE CASCADE,
			restaurant_id TEXT NOT NULL,
			voter_id TEXT NOT NULL,
			voter_name TEXT NOT NULL,
			direction TEXT NOT NULL CHECK (direction IN ('like', 'dislike')),
			swiped_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (session_code, restaurant_id, voter_id)
		);

		CREATE TABLE IF NOT EXISTS candidates (
			session_code TEXT NOT NULL REFERENCES sessions(code) ON DELETE CASCADE,
			restaurant_id TEXT NOT NULL,
			position INT NOT NULL,
			payload JSONB NOT NULL,
			PRIMARY KEY (session_code, restaurant_id)
		);

		CREATE TABLE IF NOT EXISTS activities (
			id TEXT PRIMARY KEY,
			session_code TEXT NOT NULL REFERENCES sessions(code) ON DELETE CASCADE,
			type TEXT NOT NULL,
			actor_name TEXT NOT NULL,
			actor_color TEXT NOT NULL,
			message TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_activities_session
			ON activities (session_code, created_at);

		CREATE TABLE IF NOT EXISTS restaurant_details (
			session_code TEXT NOT NULL REFERENCES sessions(code) ON DELETE CASCADE,
			restaurant_id TEXT NOT NULL,
			payload JSONB NOT NULL,
			fetched_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			PRIMARY KEY (session_code, restaurant_id)
		);
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}
