package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"commonplate-backend/internal/models"
	"commonplate-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

// VoteService is the vote ledger: one active vote per voter per category,
// recasting replaces the earlier vote.
type VoteService struct {
	sessions     SessionStore
	votes        VoteStore
	participants ParticipantStore
	activities   ActivityStore
}

// NewVoteService creates a new vote service
func NewVoteService(sessions SessionStore, votes VoteStore, participants ParticipantStore, activities ActivityStore) *VoteService {
	return &VoteService{
		sessions:     sessions,
		votes:        votes,
		participants: participants,
		activities:   activities,
	}
}

// Cast records a vote, replacing any earlier vote by the same voter in the
// same category. Casting into a session that does not exist is a no-op so
// that races during session bootstrap degrade quietly instead of failing.
func (s *VoteService) Cast(ctx context.Context, code string, category models.Category, option, voterID, voterName string) error {
	code = NormalizeCode(code)
	if !models.ValidCategory(category) {
		return ErrInvalidCategory
	}
	if !models.ValidOption(category, option) {
		return ErrInvalidOption
	}
	if voterID == "" {
		return fmt.Errorf("voter id is required")
	}

	session, err := s.sessions.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Debug().Str("session_code", code).Msg("Vote for missing session dropped")
			return nil
		}
		return err
	}
	if session.Locked {
		return ErrSessionLocked
	}

	color := ""
	if p := findByID(ctx, s.participants, code, voterID); p != nil {
		if voterName == "" {
			voterName = p.Name
		}
		color = p.Color
	}

	vote := &models.Vote{
		Category:  category,
		Option:    option,
		VoterID:   voterID,
		VoterName: voterName,
		CastAt:    time.Now(),
	}
	if err := s.votes.Upsert(ctx, code, vote); err != nil {
		return err
	}

	appendActivity(ctx, s.activities, code, &models.Activity{
		Type:       models.ActivityPreference,
		ActorName:  voterName,
		ActorColor: color,
		Message:    fmt.Sprintf("%s voted %s for %s", voterName, option, category),
	})
	return nil
}

// Snapshot returns the current vote ledger for a session
func (s *VoteService) Snapshot(ctx context.Context, code string) (VoteSnapshot, error) {
	votes, err := s.votes.ListBySession(ctx, NormalizeCode(code))
	if err != nil {
		return VoteSnapshot{}, err
	}
	return VoteSnapshot{Votes: votes}, nil
}

// VoteSnapshot is a point-in-time view of the vote ledger
type VoteSnapshot struct {
	Votes []models.Vote
}

// Tally returns option → vote count for one category
func (s VoteSnapshot) Tally(category models.Category) map[string]int {
	tally := make(map[string]int)
	for _, v := range s.Votes {
		if v.Category == category {
			tally[v.Option]++
		}
	}
	return tally
}

// Voters returns the names of a given option's voters in cast order
func (s VoteSnapshot) Voters(category models.Category, option string) []string {
	var names []string
	for _, v := range s.Votes {
		if v.Category == category && v.Option == option {
			names = append(names, v.VoterName)
		}
	}
	return names
}

// findByID looks up a joined participant across services
func findByID(ctx context.Context, store ParticipantStore, code, userID string) *models.Participant {
	participants, err := store.List(ctx, code)
	if err != nil {
		return nil
	}
	for i := range participants {
		if participants[i].ID == userID {
			return &participants[i]
		}
	}
	return nil
}
