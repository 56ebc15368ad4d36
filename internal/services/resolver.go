package services

import (
	"context"
	"errors"
	"math/rand/v2"
	"time"

	"commonplate-backend/internal/models"
	"commonplate-backend/internal/repository"

	"github.com/rs/zerolog/log"
)

// Winner reason strings surfaced to the group. The random reason is
// explicit so the outcome is never misattributed to AI reasoning.
const (
	ReasonMostVoted      = "Most voted by the group!"
	ReasonRandomTieBreak = "Randomly selected tie-breaker"
)

// tieBreakTimeout bounds how long a tie-break call may hold up the group.
const tieBreakTimeout = 15 * time.Second

// TieBreaker picks one winner among tied candidates. Implementations are
// treated as unreliable: any error, timeout or answer outside the tied set
// sends the resolver to its random fallback.
type TieBreaker interface {
	ResolveTie(ctx context.Context, tied []models.Restaurant, prefs models.MergedPreferences) (winnerID, reason string, err error)
}

// WinnerResolver computes the most-liked candidate and persists the
// decision at most once per session.
type WinnerResolver struct {
	sessions   SessionStore
	swipes     SwipeStore
	candidates CandidateStore
	votes      VoteStore
	tieBreaker TieBreaker
}

// NewWinnerResolver creates a new winner resolver. tieBreaker may be nil,
// in which case ties go straight to the random fallback.
func NewWinnerResolver(sessions SessionStore, swipes SwipeStore, candidates CandidateStore, votes VoteStore, tieBreaker TieBreaker) *WinnerResolver {
	return &WinnerResolver{
		sessions:   sessions,
		swipes:     swipes,
		candidates: candidates,
		votes:      votes,
		tieBreaker: tieBreaker,
	}
}

// Resolve computes and persists the session winner. Only the owner may
// trigger it; everyone else reads the stored record via their snapshot
// subscription. Once a winner is stored, Resolve returns it unchanged.
//
// The resolver never fails because the tie-break service is down: a tie
// always terminates with a uniform random pick among the tied leaders.
func (r *WinnerResolver) Resolve(ctx context.Context, code, requesterID string) (*models.WinnerRecord, error) {
	code = NormalizeCode(code)
	session, err := r.sessions.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	if session.Winner != nil {
		return session.Winner, nil
	}
	if session.OwnerID != requesterID {
		return nil, ErrNotOwner
	}

	candidates, err := r.candidates.List(ctx, code)
	if err != nil {
		return nil, err
	}
	swipes, err := r.swipes.ListBySession(ctx, code)
	if err != nil {
		return nil, err
	}
	snapshot := SwipeSnapshot{Swipes: swipes}

	max := 0
	var tied []models.Restaurant
	for _, c := range candidates {
		likes := snapshot.LikeCount(c.ID)
		switch {
		case likes == 0:
			continue
		case likes > max:
			max = likes
			tied = []models.Restaurant{c}
		case likes == max:
			tied = append(tied, c)
		}
	}
	if max == 0 {
		return nil, ErrNoWinner
	}

	record := models.WinnerRecord{LikeCount: max}
	if len(tied) == 1 {
		record.RestaurantID = tied[0].ID
		record.Reason = ReasonMostVoted
	} else {
		record.RestaurantID, record.Reason = r.breakTie(ctx, code, tied)
	}

	stored, err := r.sessions.SetWinner(ctx, code, record)
	if err != nil {
		return nil, err
	}
	if !stored {
		// Another client raced us to the write; theirs is authoritative.
		session, err = r.sessions.GetByCode(ctx, code)
		if err != nil {
			return nil, err
		}
		return session.Winner, nil
	}

	log.Info().
		Str("session_code", code).
		Str("restaurant_id", record.RestaurantID).
		Int("likes", record.LikeCount).
		Str("reason", record.Reason).
		Msg("Winner resolved")
	return &record, nil
}

// breakTie asks the tie-break service to choose among the tied candidates
// and falls back to a uniform random pick whenever the service is
// unavailable, errors out, or answers with a restaurant that is not tied.
func (r *WinnerResolver) breakTie(ctx context.Context, code string, tied []models.Restaurant) (string, string) {
	if r.tieBreaker != nil {
		votes, err := r.votes.ListBySession(ctx, code)
		if err != nil {
			votes = nil
		}
		prefs := Merge(VoteSnapshot{Votes: votes}, SelectionDefaults{})

		tieCtx, cancel := context.WithTimeout(ctx, tieBreakTimeout)
		defer cancel()

		winnerID, reason, err := r.tieBreaker.ResolveTie(tieCtx, tied, prefs)
		if err != nil {
			log.Warn().Err(err).Str("session_code", code).Msg("Tie-break service failed, falling back to random")
		} else {
			for _, c := range tied {
				if c.ID == winnerID {
					return winnerID, reason
				}
			}
			log.Warn().
				Str("session_code", code).
				Str("winner_id", winnerID).
				Msg("Tie-break service chose a restaurant outside the tie, falling back to random")
		}
	}
	return tied[rand.IntN(len(tied))].ID, ReasonRandomTieBreak
}
