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

// SwipeService is the swipe ledger: a voter's most recent swipe on a
// restaurant is authoritative, in either direction.
type SwipeService struct {
	sessions     SessionStore
	swipes       SwipeStore
	candidates   CandidateStore
	participants ParticipantStore
	activities   ActivityStore
}

// NewSwipeService creates a new swipe service
func NewSwipeService(sessions SessionStore, swipes SwipeStore, candidates CandidateStore, participants ParticipantStore, activities ActivityStore) *SwipeService {
	return &SwipeService{
		sessions:     sessions,
		swipes:       swipes,
		candidates:   candidates,
		participants: participants,
		activities:   activities,
	}
}

// Record stores a swipe, superseding any earlier swipe by the same voter on
// the same restaurant. A swipe into a missing session is a no-op, matching
// the vote ledger's bootstrap behavior.
func (s *SwipeService) Record(ctx context.Context, code, restaurantID string, direction models.SwipeDirection, voterID, voterName string) error {
	code = NormalizeCode(code)
	if direction != models.DirectionLike && direction != models.DirectionDislike {
		return ErrInvalidDirection
	}
	if restaurantID == "" {
		return fmt.Errorf("restaurant id is required")
	}
	if voterID == "" {
		return fmt.Errorf("voter id is required")
	}

	if _, err := s.sessions.GetByCode(ctx, code); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			log.Debug().Str("session_code", code).Msg("Swipe for missing session dropped")
			return nil
		}
		return err
	}

	color := ""
	if p := findByID(ctx, s.participants, code, voterID); p != nil {
		if voterName == "" {
			voterName = p.Name
		}
		color = p.Color
	}

	swipe := &models.SwipeEvent{
		RestaurantID: restaurantID,
		VoterID:      voterID,
		VoterName:    voterName,
		Direction:    direction,
		SwipedAt:     time.Now(),
	}
	if err := s.swipes.Upsert(ctx, code, swipe); err != nil {
		return err
	}

	if direction == models.DirectionLike {
		appendActivity(ctx, s.activities, code, &models.Activity{
			Type:       models.ActivityLike,
			ActorName:  voterName,
			ActorColor: color,
			Message:    fmt.Sprintf("%s liked %s", voterName, s.restaurantName(ctx, code, restaurantID)),
		})
	}
	return nil
}

// Snapshot returns the current swipe ledger for a session
func (s *SwipeService) Snapshot(ctx context.Context, code string) (SwipeSnapshot, error) {
	swipes, err := s.swipes.ListBySession(ctx, NormalizeCode(code))
	if err != nil {
		return SwipeSnapshot{}, err
	}
	return SwipeSnapshot{Swipes: swipes}, nil
}

// restaurantName resolves a candidate's display name for the feed,
// falling back to the raw id when the candidate list has no match.
func (s *SwipeService) restaurantName(ctx context.Context, code, restaurantID string) string {
	candidates, err := s.candidates.List(ctx, code)
	if err != nil {
		return restaurantID
	}
	for _, c := range candidates {
		if c.ID == restaurantID {
			return c.Name
		}
	}
	return restaurantID
}

// SwipeSnapshot is a point-in-time view of the swipe ledger
type SwipeSnapshot struct {
	Swipes []models.SwipeEvent
}

// LikeCount returns how many voters currently like the restaurant
func (s SwipeSnapshot) LikeCount(restaurantID string) int {
	count := 0
	for _, sw := range s.Swipes {
		if sw.RestaurantID == restaurantID && sw.Direction == models.DirectionLike {
			count++
		}
	}
	return count
}

// Likers returns the names of the restaurant's current likers in swipe order
func (s SwipeSnapshot) Likers(restaurantID string) []string {
	var names []string
	for _, sw := range s.Swipes {
		if sw.RestaurantID == restaurantID && sw.Direction == models.DirectionLike {
			names = append(names, sw.VoterName)
		}
	}
	return names
}
