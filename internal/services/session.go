package services

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"time"

	"commonplate-backend/internal/models"
	"commonplate-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	codeLength = 4
	codeChars  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	// maxCodeAttempts bounds regeneration when a freshly generated code
	// collides with an existing session.
	maxCodeAttempts = 10
)

// SessionService handles session lifecycle and snapshot assembly
type SessionService struct {
	sessions     SessionStore
	participants ParticipantStore
	votes        VoteStore
	swipes       SwipeStore
	candidates   CandidateStore
	activities   ActivityStore
}

// NewSessionService creates a new session service
func NewSessionService(
	sessions SessionStore,
	participants ParticipantStore,
	votes VoteStore,
	swipes SwipeStore,
	candidates CandidateStore,
	activities ActivityStore,
) *SessionService {
	return &SessionService{
		sessions:     sessions,
		participants: participants,
		votes:        votes,
		swipes:       swipes,
		candidates:   candidates,
		activities:   activities,
	}
}

// NormalizeCode canonicalizes a join code. Codes are matched
// case-insensitively but stored uppercase.
func NormalizeCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}

// GenerateUniqueCode generates a short shareable session code that is not
// in use yet, regenerating on collision up to a bounded number of attempts.
func (s *SessionService) GenerateUniqueCode(ctx context.Context) (string, error) {
	for i := 0; i < maxCodeAttempts; i++ {
		code := generateCode()
		exists, err := s.sessions.CodeExists(ctx, code)
		if err != nil {
			return "", fmt.Errorf("failed to check code existence: %w", err)
		}
		if !exists {
			return code, nil
		}
	}
	return "", fmt.Errorf("failed to generate unique code after %d attempts", maxCodeAttempts)
}

// generateCode generates a random session code
func generateCode() string {
	code := make([]byte, codeLength)
	for i := range code {
		n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(codeChars))))
		code[i] = codeChars[n.Int64()]
	}
	return string(code)
}

// Join registers the user into the session, creating the session first if
// the code is not in use. Whoever lands the creating insert becomes the
// owner. Re-joining with the same id is idempotent.
func (s *SessionService) Join(ctx context.Context, code, userID, name string) (*models.SessionSnapshot, error) {
	code = NormalizeCode(code)
	if len(code) != codeLength {
		return nil, ErrInvalidCode
	}
	if userID == "" {
		return nil, fmt.Errorf("user id is required")
	}
	name = strings.TrimSpace(name)
	if len(name) < 2 {
		return nil, ErrInvalidName
	}

	now := time.Now()
	created, err := s.sessions.CreateIfAbsent(ctx, &models.Session{
		Code:      code,
		OwnerID:   userID,
		CreatedAt: now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	if created {
		log.Info().Str("session_code", code).Str("owner_id", userID).Msg("Session created")
	}

	participant := &models.Participant{
		ID:       userID,
		Name:     name,
		Color:    randomColor(),
		JoinedAt: now,
	}
	if err := s.participants.Upsert(ctx, code, participant); err != nil {
		return nil, fmt.Errorf("failed to join session: %w", err)
	}

	appendActivity(ctx, s.activities, code, &models.Activity{
		Type:       models.ActivityJoin,
		ActorName:  name,
		ActorColor: participant.Color,
		Message:    name + " joined the session",
	})

	return s.Snapshot(ctx, code)
}

// Leave removes the user from the session's user set. Their past votes and
// swipes stay in the ledgers and keep counting.
func (s *SessionService) Leave(ctx context.Context, code, userID string) error {
	return s.participants.Remove(ctx, NormalizeCode(code), userID)
}

// Lock finalizes the session's preferences. Only the owner may lock, the
// transition happens once, and repeated lock calls are harmless no-ops.
func (s *SessionService) Lock(ctx context.Context, code, userID string) (*models.Session, error) {
	code = NormalizeCode(code)
	session, err := s.get(ctx, code)
	if err != nil {
		return nil, err
	}
	if session.OwnerID != userID {
		return nil, ErrNotOwner
	}

	changed, err := s.sessions.Lock(ctx, code)
	if err != nil {
		return nil, err
	}
	if changed {
		session.Locked = true
		if owner := findByID(ctx, s.participants, code, userID); owner != nil {
			appendActivity(ctx, s.activities, code, &models.Activity{
				Type:       models.ActivityReady,
				ActorName:  owner.Name,
				ActorColor: owner.Color,
				Message:    owner.Name + " locked in the group preferences",
			})
		}
	}
	return session, nil
}

// SetCandidates replaces the candidate list wholesale. Only the owner may
// populate candidates, and only after preferences are locked.
func (s *SessionService) SetCandidates(ctx context.Context, code, userID string, candidates []models.Restaurant) error {
	code = NormalizeCode(code)
	session, err := s.get(ctx, code)
	if err != nil {
		return err
	}
	if session.OwnerID != userID {
		return ErrNotOwner
	}
	if !session.Locked {
		return ErrSessionNotLocked
	}
	return s.candidates.Replace(ctx, code, candidates)
}

// Snapshot assembles the full session document for clients
func (s *SessionService) Snapshot(ctx context.Context, code string) (*models.SessionSnapshot, error) {
	code = NormalizeCode(code)
	session, err := s.get(ctx, code)
	if err != nil {
		return nil, err
	}
	participants, err := s.participants.List(ctx, code)
	if err != nil {
		return nil, err
	}
	votes, err := s.votes.ListBySession(ctx, code)
	if err != nil {
		return nil, err
	}
	candidates, err := s.candidates.List(ctx, code)
	if err != nil {
		return nil, err
	}
	swipes, err := s.swipes.ListBySession(ctx, code)
	if err != nil {
		return nil, err
	}
	return &models.SessionSnapshot{
		Session:      *session,
		Participants: participants,
		Votes:        votes,
		Candidates:   candidates,
		Swipes:       swipes,
	}, nil
}

// Participants returns the session's current user set
func (s *SessionService) Participants(ctx context.Context, code string) ([]models.Participant, error) {
	return s.participants.List(ctx, NormalizeCode(code))
}

// Activity returns the session feed ordered by timestamp ascending.
// Store insertion order is not trusted across concurrent writers, so the
// feed is re-sorted before display regardless of arrival order.
func (s *SessionService) Activity(ctx context.Context, code string) ([]models.Activity, error) {
	activities, err := s.activities.List(ctx, NormalizeCode(code))
	if err != nil {
		return nil, err
	}
	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].CreatedAt.Before(activities[j].CreatedAt)
	})
	return activities, nil
}

// get loads a session, mapping a missing row to ErrSessionNotFound
func (s *SessionService) get(ctx context.Context, code string) (*models.Session, error) {
	session, err := s.sessions.GetByCode(ctx, code)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return session, nil
}

// appendActivity writes a feed entry. The feed is display-only, so a
// failed append is logged and swallowed rather than failing the operation
// that produced it.
func appendActivity(ctx context.Context, store ActivityStore, code string, activity *models.Activity) {
	activity.ID = uuid.New().String()
	if activity.CreatedAt.IsZero() {
		activity.CreatedAt = time.Now()
	}
	if err := store.Append(ctx, code, activity); err != nil {
		log.Error().Err(err).Str("session_code", code).Msg("Failed to append activity")
	}
}

// randomColor picks a display color from the fixed palette
func randomColor() string {
	n, _ := rand.Int(rand.Reader, big.NewInt(int64(len(models.ParticipantPalette))))
	return models.ParticipantPalette[n.Int64()]
}
