package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"commonplate-backend/internal/models"
	"commonplate-backend/internal/testutil"
)

type fakeTieBreaker struct {
	winnerID string
	reason   string
	err      error
	calls    int
}

func (f *fakeTieBreaker) ResolveTie(ctx context.Context, tied []models.Restaurant, prefs models.MergedPreferences) (string, string, error) {
	f.calls++
	return f.winnerID, f.reason, f.err
}

type resolverFixture struct {
	sessions   *testutil.SessionStore
	swipes     *testutil.SwipeStore
	candidates *testutil.CandidateStore
	votes      *testutil.VoteStore
}

func newResolverFixture(t *testing.T, code, ownerID string) resolverFixture {
	t.Helper()
	f := resolverFixture{
		sessions:   testutil.NewSessionStore(),
		swipes:     testutil.NewSwipeStore(),
		candidates: testutil.NewCandidateStore(),
		votes:      testutil.NewVoteStore(),
	}
	ctx := context.Background()
	if _, err := f.sessions.CreateIfAbsent(ctx, &models.Session{Code: code, OwnerID: ownerID, CreatedAt: time.Now()}); err != nil {
		t.Fatalf("failed to seed session: %v", err)
	}
	return f
}

func (f resolverFixture) resolver(tb TieBreaker) *WinnerResolver {
	return NewWinnerResolver(f.sessions, f.swipes, f.candidates, f.votes, tb)
}

func (f resolverFixture) like(t *testing.T, code, restaurantID, voterID string) {
	t.Helper()
	err := f.swipes.Upsert(context.Background(), code, &models.SwipeEvent{
		RestaurantID: restaurantID,
		VoterID:      voterID,
		VoterName:    voterID,
		Direction:    models.DirectionLike,
		SwipedAt:     time.Now(),
	})
	if err != nil {
		t.Fatalf("failed to seed swipe: %v", err)
	}
}

func TestResolveSingleLeaderSkipsTieBreaker(t *testing.T) {
	ctx := context.Background()
	f := newResolverFixture(t, "ABCD", "owner")
	f.candidates.Replace(ctx, "ABCD", []models.Restaurant{{ID: "r1", Name: "Luigi's"}, {ID: "r2", Name: "Sakura"}})
	f.like(t, "ABCD", "r1", "alice")
	f.like(t, "ABCD", "r1", "bob")
	f.like(t, "ABCD", "r2", "carol")

	breaker := &fakeTieBreaker{}
	winner, err := f.resolver(breaker).Resolve(ctx, "ABCD", "owner")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if winner.RestaurantID != "r1" || winner.Reason != ReasonMostVoted || winner.LikeCount != 2 {
		t.Errorf("unexpected winner: %+v", winner)
	}
	if breaker.calls != 0 {
		t.Errorf("tie-breaker must not run for a clear leader, ran %d times", breaker.calls)
	}
}

func TestResolveNoLikesReturnsNoWinner(t *testing.T) {
	ctx := context.Background()
	f := newResolverFixture(t, "ABCD", "owner")
	f.candidates.Replace(ctx, "ABCD", []models.Restaurant{{ID: "r1"}})

	_, err := f.resolver(nil).Resolve(ctx, "ABCD", "owner")
	if !errors.Is(err, ErrNoWinner) {
		t.Errorf("expected ErrNoWinner, got %v", err)
	}
}

func TestResolveNonOwnerRejected(t *testing.T) {
	ctx := context.Background()
	f := newResolverFixture(t, "ABCD", "owner")
	f.candidates.Replace(ctx, "ABCD", []models.Restaurant{{ID: "r1"}})
	f.like(t, "ABCD", "r1", "alice")

	_, err := f.resolver(nil).Resolve(ctx, "ABCD", "alice")
	if !errors.Is(err, ErrNotOwner) {
		t.Errorf("expected ErrNotOwner, got %v", err)
	}
}

func TestResolveTieBreakerFailureFallsBackToRandom(t *testing.T) {
	ctx := context.Background()
	f := newResolverFixture(t, "ABCD", "owner")
	f.candidates.Replace(ctx, "ABCD", []models.Restaurant{{ID: "r1"}, {ID: "r2"}})
	f.like(t, "ABCD", "r1", "alice")
	f.like(t, "ABCD", "r2", "bob")

	breaker := &fakeTieBreaker{err: errors.New("service unavailable")}
	winner, err := f.resolver(breaker).Resolve(ctx, "ABCD", "owner")
	if err != nil {
		t.Fatalf("a tie must never fail to resolve: %v", err)
	}
	if winner.RestaurantID != "r1" && winner.RestaurantID != "r2" {
		t.Errorf("random fallback picked a non-tied restaurant: %q", winner.RestaurantID)
	}
	if winner.Reason != ReasonRandomTieBreak {
		t.Errorf("expected random tie-break reason, got %q", winner.Reason)
	}
	if breaker.calls != 1 {
		t.Errorf("expected exactly one tie-break attempt, got %d", breaker.calls)
	}
}

func TestResolveTieBreakerAnswerOutsideTieFallsBackToRandom(t *testing.T) {
	ctx := context.Background()
	f := newResolverFixture(t, "ABCD", "owner")
	f.candidates.Replace(ctx, "ABCD", []models.Restaurant{{ID: "r1"}, {ID: "r2"}, {ID: "r3"}})
	f.like(t, "ABCD", "r1", "alice")
	f.like(t, "ABCD", "r2", "bob")

	breaker := &fakeTieBreaker{winnerID: "r3", reason: "hallucinated"}
	winner, err := f.resolver(breaker).Resolve(ctx, "ABCD", "owner")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if winner.RestaurantID == "r3" {
		t.Error("winner must be one of the tied restaurants")
	}
	if winner.Reason != ReasonRandomTieBreak {
		t.Errorf("expected random tie-break reason, got %q", winner.Reason)
	}
}

func TestResolveTieBreakerValidAnswerAccepted(t *testing.T) {
	ctx := context.Background()
	f := newResolverFixture(t, "ABCD", "owner")
	f.candidates.Replace(ctx, "ABCD", []models.Restaurant{{ID: "r1"}, {ID: "r2"}})
	f.like(t, "ABCD", "r1", "alice")
	f.like(t, "ABCD", "r2", "bob")

	breaker := &fakeTieBreaker{winnerID: "r2", reason: "Closest match to the group's vibe"}
	winner, err := f.resolver(breaker).Resolve(ctx, "ABCD", "owner")
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if winner.RestaurantID != "r2" || winner.Reason != "Closest match to the group's vibe" {
		t.Errorf("tie-breaker answer not honored: %+v", winner)
	}
}

func TestResolveIsIdempotent(t *testing.T) {
	ctx := context.Background()
	f := newResolverFixture(t, "ABCD", "owner")
	f.candidates.Replace(ctx, "ABCD", []models.Restaurant{{ID: "r1"}, {ID: "r2"}})
	f.like(t, "ABCD", "r1", "alice")

	resolver := f.resolver(nil)
	first, err := resolver.Resolve(ctx, "ABCD", "owner")
	if err != nil {
		t.Fatalf("first resolve failed: %v", err)
	}

	// later likes must not change the stored decision
	f.like(t, "ABCD", "r2", "bob")
	f.like(t, "ABCD", "r2", "carol")

	second, err := resolver.Resolve(ctx, "ABCD", "owner")
	if err != nil {
		t.Fatalf("second resolve failed: %v", err)
	}
	if *second != *first {
		t.Errorf("resolve not idempotent: %+v then %+v", first, second)
	}

	// a stored winner is readable by non-owners too
	third, err := resolver.Resolve(ctx, "ABCD", "alice")
	if err != nil {
		t.Fatalf("non-owner read of stored winner failed: %v", err)
	}
	if *third != *first {
		t.Errorf("stored winner differs for non-owner: %+v", third)
	}
}
