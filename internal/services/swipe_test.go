package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"commonplate-backend/internal/models"
	"commonplate-backend/internal/testutil"
)

type swipeFixture struct {
	sessions   *SessionService
	swipes     *SwipeService
	activities *testutil.ActivityStore
}

func newSwipeFixture(t *testing.T) swipeFixture {
	t.Helper()
	sessions := testutil.NewSessionStore()
	participants := testutil.NewParticipantStore()
	swipes := testutil.NewSwipeStore()
	candidates := testutil.NewCandidateStore()
	activities := testutil.NewActivityStore()
	return swipeFixture{
		sessions:   NewSessionService(sessions, participants, testutil.NewVoteStore(), swipes, candidates, activities),
		swipes:     NewSwipeService(sessions, swipes, candidates, participants, activities),
		activities: activities,
	}
}

func (f swipeFixture) setup(t *testing.T) {
	t.Helper()
	ctx := context.Background()
	if _, err := f.sessions.Join(ctx, "ABCD", "u1", "Alice"); err != nil {
		t.Fatalf("join failed: %v", err)
	}
	if _, err := f.sessions.Lock(ctx, "ABCD", "u1"); err != nil {
		t.Fatalf("lock failed: %v", err)
	}
	err := f.sessions.SetCandidates(ctx, "ABCD", "u1", []models.Restaurant{{ID: "r1", Name: "Luigi's"}})
	if err != nil {
		t.Fatalf("set candidates failed: %v", err)
	}
}

func TestSwipeSupersedesInEitherDirection(t *testing.T) {
	ctx := context.Background()
	f := newSwipeFixture(t)
	f.setup(t)

	steps := []struct {
		direction models.SwipeDirection
		wantLikes int
	}{
		{models.DirectionLike, 1},
		{models.DirectionDislike, 0},
		{models.DirectionLike, 1},
	}
	for i, step := range steps {
		if err := f.swipes.Record(ctx, "ABCD", "r1", step.direction, "u1", "Alice"); err != nil {
			t.Fatalf("swipe %d failed: %v", i, err)
		}
		snapshot, err := f.swipes.Snapshot(ctx, "ABCD")
		if err != nil {
			t.Fatalf("snapshot failed: %v", err)
		}
		if got := snapshot.LikeCount("r1"); got != step.wantLikes {
			t.Errorf("after swipe %d (%s): expected %d likes, got %d", i, step.direction, step.wantLikes, got)
		}
		if len(snapshot.Swipes) != 1 {
			t.Errorf("after swipe %d: ledger must hold one row per voter per restaurant, got %d", i, len(snapshot.Swipes))
		}
	}
}

func TestSwipeValidation(t *testing.T) {
	ctx := context.Background()
	f := newSwipeFixture(t)
	f.setup(t)

	if err := f.swipes.Record(ctx, "ABCD", "r1", "meh", "u1", "Alice"); !errors.Is(err, ErrInvalidDirection) {
		t.Errorf("expected ErrInvalidDirection, got %v", err)
	}
	if err := f.swipes.Record(ctx, "ABCD", "", models.DirectionLike, "u1", "Alice"); err == nil {
		t.Error("expected error for empty restaurant id")
	}
}

func TestSwipeMissingSessionIsNoOp(t *testing.T) {
	ctx := context.Background()
	f := newSwipeFixture(t)

	if err := f.swipes.Record(ctx, "ZZZZ", "r1", models.DirectionLike, "u1", "Alice"); err != nil {
		t.Errorf("swipe into missing session must degrade quietly, got %v", err)
	}
}

func TestOnlyLikesReachTheFeed(t *testing.T) {
	ctx := context.Background()
	f := newSwipeFixture(t)
	f.setup(t)

	f.swipes.Record(ctx, "ABCD", "r1", models.DirectionDislike, "u1", "Alice")
	activities, _ := f.activities.List(ctx, "ABCD")
	for _, a := range activities {
		if a.Type == models.ActivityLike {
			t.Errorf("dislike produced a feed entry: %+v", a)
		}
	}

	f.swipes.Record(ctx, "ABCD", "r1", models.DirectionLike, "u1", "Alice")
	activities, _ = f.activities.List(ctx, "ABCD")
	found := false
	for _, a := range activities {
		if a.Type == models.ActivityLike {
			found = true
			if !strings.Contains(a.Message, "Luigi's") {
				t.Errorf("feed entry should name the restaurant: %q", a.Message)
			}
		}
	}
	if !found {
		t.Error("like produced no feed entry")
	}
}
