package services

import (
	"reflect"
	"testing"
	"time"

	"commonplate-backend/internal/models"
)

func ballot(category models.Category, option, voter string) models.Vote {
	return models.Vote{
		Category:  category,
		Option:    option,
		VoterID:   voter,
		VoterName: voter,
		CastAt:    time.Now(),
	}
}

func TestMergeBudgetTiePicksCheapest(t *testing.T) {
	snapshot := VoteSnapshot{Votes: []models.Vote{
		ballot(models.CategoryBudget, "$", "alice"),
		ballot(models.CategoryBudget, "$", "bob"),
		ballot(models.CategoryBudget, "$$", "carol"),
		ballot(models.CategoryBudget, "$$", "dave"),
	}}

	got := Merge(snapshot, SelectionDefaults{}).Budget
	if got.Value != "$" {
		t.Errorf("expected cheapest tied budget $, got %q", got.Value)
	}
	if !got.Tied {
		t.Error("expected tie to be flagged")
	}
	if !reflect.DeepEqual(got.TiedOptions, []string{"$", "$$"}) {
		t.Errorf("unexpected tied options: %v", got.TiedOptions)
	}
}

func TestMergeBudgetClearLeader(t *testing.T) {
	snapshot := VoteSnapshot{Votes: []models.Vote{
		ballot(models.CategoryBudget, "$$$", "alice"),
		ballot(models.CategoryBudget, "$$$", "bob"),
		ballot(models.CategoryBudget, "$", "carol"),
	}}

	got := Merge(snapshot, SelectionDefaults{}).Budget
	if got.Value != "$$$" {
		t.Errorf("expected $$$, got %q", got.Value)
	}
	if got.Tied || got.TiedOptions != nil {
		t.Errorf("no tie expected, got %+v", got)
	}
}

func TestMergeCuisineTieJoinsLeaders(t *testing.T) {
	snapshot := VoteSnapshot{Votes: []models.Vote{
		ballot(models.CategoryCuisine, "Japanese", "alice"),
		ballot(models.CategoryCuisine, "Italian", "bob"),
	}}

	got := Merge(snapshot, SelectionDefaults{}).Cuisine
	// tied leaders join in vocabulary order
	if got.Value != "Italian Japanese" {
		t.Errorf("expected joined phrase, got %q", got.Value)
	}
	if !got.Tied {
		t.Error("expected tie to be flagged")
	}
}

func TestMergeDietaryStrictestWinsRegardlessOfCounts(t *testing.T) {
	snapshot := VoteSnapshot{Votes: []models.Vote{
		ballot(models.CategoryDietary, "None", "alice"),
		ballot(models.CategoryDietary, "None", "bob"),
		ballot(models.CategoryDietary, "None", "carol"),
		ballot(models.CategoryDietary, "Vegan", "dave"),
	}}

	got := Merge(snapshot, SelectionDefaults{}).Dietary
	if got.Value != "Vegan" {
		t.Errorf("expected Vegan to win despite fewer votes, got %q", got.Value)
	}
}

func TestMergeDietaryVegetarianBeatsHalal(t *testing.T) {
	snapshot := VoteSnapshot{Votes: []models.Vote{
		ballot(models.CategoryDietary, "Halal", "alice"),
		ballot(models.CategoryDietary, "Vegetarian", "bob"),
	}}

	got := Merge(snapshot, SelectionDefaults{}).Dietary
	if got.Value != "Vegetarian" {
		t.Errorf("expected Vegetarian, got %q", got.Value)
	}
}

func TestMergeDistanceTiePicksLargest(t *testing.T) {
	snapshot := VoteSnapshot{Votes: []models.Vote{
		ballot(models.CategoryDistance, "1 mi", "alice"),
		ballot(models.CategoryDistance, "1 mi", "bob"),
		ballot(models.CategoryDistance, "1 mi", "carol"),
		ballot(models.CategoryDistance, "5 mi", "dave"),
		ballot(models.CategoryDistance, "5 mi", "erin"),
		ballot(models.CategoryDistance, "5 mi", "frank"),
	}}

	got := Merge(snapshot, SelectionDefaults{}).Distance
	if got.Value != "5 mi" {
		t.Errorf("expected largest tied distance 5 mi, got %q", got.Value)
	}
	if !got.Tied {
		t.Error("expected tie to be flagged")
	}
}

func TestMergeFallsBackToDefaults(t *testing.T) {
	defaults := SelectionDefaults{
		Budget:   "$$",
		Cuisine:  "Thai",
		Vibe:     "Cozy",
		Dietary:  "Vegan",
		Distance: "2 mi",
	}

	got := Merge(VoteSnapshot{}, defaults)
	if got.Budget.Value != "$$" || got.Cuisine.Value != "Thai" ||
		got.Vibe.Value != "Cozy" || got.Dietary.Value != "Vegan" ||
		got.Distance.Value != "2 mi" {
		t.Errorf("defaults not applied: %+v", got)
	}
}

func TestMergeRejectsOutOfVocabularyDefaults(t *testing.T) {
	got := Merge(VoteSnapshot{}, SelectionDefaults{Cuisine: "Martian", Budget: "free"})
	if got.Cuisine.Value != "" || got.Budget.Value != "" {
		t.Errorf("out-of-vocabulary defaults must be dropped, got %+v", got)
	}
}

func TestMergeIsDeterministic(t *testing.T) {
	snapshot := VoteSnapshot{Votes: []models.Vote{
		ballot(models.CategoryCuisine, "Korean", "alice"),
		ballot(models.CategoryCuisine, "Mexican", "bob"),
		ballot(models.CategoryVibe, "Lively", "alice"),
		ballot(models.CategoryVibe, "Trendy", "bob"),
		ballot(models.CategoryBudget, "$$", "alice"),
	}}

	first := Merge(snapshot, SelectionDefaults{})
	for i := 0; i < 50; i++ {
		if got := Merge(snapshot, SelectionDefaults{}); !reflect.DeepEqual(got, first) {
			t.Fatalf("merge is not deterministic: %+v vs %+v", got, first)
		}
	}
}

func TestSearchPhraseSkipsNoneDietary(t *testing.T) {
	merged := models.MergedPreferences{
		Cuisine: models.CategoryResult{Value: "Italian"},
		Vibe:    models.CategoryResult{Value: "Casual"},
		Dietary: models.CategoryResult{Value: "None"},
	}
	if got := merged.SearchPhrase(); got != "Italian Casual" {
		t.Errorf("expected %q, got %q", "Italian Casual", got)
	}

	merged.Dietary.Value = "Vegan"
	if got := merged.SearchPhrase(); got != "Italian Casual Vegan" {
		t.Errorf("expected %q, got %q", "Italian Casual Vegan", got)
	}
}
