package services

import (
	"strings"

	"commonplate-backend/internal/models"
)

// SelectionDefaults carries the requesting client's own locally-selected
// but unvoted choices. A category with zero votes falls back to these.
type SelectionDefaults struct {
	Budget   string `json:"budget"`
	Cuisine  string `json:"cuisine"`
	Vibe     string `json:"vibe"`
	Dietary  string `json:"dietary"`
	Distance string `json:"distance"`
}

// Merge turns the vote ledger into one canonical preference set. It is a
// pure function of its inputs: no I/O, no clock, no randomness.
//
// Per-category policy:
//   - budget: cheapest among the options tied for most votes
//   - cuisine, vibe: all tied leaders, joined into one phrase
//   - dietary: the most restrictive requirement with at least one vote,
//     regardless of vote counts
//   - distance: largest radius among the tied leaders
//
// Categories with no votes fall back to the caller's defaults, validated
// against the vocabulary (anything else is treated as no opinion).
func Merge(snapshot VoteSnapshot, defaults SelectionDefaults) models.MergedPreferences {
	return models.MergedPreferences{
		Budget:   mergeBudget(snapshot, defaults.Budget),
		Cuisine:  mergeConcat(snapshot, models.CategoryCuisine, defaults.Cuisine),
		Vibe:     mergeConcat(snapshot, models.CategoryVibe, defaults.Vibe),
		Dietary:  mergeDietary(snapshot, defaults.Dietary),
		Distance: mergeDistance(snapshot, defaults.Distance),
	}
}

// leaders returns the options tied for the maximum non-zero vote count,
// in vocabulary order so the result is deterministic.
func leaders(tally map[string]int, vocabulary []string) []string {
	max := 0
	for _, count := range tally {
		if count > max {
			max = count
		}
	}
	if max == 0 {
		return nil
	}
	var tied []string
	for _, option := range vocabulary {
		if tally[option] == max {
			tied = append(tied, option)
		}
	}
	return tied
}

func fallback(category models.Category, def string) models.CategoryResult {
	if !models.ValidOption(category, def) {
		def = ""
	}
	return models.CategoryResult{Value: def}
}

func mergeBudget(snapshot VoteSnapshot, def string) models.CategoryResult {
	tied := leaders(snapshot.Tally(models.CategoryBudget), models.BudgetOptions)
	if len(tied) == 0 {
		return fallback(models.CategoryBudget, def)
	}
	// BudgetOptions are ordered cheapest first, so the first tied leader
	// is the one that prices nobody out.
	return models.CategoryResult{
		Value:       tied[0],
		Tied:        len(tied) > 1,
		TiedOptions: tiedOrNil(tied),
	}
}

func mergeConcat(snapshot VoteSnapshot, category models.Category, def string) models.CategoryResult {
	tied := leaders(snapshot.Tally(category), models.OptionsFor(category))
	if len(tied) == 0 {
		return fallback(category, def)
	}
	// All tied leaders go into the search phrase: broaden the results
	// rather than exclude a faction.
	return models.CategoryResult{
		Value:       strings.Join(tied, " "),
		Tied:        len(tied) > 1,
		TiedOptions: tiedOrNil(tied),
	}
}

func mergeDietary(snapshot VoteSnapshot, def string) models.CategoryResult {
	tally := snapshot.Tally(models.CategoryDietary)
	tied := leaders(tally, models.DietaryOptions)
	if len(tied) == 0 {
		return fallback(models.CategoryDietary, def)
	}
	// Vote counts do not matter here: a single unmet dietary restriction
	// excludes a participant entirely, so the strictest voted requirement
	// wins outright.
	for _, option := range models.DietaryPriority {
		if tally[option] > 0 {
			return models.CategoryResult{
				Value:       option,
				Tied:        len(tied) > 1,
				TiedOptions: tiedOrNil(tied),
			}
		}
	}
	return fallback(models.CategoryDietary, def)
}

func mergeDistance(snapshot VoteSnapshot, def string) models.CategoryResult {
	tied := leaders(snapshot.Tally(models.CategoryDistance), models.DistanceOptions)
	if len(tied) == 0 {
		return fallback(models.CategoryDistance, def)
	}
	// DistanceOptions are ordered smallest first; the last tied leader is
	// the radius that still covers the farthest-voting participant.
	return models.CategoryResult{
		Value:       tied[len(tied)-1],
		Tied:        len(tied) > 1,
		TiedOptions: tiedOrNil(tied),
	}
}

func tiedOrNil(tied []string) []string {
	if len(tied) > 1 {
		return tied
	}
	return nil
}
