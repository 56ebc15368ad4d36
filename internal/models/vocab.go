package models

import "strings"

// Category is one of the five fixed preference dimensions.
type Category string

const (
	CategoryBudget   Category = "budget"
	CategoryCuisine  Category = "cuisine"
	CategoryVibe     Category = "vibe"
	CategoryDietary  Category = "dietary"
	CategoryDistance Category = "distance"
)

// Categories lists the closed set of preference categories.
var Categories = []Category{
	CategoryBudget,
	CategoryCuisine,
	CategoryVibe,
	CategoryDietary,
	CategoryDistance,
}

// Fixed option vocabularies per category. Ordering matters:
//   - BudgetOptions are ordered cheapest first
//   - DietaryPriority is ordered most restrictive first
//   - DistanceOptions are ordered smallest radius first
var (
	BudgetOptions = []string{"$", "$$", "$$$", "$$$$"}

	CuisineOptions = []string{
		"Italian", "Japanese", "Mexican", "Chinese", "Indian",
		"Thai", "American", "Mediterranean", "Korean", "Vietnamese",
	}

	VibeOptions = []string{
		"Casual", "Fine Dining", "Trendy", "Cozy",
		"Lively", "Romantic", "Family-Friendly",
	}

	DietaryOptions = []string{
		"None", "Vegetarian", "Vegan", "Gluten-Free", "Halal", "Kosher",
	}

	// DietaryPriority orders dietary requirements most restrictive first.
	// A single unmet dietary restriction excludes a participant entirely,
	// so the merge always honors the strictest one that received a vote.
	DietaryPriority = []string{
		"Vegan", "Vegetarian", "Gluten-Free", "Halal", "Kosher", "None",
	}

	DistanceOptions = []string{"0.5 mi", "1 mi", "2 mi", "5 mi", "10 mi"}
)

// distanceMeters maps each distance option to a search radius in meters.
var distanceMeters = map[string]int{
	"0.5 mi": 805,
	"1 mi":   1609,
	"2 mi":   3219,
	"5 mi":   8047,
	"10 mi":  16093,
}

// OptionsFor returns the fixed vocabulary for a category, or nil for an
// unknown category.
func OptionsFor(category Category) []string {
	switch category {
	case CategoryBudget:
		return BudgetOptions
	case CategoryCuisine:
		return CuisineOptions
	case CategoryVibe:
		return VibeOptions
	case CategoryDietary:
		return DietaryOptions
	case CategoryDistance:
		return DistanceOptions
	default:
		return nil
	}
}

// ValidCategory reports whether category is one of the five fixed categories.
func ValidCategory(category Category) bool {
	return OptionsFor(category) != nil
}

// ValidOption reports whether option is part of the category's fixed
// vocabulary. Values outside the vocabulary are rejected at the boundary
// rather than stored.
func ValidOption(category Category, option string) bool {
	for _, o := range OptionsFor(category) {
		if o == option {
			return true
		}
	}
	return false
}

// RadiusMeters converts a distance option into a search radius in meters.
// Unknown values fall back to the largest radius so a bad value never
// shrinks the search area.
func RadiusMeters(distance string) int {
	if m, ok := distanceMeters[distance]; ok {
		return m
	}
	return distanceMeters[DistanceOptions[len(DistanceOptions)-1]]
}

// ParticipantPalette is the fixed set of display colors assigned at join.
var ParticipantPalette = []string{
	"#EF4444", "#F59E0B", "#10B981", "#3B82F6",
	"#8B5CF6", "#EC4899", "#14B8A6", "#F97316",
}

// SearchPhrase builds the canonical directory search phrase by joining the
// non-empty cuisine, vibe and dietary values with spaces. A dietary value
// of "None" carries no search meaning and is skipped.
func (m MergedPreferences) SearchPhrase() string {
	parts := make([]string, 0, 3)
	if m.Cuisine.Value != "" {
		parts = append(parts, m.Cuisine.Value)
	}
	if m.Vibe.Value != "" {
		parts = append(parts, m.Vibe.Value)
	}
	if m.Dietary.Value != "" && m.Dietary.Value != "None" {
		parts = append(parts, m.Dietary.Value)
	}
	return strings.Join(parts, " ")
}
