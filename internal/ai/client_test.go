package ai

import "testing"

func TestStripFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"bare json", `{"winner_id": "r1"}`, `{"winner_id": "r1"}`},
		{"json fence", "```json\n{\"winner_id\": \"r1\"}\n```", `{"winner_id": "r1"}`},
		{"plain fence", "```\n{\"winner_id\": \"r1\"}\n```", `{"winner_id": "r1"}`},
		{"surrounding whitespace", "  \n{\"a\":1}\n ", `{"a":1}`},
		{"fence with trailing newline", "```json\n{}\n```\n", `{}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := stripFences(tt.in); got != tt.want {
				t.Errorf("stripFences(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestSanitizeGuessDropsOutOfVocabularyValues(t *testing.T) {
	guess := sanitizeGuess(PreferenceGuess{
		Cuisine: "Klingon",
		Budget:  "$$",
		Vibe:    "sweaty",
		Dietary: "Vegan",
	})

	if guess.Cuisine != "" {
		t.Errorf("out-of-vocabulary cuisine kept: %q", guess.Cuisine)
	}
	if guess.Vibe != "" {
		t.Errorf("out-of-vocabulary vibe kept: %q", guess.Vibe)
	}
	if guess.Budget != "$$" || guess.Dietary != "Vegan" {
		t.Errorf("valid values dropped: %+v", guess)
	}
}

func TestSanitizeGuessKeepsEmptyFieldsEmpty(t *testing.T) {
	if got := sanitizeGuess(PreferenceGuess{}); got != (PreferenceGuess{}) {
		t.Errorf("empty guess mutated: %+v", got)
	}
}

func TestOrAny(t *testing.T) {
	if got := orAny(""); got != "Any" {
		t.Errorf(`orAny("") = %q`, got)
	}
	if got := orAny("Italian"); got != "Italian" {
		t.Errorf(`orAny("Italian") = %q`, got)
	}
}
