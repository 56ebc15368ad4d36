// Package ai holds the clients for the tie-break and preference extraction
// services. Both are best-effort: callers neutralize every error at the
// point of call and the group never waits on them for a decision.
package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"commonplate-backend/internal/models"

	openai "github.com/sashabaranov/go-openai"
)

const defaultModel = openai.GPT4oMini

// Client talks to the chat-completion backed reasoning services
type Client struct {
	api   *openai.Client
	model string
}

// NewClient creates a new AI client
func NewClient(apiKey, model string) *Client {
	if model == "" {
		model = defaultModel
	}
	return &Client{
		api:   openai.NewClient(apiKey),
		model: model,
	}
}

// ResolveTie asks the reasoning service to choose one winner among the tied
// candidates given the group's merged preferences. The returned id is not
// trusted here; the resolver checks it against the tied set itself.
func (c *Client) ResolveTie(ctx context.Context, tied []models.Restaurant, prefs models.MergedPreferences) (string, string, error) {
	var candidates strings.Builder
	for _, r := range tied {
		fmt.Fprintf(&candidates, "- id: %s, name: %s, rating: %.1f, price: %s, reviews: %d, categories: %s\n",
			r.ID, r.Name, r.Rating, r.Price, r.ReviewCount, strings.Join(r.Categories, "/"))
	}

	prompt := fmt.Sprintf(`Help resolve a tie between restaurants for a group dinner.

Group preferences:
- Cuisine: %s
- Budget: %s
- Vibe: %s
- Dietary: %s

Candidates (tied for most votes):
%s
Pick the single restaurant that best fits the group preferences; if the fit
is equal, prefer the better rating and review count. Respond with JSON only:
{"winner_id": "<id of the winner>", "reason": "<one short, fun sentence>"}`,
		orAny(prefs.Cuisine.Value), orAny(prefs.Budget.Value),
		orAny(prefs.Vibe.Value), orAny(prefs.Dietary.Value), candidates.String())

	content, err := c.complete(ctx, prompt)
	if err != nil {
		return "", "", err
	}

	var decision struct {
		WinnerID string `json:"winner_id"`
		Reason   string `json:"reason"`
	}
	if err := json.Unmarshal([]byte(stripFences(content)), &decision); err != nil {
		return "", "", fmt.Errorf("failed to parse tie-break response: %w", err)
	}
	if decision.WinnerID == "" {
		return "", "", fmt.Errorf("tie-break response contained no winner")
	}
	return decision.WinnerID, decision.Reason, nil
}

// PreferenceGuess is the structured result of preference extraction.
// Fields the service did not detect are empty.
type PreferenceGuess struct {
	Cuisine string `json:"cuisine,omitempty"`
	Budget  string `json:"budget,omitempty"`
	Vibe    string `json:"vibe,omitempty"`
	Dietary string `json:"dietary,omitempty"`
}

// ExtractPreferences turns a free-text utterance into a structured guess.
// The service is told the exact vocabularies and asked to map synonyms onto
// them ("sushi" → Japanese, "cheap" → $); anything it returns outside the
// vocabularies is dropped here, so only canonical options ever reach the
// vote ledger.
func (c *Client) ExtractPreferences(ctx context.Context, utterance string) (PreferenceGuess, error) {
	prompt := fmt.Sprintf(`Extract restaurant preferences from this message. Only
extract what is explicitly mentioned; leave everything else out.

Message: %q

Map synonyms onto these exact vocabularies (for example "sushi" means
Japanese, "cheap" means $, "date night" means Romantic):
- cuisine: %s
- budget: %s
- vibe: %s
- dietary: %s

Respond with JSON only, using exactly these keys and omitting undetected
ones: {"cuisine": "...", "budget": "...", "vibe": "...", "dietary": "..."}`,
		utterance,
		strings.Join(models.CuisineOptions, ", "),
		strings.Join(models.BudgetOptions, ", "),
		strings.Join(models.VibeOptions, ", "),
		strings.Join(models.DietaryOptions, ", "))

	content, err := c.complete(ctx, prompt)
	if err != nil {
		return PreferenceGuess{}, err
	}

	var guess PreferenceGuess
	if err := json.Unmarshal([]byte(stripFences(content)), &guess); err != nil {
		return PreferenceGuess{}, fmt.Errorf("failed to parse extraction response: %w", err)
	}
	return sanitizeGuess(guess), nil
}

// complete runs one chat completion and returns the raw message content
func (c *Client) complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.api.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}

// sanitizeGuess keeps only values that are part of the fixed vocabularies
func sanitizeGuess(g PreferenceGuess) PreferenceGuess {
	if !models.ValidOption(models.CategoryCuisine, g.Cuisine) {
		g.Cuisine = ""
	}
	if !models.ValidOption(models.CategoryBudget, g.Budget) {
		g.Budget = ""
	}
	if !models.ValidOption(models.CategoryVibe, g.Vibe) {
		g.Vibe = ""
	}
	if !models.ValidOption(models.CategoryDietary, g.Dietary) {
		g.Dietary = ""
	}
	return g
}

// stripFences removes a markdown code fence some models wrap around JSON
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return strings.TrimSpace(s)
}

// orAny substitutes "Any" for an empty preference in prompts
func orAny(v string) string {
	if v == "" {
		return "Any"
	}
	return v
}
