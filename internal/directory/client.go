// Package directory is the client for the external restaurant directory.
// Directory failures propagate to the caller; unlike the AI services there
// is no silent fallback, the UI decides between retry and an empty state.
package directory

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"commonplate-backend/internal/models"

	"github.com/rs/zerolog/log"
)

const (
	defaultBaseURL = "https://api.yelp.com"
	// maxRadiusMeters is the largest radius the directory accepts
	maxRadiusMeters = 40000
	defaultLimit    = 10
)

// Client queries the restaurant directory's business search API
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
}

// NewClient creates a new directory client
func NewClient(baseURL, apiKey string) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		apiKey:     apiKey,
	}
}

// SearchRequest describes one directory query variant
type SearchRequest struct {
	Phrase       string
	Categories   []string
	PriceLevels  []int
	Latitude     float64
	Longitude    float64
	RadiusMeters int
	Limit        int
}

// Search runs a single business search
func (c *Client) Search(ctx context.Context, req SearchRequest) ([]models.Restaurant, error) {
	params := url.Values{}
	term := req.Phrase
	if term == "" {
		term = "restaurants"
	}
	params.Set("term", term)
	params.Set("latitude", strconv.FormatFloat(req.Latitude, 'f', -1, 64))
	params.Set("longitude", strconv.FormatFloat(req.Longitude, 'f', -1, 64))
	limit := req.Limit
	if limit <= 0 {
		limit = defaultLimit
	}
	params.Set("limit", strconv.Itoa(limit))
	if req.RadiusMeters > 0 {
		radius := req.RadiusMeters
		if radius > maxRadiusMeters {
			radius = maxRadiusMeters
		}
		params.Set("radius", strconv.Itoa(radius))
	}
	if len(req.Categories) > 0 {
		params.Set("categories", strings.ToLower(strings.Join(req.Categories, ",")))
	}
	if len(req.PriceLevels) > 0 {
		levels := make([]string, len(req.PriceLevels))
		for i, p := range req.PriceLevels {
			levels[i] = strconv.Itoa(p)
		}
		params.Set("price", strings.Join(levels, ","))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/v3/businesses/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build directory request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("directory request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("directory returned status %d", resp.StatusCode)
	}

	var payload struct {
		Businesses []business `json:"businesses"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode directory response: %w", err)
	}

	restaurants := make([]models.Restaurant, 0, len(payload.Businesses))
	for _, b := range payload.Businesses {
		restaurants = append(restaurants, b.toRestaurant())
	}
	return restaurants, nil
}

// SearchAll runs several query variants and merges the results,
// deduplicating by id with the earlier variant taking priority. It fails
// only when every variant fails.
func (c *Client) SearchAll(ctx context.Context, reqs ...SearchRequest) ([]models.Restaurant, error) {
	seen := make(map[string]struct{})
	var merged []models.Restaurant
	var lastErr error

	for _, req := range reqs {
		results, err := c.Search(ctx, req)
		if err != nil {
			log.Warn().Err(err).Str("term", req.Phrase).Msg("Directory variant failed, continuing")
			lastErr = err
			continue
		}
		for _, r := range results {
			if _, ok := seen[r.ID]; ok {
				continue
			}
			seen[r.ID] = struct{}{}
			merged = append(merged, r)
		}
	}

	if len(merged) == 0 && lastErr != nil {
		return nil, lastErr
	}
	return merged, nil
}

// business is the directory's wire shape for one search hit
type business struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Rating      float64 `json:"rating"`
	Price       string  `json:"price"`
	ReviewCount int     `json:"review_count"`
	ImageURL    string  `json:"image_url"`
	Coordinates struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"coordinates"`
	Categories []struct {
		Alias string `json:"alias"`
		Title string `json:"title"`
	} `json:"categories"`
	Location struct {
		DisplayAddress []string `json:"display_address"`
	} `json:"location"`
}

func (b business) toRestaurant() models.Restaurant {
	categories := make([]string, 0, len(b.Categories))
	for _, c := range b.Categories {
		categories = append(categories, c.Title)
	}
	return models.Restaurant{
		ID:          b.ID,
		Name:        b.Name,
		Rating:      b.Rating,
		Price:       b.Price,
		ReviewCount: b.ReviewCount,
		Categories:  categories,
		Latitude:    b.Coordinates.Latitude,
		Longitude:   b.Coordinates.Longitude,
		Address:     strings.Join(b.Location.DisplayAddress, ", "),
		ImageURL:    b.ImageURL,
	}
}
