package models

import "time"

// Session is the shared decision room identified by a short join code.
// The code is immutable once created; Locked transitions false→true exactly
// once and is never reverted.
type Session struct {
	Code      string        `json:"code"`
	OwnerID   string        `json:"owner_id"`
	Locked    bool          `json:"locked"`
	Winner    *WinnerRecord `json:"winner,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
}

// Participant is a joined member of a session. The ID is generated by the
// client and treated as an opaque stable identifier.
type Participant struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Color    string    `json:"color"`
	JoinedAt time.Time `json:"joined_at"`
}

// Vote is one participant's active choice in a preference category.
// A voter has at most one active vote per category; casting again in the
// same category replaces the earlier vote.
type Vote struct {
	Category  Category  `json:"category"`
	Option    string    `json:"option"`
	VoterID   string    `json:"voter_id"`
	VoterName string    `json:"voter_name"`
	CastAt    time.Time `json:"cast_at"`
}

// SwipeDirection is the direction of a swipe on a candidate restaurant.
type SwipeDirection string

const (
	DirectionLike    SwipeDirection = "like"
	DirectionDislike SwipeDirection = "dislike"
)

// SwipeEvent is one participant's current verdict on a candidate.
// A later swipe by the same voter on the same restaurant supersedes the
// earlier one in either direction.
type SwipeEvent struct {
	RestaurantID string         `json:"restaurant_id"`
	VoterID      string         `json:"voter_id"`
	VoterName    string         `json:"voter_name"`
	Direction    SwipeDirection `json:"direction"`
	SwipedAt     time.Time      `json:"swiped_at"`
}

// ActivityType classifies entries in the session activity feed.
type ActivityType string

const (
	ActivityJoin       ActivityType = "join"
	ActivityPreference ActivityType = "preference"
	ActivityReady      ActivityType = "ready"
	ActivityLike       ActivityType = "like"
)

// Activity is an immutable, append-only feed entry. It is only ever read
// for human display, never by the merge or resolve algorithms.
type Activity struct {
	ID         string       `json:"id"`
	Type       ActivityType `json:"type"`
	ActorName  string       `json:"actor_name"`
	ActorColor string       `json:"actor_color"`
	Message    string       `json:"message"`
	CreatedAt  time.Time    `json:"created_at"`
}

// Restaurant is a candidate returned by the restaurant directory,
// eligible for swiping.
type Restaurant struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Rating      float64  `json:"rating"`
	Price       string   `json:"price"`
	ReviewCount int      `json:"review_count"`
	Categories  []string `json:"categories"`
	Latitude    float64  `json:"latitude"`
	Longitude   float64  `json:"longitude"`
	Address     string   `json:"address,omitempty"`
	ImageURL    string   `json:"image_url,omitempty"`
}

// WinnerRecord is the final decision for a session. It is written at most
// once; subsequent resolve calls return the stored record.
type WinnerRecord struct {
	RestaurantID string `json:"restaurant_id"`
	Reason       string `json:"reason"`
	LikeCount    int    `json:"like_count"`
}

// CategoryResult is the merged outcome for one preference category,
// including the tie disclosure for UI display.
type CategoryResult struct {
	Value       string   `json:"value"`
	Tied        bool     `json:"tied"`
	TiedOptions []string `json:"tied_options,omitempty"`
}

// MergedPreferences is the derived, never-stored output of the preference
// merge engine. Only the search phrase built from it is handed onward.
type MergedPreferences struct {
	Budget   CategoryResult `json:"budget"`
	Cuisine  CategoryResult `json:"cuisine"`
	Vibe     CategoryResult `json:"vibe"`
	Dietary  CategoryResult `json:"dietary"`
	Distance CategoryResult `json:"distance"`
}

// SessionSnapshot is the full session document shape pushed to clients.
type SessionSnapshot struct {
	Session      Session       `json:"session"`
	Participants []Participant `json:"participants"`
	Votes        []Vote        `json:"votes"`
	Candidates   []Restaurant  `json:"candidates"`
	Swipes       []SwipeEvent  `json:"swipes"`
}
