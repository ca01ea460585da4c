package models

import "time"

// Group is a shared space where members post habit proofs and chat.
type Group struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	IsPublic    bool      `json:"is_public"`
	OwnerID     int64     `json:"owner_id"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// GroupMember associates a user with a group. FrequencyPerWeek caps how many
// proofs the member may post per calendar week.
type GroupMember struct {
	ID               int64     `json:"id"`
	GroupID          int64     `json:"group_id"`
	UserID           int64     `json:"user_id"`
	Role             string    `json:"role"`
	HabitTitle       string    `json:"habit_title,omitempty"`
	FrequencyPerWeek int       `json:"frequency_per_week"`
	CreatedAt        time.Time `json:"created_at"`
}

// Proof is one image submission by a member for a given calendar day.
type Proof struct {
	ID        int64     `json:"id"`
	GroupID   int64     `json:"group_id"`
	UserID    int64     `json:"user_id"`
	Day       string    `json:"day"`
	ImageURL  string    `json:"image_url"`
	Caption   string    `json:"caption,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Message types understood by the group feed.
const (
	MessageTypeChat      = "chat"
	MessageTypeLearning  = "learning"
	MessageTypeChallenge = "challenge"
	MessageTypeProof     = "proof"
)

// Message is a post in a group's feed.
type Message struct {
	ID         int64     `json:"id"`
	GroupID    int64     `json:"group_id"`
	UserID     int64     `json:"user_id"`
	Content    string    `json:"content"`
	Type       string    `json:"type"`
	ImageURL   string    `json:"image_url,omitempty"`
	LikesCount int       `json:"likes_count"`
	CreatedAt  time.Time `json:"created_at"`
}
