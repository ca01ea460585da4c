package models

import "time"

// User represents a registered account in HabitLink.
type User struct {
	ID             int64                  `json:"id"`
	Email          string                 `json:"email"`
	HashedPassword string                 `json:"-"`
	DisplayName    string                 `json:"display_name,omitempty"`
	PhotoURL       string                 `json:"photo_url,omitempty"`
	Lifebook       map[string]interface{} `json:"lifebook,omitempty"`
	CreatedAt      time.Time              `json:"created_at"`
}
