package models

import "time"

// DayFormat is the canonical layout for calendar days stored in the database.
const DayFormat = "2006-01-02"

// Habit is a named behavior owned by exactly one user.
type Habit struct {
	ID                       int64                  `json:"id"`
	UserID                   int64                  `json:"user_id"`
	Title                    string                 `json:"title"`
	Why                      string                 `json:"why,omitempty"`
	IdentityGoal             string                 `json:"identity_goal,omitempty"`
	Loop                     map[string]interface{} `json:"loop,omitempty"`
	MinimalDose              string                 `json:"minimal_dose,omitempty"`
	ImplementationIntentions string                 `json:"implementation_intentions,omitempty"`
	Reminders                map[string]interface{} `json:"reminders,omitempty"`
	IsPublic                 bool                   `json:"is_public"`
	CreatedAt                time.Time              `json:"created_at"`
}

// HabitLog records whether a habit was completed on a given calendar day.
// At most one row exists per (habit, day) pair.
type HabitLog struct {
	ID        int64     `json:"id"`
	HabitID   int64     `json:"habit_id"`
	Day       string    `json:"day"`
	Completed bool      `json:"completed"`
	CreatedAt time.Time `json:"created_at"`
}

// HabitSubscription lets a user follow another user's public habit
// read-only.
type HabitSubscription struct {
	ID        int64     `json:"id"`
	HabitID   int64     `json:"habit_id"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
