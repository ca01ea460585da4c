package models

// Tool is a habit-building technique from the shared toolbox.
type Tool struct {
	ID              int64    `json:"id"`
	Title           string   `json:"title"`
	Keywords        []string `json:"keywords,omitempty"`
	Steps           []string `json:"steps,omitempty"`
	Description     string   `json:"description"`
	CreatedByUserID int64    `json:"created_by_user_id,omitempty"`
}
