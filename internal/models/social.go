package models

import "time"

// Trust is a one-directional "I trust this user's insights" relation.
type Trust struct {
	ID        int64     `json:"id"`
	TrusterID int64     `json:"truster_id"`
	TrusteeID int64     `json:"trustee_id"`
	CreatedAt time.Time `json:"created_at"`
}
