package model

import "time"

// Item represents a record owned by a single user. OwnerID is stamped from
// the authenticated caller at creation and never changes afterwards.
type Item struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	OwnerID     int64     `json:"owner_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
