package domain

import "time"

// Tag is a label owned by a single user. Names are unique per owner.
type Tag struct {
	ID        int64     `json:"id"`
	OwnerID   string    `json:"-"`
	Name      string    `json:"name"`
	NoteCount int       `json:"noteCount,omitempty"` // Denormalized, only set by tag listings
	CreatedAt time.Time `json:"createdAt"`
}
