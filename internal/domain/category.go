package domain

import "time"

// Category groups a user's books. Deleting a category detaches its books.
type Category struct {
	ID        int64     `json:"id"`
	OwnerID   string    `json:"ownerId"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	// Books is populated when the category is read with its books.
	Books []*Book `json:"books,omitempty"`
}
