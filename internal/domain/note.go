package domain

import (
	"slices"
	"strings"
	"time"
)

// Note is a piece of text attached to one page of one book.
// OwnerID always equals the owning book's OwnerID.
type Note struct {
	ID         int64     `json:"id"`
	OwnerID    string    `json:"ownerId"`
	BookID     int64     `json:"bookId"`
	PageNumber int       `json:"pageNumber"`
	Content    string    `json:"content"`
	IsFavorite bool      `json:"isFavorite"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
	Tags       []Tag     `json:"tags"`
}

// TagNames returns the names of the note's tags in sorted order.
func (n *Note) TagNames() []string {
	names := make([]string, 0, len(n.Tags))
	for _, t := range n.Tags {
		names = append(names, t.Name)
	}
	slices.SortFunc(names, strings.Compare)
	return names
}
