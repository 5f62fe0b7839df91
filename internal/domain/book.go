package domain

import "time"

// Book is a user-owned document whose pages can carry notes, stars and a scanned file.
// PageCount is informational and is not checked against uploaded pages.
type Book struct {
	ID         int64     `json:"id"`
	OwnerID    string    `json:"ownerId"`
	Title      string    `json:"title"`
	PageCount  int       `json:"pages"`
	CategoryID *int64    `json:"categoryId"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`

	// StarredPages is populated by list and detail reads.
	StarredPages []StarredPage `json:"starredPages"`
}

// IsStarred reports whether the given page is among the book's starred pages.
func (b *Book) IsStarred(page int) bool {
	for _, sp := range b.StarredPages {
		if sp.Page == page {
			return true
		}
	}
	return false
}

// BookDetail is a book with all of its per-page relations.
type BookDetail struct {
	Book
	Category  *Category      `json:"category,omitempty"`
	PageFiles []PageFileInfo `json:"pageFiles"`
	NoteCount int            `json:"noteCount"`
}

// BookDeletion reports what a cascading book delete removed.
type BookDeletion struct {
	BookID       int64
	NoteIDs      []int64
	StarredPages int
	PageFiles    int
}
