package domain

import "time"

// StarredPage marks a page of a book as starred. The row exists only while the page is starred.
type StarredPage struct {
	ID        int64     `json:"id"`
	BookID    int64     `json:"bookId"`
	Page      int       `json:"pageNumber"`
	CreatedAt time.Time `json:"createdAt"`
}
