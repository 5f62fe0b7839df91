// Package search provides full-text search over notes using Bleve.
package search

import (
	"strconv"

	"github.com/kanineapp/kanine-server/internal/domain"
)

// NoteDocument is the indexed form of a note.
// Owner and book IDs are keyword fields so they can be used as exact filters.
type NoteDocument struct {
	ID         string
	OwnerID    string
	BookID     string
	PageNumber int
	Content    string
	Tags       []string
	IsFavorite bool
	CreatedAt  int64 // Unix millis
	UpdatedAt  int64 // Unix millis
}

// ToMap converts the document to a map keyed by the field names of the mapping.
// Bleve would otherwise use the Go field names.
func (d *NoteDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":          d.ID,
		"owner_id":    d.OwnerID,
		"book_id":     d.BookID,
		"page_number": d.PageNumber,
		"content":     d.Content,
		"is_favorite": d.IsFavorite,
		"created_at":  d.CreatedAt,
		"updated_at":  d.UpdatedAt,
	}
	if len(d.Tags) > 0 {
		m["tags"] = d.Tags
	}
	return m
}

// NoteToDocument converts a note to its search document.
func NoteToDocument(n *domain.Note) *NoteDocument {
	return &NoteDocument{
		ID:         DocID(n.ID),
		OwnerID:    n.OwnerID,
		BookID:     strconv.FormatInt(n.BookID, 10),
		PageNumber: n.PageNumber,
		Content:    n.Content,
		Tags:       n.TagNames(),
		IsFavorite: n.IsFavorite,
		CreatedAt:  n.CreatedAt.UnixMilli(),
		UpdatedAt:  n.UpdatedAt.UnixMilli(),
	}
}

// DocID returns the index document ID of a note.
func DocID(noteID int64) string {
	return strconv.FormatInt(noteID, 10)
}
