package sqlite

import (
	"context"
	"database/sql"
	"errors"
)

// IsBookOwnedBy reports whether bookID exists and belongs to userID.
// A missing book and a foreign book both report false.
func (s *Store) IsBookOwnedBy(ctx context.Context, bookID int64, userID string) (bool, error) {
	return s.exists(ctx, `SELECT 1 FROM books WHERE id = ? AND owner_id = ?`, bookID, userID)
}

// IsNoteOwnedBy reports whether noteID exists and its parent book belongs to userID.
// The check walks note -> book -> owner rather than trusting notes.owner_id alone.
func (s *Store) IsNoteOwnedBy(ctx context.Context, noteID int64, userID string) (bool, error) {
	return s.exists(ctx, `
		SELECT 1 FROM notes n
		JOIN books b ON b.id = n.book_id
		WHERE n.id = ? AND b.owner_id = ?`, noteID, userID)
}

// IsCategoryOwnedBy reports whether categoryID exists and belongs to userID.
func (s *Store) IsCategoryOwnedBy(ctx context.Context, categoryID int64, userID string) (bool, error) {
	return s.exists(ctx, `SELECT 1 FROM categories WHERE id = ? AND owner_id = ?`, categoryID, userID)
}

func (s *Store) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
