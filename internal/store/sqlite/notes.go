package sqlite

import (
	"context"
	"fmt"

	"github.com/kanineapp/kanine-server/internal/domain"
	"github.com/kanineapp/kanine-server/internal/store"
)

// noteColumns is the ordered list of columns selected in note queries.
// Must match the scan order in scanNote.
const noteColumns = `id, owner_id, book_id, page_number, content, is_favorite, created_at, updated_at`

// ownedNote restricts a note query to notes whose book belongs to the bound user.
const ownedNote = `book_id IN (SELECT id FROM books WHERE owner_id = ?)`

func scanNote(scanner interface{ Scan(dest ...any) error }) (*domain.Note, error) {
	var (
		n          domain.Note
		isFavorite int
		createdAt  string
		updatedAt  string
	)

	err := scanner.Scan(
		&n.ID,
		&n.OwnerID,
		&n.BookID,
		&n.PageNumber,
		&n.Content,
		&isFavorite,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	n.IsFavorite = isFavorite != 0
	if n.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if n.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	n.Tags = []domain.Tag{}
	return &n, nil
}

// queryNotes runs a note query and attaches tags to every result.
func queryNotes(ctx context.Context, q querier, query string, args ...any) ([]*domain.Note, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}

	notes := []*domain.Note{}
	ids := []int64{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		notes = append(notes, n)
		ids = append(ids, n.ID)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	tags, err := loadNoteTags(ctx, q, ids)
	if err != nil {
		return nil, err
	}
	for _, n := range notes {
		if t, ok := tags[n.ID]; ok {
			n.Tags = t
		}
	}
	return notes, nil
}

func getNote(ctx context.Context, q querier, id int64, userID string) (*domain.Note, error) {
	notes, err := queryNotes(ctx, q,
		`SELECT `+noteColumns+` FROM notes WHERE id = ? AND `+ownedNote, id, userID)
	if err != nil {
		return nil, err
	}
	if len(notes) == 0 {
		return nil, store.ErrNotFound
	}
	return notes[0], nil
}

// CreateNote inserts a note and links it to the named tags, creating any tag
// the owner does not have yet. Note and tags are committed together.
// The note's OwnerID must be the owner of its book; the schema rejects anything else.
func (s *Store) CreateNote(ctx context.Context, n *domain.Note, tagNames []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO notes (owner_id, book_id, page_number, content, is_favorite, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		n.OwnerID,
		n.BookID,
		n.PageNumber,
		n.Content,
		boolToInt(n.IsFavorite),
		formatTime(n.CreatedAt),
		formatTime(n.UpdatedAt),
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return store.ErrNotFound
		}
		return fmt.Errorf("insert note: %w", err)
	}
	if n.ID, err = result.LastInsertId(); err != nil {
		return fmt.Errorf("note id: %w", err)
	}

	if err := connectOrCreateTags(ctx, tx, n.ID, n.OwnerID, tagNames); err != nil {
		return err
	}

	tags, err := loadNoteTags(ctx, tx, []int64{n.ID})
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	n.Tags = tags[n.ID]
	if n.Tags == nil {
		n.Tags = []domain.Tag{}
	}
	return nil
}

// GetNote retrieves a note whose book is owned by userID.
func (s *Store) GetNote(ctx context.Context, id int64, userID string) (*domain.Note, error) {
	return getNote(ctx, s.db, id, userID)
}

// ListNotesByPage returns the notes of one page of a book, oldest first.
func (s *Store) ListNotesByPage(ctx context.Context, userID string, bookID int64, page int) ([]*domain.Note, error) {
	return queryNotes(ctx, s.db, `
		SELECT `+noteColumns+` FROM notes
		WHERE book_id = ? AND page_number = ? AND `+ownedNote+`
		ORDER BY created_at ASC, id ASC`,
		bookID, page, userID)
}

// ListFavoriteNotes returns the user's favorite notes, most recently updated first.
func (s *Store) ListFavoriteNotes(ctx context.Context, userID string) ([]*domain.Note, error) {
	return queryNotes(ctx, s.db, `
		SELECT `+noteColumns+` FROM notes
		WHERE is_favorite = 1 AND `+ownedNote+`
		ORDER BY updated_at DESC, id DESC`,
		userID)
}

// ListNotesByOwner returns every note of the user ordered by book and page.
func (s *Store) ListNotesByOwner(ctx context.Context, userID string) ([]*domain.Note, error) {
	return queryNotes(ctx, s.db, `
		SELECT `+noteColumns+` FROM notes
		WHERE `+ownedNote+`
		ORDER BY book_id ASC, page_number ASC, id ASC`,
		userID)
}

// ListAllNotes returns every note in the database. Used to rebuild the search index.
func (s *Store) ListAllNotes(ctx context.Context) ([]*domain.Note, error) {
	return queryNotes(ctx, s.db, `SELECT `+noteColumns+` FROM notes ORDER BY id ASC`)
}

// CountNotes returns the total number of notes.
func (s *Store) CountNotes(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM notes`).Scan(&n)
	return n, err
}

// UpdateNote replaces a note's content and its entire tag set.
// Every existing tag link is removed and the desired set is connected or
// created, so calling it twice with the same names yields the same state.
func (s *Store) UpdateNote(ctx context.Context, id int64, userID, content string, tagNames []string) (*domain.Note, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	n, err := execCount(ctx, tx, `
		UPDATE notes SET content = ?, updated_at = ?
		WHERE id = ? AND `+ownedNote,
		content, formatTime(now()), id, userID)
	if err != nil {
		return nil, fmt.Errorf("update note: %w", err)
	}
	if n == 0 {
		return nil, store.ErrNotFound
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM note_tags WHERE note_id = ?`, id); err != nil {
		return nil, fmt.Errorf("clear note tags: %w", err)
	}

	if err := connectOrCreateTags(ctx, tx, id, userID, tagNames); err != nil {
		return nil, err
	}

	note, err := getNote(ctx, tx, id, userID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return note, nil
}

// DeleteNote removes a note and its tag links. Tags themselves are kept.
func (s *Store) DeleteNote(ctx context.Context, id int64, userID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM note_tags
		WHERE note_id IN (SELECT id FROM notes WHERE id = ? AND `+ownedNote+`)`,
		id, userID); err != nil {
		return fmt.Errorf("delete note tags: %w", err)
	}

	n, err := execCount(ctx, tx, `DELETE FROM notes WHERE id = ? AND `+ownedNote, id, userID)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}

	return tx.Commit()
}

// ToggleNoteFavorite flips is_favorite in a single statement and returns the note.
func (s *Store) ToggleNoteFavorite(ctx context.Context, id int64, userID string) (*domain.Note, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	n, err := execCount(ctx, tx, `
		UPDATE notes SET is_favorite = 1 - is_favorite, updated_at = ?
		WHERE id = ? AND `+ownedNote,
		formatTime(now()), id, userID)
	if err != nil {
		return nil, fmt.Errorf("toggle favorite: %w", err)
	}
	if n == 0 {
		return nil, store.ErrNotFound
	}

	note, err := getNote(ctx, tx, id, userID)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return note, nil
}
