package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/kanineapp/kanine-server/internal/domain"
	"github.com/kanineapp/kanine-server/internal/store"
)

// bookColumns is the ordered list of columns selected in book queries.
// Must match the scan order in scanBook.
const bookColumns = `id, owner_id, title, page_count, category_id, created_at, updated_at`

// scanBook scans a sql.Row (or sql.Rows via its Scan method) into a domain.Book.
// StarredPages is left empty; callers load it when needed.
func scanBook(scanner interface{ Scan(dest ...any) error }) (*domain.Book, error) {
	var b domain.Book

	var (
		categoryID sql.NullInt64
		createdAt  string
		updatedAt  string
	)

	err := scanner.Scan(
		&b.ID,
		&b.OwnerID,
		&b.Title,
		&b.PageCount,
		&categoryID,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	if categoryID.Valid {
		id := categoryID.Int64
		b.CategoryID = &id
	}
	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if b.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	b.StarredPages = []domain.StarredPage{}

	return &b, nil
}

func collectBooks(rows *sql.Rows) ([]*domain.Book, error) {
	defer rows.Close()

	books := []*domain.Book{}
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return books, nil
}

// CreateBook inserts a new book and sets its ID.
func (s *Store) CreateBook(ctx context.Context, b *domain.Book) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO books (owner_id, title, page_count, category_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		b.OwnerID,
		b.Title,
		b.PageCount,
		nullInt64Ptr(b.CategoryID),
		formatTime(b.CreatedAt),
		formatTime(b.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert book: %w", err)
	}

	b.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("book id: %w", err)
	}
	if b.StarredPages == nil {
		b.StarredPages = []domain.StarredPage{}
	}
	return nil
}

// GetBook retrieves a book owned by userID, with its starred pages.
// Returns store.ErrNotFound if the book does not exist or is owned by someone else.
func (s *Store) GetBook(ctx context.Context, id int64, userID string) (*domain.Book, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+bookColumns+` FROM books WHERE id = ? AND owner_id = ?`, id, userID)

	b, err := scanBook(row)
	if err != nil {
		return nil, notFound(err)
	}

	b.StarredPages, err = s.ListStarredPages(ctx, b.ID)
	if err != nil {
		return nil, fmt.Errorf("load starred pages: %w", err)
	}
	return b, nil
}

// GetBookDetail retrieves a book with its category, starred pages, page file
// summaries and note count.
func (s *Store) GetBookDetail(ctx context.Context, id int64, userID string) (*domain.BookDetail, error) {
	b, err := s.GetBook(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	detail := &domain.BookDetail{Book: *b}

	if b.CategoryID != nil {
		row := s.db.QueryRowContext(ctx,
			`SELECT `+categoryColumns+` FROM categories WHERE id = ? AND owner_id = ?`,
			*b.CategoryID, userID)
		c, err := scanCategory(row)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("load category: %w", err)
		}
		detail.Category = c
	}

	detail.PageFiles, err = s.ListPageFiles(ctx, b.ID)
	if err != nil {
		return nil, fmt.Errorf("load page files: %w", err)
	}

	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM notes WHERE book_id = ?`, b.ID).Scan(&detail.NoteCount)
	if err != nil {
		return nil, fmt.Errorf("count notes: %w", err)
	}

	return detail, nil
}

// ListBooks returns the user's books, newest first, each with its starred pages.
// When categoryID is set only books in that category are returned.
func (s *Store) ListBooks(ctx context.Context, userID string, categoryID *int64) ([]*domain.Book, error) {
	query := `SELECT ` + bookColumns + ` FROM books WHERE owner_id = ?`
	args := []any{userID}
	if categoryID != nil {
		query += ` AND category_id = ?`
		args = append(args, *categoryID)
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	books, err := collectBooks(rows)
	if err != nil {
		return nil, err
	}

	if err := s.attachStarredPages(ctx, userID, books); err != nil {
		return nil, err
	}
	return books, nil
}

// attachStarredPages loads starred pages for all of a user's books in one query.
func (s *Store) attachStarredPages(ctx context.Context, userID string, books []*domain.Book) error {
	if len(books) == 0 {
		return nil
	}

	byBook := make(map[int64]*domain.Book, len(books))
	for _, b := range books {
		byBook[b.ID] = b
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT sp.id, sp.book_id, sp.page, sp.created_at
		FROM starred_pages sp
		JOIN books b ON b.id = sp.book_id
		WHERE b.owner_id = ?
		ORDER BY sp.book_id, sp.page`, userID)
	if err != nil {
		return fmt.Errorf("query starred pages: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		sp, err := scanStarredPage(rows)
		if err != nil {
			return err
		}
		if b, ok := byBook[sp.BookID]; ok {
			b.StarredPages = append(b.StarredPages, *sp)
		}
	}
	return rows.Err()
}

// UpdateBook saves title, page count and category of a book owned by b.OwnerID.
func (s *Store) UpdateBook(ctx context.Context, b *domain.Book) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE books SET title = ?, page_count = ?, category_id = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?`,
		b.Title,
		b.PageCount,
		nullInt64Ptr(b.CategoryID),
		formatTime(b.UpdatedAt),
		b.ID,
		b.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("update book: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// DeleteBook removes a book and every row that exists only because of it:
// the note-tag links of its notes, the notes, starred pages and page files.
// Everything happens in one transaction; on any failure nothing is removed.
func (s *Store) DeleteBook(ctx context.Context, id int64, userID string) (*domain.BookDeletion, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var one int
	err = tx.QueryRowContext(ctx,
		`SELECT 1 FROM books WHERE id = ? AND owner_id = ?`, id, userID).Scan(&one)
	if err != nil {
		return nil, notFound(err)
	}

	del := &domain.BookDeletion{BookID: id}

	del.NoteIDs, err = selectIDs(ctx, tx, `SELECT id FROM notes WHERE book_id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("select notes: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM note_tags
		WHERE note_id IN (SELECT id FROM notes WHERE book_id = ?)`, id); err != nil {
		return nil, fmt.Errorf("delete note_tags: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM notes WHERE book_id = ?`, id); err != nil {
		return nil, fmt.Errorf("delete notes: %w", err)
	}

	if del.StarredPages, err = execCount(ctx, tx, `DELETE FROM starred_pages WHERE book_id = ?`, id); err != nil {
		return nil, fmt.Errorf("delete starred_pages: %w", err)
	}

	if del.PageFiles, err = execCount(ctx, tx, `DELETE FROM page_files WHERE book_id = ?`, id); err != nil {
		return nil, fmt.Errorf("delete page_files: %w", err)
	}

	n, err := execCount(ctx, tx, `DELETE FROM books WHERE id = ? AND owner_id = ?`, id, userID)
	if err != nil {
		return nil, fmt.Errorf("delete book: %w", err)
	}
	if n == 0 {
		return nil, store.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return del, nil
}

func selectIDs(ctx context.Context, q querier, query string, args ...any) ([]int64, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []int64{}
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func execCount(ctx context.Context, q querier, query string, args ...any) (int, error) {
	result, err := q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}
