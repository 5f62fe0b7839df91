package sqlite

import (
	"context"
	"fmt"

	"github.com/kanineapp/kanine-server/internal/domain"
)

func scanStarredPage(scanner interface{ Scan(dest ...any) error }) (*domain.StarredPage, error) {
	var (
		sp        domain.StarredPage
		createdAt string
	)
	if err := scanner.Scan(&sp.ID, &sp.BookID, &sp.Page, &createdAt); err != nil {
		return nil, err
	}

	var err error
	if sp.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	return &sp, nil
}

// ToggleStar stars an unstarred page or unstars a starred one and reports
// whether the page is starred afterwards. The delete-then-insert runs in one
// write transaction, and UNIQUE(book_id, page) keeps a racing insert from
// producing a second row.
func (s *Store) ToggleStar(ctx context.Context, bookID int64, page int) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	removed, err := execCount(ctx, tx,
		`DELETE FROM starred_pages WHERE book_id = ? AND page = ?`, bookID, page)
	if err != nil {
		return false, fmt.Errorf("unstar page: %w", err)
	}

	starred := removed == 0
	if starred {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO starred_pages (book_id, page, created_at) VALUES (?, ?, ?)
			ON CONFLICT (book_id, page) DO NOTHING`,
			bookID, page, formatTime(now())); err != nil {
			return false, fmt.Errorf("star page: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit: %w", err)
	}
	return starred, nil
}

// GetStarredPage retrieves a starred page whose book is owned by userID.
func (s *Store) GetStarredPage(ctx context.Context, id int64, userID string) (*domain.StarredPage, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT sp.id, sp.book_id, sp.page, sp.created_at
		FROM starred_pages sp
		JOIN books b ON b.id = sp.book_id
		WHERE sp.id = ? AND b.owner_id = ?`, id, userID)

	sp, err := scanStarredPage(row)
	if err != nil {
		return nil, notFound(err)
	}
	return sp, nil
}

// ListStarredPages returns the starred pages of a book in page order.
func (s *Store) ListStarredPages(ctx context.Context, bookID int64) ([]domain.StarredPage, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, book_id, page, created_at FROM starred_pages
		WHERE book_id = ? ORDER BY page ASC`, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pages := []domain.StarredPage{}
	for rows.Next() {
		sp, err := scanStarredPage(rows)
		if err != nil {
			return nil, err
		}
		pages = append(pages, *sp)
	}
	return pages, rows.Err()
}
