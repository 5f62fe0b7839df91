package sqlite

import (
	"context"
	"fmt"

	"github.com/kanineapp/kanine-server/internal/domain"
	"github.com/kanineapp/kanine-server/internal/store"
)

// categoryColumns is the ordered list of columns selected in category queries.
// Must match the scan order in scanCategory.
const categoryColumns = `id, owner_id, name, created_at, updated_at`

func scanCategory(scanner interface{ Scan(dest ...any) error }) (*domain.Category, error) {
	var (
		c         domain.Category
		createdAt string
		updatedAt string
	)

	if err := scanner.Scan(&c.ID, &c.OwnerID, &c.Name, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if c.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if c.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCategory inserts a category and sets its ID.
// Returns store.ErrAlreadyExists when the owner already has a category with that name.
func (s *Store) CreateCategory(ctx context.Context, c *domain.Category) error {
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO categories (owner_id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?)`,
		c.OwnerID,
		c.Name,
		formatTime(c.CreatedAt),
		formatTime(c.UpdatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists.WithMessage("category name already in use")
	}
	if err != nil {
		return fmt.Errorf("insert category: %w", err)
	}

	c.ID, err = result.LastInsertId()
	return err
}

// GetCategory retrieves a category owned by userID, together with its books.
func (s *Store) GetCategory(ctx context.Context, id int64, userID string) (*domain.Category, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE id = ? AND owner_id = ?`, id, userID)

	c, err := scanCategory(row)
	if err != nil {
		return nil, notFound(err)
	}

	c.Books, err = s.ListBooks(ctx, userID, &c.ID)
	if err != nil {
		return nil, fmt.Errorf("load category books: %w", err)
	}
	return c, nil
}

// ListCategories returns the user's categories ordered by name, each with its books.
func (s *Store) ListCategories(ctx context.Context, userID string) ([]*domain.Category, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+categoryColumns+` FROM categories WHERE owner_id = ? ORDER BY name ASC, id ASC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := []*domain.Category{}
	byID := map[int64]*domain.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		c.Books = []*domain.Book{}
		categories = append(categories, c)
		byID[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if len(categories) == 0 {
		return categories, nil
	}

	books, err := s.ListBooks(ctx, userID, nil)
	if err != nil {
		return nil, fmt.Errorf("load books: %w", err)
	}
	for _, b := range books {
		if b.CategoryID == nil {
			continue
		}
		if c, ok := byID[*b.CategoryID]; ok {
			c.Books = append(c.Books, b)
		}
	}

	return categories, nil
}

// UpdateCategory renames a category owned by c.OwnerID.
func (s *Store) UpdateCategory(ctx context.Context, c *domain.Category) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE categories SET name = ?, updated_at = ?
		WHERE id = ? AND owner_id = ?`,
		c.Name, formatTime(c.UpdatedAt), c.ID, c.OwnerID)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists.WithMessage("category name already in use")
	}
	if err != nil {
		return fmt.Errorf("update category: %w", err)
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

// DeleteCategory deletes a category owned by userID and detaches its books.
// Books are kept; their category_id becomes NULL in the same transaction.
// Returns the number of detached books.
func (s *Store) DeleteCategory(ctx context.Context, id int64, userID string) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	detached, err := execCount(ctx, tx, `
		UPDATE books SET category_id = NULL, updated_at = ?
		WHERE category_id = ? AND owner_id = ?`,
		formatTime(now()), id, userID)
	if err != nil {
		return 0, fmt.Errorf("detach books: %w", err)
	}

	n, err := execCount(ctx, tx, `DELETE FROM categories WHERE id = ? AND owner_id = ?`, id, userID)
	if err != nil {
		return 0, fmt.Errorf("delete category: %w", err)
	}
	if n == 0 {
		return 0, store.ErrNotFound
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return detached, nil
}
