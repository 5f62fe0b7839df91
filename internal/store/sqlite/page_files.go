package sqlite

import (
	"context"
	"fmt"

	"github.com/kanineapp/kanine-server/internal/domain"
	"github.com/kanineapp/kanine-server/internal/store"
)

// pageFileInfoColumns excludes the content blob.
// Must match the scan order in scanPageFileInfo.
const pageFileInfoColumns = `id, book_id, page_number, file_name, file_type, size, blur_hash, created_at, updated_at`

func scanPageFileInfo(scanner interface{ Scan(dest ...any) error }, extra ...any) (*domain.PageFileInfo, error) {
	var (
		f         domain.PageFileInfo
		blurHash  nullableText
		createdAt string
		updatedAt string
	)

	dest := append([]any{
		&f.ID, &f.BookID, &f.PageNumber, &f.FileName, &f.FileType, &f.Size,
		&blurHash, &createdAt, &updatedAt,
	}, extra...)
	if err := scanner.Scan(dest...); err != nil {
		return nil, err
	}

	f.BlurHash = string(blurHash)

	var err error
	if f.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if f.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &f, nil
}

// UpsertPageFile stores the file for (book, page), replacing any existing one
// in place. The row keeps its ID and created_at across replacements.
func (s *Store) UpsertPageFile(ctx context.Context, f *domain.PageFile) error {
	row := s.db.QueryRowContext(ctx, `
		INSERT INTO page_files (
			book_id, page_number, file_name, file_type, size, blur_hash, content, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (book_id, page_number) DO UPDATE SET
			file_name  = excluded.file_name,
			file_type  = excluded.file_type,
			size       = excluded.size,
			blur_hash  = excluded.blur_hash,
			content    = excluded.content,
			updated_at = excluded.updated_at
		RETURNING id, created_at`,
		f.BookID,
		f.PageNumber,
		f.FileName,
		f.FileType,
		int64(len(f.Content)),
		nullString(f.BlurHash),
		f.Content,
		formatTime(f.CreatedAt),
		formatTime(f.UpdatedAt),
	)

	var createdAt string
	if err := row.Scan(&f.ID, &createdAt); err != nil {
		if isForeignKeyViolation(err) {
			return store.ErrNotFound
		}
		return fmt.Errorf("upsert page file: %w", err)
	}

	var err error
	if f.CreatedAt, err = parseTime(createdAt); err != nil {
		return err
	}
	f.Size = int64(len(f.Content))
	return nil
}

// GetPageFile retrieves the file of a page including its content.
func (s *Store) GetPageFile(ctx context.Context, bookID int64, page int) (*domain.PageFile, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+pageFileInfoColumns+`, content FROM page_files
		WHERE book_id = ? AND page_number = ?`, bookID, page)

	var content []byte
	info, err := scanPageFileInfo(row, &content)
	if err != nil {
		return nil, notFound(err)
	}
	return &domain.PageFile{PageFileInfo: *info, Content: content}, nil
}

// GetPageFileByID retrieves page file metadata whose book is owned by userID.
func (s *Store) GetPageFileByID(ctx context.Context, id int64, userID string) (*domain.PageFileInfo, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+pageFileInfoColumns+` FROM page_files
		WHERE id = ? AND book_id IN (SELECT id FROM books WHERE owner_id = ?)`, id, userID)

	f, err := scanPageFileInfo(row)
	if err != nil {
		return nil, notFound(err)
	}
	return f, nil
}

// ListPageFiles returns metadata for every file of a book in page order.
func (s *Store) ListPageFiles(ctx context.Context, bookID int64) ([]domain.PageFileInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+pageFileInfoColumns+` FROM page_files
		WHERE book_id = ? ORDER BY page_number ASC`, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	files := []domain.PageFileInfo{}
	for rows.Next() {
		f, err := scanPageFileInfo(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, *f)
	}
	return files, rows.Err()
}

// DeletePageFile removes the file of a page.
func (s *Store) DeletePageFile(ctx context.Context, bookID int64, page int) error {
	n, err := execCount(ctx, s.db,
		`DELETE FROM page_files WHERE book_id = ? AND page_number = ?`, bookID, page)
	if err != nil {
		return fmt.Errorf("delete page file: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}
	return nil
}

// nullableText scans a nullable TEXT column into a string, NULL becoming "".
type nullableText string

func (t *nullableText) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*t = ""
	case string:
		*t = nullableText(v)
	case []byte:
		*t = nullableText(v)
	default:
		return fmt.Errorf("nullableText: unsupported type %T", src)
	}
	return nil
}
