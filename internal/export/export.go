// Package export writes a user's notes as YAML or Parquet.
package export

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/parquet-go/parquet-go"
	"gopkg.in/yaml.v3"

	"github.com/kanineapp/kanine-server/internal/domain"
)

// Supported output formats.
const (
	FormatYAML    = "yaml"
	FormatParquet = "parquet"
)

// Source is the subset of the store an export reads from.
type Source interface {
	ListNotesByOwner(ctx context.Context, userID string) ([]*domain.Note, error)
	ListBooks(ctx context.Context, userID string, categoryID *int64) ([]*domain.Book, error)
	ListCategories(ctx context.Context, userID string) ([]*domain.Category, error)
}

// NoteRecord is one exported note, flattened with its book and category.
// Timestamps are RFC 3339 strings so both formats carry them the same way.
type NoteRecord struct {
	NoteID     int64    `yaml:"noteId" parquet:"note_id"`
	BookID     int64    `yaml:"bookId" parquet:"book_id"`
	BookTitle  string   `yaml:"bookTitle" parquet:"book_title"`
	Category   string   `yaml:"category,omitempty" parquet:"category,optional"`
	PageNumber int32    `yaml:"pageNumber" parquet:"page_number"`
	Content    string   `yaml:"content" parquet:"content"`
	Tags       []string `yaml:"tags" parquet:"tags,list"`
	IsFavorite bool     `yaml:"isFavorite" parquet:"is_favorite"`
	CreatedAt  string   `yaml:"createdAt" parquet:"created_at"`
	UpdatedAt  string   `yaml:"updatedAt" parquet:"updated_at"`
}

// Document is the top-level YAML export.
type Document struct {
	Owner      string       `yaml:"owner"`
	ExportedAt string       `yaml:"exportedAt"`
	NoteCount  int          `yaml:"noteCount"`
	Notes      []NoteRecord `yaml:"notes"`
}

// Collect loads every note of userID and joins book titles and category names.
// Notes are ordered by book, page and ID.
func Collect(ctx context.Context, src Source, userID string) ([]NoteRecord, error) {
	books, err := src.ListBooks(ctx, userID, nil)
	if err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	categories, err := src.ListCategories(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	notes, err := src.ListNotesByOwner(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	categoryNames := make(map[int64]string, len(categories))
	for _, c := range categories {
		categoryNames[c.ID] = c.Name
	}
	bookByID := make(map[int64]*domain.Book, len(books))
	for _, b := range books {
		bookByID[b.ID] = b
	}

	records := make([]NoteRecord, 0, len(notes))
	for _, n := range notes {
		rec := NoteRecord{
			NoteID:     n.ID,
			BookID:     n.BookID,
			PageNumber: int32(n.PageNumber), //nolint:gosec // page numbers are far below 2^31
			Content:    n.Content,
			Tags:       n.TagNames(),
			IsFavorite: n.IsFavorite,
			CreatedAt:  n.CreatedAt.UTC().Format(time.RFC3339),
			UpdatedAt:  n.UpdatedAt.UTC().Format(time.RFC3339),
		}
		if b, ok := bookByID[n.BookID]; ok {
			rec.BookTitle = b.Title
			if b.CategoryID != nil {
				rec.Category = categoryNames[*b.CategoryID]
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// Write encodes records to w in the given format.
func Write(w io.Writer, format, owner string, records []NoteRecord, now time.Time) error {
	switch format {
	case FormatYAML:
		return WriteYAML(w, Document{
			Owner:      owner,
			ExportedAt: now.UTC().Format(time.RFC3339),
			NoteCount:  len(records),
			Notes:      records,
		})
	case FormatParquet:
		return WriteParquet(w, records)
	default:
		return fmt.Errorf("unsupported export format %q (supported: %s, %s)", format, FormatYAML, FormatParquet)
	}
}

// WriteYAML encodes doc as a YAML document.
func WriteYAML(w io.Writer, doc Document) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&doc); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}

// WriteParquet encodes records as a single Parquet file.
func WriteParquet(w io.Writer, records []NoteRecord) error {
	pw := parquet.NewGenericWriter[NoteRecord](w)
	if _, err := pw.Write(records); err != nil {
		_ = pw.Close()
		return fmt.Errorf("write parquet rows: %w", err)
	}
	if err := pw.Close(); err != nil {
		return fmt.Errorf("close parquet writer: %w", err)
	}
	return nil
}

// ReadParquet decodes records written by WriteParquet.
func ReadParquet(r io.ReaderAt, size int64) ([]NoteRecord, error) {
	pf, err := parquet.OpenFile(r, size)
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}

	reader := parquet.NewGenericReader[NoteRecord](pf)
	defer reader.Close()

	records := make([]NoteRecord, 0, pf.NumRows())
	rows := make([]NoteRecord, 128)
	for {
		n, err := reader.Read(rows)
		records = append(records, rows[:n]...)
		if err == io.EOF {
			return records, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read parquet rows: %w", err)
		}
	}
}
