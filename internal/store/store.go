// Package store defines the persistence interface for the Kanine server.
package store

import (
	"context"
	"time"

	"github.com/kanineapp/kanine-server/internal/domain"
)

// Store defines every persistence operation used by the services.
// Reads and writes of user content are scoped by owner: a row owned by
// someone else behaves exactly like a missing row.
type Store interface {
	// Lifecycle
	Close() error
	Ping(ctx context.Context) error

	// Users
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	TouchUserLogin(ctx context.Context, id string, at time.Time) error

	// Ownership checks
	IsBookOwnedBy(ctx context.Context, bookID int64, userID string) (bool, error)
	IsNoteOwnedBy(ctx context.Context, noteID int64, userID string) (bool, error)
	IsCategoryOwnedBy(ctx context.Context, categoryID int64, userID string) (bool, error)

	// Books
	CreateBook(ctx context.Context, book *domain.Book) error
	GetBook(ctx context.Context, id int64, userID string) (*domain.Book, error)
	GetBookDetail(ctx context.Context, id int64, userID string) (*domain.BookDetail, error)
	ListBooks(ctx context.Context, userID string, categoryID *int64) ([]*domain.Book, error)
	UpdateBook(ctx context.Context, book *domain.Book) error
	DeleteBook(ctx context.Context, id int64, userID string) (*domain.BookDeletion, error)

	// Categories
	CreateCategory(ctx context.Context, category *domain.Category) error
	GetCategory(ctx context.Context, id int64, userID string) (*domain.Category, error)
	ListCategories(ctx context.Context, userID string) ([]*domain.Category, error)
	UpdateCategory(ctx context.Context, category *domain.Category) error
	DeleteCategory(ctx context.Context, id int64, userID string) (int, error)

	// Notes
	CreateNote(ctx context.Context, note *domain.Note, tagNames []string) error
	GetNote(ctx context.Context, id int64, userID string) (*domain.Note, error)
	ListNotesByPage(ctx context.Context, userID string, bookID int64, page int) ([]*domain.Note, error)
	ListFavoriteNotes(ctx context.Context, userID string) ([]*domain.Note, error)
	ListNotesByOwner(ctx context.Context, userID string) ([]*domain.Note, error)
	ListAllNotes(ctx context.Context) ([]*domain.Note, error)
	CountNotes(ctx context.Context) (int, error)
	UpdateNote(ctx context.Context, id int64, userID, content string, tagNames []string) (*domain.Note, error)
	DeleteNote(ctx context.Context, id int64, userID string) error
	ToggleNoteFavorite(ctx context.Context, id int64, userID string) (*domain.Note, error)

	// Tags
	ListTags(ctx context.Context, userID string) ([]*domain.Tag, error)
	GetTagByName(ctx context.Context, userID, name string) (*domain.Tag, error)

	// Starred pages
	ToggleStar(ctx context.Context, bookID int64, page int) (bool, error)
	GetStarredPage(ctx context.Context, id int64, userID string) (*domain.StarredPage, error)
	ListStarredPages(ctx context.Context, bookID int64) ([]domain.StarredPage, error)

	// Page files
	UpsertPageFile(ctx context.Context, file *domain.PageFile) error
	GetPageFile(ctx context.Context, bookID int64, page int) (*domain.PageFile, error)
	GetPageFileByID(ctx context.Context, id int64, userID string) (*domain.PageFileInfo, error)
	ListPageFiles(ctx context.Context, bookID int64) ([]domain.PageFileInfo, error)
	DeletePageFile(ctx context.Context, bookID int64, page int) error
}

// SearchIndexer keeps the note search index in sync with committed writes.
// Services call it after the database transaction succeeds.
type SearchIndexer interface {
	IndexNote(ctx context.Context, note *domain.Note) error
	DeleteNotes(ctx context.Context, noteIDs []int64) error
}

// NoopSearchIndexer is a no-op implementation for testing.
type NoopSearchIndexer struct{}

// IndexNote is a no-op.
func (NoopSearchIndexer) IndexNote(context.Context, *domain.Note) error { return nil }

// DeleteNotes is a no-op.
func (NoopSearchIndexer) DeleteNotes(context.Context, []int64) error { return nil }

// NewNoopSearchIndexer creates a new no-op search indexer for testing.
func NewNoopSearchIndexer() SearchIndexer {
	return NoopSearchIndexer{}
}
