package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kanineapp/kanine-server/internal/domain"
	"github.com/kanineapp/kanine-server/internal/metrics"
	"github.com/kanineapp/kanine-server/internal/normalize"
	"github.com/kanineapp/kanine-server/internal/store"
)

// BookService orchestrates book operations.
type BookService struct {
	store   store.Store
	indexer store.SearchIndexer
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewBookService creates a new book service.
// indexer and m may be nil.
func NewBookService(store store.Store, indexer store.SearchIndexer, m *metrics.Metrics, logger *slog.Logger) *BookService {
	return &BookService{
		store:   store,
		indexer: indexerOrNoop(indexer),
		metrics: m,
		logger:  loggerOrDefault(logger),
	}
}

// CreateBookRequest is the payload for a new book. Pages of 0 means unknown.
type CreateBookRequest struct {
	Title      string `json:"title" validate:"notblank,max=500"`
	Pages      int    `json:"pages" validate:"gte=0"`
	CategoryID *int64 `json:"categoryId,omitempty"`
}

// UpdateBookRequest patches a book. Nil fields are left unchanged.
// ClearCategory detaches the book and wins over CategoryID.
type UpdateBookRequest struct {
	Title         *string `json:"title,omitempty" validate:"omitnil,notblank,max=500"`
	Pages         *int    `json:"pages,omitempty" validate:"omitnil,gte=0"`
	CategoryID    *int64  `json:"categoryId,omitempty"`
	ClearCategory bool    `json:"clearCategory,omitempty"`
}

// CreateBook creates a book owned by userID.
func (s *BookService) CreateBook(ctx context.Context, userID string, req CreateBookRequest) (*domain.Book, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	if req.CategoryID != nil {
		if err := requireCategory(ctx, s.store, *req.CategoryID, userID); err != nil {
			return nil, err
		}
	}

	now := time.Now().UTC()
	book := &domain.Book{
		OwnerID:    userID,
		Title:      normalize.Text(req.Title),
		PageCount:  req.Pages,
		CategoryID: req.CategoryID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.store.CreateBook(ctx, book); err != nil {
		return nil, fmt.Errorf("create book: %w", err)
	}

	s.logger.Info("book created", "book_id", book.ID, "user_id", userID)
	return book, nil
}

// GetBook returns a book with its category, starred pages, page files and note count.
func (s *BookService) GetBook(ctx context.Context, userID string, bookID int64) (*domain.BookDetail, error) {
	detail, err := s.store.GetBookDetail(ctx, bookID, userID)
	if err != nil {
		return nil, notFoundOr(err, "book not found")
	}
	return detail, nil
}

// ListBooks returns the user's books, newest first.
// A non-nil categoryID restricts the list to that category, which must be owned.
func (s *BookService) ListBooks(ctx context.Context, userID string, categoryID *int64) ([]*domain.Book, error) {
	if categoryID != nil {
		if err := requireCategory(ctx, s.store, *categoryID, userID); err != nil {
			return nil, err
		}
	}
	return s.store.ListBooks(ctx, userID, categoryID)
}

// UpdateBook applies a partial update to a book.
func (s *BookService) UpdateBook(ctx context.Context, userID string, bookID int64, req UpdateBookRequest) (*domain.Book, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	book, err := s.store.GetBook(ctx, bookID, userID)
	if err != nil {
		return nil, notFoundOr(err, "book not found")
	}

	if req.Title != nil {
		book.Title = normalize.Text(*req.Title)
	}
	if req.Pages != nil {
		book.PageCount = *req.Pages
	}
	switch {
	case req.ClearCategory:
		book.CategoryID = nil
	case req.CategoryID != nil:
		if err := requireCategory(ctx, s.store, *req.CategoryID, userID); err != nil {
			return nil, err
		}
		book.CategoryID = req.CategoryID
	}
	book.UpdatedAt = time.Now().UTC()

	if err := s.store.UpdateBook(ctx, book); err != nil {
		return nil, notFoundOr(err, "book not found")
	}

	s.logger.Debug("book updated", "book_id", book.ID, "user_id", userID)
	return book, nil
}

// DeleteBook removes a book with its notes, starred pages and page files.
// The notes are dropped from the search index once the delete has committed.
func (s *BookService) DeleteBook(ctx context.Context, userID string, bookID int64) (*domain.BookDeletion, error) {
	if err := requireBook(ctx, s.store, bookID, userID); err != nil {
		return nil, err
	}

	deletion, err := s.store.DeleteBook(ctx, bookID, userID)
	if err != nil {
		return nil, notFoundOr(err, "book not found")
	}

	if len(deletion.NoteIDs) > 0 {
		syncIndex(s.logger, "delete_book_notes",
			s.indexer.DeleteNotes(ctx, deletion.NoteIDs), "book_id", bookID)
	}
	s.metrics.BookDeleted()

	s.logger.Info("book deleted",
		"book_id", bookID,
		"user_id", userID,
		"notes", len(deletion.NoteIDs),
		"starred_pages", deletion.StarredPages,
		"page_files", deletion.PageFiles,
	)
	return deletion, nil
}

func indexerOrNoop(indexer store.SearchIndexer) store.SearchIndexer {
	if indexer == nil {
		return store.NewNoopSearchIndexer()
	}
	return indexer
}
