package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kanineapp/kanine-server/internal/normalize"
	"github.com/kanineapp/kanine-server/internal/search"
	"github.com/kanineapp/kanine-server/internal/store"
)

// SearchService runs note searches and keeps the index in step with the database.
type SearchService struct {
	index  *search.SearchIndex
	store  store.Store
	logger *slog.Logger
}

// NewSearchService creates a new search service.
func NewSearchService(index *search.SearchIndex, store store.Store, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:  index,
		store:  store,
		logger: loggerOrDefault(logger),
	}
}

// SearchRequest is a note search issued by a user.
type SearchRequest struct {
	Query         string `json:"q" validate:"max=500"`
	BookID        int64  `json:"bookId" validate:"gte=0"`
	Tag           string `json:"tag" validate:"tagname"`
	FavoritesOnly bool   `json:"favorites"`
	Limit         int    `json:"limit" validate:"gte=0,lte=100"`
	Offset        int    `json:"offset" validate:"gte=0"`
}

// Search returns the user's notes matching the request.
// A book filter must name a book the user owns.
func (s *SearchService) Search(ctx context.Context, userID string, req SearchRequest) (*search.SearchResult, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	if req.BookID != 0 {
		if err := requireBook(ctx, s.store, req.BookID, userID); err != nil {
			return nil, err
		}
	}

	return s.index.Search(ctx, search.SearchParams{
		OwnerID:       userID,
		Query:         normalize.Text(req.Query),
		BookID:        req.BookID,
		Tag:           normalize.TagName(req.Tag),
		FavoritesOnly: req.FavoritesOnly,
		Limit:         req.Limit,
		Offset:        req.Offset,
	})
}

// Reindex rebuilds the whole index from the database and returns the number
// of indexed notes.
func (s *SearchService) Reindex(ctx context.Context) (int, error) {
	start := time.Now()

	notes, err := s.store.ListAllNotes(ctx)
	if err != nil {
		return 0, fmt.Errorf("list notes: %w", err)
	}

	if err := s.index.Rebuild(ctx, notes); err != nil {
		return 0, fmt.Errorf("rebuild index: %w", err)
	}

	s.logger.Info("search index rebuilt", "notes", len(notes), "duration", time.Since(start))
	return len(notes), nil
}

// EnsureIndexed reindexes when the index is empty but the database has notes,
// which happens after the index directory was removed or the mapping changed.
func (s *SearchService) EnsureIndexed(ctx context.Context) error {
	docs, err := s.index.DocumentCount()
	if err != nil {
		return fmt.Errorf("count documents: %w", err)
	}
	if docs > 0 {
		return nil
	}

	notes, err := s.store.CountNotes(ctx)
	if err != nil {
		return fmt.Errorf("count notes: %w", err)
	}
	if notes == 0 {
		return nil
	}

	s.logger.Info("search index is empty, reindexing", "notes", notes)
	_, err = s.Reindex(ctx)
	return err
}

// DocumentCount returns the number of notes in the index.
func (s *SearchService) DocumentCount() (uint64, error) {
	return s.index.DocumentCount()
}
