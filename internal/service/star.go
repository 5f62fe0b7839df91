package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kanineapp/kanine-server/internal/domain"
	"github.com/kanineapp/kanine-server/internal/metrics"
	"github.com/kanineapp/kanine-server/internal/store"
)

// StarService toggles starred pages.
type StarService struct {
	store   store.Store
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// NewStarService creates a new star service. m may be nil.
func NewStarService(store store.Store, m *metrics.Metrics, logger *slog.Logger) *StarService {
	return &StarService{
		store:   store,
		metrics: m,
		logger:  loggerOrDefault(logger),
	}
}

// StarRequest names the page to toggle.
type StarRequest struct {
	PageNumber int `json:"pageNumber" validate:"gte=1"`
}

// StarResult reports the state of the page after a toggle.
type StarResult struct {
	Starred bool               `json:"starred"`
	Book    *domain.BookDetail `json:"book"`
}

// ToggleStar stars an unstarred page and unstars a starred one.
func (s *StarService) ToggleStar(ctx context.Context, userID string, bookID int64, req StarRequest) (*StarResult, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	if err := requireBook(ctx, s.store, bookID, userID); err != nil {
		return nil, err
	}

	starred, err := s.store.ToggleStar(ctx, bookID, req.PageNumber)
	if err != nil {
		return nil, fmt.Errorf("toggle star: %w", err)
	}
	s.metrics.StarToggled(starred)

	book, err := s.store.GetBookDetail(ctx, bookID, userID)
	if err != nil {
		return nil, notFoundOr(err, "book not found")
	}

	s.logger.Debug("page star toggled", "book_id", bookID, "page", req.PageNumber, "starred", starred)
	return &StarResult{Starred: starred, Book: book}, nil
}
