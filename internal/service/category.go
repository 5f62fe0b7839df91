package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kanineapp/kanine-server/internal/domain"
	"github.com/kanineapp/kanine-server/internal/normalize"
	"github.com/kanineapp/kanine-server/internal/store"
)

// CategoryService manages the categories a user groups books into.
type CategoryService struct {
	store  store.Store
	logger *slog.Logger
}

// NewCategoryService creates a new category service.
func NewCategoryService(store store.Store, logger *slog.Logger) *CategoryService {
	return &CategoryService{
		store:  store,
		logger: loggerOrDefault(logger),
	}
}

// CategoryRequest is the payload for creating or renaming a category.
type CategoryRequest struct {
	Name string `json:"name" validate:"notblank,max=100"`
}

// CreateCategory creates a category. Names are unique per user.
func (s *CategoryService) CreateCategory(ctx context.Context, userID string, req CategoryRequest) (*domain.Category, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	category := &domain.Category{
		OwnerID:   userID,
		Name:      normalize.Text(req.Name),
		CreatedAt: now,
		UpdatedAt: now,
		Books:     []*domain.Book{},
	}

	if err := s.store.CreateCategory(ctx, category); err != nil {
		return nil, conflictOr(err)
	}

	s.logger.Info("category created", "category_id", category.ID, "user_id", userID)
	return category, nil
}

// GetCategory returns a category with its books.
func (s *CategoryService) GetCategory(ctx context.Context, userID string, categoryID int64) (*domain.Category, error) {
	category, err := s.store.GetCategory(ctx, categoryID, userID)
	if err != nil {
		return nil, notFoundOr(err, "category not found")
	}
	return category, nil
}

// ListCategories returns the user's categories ordered by name, each with its books.
func (s *CategoryService) ListCategories(ctx context.Context, userID string) ([]*domain.Category, error) {
	return s.store.ListCategories(ctx, userID)
}

// UpdateCategory renames a category.
func (s *CategoryService) UpdateCategory(ctx context.Context, userID string, categoryID int64, req CategoryRequest) (*domain.Category, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	category := &domain.Category{
		ID:        categoryID,
		OwnerID:   userID,
		Name:      normalize.Text(req.Name),
		UpdatedAt: time.Now().UTC(),
	}
	if err := s.store.UpdateCategory(ctx, category); err != nil {
		return nil, conflictOr(notFoundOr(err, "category not found"))
	}

	updated, err := s.store.GetCategory(ctx, categoryID, userID)
	if err != nil {
		return nil, fmt.Errorf("reload category: %w", err)
	}
	return updated, nil
}

// DeleteCategory deletes a category. Its books stay and lose their category.
func (s *CategoryService) DeleteCategory(ctx context.Context, userID string, categoryID int64) error {
	detached, err := s.store.DeleteCategory(ctx, categoryID, userID)
	if err != nil {
		return notFoundOr(err, "category not found")
	}

	s.logger.Info("category deleted",
		"category_id", categoryID,
		"user_id", userID,
		"detached_books", detached,
	)
	return nil
}
