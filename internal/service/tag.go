package service

import (
	"context"
	"log/slog"

	"github.com/kanineapp/kanine-server/internal/domain"
	"github.com/kanineapp/kanine-server/internal/store"
)

// TagService exposes a user's tags. Tags are created implicitly by notes.
type TagService struct {
	store  store.Store
	logger *slog.Logger
}

// NewTagService creates a new tag service.
func NewTagService(store store.Store, logger *slog.Logger) *TagService {
	return &TagService{
		store:  store,
		logger: loggerOrDefault(logger),
	}
}

// ListTags returns every tag of the user with its note count, ordered by name.
func (s *TagService) ListTags(ctx context.Context, userID string) ([]*domain.Tag, error) {
	return s.store.ListTags(ctx, userID)
}
