// Package service implements the Kanine business rules on top of the store.
//
// Services validate input, verify ownership and translate store errors into
// domain errors. HTTP concerns stay in the api package.
package service

import (
	"context"
	"errors"
	"log/slog"

	domainerrors "github.com/kanineapp/kanine-server/internal/errors"
	"github.com/kanineapp/kanine-server/internal/store"
	"github.com/kanineapp/kanine-server/internal/validation"
)

// validate is shared by every service; validator caches struct metadata.
var validate = validation.New()

// notFoundOr converts store.ErrNotFound into a NOT_FOUND domain error.
// Other errors pass through unchanged.
func notFoundOr(err error, msg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return domainerrors.NotFound(msg)
	}
	return err
}

// conflictOr converts store.ErrAlreadyExists into an ALREADY_EXISTS domain error,
// keeping the store's message.
func conflictOr(err error) error {
	var storeErr *store.Error
	if errors.As(err, &storeErr) && errors.Is(err, store.ErrAlreadyExists) {
		return domainerrors.AlreadyExists(storeErr.Message)
	}
	return err
}

// requireBook fails with NOT_FOUND unless userID owns bookID.
// A missing book and a book of another user are reported the same way.
func requireBook(ctx context.Context, s store.Store, bookID int64, userID string) error {
	owned, err := s.IsBookOwnedBy(ctx, bookID, userID)
	if err != nil {
		return err
	}
	if !owned {
		return domainerrors.NotFound("book not found")
	}
	return nil
}

// requireNote fails with NOT_FOUND unless the note's book is owned by userID.
func requireNote(ctx context.Context, s store.Store, noteID int64, userID string) error {
	owned, err := s.IsNoteOwnedBy(ctx, noteID, userID)
	if err != nil {
		return err
	}
	if !owned {
		return domainerrors.NotFound("note not found")
	}
	return nil
}

// requireCategory fails with NOT_FOUND unless userID owns categoryID.
func requireCategory(ctx context.Context, s store.Store, categoryID int64, userID string) error {
	owned, err := s.IsCategoryOwnedBy(ctx, categoryID, userID)
	if err != nil {
		return err
	}
	if !owned {
		return domainerrors.NotFound("category not found")
	}
	return nil
}

// requirePage rejects page numbers below 1.
func requirePage(name string, page int) error {
	if page < 1 {
		return domainerrors.ValidationWithDetails(name+" must be at least 1",
			map[string]string{name: "must be at least 1"})
	}
	return nil
}

// syncIndex applies a search index update after a committed write.
// The index is derived data, so failures are logged and swallowed.
func syncIndex(logger *slog.Logger, op string, err error, args ...any) {
	if err == nil {
		return
	}
	logger.Warn("search index update failed", append([]any{"op", op, "error", err}, args...)...)
}

func loggerOrDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
