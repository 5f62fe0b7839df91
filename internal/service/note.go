package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kanineapp/kanine-server/internal/domain"
	domainerrors "github.com/kanineapp/kanine-server/internal/errors"
	"github.com/kanineapp/kanine-server/internal/markdown"
	"github.com/kanineapp/kanine-server/internal/normalize"
	"github.com/kanineapp/kanine-server/internal/store"
)

// NoteService manages notes and their tag sets.
type NoteService struct {
	store   store.Store
	indexer store.SearchIndexer
	logger  *slog.Logger
}

// NewNoteService creates a new note service. indexer may be nil.
func NewNoteService(store store.Store, indexer store.SearchIndexer, logger *slog.Logger) *NoteService {
	return &NoteService{
		store:   store,
		indexer: indexerOrNoop(indexer),
		logger:  loggerOrDefault(logger),
	}
}

// CreateNoteRequest is the payload for a new note.
type CreateNoteRequest struct {
	BookID     int64    `json:"bookId" validate:"gt=0"`
	PageNumber int      `json:"pageNumber" validate:"gte=1"`
	Content    string   `json:"content" validate:"notblank,max=20000"`
	Tags       []string `json:"tags" validate:"max=50,dive,tagname"`
	Format     string   `json:"format,omitempty" validate:"omitempty,oneof=markdown html"`
}

// UpdateNoteRequest replaces a note's content and its whole tag set.
type UpdateNoteRequest struct {
	Content string   `json:"content" validate:"notblank,max=20000"`
	Tags    []string `json:"tags" validate:"max=50,dive,tagname"`
	Format  string   `json:"format,omitempty" validate:"omitempty,oneof=markdown html"`
}

// ListNotes returns the notes of one page of a book, oldest first.
func (s *NoteService) ListNotes(ctx context.Context, userID string, bookID int64, page int) ([]*domain.Note, error) {
	if err := requirePage("pageNumber", page); err != nil {
		return nil, err
	}
	if err := requireBook(ctx, s.store, bookID, userID); err != nil {
		return nil, err
	}
	return s.store.ListNotesByPage(ctx, userID, bookID, page)
}

// GetNote returns a single note with its tags.
func (s *NoteService) GetNote(ctx context.Context, userID string, noteID int64) (*domain.Note, error) {
	note, err := s.store.GetNote(ctx, noteID, userID)
	if err != nil {
		return nil, notFoundOr(err, "note not found")
	}
	return note, nil
}

// ListFavorites returns the user's favorite notes across all books.
func (s *NoteService) ListFavorites(ctx context.Context, userID string) ([]*domain.Note, error) {
	return s.store.ListFavoriteNotes(ctx, userID)
}

// CreateNote attaches a note to a page of a book the user owns.
// Tags are connected to existing tags of the user or created.
func (s *NoteService) CreateNote(ctx context.Context, userID string, req CreateNoteRequest) (*domain.Note, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	if err := requireBook(ctx, s.store, req.BookID, userID); err != nil {
		return nil, err
	}

	content, err := storedContent(req.Content, req.Format)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	note := &domain.Note{
		OwnerID:    userID,
		BookID:     req.BookID,
		PageNumber: req.PageNumber,
		Content:    content,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.store.CreateNote(ctx, note, normalize.TagNames(req.Tags)); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("create note: %w", err)
	}

	syncIndex(s.logger, "index_note", s.indexer.IndexNote(ctx, note), "note_id", note.ID)

	s.logger.Debug("note created",
		"note_id", note.ID,
		"book_id", note.BookID,
		"page", note.PageNumber,
		"tags", len(note.Tags),
	)
	return note, nil
}

// UpdateNote replaces the content and the tag set of a note.
// Repeating the same update leaves the note unchanged.
func (s *NoteService) UpdateNote(ctx context.Context, userID string, noteID int64, req UpdateNoteRequest) (*domain.Note, error) {
	if err := validate.Validate(req); err != nil {
		return nil, err
	}
	if err := requireNote(ctx, s.store, noteID, userID); err != nil {
		return nil, err
	}

	content, err := storedContent(req.Content, req.Format)
	if err != nil {
		return nil, err
	}

	note, err := s.store.UpdateNote(ctx, noteID, userID, content, normalize.TagNames(req.Tags))
	if err != nil {
		return nil, notFoundOr(err, "note not found")
	}

	syncIndex(s.logger, "index_note", s.indexer.IndexNote(ctx, note), "note_id", note.ID)
	return note, nil
}

// DeleteNote removes a note and its tag links. Tags stay.
func (s *NoteService) DeleteNote(ctx context.Context, userID string, noteID int64) error {
	if err := requireNote(ctx, s.store, noteID, userID); err != nil {
		return err
	}

	if err := s.store.DeleteNote(ctx, noteID, userID); err != nil {
		return notFoundOr(err, "note not found")
	}

	syncIndex(s.logger, "delete_note", s.indexer.DeleteNotes(ctx, []int64{noteID}), "note_id", noteID)
	return nil
}

// ToggleFavorite flips the favorite flag of a note and returns the note.
func (s *NoteService) ToggleFavorite(ctx context.Context, userID string, noteID int64) (*domain.Note, error) {
	if err := requireNote(ctx, s.store, noteID, userID); err != nil {
		return nil, err
	}

	note, err := s.store.ToggleNoteFavorite(ctx, noteID, userID)
	if err != nil {
		return nil, notFoundOr(err, "note not found")
	}

	syncIndex(s.logger, "index_note", s.indexer.IndexNote(ctx, note), "note_id", note.ID)
	return note, nil
}

// storedContent converts HTML bodies to Markdown; Markdown is kept verbatim.
func storedContent(content, format string) (string, error) {
	converted, err := markdown.Normalize(content, format)
	if err != nil {
		return "", domainerrors.Validationf("content could not be converted from %s", format)
	}
	if strings.TrimSpace(converted) == "" {
		return "", domainerrors.ValidationWithDetails("content is required",
			map[string]string{"content": "is required"})
	}
	return converted, nil
}
