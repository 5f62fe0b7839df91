package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/kanineapp/kanine-server/internal/domain"
	"github.com/kanineapp/kanine-server/internal/service"
)

func (s *Server) registerNoteRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listNotes",
		Method:      http.MethodGet,
		Path:        "/api/v1/notes",
		Summary:     "List page notes",
		Description: "Returns the notes of one page of a book, oldest first",
		Tags:        []string{"Notes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListNotes)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createNote",
		Method:        http.MethodPost,
		Path:          "/api/v1/notes",
		Summary:       "Create note",
		Description:   "Creates a note on a page. HTML content is converted to Markdown.",
		Tags:          []string{"Notes"},
		DefaultStatus: http.StatusCreated,
		Security:      []map[string][]string{{"bearer": {}}},
	}, s.handleCreateNote)

	huma.Register(s.api, huma.Operation{
		OperationID: "listFavoriteNotes",
		Method:      http.MethodGet,
		Path:        "/api/v1/notes/favorites",
		Summary:     "List favorite notes",
		Description: "Returns the user's favorite notes, newest first",
		Tags:        []string{"Notes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListFavoriteNotes)

	huma.Register(s.api, huma.Operation{
		OperationID: "getNote",
		Method:      http.MethodGet,
		Path:        "/api/v1/notes/{id}",
		Summary:     "Get note",
		Description: "Returns a note with its tags",
		Tags:        []string{"Notes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetNote)

	huma.Register(s.api, huma.Operation{
		OperationID: "updateNote",
		Method:      http.MethodPut,
		Path:        "/api/v1/notes/{id}",
		Summary:     "Update note",
		Description: "Replaces the note's content and its whole tag set",
		Tags:        []string{"Notes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateNote)

	huma.Register(s.api, huma.Operation{
		OperationID: "deleteNote",
		Method:      http.MethodDelete,
		Path:        "/api/v1/notes/{id}",
		Summary:     "Delete note",
		Description: "Deletes a note. Its tags are kept.",
		Tags:        []string{"Notes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteNote)

	huma.Register(s.api, huma.Operation{
		OperationID: "toggleNoteFavorite",
		Method:      http.MethodPost,
		Path:        "/api/v1/notes/{id}/favorite",
		Summary:     "Toggle favorite",
		Description: "Flips the note's favorite flag",
		Tags:        []string{"Notes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleToggleNoteFavorite)
}

// ListNotesInput selects one page of one book.
type ListNotesInput struct {
	Authorization string `header:"Authorization"`
	BookID        int64  `query:"bookId" required:"true" doc:"Book ID"`
	PageNumber    int    `query:"pageNumber" required:"true" doc:"Page number, starting at 1"`
}

// CreateNoteRequest is the request body for creating a note.
type CreateNoteRequest struct {
	BookID     int64    `json:"bookId" doc:"Book the note belongs to"`
	PageNumber int      `json:"pageNumber" doc:"Page number, starting at 1"`
	Content    string   `json:"content" doc:"Note text"`
	Tags       []string `json:"tags,omitempty" doc:"Tag names; normalized and deduplicated"`
	Format     string   `json:"format,omitempty" enum:"markdown,html" doc:"Content format, markdown by default"`
}

// CreateNoteInput wraps the create note request for Huma.
type CreateNoteInput struct {
	Authorization string `header:"Authorization"`
	Body          CreateNoteRequest
}

// UpdateNoteRequest is the request body for replacing a note.
type UpdateNoteRequest struct {
	Content string   `json:"content" doc:"Note text"`
	Tags    []string `json:"tags,omitempty" doc:"Complete tag set; omitted means no tags"`
	Format  string   `json:"format,omitempty" enum:"markdown,html" doc:"Content format, markdown by default"`
}

// UpdateNoteInput wraps the update note request for Huma.
type UpdateNoteInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id" doc:"Note ID"`
	Body          UpdateNoteRequest
}

// NoteIDInput identifies a note.
type NoteIDInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id" doc:"Note ID"`
}

// NoteOutput wraps a note for Huma.
type NoteOutput struct {
	Body *domain.Note
}

// NotesOutput wraps a list of notes for Huma.
type NotesOutput struct {
	Body []*domain.Note
}

func (s *Server) handleListNotes(ctx context.Context, input *ListNotesInput) (*NotesOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	notes, err := s.services.Note.ListNotes(ctx, userID, input.BookID, input.PageNumber)
	if err != nil {
		return nil, err
	}
	return &NotesOutput{Body: notes}, nil
}

func (s *Server) handleCreateNote(ctx context.Context, input *CreateNoteInput) (*NoteOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	note, err := s.services.Note.CreateNote(ctx, userID, service.CreateNoteRequest{
		BookID:     input.Body.BookID,
		PageNumber: input.Body.PageNumber,
		Content:    input.Body.Content,
		Tags:       input.Body.Tags,
		Format:     input.Body.Format,
	})
	if err != nil {
		return nil, err
	}
	return &NoteOutput{Body: note}, nil
}

func (s *Server) handleListFavoriteNotes(ctx context.Context, input *AuthenticatedInput) (*NotesOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	notes, err := s.services.Note.ListFavorites(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &NotesOutput{Body: notes}, nil
}

func (s *Server) handleGetNote(ctx context.Context, input *NoteIDInput) (*NoteOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	note, err := s.services.Note.GetNote(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	return &NoteOutput{Body: note}, nil
}

func (s *Server) handleUpdateNote(ctx context.Context, input *UpdateNoteInput) (*NoteOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	note, err := s.services.Note.UpdateNote(ctx, userID, input.ID, service.UpdateNoteRequest{
		Content: input.Body.Content,
		Tags:    input.Body.Tags,
		Format:  input.Body.Format,
	})
	if err != nil {
		return nil, err
	}
	return &NoteOutput{Body: note}, nil
}

func (s *Server) handleDeleteNote(ctx context.Context, input *NoteIDInput) (*MessageOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Note.DeleteNote(ctx, userID, input.ID); err != nil {
		return nil, err
	}
	return &MessageOutput{Body: MessageResponse{Message: "note deleted"}}, nil
}

func (s *Server) handleToggleNoteFavorite(ctx context.Context, input *NoteIDInput) (*NoteOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	note, err := s.services.Note.ToggleFavorite(ctx, userID, input.ID)
	if err != nil {
		return nil, err
	}
	return &NoteOutput{Body: note}, nil
}
