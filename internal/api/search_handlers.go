package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/kanineapp/kanine-server/internal/search"
	"github.com/kanineapp/kanine-server/internal/service"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchNotes",
		Method:      http.MethodGet,
		Path:        "/api/v1/notes/search",
		Summary:     "Search notes",
		Description: "Full-text search over the user's notes with optional book, tag and favorite filters",
		Tags:        []string{"Notes"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleSearchNotes)
}

// SearchNotesInput contains the search parameters.
type SearchNotesInput struct {
	Authorization string `header:"Authorization"`
	Query         string `query:"q" doc:"Words to match against content and tags"`
	BookID        int64  `query:"bookId" doc:"Only notes of this book"`
	Tag           string `query:"tag" doc:"Only notes with this tag"`
	Favorites     bool   `query:"favorites" doc:"Only favorite notes"`
	Limit         int    `query:"limit" doc:"Maximum hits, 20 by default, at most 100"`
	Offset        int    `query:"offset" doc:"Hits to skip"`
}

// SearchNotesOutput wraps the search result for Huma.
type SearchNotesOutput struct {
	Body *search.SearchResult
}

func (s *Server) handleSearchNotes(ctx context.Context, input *SearchNotesInput) (*SearchNotesOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Search.Search(ctx, userID, service.SearchRequest{
		Query:         input.Query,
		BookID:        input.BookID,
		Tag:           input.Tag,
		FavoritesOnly: input.Favorites,
		Limit:         input.Limit,
		Offset:        input.Offset,
	})
	if err != nil {
		return nil, err
	}
	return &SearchNotesOutput{Body: result}, nil
}
