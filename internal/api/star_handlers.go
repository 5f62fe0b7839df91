package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/kanineapp/kanine-server/internal/service"
)

func (s *Server) registerStarRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "toggleStar",
		Method:      http.MethodPost,
		Path:        "/api/v1/books/{id}/star",
		Summary:     "Toggle page star",
		Description: "Stars the page if it is not starred and unstars it otherwise",
		Tags:        []string{"Books"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleToggleStar)
}

// StarRequest is the request body for a star toggle.
type StarRequest struct {
	PageNumber int `json:"pageNumber" doc:"Page to toggle, starting at 1"`
}

// StarInput wraps the star toggle request for Huma.
type StarInput struct {
	Authorization string `header:"Authorization"`
	ID            int64  `path:"id" doc:"Book ID"`
	Body          StarRequest
}

// StarOutput wraps the toggle result for Huma.
type StarOutput struct {
	Body *service.StarResult
}

func (s *Server) handleToggleStar(ctx context.Context, input *StarInput) (*StarOutput, error) {
	userID, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	result, err := s.services.Star.ToggleStar(ctx, userID, input.ID, service.StarRequest{
		PageNumber: input.Body.PageNumber,
	})
	if err != nil {
		return nil, err
	}
	return &StarOutput{Body: result}, nil
}
