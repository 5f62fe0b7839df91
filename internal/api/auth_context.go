package api

import (
	"context"
	"net/http"

	"github.com/kanineapp/kanine-server/internal/auth"
	domainerrors "github.com/kanineapp/kanine-server/internal/errors"
)

// accessTokenQueryParam lets <img> and <iframe> elements fetch page files.
const accessTokenQueryParam = "access_token"

// authenticateRequest verifies the bearer token in authHeader and returns the user ID.
func (s *Server) authenticateRequest(ctx context.Context, authHeader string) (string, error) {
	token := auth.BearerToken(authHeader)
	if token == "" {
		return "", domainerrors.Unauthorized("missing or malformed authorization header")
	}
	return s.authenticateToken(ctx, token)
}

func (s *Server) authenticateToken(ctx context.Context, token string) (string, error) {
	user, err := s.services.Auth.VerifyAccessToken(ctx, token)
	if err != nil {
		return "", err
	}
	return user.ID, nil
}

// authenticateRawRequest authenticates a chi handler. The Authorization header
// wins; the access_token query parameter is accepted when it is absent.
func (s *Server) authenticateRawRequest(r *http.Request) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		return s.authenticateRequest(r.Context(), header)
	}
	if token := r.URL.Query().Get(accessTokenQueryParam); token != "" {
		return s.authenticateToken(r.Context(), token)
	}
	return "", domainerrors.Unauthorized("authentication required")
}
