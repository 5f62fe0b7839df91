package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kanineapp/kanine-server/internal/auth"
	"github.com/kanineapp/kanine-server/internal/domain"
	domainerrors "github.com/kanineapp/kanine-server/internal/errors"
	"github.com/kanineapp/kanine-server/internal/id"
	"github.com/kanineapp/kanine-server/internal/normalize"
	"github.com/kanineapp/kanine-server/internal/store"
)

// dummyHash is verified against when the email is unknown, so a failed
// login takes the same time whether or not the account exists.
var dummyHash = func() string {
	h, err := auth.HashPassword("kanine-dummy-password")
	if err != nil {
		panic(err)
	}
	return h
}()

// AuthService handles user accounts and access token verification.
type AuthService struct {
	store               store.Store
	tokenService        *auth.TokenService
	registrationEnabled bool
	logger              *slog.Logger
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	store store.Store,
	tokenService *auth.TokenService,
	registrationEnabled bool,
	logger *slog.Logger,
) *AuthService {
	return &AuthService{
		store:               store,
		tokenService:        tokenService,
		registrationEnabled: registrationEnabled,
		logger:              loggerOrDefault(logger),
	}
}

// RegisterRequest contains the data for a new account.
type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email,max=254"`
	Password    string `json:"password" validate:"required,min=8,max=1024"`
	DisplayName string `json:"displayName" validate:"notblank,max=100"`
}

// LoginRequest contains user credentials.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse is returned by register and login.
type AuthResponse struct {
	User        *domain.User `json:"user"`
	AccessToken string       `json:"accessToken"`
	ExpiresAt   time.Time    `json:"expiresAt"`
}

// Register creates an account through the public endpoint and signs it in.
func (s *AuthService) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	if !s.registrationEnabled {
		return nil, domainerrors.Forbidden("registration is disabled")
	}

	user, err := s.CreateUser(ctx, req)
	if err != nil {
		return nil, err
	}

	return s.issue(user)
}

// CreateUser validates the request and stores a new user.
// Unlike Register it ignores the registration switch; the admin CLI uses it.
func (s *AuthService) CreateUser(ctx context.Context, req RegisterRequest) (*domain.User, error) {
	req.Email = normalize.Email(req.Email)
	req.DisplayName = normalize.Text(req.DisplayName)

	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	userID, err := id.NewUserID()
	if err != nil {
		return nil, fmt.Errorf("generate user ID: %w", err)
	}

	user := &domain.User{
		ID:           userID,
		Email:        req.Email,
		DisplayName:  req.DisplayName,
		PasswordHash: passwordHash,
	}
	user.InitTimestamps()

	if err := s.store.CreateUser(ctx, user); err != nil {
		return nil, conflictOr(err)
	}

	s.logger.Info("user created", "user_id", user.ID, "email", user.Email)
	return user, nil
}

// Login verifies credentials and issues an access token.
// Unknown email and wrong password produce the same error.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	req.Email = normalize.Email(req.Email)

	if err := validate.Validate(req); err != nil {
		return nil, err
	}

	user, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			auth.VerifyPassword(dummyHash, req.Password)
			return nil, domainerrors.InvalidCredentials("invalid email or password")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if !auth.VerifyPassword(user.PasswordHash, req.Password) {
		s.logger.Info("login failed", "user_id", user.ID)
		return nil, domainerrors.InvalidCredentials("invalid email or password")
	}

	now := time.Now().UTC()
	if err := s.store.TouchUserLogin(ctx, user.ID, now); err != nil {
		s.logger.Warn("failed to record login time", "user_id", user.ID, "error", err)
	} else {
		user.LastLoginAt = now
	}

	s.logger.Info("user logged in", "user_id", user.ID)
	return s.issue(user)
}

// VerifyAccessToken resolves a bearer token to its user.
// Expired tokens yield TOKEN_EXPIRED; anything else invalid yields UNAUTHORIZED.
func (s *AuthService) VerifyAccessToken(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, domainerrors.Unauthorized("missing access token")
	}

	claims, err := s.tokenService.VerifyAccessToken(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, domainerrors.TokenExpired("access token expired")
		}
		s.logger.Debug("rejected access token", "error", err)
		return nil, domainerrors.Unauthorized("invalid access token")
	}

	user, err := s.store.GetUser(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.Unauthorized("user no longer exists")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// GetCurrentUser returns the user with the given ID.
func (s *AuthService) GetCurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.store.GetUser(ctx, userID)
	if err != nil {
		return nil, notFoundOr(err, "user not found")
	}
	return user, nil
}

func (s *AuthService) issue(user *domain.User) (*AuthResponse, error) {
	token, expiresAt, err := s.tokenService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}
	return &AuthResponse{
		User:        user,
		AccessToken: token,
		ExpiresAt:   expiresAt,
	}, nil
}
