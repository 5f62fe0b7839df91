package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kanineapp/kanine-server/internal/domain"
	"github.com/kanineapp/kanine-server/internal/store"
)

func TestCreateAndGetUser(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	u := seedUser(t, s, "user-alice")

	got, err := s.GetUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if got.Email != u.Email {
		t.Errorf("Email: got %q, want %q", got.Email, u.Email)
	}
	if got.PasswordHash != "hash" {
		t.Errorf("PasswordHash: got %q", got.PasswordHash)
	}
	if !got.LastLoginAt.IsZero() {
		t.Errorf("LastLoginAt should be zero, got %v", got.LastLoginAt)
	}

	byEmail, err := s.GetUserByEmail(ctx, u.Email)
	if err != nil {
		t.Fatalf("GetUserByEmail: %v", err)
	}
	if byEmail.ID != u.ID {
		t.Errorf("ID: got %q, want %q", byEmail.ID, u.ID)
	}
}

func TestCreateUser_DuplicateEmail(t *testing.T) {
	s := newTestStore(t)
	seedUser(t, s, "user-alice")

	dup := &domain.User{ID: "user-other", Email: "user-alice@example.com", PasswordHash: "x"}
	dup.InitTimestamps()

	err := s.CreateUser(context.Background(), dup)
	if !errors.Is(err, store.ErrAlreadyExists) {
		t.Errorf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestGetUser_NotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetUser(context.Background(), "user-missing")
	if !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestTouchUserLogin(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := seedUser(t, s, "user-alice")

	at := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	if err := s.TouchUserLogin(ctx, u.ID, at); err != nil {
		t.Fatalf("TouchUserLogin: %v", err)
	}

	got, err := s.GetUser(ctx, u.ID)
	if err != nil {
		t.Fatalf("GetUser: %v", err)
	}
	if !got.LastLoginAt.Equal(at) {
		t.Errorf("LastLoginAt: got %v, want %v", got.LastLoginAt, at)
	}

	if err := s.TouchUserLogin(ctx, "user-missing", at); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for missing user, got %v", err)
	}
}
