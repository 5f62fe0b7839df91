package sqlite

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/kanineapp/kanine-server/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
	s, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// seedUser inserts a user with the given ID.
func seedUser(t *testing.T, s *Store, id string) *domain.User {
	t.Helper()
	u := &domain.User{ID: id, Email: id + "@example.com", DisplayName: id, PasswordHash: "hash"}
	u.InitTimestamps()
	if err := s.CreateUser(context.Background(), u); err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	return u
}

// seedBook inserts a book owned by ownerID.
func seedBook(t *testing.T, s *Store, ownerID, title string, pages int) *domain.Book {
	t.Helper()
	now := time.Now().UTC()
	b := &domain.Book{OwnerID: ownerID, Title: title, PageCount: pages, CreatedAt: now, UpdatedAt: now}
	if err := s.CreateBook(context.Background(), b); err != nil {
		t.Fatalf("CreateBook: %v", err)
	}
	return b
}

// seedNote inserts a note on a page of a book with the given tags.
func seedNote(t *testing.T, s *Store, b *domain.Book, page int, content string, tags ...string) *domain.Note {
	t.Helper()
	now := time.Now().UTC()
	n := &domain.Note{
		OwnerID:    b.OwnerID,
		BookID:     b.ID,
		PageNumber: page,
		Content:    content,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.CreateNote(context.Background(), n, tags); err != nil {
		t.Fatalf("CreateNote: %v", err)
	}
	return n
}

func TestOpen(t *testing.T) {
	s := newTestStore(t)

	var journalMode string
	if err := s.db.QueryRow("PRAGMA journal_mode").Scan(&journalMode); err != nil {
		t.Fatalf("query journal_mode: %v", err)
	}
	if journalMode != "wal" {
		t.Errorf("expected wal, got %s", journalMode)
	}

	var fk int
	if err := s.db.QueryRow("PRAGMA foreign_keys").Scan(&fk); err != nil {
		t.Fatalf("query foreign_keys: %v", err)
	}
	if fk != 1 {
		t.Errorf("expected foreign_keys=1, got %d", fk)
	}

	tables := []string{
		"users", "categories", "books", "notes", "tags", "note_tags", "starred_pages", "page_files",
	}
	for _, table := range tables {
		var name string
		err := s.db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s not found: %v", table, err)
		}
	}
}

func TestOpen_Reopen(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "test.db")
	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	s, err := Open(dbPath, logger)
	if err != nil {
		t.Fatalf("first open: %v", err)
	}
	seedUser(t, s, "user-1")
	s.Close()

	s, err = Open(dbPath, logger)
	if err != nil {
		t.Fatalf("second open: %v", err)
	}
	defer s.Close()

	if _, err := s.GetUser(context.Background(), "user-1"); err != nil {
		t.Errorf("user lost across reopen: %v", err)
	}
}

func TestPing(t *testing.T) {
	s := newTestStore(t)
	if err := s.Ping(context.Background()); err != nil {
		t.Errorf("Ping: %v", err)
	}
}
