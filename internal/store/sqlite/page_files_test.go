package sqlite

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/kanineapp/kanine-server/internal/domain"
	"github.com/kanineapp/kanine-server/internal/store"
)

func newPageFile(bookID int64, page int, name, fileType string, content []byte) *domain.PageFile {
	now := time.Now().UTC()
	return &domain.PageFile{
		PageFileInfo: domain.PageFileInfo{
			BookID:     bookID,
			PageNumber: page,
			FileName:   name,
			FileType:   fileType,
			CreatedAt:  now,
			UpdatedAt:  now,
		},
		Content: content,
	}
}

func TestUpsertPageFile_ReplacesInPlace(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "user-alice")
	b := seedBook(t, s, "user-alice", "Algebra", 10)

	first := newPageFile(b.ID, 4, "scan.png", domain.FileTypePNG, []byte("first-bytes"))
	first.BlurHash = "LKO2?U%2Tw=w]~RBVZRi};RPxuwH"
	if err := s.UpsertPageFile(ctx, first); err != nil {
		t.Fatalf("UpsertPageFile: %v", err)
	}

	second := newPageFile(b.ID, 4, "scan.pdf", domain.FileTypePDF, []byte("%PDF-1.7 second"))
	if err := s.UpsertPageFile(ctx, second); err != nil {
		t.Fatalf("UpsertPageFile second: %v", err)
	}

	if second.ID != first.ID {
		t.Errorf("replacement changed ID: %d -> %d", first.ID, second.ID)
	}
	if !second.CreatedAt.Equal(first.CreatedAt) {
		t.Errorf("replacement changed created_at: %v -> %v", first.CreatedAt, second.CreatedAt)
	}

	files, err := s.ListPageFiles(ctx, b.ID)
	if err != nil {
		t.Fatalf("ListPageFiles: %v", err)
	}
	if len(files) != 1 {
		t.Fatalf("expected one row, got %d", len(files))
	}

	got, err := s.GetPageFile(ctx, b.ID, 4)
	if err != nil {
		t.Fatalf("GetPageFile: %v", err)
	}
	if got.FileName != "scan.pdf" || got.FileType != domain.FileTypePDF {
		t.Errorf("metadata not replaced: %+v", got.PageFileInfo)
	}
	if got.BlurHash != "" {
		t.Errorf("stale blurhash kept: %q", got.BlurHash)
	}
	if got.Size != int64(len("%PDF-1.7 second")) {
		t.Errorf("Size: got %d", got.Size)
	}
	if !bytes.Equal(got.Content, []byte("%PDF-1.7 second")) {
		t.Errorf("Content: got %q", got.Content)
	}
}

func TestGetPageFile_NotFound(t *testing.T) {
	s := newTestStore(t)
	seedUser(t, s, "user-alice")
	b := seedBook(t, s, "user-alice", "Algebra", 10)

	if _, err := s.GetPageFile(context.Background(), b.ID, 1); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestUpsertPageFile_MissingBook(t *testing.T) {
	s := newTestStore(t)
	seedUser(t, s, "user-alice")

	f := newPageFile(4242, 1, "scan.png", domain.FileTypePNG, []byte("png"))
	if err := s.UpsertPageFile(context.Background(), f); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGetPageFileByID_Ownership(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "user-alice")
	seedUser(t, s, "user-bob")
	b := seedBook(t, s, "user-alice", "Algebra", 10)

	f := newPageFile(b.ID, 1, "p1.jpg", domain.FileTypeJPEG, []byte{0xff, 0xd8, 0xff})
	if err := s.UpsertPageFile(ctx, f); err != nil {
		t.Fatalf("UpsertPageFile: %v", err)
	}

	got, err := s.GetPageFileByID(ctx, f.ID, "user-alice")
	if err != nil {
		t.Fatalf("GetPageFileByID: %v", err)
	}
	if got.FileName != "p1.jpg" || got.Size != 3 {
		t.Errorf("got %+v", got)
	}

	if _, err := s.GetPageFileByID(ctx, f.ID, "user-bob"); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("expected ErrNotFound for foreign user, got %v", err)
	}
}

func TestDeletePageFile(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	seedUser(t, s, "user-alice")
	b := seedBook(t, s, "user-alice", "Algebra", 10)

	if err := s.UpsertPageFile(ctx, newPageFile(b.ID, 2, "p2.gif", domain.FileTypeGIF, []byte("GIF89a"))); err != nil {
		t.Fatalf("UpsertPageFile: %v", err)
	}

	if err := s.DeletePageFile(ctx, b.ID, 2); err != nil {
		t.Fatalf("DeletePageFile: %v", err)
	}
	if err := s.DeletePageFile(ctx, b.ID, 2); !errors.Is(err, store.ErrNotFound) {
		t.Errorf("second delete: expected ErrNotFound, got %v", err)
	}
}
