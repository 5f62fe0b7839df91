package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/kanineapp/kanine-server/internal/domain"
	domainerrors "github.com/kanineapp/kanine-server/internal/errors"
	"github.com/kanineapp/kanine-server/internal/media/images"
	"github.com/kanineapp/kanine-server/internal/metrics"
	"github.com/kanineapp/kanine-server/internal/normalize"
	"github.com/kanineapp/kanine-server/internal/store"
)

// DefaultUploadMaxBytes is used when no upload limit is configured.
const DefaultUploadMaxBytes int64 = 20 << 20

// PageFileService stores the single scanned file of a page.
type PageFileService struct {
	store    store.Store
	metrics  *metrics.Metrics
	maxBytes int64
	logger   *slog.Logger
}

// NewPageFileService creates a new page file service.
// A maxBytes of zero or less selects DefaultUploadMaxBytes.
func NewPageFileService(store store.Store, m *metrics.Metrics, maxBytes int64, logger *slog.Logger) *PageFileService {
	if maxBytes <= 0 {
		maxBytes = DefaultUploadMaxBytes
	}
	return &PageFileService{
		store:    store,
		metrics:  m,
		maxBytes: maxBytes,
		logger:   loggerOrDefault(logger),
	}
}

// UploadRequest carries one uploaded page file.
type UploadRequest struct {
	BookID       int64
	PageNumber   int
	FileName     string
	DeclaredType string
	Content      []byte
}

// MaxBytes returns the upload size limit.
func (s *PageFileService) MaxBytes() int64 {
	return s.maxBytes
}

// Upload stores the file for a page, replacing the previous one, and returns
// the updated book.
func (s *PageFileService) Upload(ctx context.Context, userID string, req UploadRequest) (*domain.BookDetail, error) {
	if err := requireBook(ctx, s.store, req.BookID, userID); err != nil {
		return nil, err
	}
	if err := requirePage("pageNumber", req.PageNumber); err != nil {
		return nil, err
	}
	if len(req.Content) == 0 {
		return nil, domainerrors.ValidationWithDetails("file is required",
			map[string]string{"file": "is required"})
	}
	if int64(len(req.Content)) > s.maxBytes {
		return nil, domainerrors.ValidationWithDetails(
			fmt.Sprintf("file exceeds the maximum size of %d bytes", s.maxBytes),
			map[string]string{"file": "too large"})
	}

	fileType := images.DetectFileType(req.Content, req.DeclaredType)
	if !images.IsAllowed(fileType) {
		return nil, domainerrors.ValidationWithDetails(
			fmt.Sprintf("file type %s is not allowed", fileType),
			map[string]string{"file": "must be a JPEG, PNG, GIF, WebP image or a PDF"})
	}

	now := time.Now().UTC()
	file := &domain.PageFile{
		PageFileInfo: domain.PageFileInfo{
			BookID:     req.BookID,
			PageNumber: req.PageNumber,
			FileName:   cleanFileName(req.FileName, req.PageNumber),
			FileType:   fileType,
			BlurHash:   images.Placeholder(req.Content, fileType, s.logger),
			CreatedAt:  now,
			UpdatedAt:  now,
		},
		Content: req.Content,
	}

	if err := s.store.UpsertPageFile(ctx, file); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, domainerrors.NotFound("book not found")
		}
		return nil, fmt.Errorf("store page file: %w", err)
	}
	s.metrics.PageUploaded()

	s.logger.Info("page file stored",
		"book_id", file.BookID,
		"page", file.PageNumber,
		"file_type", file.FileType,
		"size", file.Size,
	)

	detail, err := s.store.GetBookDetail(ctx, req.BookID, userID)
	if err != nil {
		return nil, notFoundOr(err, "book not found")
	}
	return detail, nil
}

// Get returns the file of a page including its content.
func (s *PageFileService) Get(ctx context.Context, userID string, bookID int64, page int) (*domain.PageFile, error) {
	if err := requirePage("pageNumber", page); err != nil {
		return nil, err
	}
	if err := requireBook(ctx, s.store, bookID, userID); err != nil {
		return nil, err
	}

	file, err := s.store.GetPageFile(ctx, bookID, page)
	if err != nil {
		return nil, notFoundOr(err, "page file not found")
	}
	return file, nil
}

// Delete removes the file of a page.
func (s *PageFileService) Delete(ctx context.Context, userID string, bookID int64, page int) error {
	if err := requirePage("pageNumber", page); err != nil {
		return err
	}
	if err := requireBook(ctx, s.store, bookID, userID); err != nil {
		return err
	}

	if err := s.store.DeletePageFile(ctx, bookID, page); err != nil {
		return notFoundOr(err, "page file not found")
	}

	s.logger.Info("page file deleted", "book_id", bookID, "page", page)
	return nil
}

// cleanFileName strips directories and control characters from a client file
// name, falling back to "page-<n>" when nothing is left.
func cleanFileName(name string, page int) string {
	name = filepath.Base(strings.ReplaceAll(normalize.Text(name), `\`, "/"))
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || r == '"' {
			return -1
		}
		return r
	}, name)
	if name == "" || name == "." || name == "/" {
		return "page-" + strconv.Itoa(page)
	}
	if len(name) > 255 {
		name = strings.ToValidUTF8(name[:255], "")
	}
	return name
}
