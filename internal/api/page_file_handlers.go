package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	domainerrors "github.com/kanineapp/kanine-server/internal/errors"
	"github.com/kanineapp/kanine-server/internal/http/response"
	"github.com/kanineapp/kanine-server/internal/logger"
	"github.com/kanineapp/kanine-server/internal/service"
)

const (
	// multipartOverhead covers boundaries and the pageNumber field on top of the file itself.
	multipartOverhead = 64 << 10
	// multipartMemory is how much of a form is buffered in memory before spilling to disk.
	multipartMemory = 8 << 20

	// CachePrivate lets the browser cache a page file but never a shared proxy.
	CachePrivate = "private"
)

// handleUploadPageFile stores the multipart "file" field as the file of one page,
// replacing any previous file of that page.
func (s *Server) handleUploadPageFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx, s.logger)

	userID, err := s.authenticateRequest(ctx, r.Header.Get("Authorization"))
	if err != nil {
		response.HandleError(w, err, log)
		return
	}

	bookID, err := parsePositiveParam(chi.URLParam(r, "id"), "id")
	if err != nil {
		response.HandleError(w, err, log)
		return
	}

	maxBytes := s.services.PageFile.MaxBytes()
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes+multipartOverhead)
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			response.HandleError(w, domainerrors.Validationf("file exceeds the %d byte limit", maxBytes), log)
			return
		}
		response.BadRequest(w, "invalid multipart form", log)
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	page, err := parsePositiveParam(r.FormValue("pageNumber"), "pageNumber")
	if err != nil {
		response.HandleError(w, err, log)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		response.HandleError(w, domainerrors.ValidationWithDetails("file is required",
			map[string]string{"file": "is required"}), log)
		return
	}
	defer func() { _ = file.Close() }()

	content, err := io.ReadAll(io.LimitReader(file, maxBytes+1))
	if err != nil {
		log.Error("Failed to read uploaded file", "error", err, "book_id", bookID)
		response.InternalError(w, log)
		return
	}

	detail, err := s.services.PageFile.Upload(ctx, userID, service.UploadRequest{
		BookID:       bookID,
		PageNumber:   int(page),
		FileName:     header.Filename,
		DeclaredType: header.Header.Get("Content-Type"),
		Content:      content,
	})
	if err != nil {
		response.HandleError(w, err, log)
		return
	}

	response.Success(w, detail, log)
}

// handleDownloadPageFile serves the raw bytes of a page file.
// The token may come from the Authorization header or the access_token query parameter.
func (s *Server) handleDownloadPageFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx, s.logger)

	userID, err := s.authenticateRawRequest(r)
	if err != nil {
		response.HandleError(w, err, log)
		return
	}

	bookID, page, err := bookPageParams(r)
	if err != nil {
		response.HandleError(w, err, log)
		return
	}

	file, err := s.services.PageFile.Get(ctx, userID, bookID, page)
	if err != nil {
		response.HandleError(w, err, log)
		return
	}

	h := w.Header()
	h.Set("Content-Type", file.FileType)
	h.Set("Content-Disposition", mime.FormatMediaType("inline", map[string]string{"filename": file.FileName}))
	h.Set("ETag", fmt.Sprintf(`"%d-%d"`, file.ID, file.UpdatedAt.UnixNano()))
	h.Set("Cache-Control", CachePrivate)
	h.Set("X-Content-Type-Options", "nosniff")

	// ServeContent handles Content-Length, If-None-Match and range requests.
	http.ServeContent(w, r, file.FileName, file.UpdatedAt, bytes.NewReader(file.Content))
}

// handleDeletePageFile removes the file of one page.
func (s *Server) handleDeletePageFile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := logger.FromContext(ctx, s.logger)

	userID, err := s.authenticateRequest(ctx, r.Header.Get("Authorization"))
	if err != nil {
		response.HandleError(w, err, log)
		return
	}

	bookID, page, err := bookPageParams(r)
	if err != nil {
		response.HandleError(w, err, log)
		return
	}

	if err := s.services.PageFile.Delete(ctx, userID, bookID, page); err != nil {
		response.HandleError(w, err, log)
		return
	}

	response.Success(w, MessageResponse{Message: "page file deleted"}, log)
}

func bookPageParams(r *http.Request) (int64, int, error) {
	bookID, err := parsePositiveParam(chi.URLParam(r, "id"), "id")
	if err != nil {
		return 0, 0, err
	}
	page, err := parsePositiveParam(chi.URLParam(r, "page"), "page")
	if err != nil {
		return 0, 0, err
	}
	return bookID, int(page), nil
}

// parsePositiveParam parses a path or form value that must be an integer >= 1.
func parsePositiveParam(raw, name string) (int64, error) {
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || n < 1 {
		return 0, domainerrors.ValidationWithDetails(
			fmt.Sprintf("invalid %s", name),
			map[string]string{name: "must be a positive integer"},
		)
	}
	return n, nil
}
