package api

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kanineapp/kanine-server/internal/domain"
)

func testPNG(t *testing.T) []byte {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 8, 8))
	for y := range 8 {
		for x := range 8 {
			img.Set(x, y, color.RGBA{R: 30, G: 90, B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

// multipartBody builds an upload form. An empty fileName omits the file part.
func multipartBody(t *testing.T, pageNumber, fileName string, content []byte) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if pageNumber != "" {
		require.NoError(t, w.WriteField("pageNumber", pageNumber))
	}
	if fileName != "" {
		part, err := w.CreateFormFile("file", fileName)
		require.NoError(t, err)
		_, err = part.Write(content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

// bearerValue turns the humatest header argument into a header value.
func bearerValue(bearer string) string {
	return strings.TrimPrefix(bearer, "Authorization: ")
}

func (ts *testServer) upload(t *testing.T, bearer string, bookID int64, pageNumber, fileName string, content []byte) *httptest.ResponseRecorder {
	t.Helper()

	body, contentType := multipartBody(t, pageNumber, fileName, content)
	req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/api/v1/books/%d/upload", bookID), body)
	req.Header.Set("Content-Type", contentType)
	if bearer != "" {
		req.Header.Set("Authorization", bearerValue(bearer))
	}

	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)
	return rec
}

func (ts *testServer) download(t *testing.T, path string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)
	return rec
}

func TestPageFiles_UploadDownloadDelete(t *testing.T) {
	ts := setupTestServer(t)
	alice := ts.registerUser(t, "alice@example.com")
	book := ts.createBook(t, alice, map[string]any{"title": "Algebra", "pages": 300})

	content := testPNG(t)
	resp := ts.upload(t, alice, book.ID, "7", "scan.png", content)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	detail := decodeData[domain.BookDetail](t, resp)
	require.Len(t, detail.PageFiles, 1)
	assert.Equal(t, 7, detail.PageFiles[0].PageNumber)
	assert.Equal(t, domain.FileTypePNG, detail.PageFiles[0].FileType)
	assert.NotEmpty(t, detail.PageFiles[0].BlurHash)

	path := fmt.Sprintf("/api/v1/books/%d/file/7", book.ID)
	resp = ts.download(t, path, map[string]string{"Authorization": bearerValue(alice)})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, content, resp.Body.Bytes())
	assert.Equal(t, domain.FileTypePNG, resp.Header().Get("Content-Type"))
	assert.Equal(t, fmt.Sprint(len(content)), resp.Header().Get("Content-Length"))
	assert.Equal(t, `inline; filename=scan.png`, resp.Header().Get("Content-Disposition"))
	assert.Equal(t, CachePrivate, resp.Header().Get("Cache-Control"))
	etag := resp.Header().Get("ETag")
	require.NotEmpty(t, etag)

	// Conditional request.
	resp = ts.download(t, path, map[string]string{"Authorization": bearerValue(alice), "If-None-Match": etag})
	assert.Equal(t, http.StatusNotModified, resp.Code)

	// Token in the query string, for <img> tags.
	resp = ts.download(t, path+"?access_token="+strings.TrimPrefix(bearerValue(alice), "Bearer "), nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, content, resp.Body.Bytes())

	// Replace with a PDF.
	pdf := []byte("%PDF-1.7\nreplacement")
	resp = ts.upload(t, alice, book.ID, "7", "scan.pdf", pdf)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())
	detail = decodeData[domain.BookDetail](t, resp)
	require.Len(t, detail.PageFiles, 1)
	assert.Equal(t, "scan.pdf", detail.PageFiles[0].FileName)
	assert.Equal(t, domain.FileTypePDF, detail.PageFiles[0].FileType)

	resp = ts.download(t, path, map[string]string{"Authorization": bearerValue(alice)})
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, pdf, resp.Body.Bytes())

	// Delete.
	req := httptest.NewRequest(http.MethodDelete, path, nil)
	req.Header.Set("Authorization", bearerValue(alice))
	rec := httptest.NewRecorder()
	ts.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "page file deleted", decodeData[MessageResponse](t, rec).Message)

	resp = ts.download(t, path, map[string]string{"Authorization": bearerValue(alice)})
	assertError(t, resp, http.StatusNotFound, "NOT_FOUND")
}

func TestPageFiles_Isolation(t *testing.T) {
	ts := setupTestServer(t)
	alice := ts.registerUser(t, "alice@example.com")
	bob := ts.registerUser(t, "bob@example.com")
	book := ts.createBook(t, alice, map[string]any{"title": "Algebra"})

	resp := ts.upload(t, alice, book.ID, "1", "scan.png", testPNG(t))
	require.Equal(t, http.StatusOK, resp.Code)

	path := fmt.Sprintf("/api/v1/books/%d/file/1", book.ID)

	resp = ts.download(t, path, map[string]string{"Authorization": bearerValue(bob)})
	assertError(t, resp, http.StatusNotFound, "NOT_FOUND")

	resp = ts.download(t, path, nil)
	assertError(t, resp, http.StatusUnauthorized, "UNAUTHORIZED")

	resp = ts.download(t, path+"?access_token=garbage", nil)
	assertError(t, resp, http.StatusUnauthorized, "UNAUTHORIZED")

	resp = ts.upload(t, bob, book.ID, "1", "evil.png", testPNG(t))
	assertError(t, resp, http.StatusNotFound, "NOT_FOUND")

	resp = ts.upload(t, "", book.ID, "1", "anon.png", testPNG(t))
	assertError(t, resp, http.StatusUnauthorized, "UNAUTHORIZED")
}

func TestPageFiles_UploadValidation(t *testing.T) {
	ts := setupTestServer(t, withUploadMaxBytes(1024))
	alice := ts.registerUser(t, "alice@example.com")
	book := ts.createBook(t, alice, map[string]any{"title": "Algebra"})

	tests := []struct {
		name     string
		bookID   int64
		page     string
		fileName string
		content  []byte
		status   int
		code     string
	}{
		{name: "missing page number", bookID: book.ID, fileName: "a.pdf", content: []byte("%PDF-1.4"), status: http.StatusBadRequest, code: "VALIDATION"},
		{name: "page zero", bookID: book.ID, page: "0", fileName: "a.pdf", content: []byte("%PDF-1.4"), status: http.StatusBadRequest, code: "VALIDATION"},
		{name: "non numeric page", bookID: book.ID, page: "seven", fileName: "a.pdf", content: []byte("%PDF-1.4"), status: http.StatusBadRequest, code: "VALIDATION"},
		{name: "missing file", bookID: book.ID, page: "1", status: http.StatusBadRequest, code: "VALIDATION"},
		{name: "empty file", bookID: book.ID, page: "1", fileName: "a.pdf", content: []byte{}, status: http.StatusBadRequest, code: "VALIDATION"},
		{name: "disallowed type", bookID: book.ID, page: "1", fileName: "a.txt", content: []byte("plain text"), status: http.StatusBadRequest, code: "VALIDATION"},
		{name: "too large", bookID: book.ID, page: "1", fileName: "a.pdf", content: append([]byte("%PDF-1.4\n"), bytes.Repeat([]byte("x"), 2048)...), status: http.StatusBadRequest, code: "VALIDATION"},
		{name: "missing book", bookID: book.ID + 100, page: "1", fileName: "a.pdf", content: []byte("%PDF-1.4"), status: http.StatusNotFound, code: "NOT_FOUND"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := ts.upload(t, alice, tt.bookID, tt.page, tt.fileName, tt.content)
			assertError(t, resp, tt.status, tt.code)
		})
	}

	resp := ts.api.Get(fmt.Sprintf("/api/v1/books/%d", book.ID), alice)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Empty(t, decodeData[domain.BookDetail](t, resp).PageFiles)
}
