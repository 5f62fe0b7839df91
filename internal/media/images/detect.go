package images

import (
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"github.com/kanineapp/kanine-server/internal/domain"
)

// DetectFileType returns the content type of an upload.
// The sniffed type wins; the client-declared type is only used when sniffing
// yields the generic application/octet-stream.
func DetectFileType(data []byte, declared string) string {
	sniffed := baseType(http.DetectContentType(data))
	if sniffed != "application/octet-stream" {
		return sniffed
	}
	if d := baseType(declared); d != "" {
		return d
	}
	return sniffed
}

// Placeholder computes the BlurHash of a page file when it is an image.
// Failures are logged and yield "", a missing placeholder never fails an upload.
func Placeholder(data []byte, fileType string, logger *slog.Logger) string {
	if !strings.HasPrefix(fileType, "image/") {
		return ""
	}

	hash, err := ComputeBlurHash(data)
	if err != nil {
		if logger != nil {
			logger.Warn("failed to compute blurhash", "file_type", fileType, "error", err)
		}
		return ""
	}
	return hash
}

// IsAllowed reports whether fileType may be stored as a page file.
func IsAllowed(fileType string) bool {
	return domain.IsAllowedFileType(fileType)
}

func baseType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType
}
