package domain

import "time"

// Allowed page file content types.
const (
	FileTypeJPEG = "image/jpeg"
	FileTypePNG  = "image/png"
	FileTypeGIF  = "image/gif"
	FileTypeWebP = "image/webp"
	FileTypePDF  = "application/pdf"
)

// PageFileInfo describes the single file stored for a page, without its bytes.
type PageFileInfo struct {
	ID         int64     `json:"id"`
	BookID     int64     `json:"bookId"`
	PageNumber int       `json:"pageNumber"`
	FileName   string    `json:"fileName"`
	FileType   string    `json:"fileType"`
	Size       int64     `json:"size"`
	BlurHash   string    `json:"blurHash,omitempty"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// PageFile is a page file together with its content.
type PageFile struct {
	PageFileInfo
	Content []byte `json:"-"`
}

// IsAllowedFileType reports whether a content type may be stored as a page file.
func IsAllowedFileType(contentType string) bool {
	switch contentType {
	case FileTypeJPEG, FileTypePNG, FileTypeGIF, FileTypeWebP, FileTypePDF:
		return true
	default:
		return false
	}
}
