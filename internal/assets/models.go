package assets

import (
	"errors"
	"path/filepath"
	"strings"
	"time"
)

// Kind is the logical type of an uploaded asset.
type Kind string

const (
	KindVideo Kind = "video"
	KindImage Kind = "image"
)

var (
	ErrNotFound        = errors.New("asset not found")
	ErrUnsupportedType = errors.New("unsupported file type")
	ErrEmptyUpload     = errors.New("uploaded file is empty")
)

// Asset is an uploaded input file. Rows are written once and never updated.
type Asset struct {
	ID           string    `json:"id"`
	Kind         Kind      `json:"kind"`
	Path         string    `json:"-"`
	OriginalName string    `json:"original_name"`
	Size         int64     `json:"size"`
	Width        int       `json:"width,omitempty"`
	Height       int       `json:"height,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

var allowedExtensions = map[Kind]map[string]bool{
	KindVideo: {
		".mp4":  true,
		".mov":  true,
		".mkv":  true,
		".webm": true,
		".avi":  true,
		".m4v":  true,
	},
	KindImage: {
		".png":  true,
		".jpg":  true,
		".jpeg": true,
		".gif":  true,
		".bmp":  true,
		".tif":  true,
		".tiff": true,
	},
}

// ParseKind accepts the logical kind names used by the upload interface.
func ParseKind(s string) (Kind, bool) {
	switch Kind(strings.ToLower(strings.TrimSpace(s))) {
	case KindVideo:
		return KindVideo, true
	case KindImage:
		return KindImage, true
	}
	return "", false
}

// extensionFor returns the lower-cased storage extension for filename, or
// ErrUnsupportedType when the extension is not accepted for kind.
func extensionFor(kind Kind, filename string) (string, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	if !allowedExtensions[kind][ext] {
		return "", ErrUnsupportedType
	}
	return ext, nil
}
