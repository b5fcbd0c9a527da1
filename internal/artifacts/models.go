// Package artifacts records rendered outputs and resolves download requests
// to them.
package artifacts

import (
	"errors"
	"strings"
	"time"
)

// FileExt is the container extension of every rendered output.
const FileExt = ".mp4"

// ErrNotFound covers unknown, malformed and vanished artifacts alike.
var ErrNotFound = errors.New("artifact not found")

// Artifact is a finished render. It exists only for jobs that succeeded.
type Artifact struct {
	ID            string    `json:"id"`
	Path          string    `json:"-"`
	Size          int64     `json:"size"`
	SourceAssetID string    `json:"source_asset_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// FileName is the public name of the artifact, as returned to clients.
func (a *Artifact) FileName() string {
	return FileName(a.ID)
}

func FileName(id string) string {
	return id + FileExt
}

// ParseName accepts either a bare output id or its file name.
func ParseName(name string) string {
	return strings.TrimSuffix(strings.TrimSpace(name), FileExt)
}
