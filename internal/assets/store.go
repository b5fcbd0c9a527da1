package assets

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/disintegration/imaging"
	"github.com/dustin/go-humanize"
	"github.com/go-playground/validator/v10"

	"github.com/nexuspro/nexus-render/internal/ident"
	"github.com/nexuspro/nexus-render/internal/logging"
)

const maxOriginalNameLen = 255

// Upload describes one inbound file as handed over by the transport layer.
type Upload struct {
	Kind     Kind   `validate:"required,oneof=video image"`
	Filename string `validate:"required"`
}

// Store writes uploaded files into the inbound namespace and records them.
type Store struct {
	dir      string
	repo     Repository
	logger   *slog.Logger
	validate *validator.Validate
}

// NewStore creates the uploads directory if needed.
func NewStore(dir string, repo Repository, logger *slog.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create uploads dir: %w", err)
	}
	return &Store{
		dir:      dir,
		repo:     repo,
		logger:   logging.WithComponent(logger, "uploads"),
		validate: validator.New(),
	}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

// Save streams r into storage under a freshly generated identifier. The file
// only becomes visible under its final name once it is complete and, for
// images, decodable.
func (s *Store) Save(ctx context.Context, up Upload, r io.Reader) (*Asset, error) {
	if err := s.validate.Struct(up); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedType, err)
	}
	ext, err := extensionFor(up.Kind, up.Filename)
	if err != nil {
		return nil, err
	}

	id := ident.New()
	finalPath := filepath.Join(s.dir, id+ext)
	tmpPath := filepath.Join(s.dir, "."+id+".upload")

	size, err := writeFile(tmpPath, r)
	if err != nil {
		_ = os.Remove(tmpPath)
		return nil, err
	}
	if size == 0 {
		_ = os.Remove(tmpPath)
		return nil, ErrEmptyUpload
	}

	asset := &Asset{
		ID:           id,
		Kind:         up.Kind,
		Path:         finalPath,
		OriginalName: SanitizeName(up.Filename, maxOriginalNameLen),
		Size:         size,
		CreatedAt:    time.Now(),
	}

	if up.Kind == KindImage {
		img, err := imaging.Open(tmpPath)
		if err != nil {
			_ = os.Remove(tmpPath)
			return nil, fmt.Errorf("%w: image cannot be decoded: %v", ErrUnsupportedType, err)
		}
		b := img.Bounds()
		asset.Width, asset.Height = b.Dx(), b.Dy()
	}

	if err := os.Rename(tmpPath, finalPath); err != nil {
		_ = os.Remove(tmpPath)
		return nil, fmt.Errorf("failed to store upload: %w", err)
	}

	if err := s.repo.CreateAsset(ctx, asset); err != nil {
		_ = os.Remove(finalPath)
		return nil, fmt.Errorf("failed to record upload: %w", err)
	}

	s.logger.Info("asset stored",
		"asset_id", asset.ID,
		"kind", asset.Kind,
		"size", humanize.Bytes(uint64(size)),
		"original_name", asset.OriginalName,
	)
	return asset, nil
}

func writeFile(path string, r io.Reader) (int64, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return 0, fmt.Errorf("failed to create file: %w", err)
	}
	n, err := io.Copy(f, r)
	if err != nil {
		f.Close()
		return n, fmt.Errorf("failed to write file: %w", err)
	}
	if err := f.Close(); err != nil {
		return n, fmt.Errorf("failed to close file: %w", err)
	}
	return n, nil
}
