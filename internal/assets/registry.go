package assets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/nexuspro/nexus-render/internal/ident"
	"github.com/nexuspro/nexus-render/internal/logging"
)

// Registry resolves asset identifiers to storage locations. It never writes
// and is safe for concurrent use by any number of export jobs.
type Registry struct {
	repo   Repository
	logger *slog.Logger
}

func NewRegistry(repo Repository, logger *slog.Logger) *Registry {
	return &Registry{repo: repo, logger: logging.WithComponent(logger, "assets")}
}

// Resolve returns the on-disk location of the asset, or ErrNotFound when the
// identifier is malformed, unknown, or its file has gone missing.
func (r *Registry) Resolve(ctx context.Context, id string) (string, error) {
	asset, err := r.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return asset.Path, nil
}

// Get is Resolve returning the full asset record.
func (r *Registry) Get(ctx context.Context, id string) (*Asset, error) {
	if err := ident.Validate(id); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, id)
	}

	asset, err := r.repo.GetAsset(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lookup asset: %w", err)
	}
	if asset == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	if _, err := os.Stat(asset.Path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			r.logger.Warn("asset file missing from storage", "asset_id", id, "path", logging.SanitizePath(asset.Path))
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("stat asset: %w", err)
	}
	return asset, nil
}

func (r *Registry) List(ctx context.Context, limit int) ([]*Asset, error) {
	return r.repo.ListAssets(ctx, limit)
}
