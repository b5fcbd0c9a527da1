package artifacts

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/nexuspro/nexus-render/internal/ident"
	"github.com/nexuspro/nexus-render/internal/logging"
)

// Resolver maps an output identifier (or "<id>.mp4") to a finished artifact.
// It is read-only and safe for concurrent use.
type Resolver struct {
	repo   Repository
	logger *slog.Logger
}

func NewResolver(repo Repository, logger *slog.Logger) *Resolver {
	return &Resolver{repo: repo, logger: logging.WithComponent(logger, "artifacts")}
}

func (r *Resolver) Resolve(ctx context.Context, name string) (*Artifact, error) {
	id := ParseName(name)
	if err := ident.Validate(id); err != nil {
		return nil, fmt.Errorf("%w: %q", ErrNotFound, name)
	}

	a, err := r.repo.GetArtifact(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("lookup artifact: %w", err)
	}
	if a == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	info, err := os.Stat(a.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			r.logger.Warn("artifact file missing from storage", "output_id", id)
			return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		return nil, fmt.Errorf("stat artifact: %w", err)
	}
	a.Size = info.Size()
	return a, nil
}

func (r *Resolver) List(ctx context.Context, limit int) ([]*Artifact, error) {
	return r.repo.ListArtifacts(ctx, limit)
}
