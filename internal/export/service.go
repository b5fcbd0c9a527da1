package export

import (
	"context"
	"log/slog"

	"github.com/nexuspro/nexus-render/internal/artifacts"
	"github.com/nexuspro/nexus-render/internal/edit"
	"github.com/nexuspro/nexus-render/internal/logging"
	"github.com/nexuspro/nexus-render/internal/render"
)

type Normalizer interface {
	Normalize(ctx context.Context, raw edit.Raw) (edit.Request, error)
}

type Runner interface {
	Run(ctx context.Context, p render.Pipeline) (*artifacts.Artifact, error)
}

type Service struct {
	normalizer Normalizer
	runner     Runner
	logger     *slog.Logger
}

func NewService(normalizer Normalizer, runner Runner, logger *slog.Logger) *Service {
	return &Service{
		normalizer: normalizer,
		runner:     runner,
		logger:     logging.WithComponent(logger, "export"),
	}
}

// Export runs one job synchronously. Errors are the normalizer's
// (edit.ErrInputNotFound) or the executor's (*jobs.ExecutionError), unchanged.
func (s *Service) Export(ctx context.Context, raw edit.Raw) (*Result, error) {
	req, err := s.normalizer.Normalize(ctx, raw)
	if err != nil {
		s.logger.Info("export rejected", "error", err)
		return nil, err
	}

	p := render.Compile(req)
	s.logger.Debug("pipeline compiled",
		"output_id", p.OutputID,
		"source_asset_id", p.SourceID,
		"filter_graph", render.FilterGraph(p),
	)

	art, err := s.runner.Run(ctx, p)
	if err != nil {
		return nil, err
	}

	return &Result{
		OutputID:   art.ID,
		OutputFile: art.FileName(),
		Artifact:   art,
	}, nil
}
