package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/nexuspro/nexus-render/internal/artifacts"
	"github.com/nexuspro/nexus-render/internal/engine"
	"github.com/nexuspro/nexus-render/internal/ident"
	"github.com/nexuspro/nexus-render/internal/logging"
	"github.com/nexuspro/nexus-render/internal/render"
)

// Executor submits pipelines to the engine. Each Run is independent; any
// number may execute concurrently.
type Executor struct {
	engine     engine.Engine
	artifacts  artifacts.Repository
	outputsDir string
	metrics    *Metrics
	logger     *slog.Logger
}

func NewExecutor(eng engine.Engine, repo artifacts.Repository, outputsDir string, metrics *Metrics, logger *slog.Logger) *Executor {
	return &Executor{
		engine:     eng,
		artifacts:  repo,
		outputsDir: outputsDir,
		metrics:    metrics,
		logger:     logging.WithComponent(logger, "executor"),
	}
}

// Run executes p to completion and returns the recorded artifact. Once the
// engine has been started, cancelling ctx does not stop it. A failure is
// returned as *ExecutionError and leaves no file under the output id.
func (e *Executor) Run(ctx context.Context, p render.Pipeline) (*artifacts.Artifact, error) {
	// The output id becomes a file name under outputsDir.
	if !ident.Valid(p.OutputID) {
		return nil, fmt.Errorf("output id %q: %w", p.OutputID, ident.ErrInvalidID)
	}

	job := NewJob(p.OutputID)
	logger := logging.WithJobID(e.logger, job.ID())

	if err := job.Start(); err != nil {
		return nil, err
	}
	e.metrics.started()

	final := filepath.Join(e.outputsDir, artifacts.FileName(job.ID()))
	partial := filepath.Join(e.outputsDir, "."+job.ID()+".partial"+artifacts.FileExt)

	logger.Info("export job started",
		"source_asset_id", p.SourceID,
		"stages", len(p.Stages),
		"bounded", p.Clip.Bounded(),
	)

	if err := os.MkdirAll(e.outputsDir, 0755); err != nil {
		return nil, e.fail(job, logger, fmt.Sprintf("create outputs dir: %v", err), err)
	}

	runCtx := context.WithoutCancel(ctx)
	err := e.engine.Run(runCtx, engine.Command{Args: render.Args(p, partial), Output: partial})
	if err != nil {
		removeQuietly(partial)
		return nil, e.fail(job, logger, err.Error(), err)
	}

	if err := os.Rename(partial, final); err != nil {
		removeQuietly(partial)
		return nil, e.fail(job, logger, fmt.Sprintf("finalize output: %v", err), err)
	}

	info, err := os.Stat(final)
	if err != nil {
		removeQuietly(final)
		return nil, e.fail(job, logger, fmt.Sprintf("stat output: %v", err), err)
	}

	art := &artifacts.Artifact{
		ID:            job.ID(),
		Path:          final,
		Size:          info.Size(),
		SourceAssetID: p.SourceID,
		CreatedAt:     time.Now(),
	}
	if err := e.artifacts.CreateArtifact(runCtx, art); err != nil {
		removeQuietly(final)
		return nil, e.fail(job, logger, fmt.Sprintf("record artifact: %v", err), err)
	}

	if err := job.Succeed(); err != nil {
		return nil, err
	}
	snap := job.Snapshot()
	e.metrics.finished(snap)

	logger.Info("export job succeeded",
		"duration_ms", snap.Duration().Milliseconds(),
		"size", humanize.Bytes(uint64(art.Size)),
	)
	return art, nil
}

func (e *Executor) fail(job *Job, logger *slog.Logger, reason string, cause error) error {
	if err := job.Fail(reason); err != nil {
		return err
	}
	snap := job.Snapshot()
	e.metrics.finished(snap)

	logger.Error("export job failed", "reason", reason, "duration_ms", snap.Duration().Milliseconds())
	return &ExecutionError{Job: snap, Err: cause}
}

func removeQuietly(path string) {
	_ = os.Remove(path)
}
