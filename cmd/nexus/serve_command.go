package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofrs/flock"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nexuspro/nexus-render/internal/api"
	"github.com/nexuspro/nexus-render/internal/artifacts"
	"github.com/nexuspro/nexus-render/internal/assets"
	"github.com/nexuspro/nexus-render/internal/config"
	"github.com/nexuspro/nexus-render/internal/db"
	"github.com/nexuspro/nexus-render/internal/delivery"
	"github.com/nexuspro/nexus-render/internal/edit"
	"github.com/nexuspro/nexus-render/internal/engine"
	"github.com/nexuspro/nexus-render/internal/export"
	"github.com/nexuspro/nexus-render/internal/jobs"
	"github.com/nexuspro/nexus-render/internal/logging"
)

var errAlreadyRunning = errors.New("another nexus server holds the data directory lock")

func newServeCommand(ctx *commandContext) *cobra.Command {
	var shutdownTimeout time.Duration

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP render server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return runServe(cmd.Context(), cfg, shutdownTimeout)
		},
	}

	cmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 30*time.Second, "How long to wait for in-flight requests on shutdown")
	return cmd
}

func runServe(parent context.Context, cfg *config.EnvConfig, shutdownTimeout time.Duration) error {
	startTime := time.Now()
	if parent == nil {
		parent = context.Background()
	}

	for _, dir := range []string{cfg.DataDir(), cfg.UploadsDir(), cfg.OutputsDir()} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}

	logger := logging.NewLogger(cfg.LogLevel())
	logger.Info("starting nexus render server", "version", config.Version, "data_dir", logging.SanitizePath(cfg.DataDir()))

	lock := flock.New(cfg.LockPath())
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("failed to acquire lock: %w", err)
	}
	if !locked {
		return fmt.Errorf("%w: %s", errAlreadyRunning, logging.SanitizePath(cfg.LockPath()))
	}
	defer lock.Unlock()

	database, err := db.New(cfg.DBPath(), logger)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer database.Close()

	ffmpeg, err := engine.NewFFmpeg(engine.Config{Binary: cfg.FFmpegPath(), Logger: logger})
	if err != nil {
		return fmt.Errorf("media engine unavailable: %w", err)
	}
	doctor := engine.NewCachedDoctor(ffmpeg, logger)

	probeCtx, probeCancel := context.WithTimeout(parent, 30*time.Second)
	if caps, err := doctor.Refresh(probeCtx); err != nil {
		logger.Warn("initial doctor probe failed", "error", err)
	} else if !caps.Ready() {
		logger.Warn("ffmpeg is missing filters or encoders; exports will fail",
			"drawtext", caps.HasDrawText,
			"overlay", caps.HasOverlay,
			"libx264", caps.HasX264,
		)
	}
	probeCancel()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	assetRepo := assets.NewRepository(database.Conn())
	store, err := assets.NewStore(cfg.UploadsDir(), assetRepo, logger)
	if err != nil {
		return err
	}
	registry := assets.NewRegistry(assetRepo, logger)
	artifactRepo := artifacts.NewRepository(database.Conn())

	executor := jobs.NewExecutor(ffmpeg, artifactRepo, cfg.OutputsDir(), jobs.NewMetrics(reg), logger)
	service := export.NewService(edit.NewNormalizer(registry, logger), executor, logger)

	server := api.NewServer(api.ServerConfig{
		Bind:           cfg.Bind(),
		Port:           cfg.Port(),
		Uploader:       store,
		Assets:         registry,
		Exporter:       service,
		Artifacts:      artifacts.NewResolver(artifactRepo, logger),
		Delivery:       delivery.NewServer(logger),
		Doctor:         doctor,
		Gatherer:       reg,
		AllowedOrigins: cfg.AllowedOrigins(),
		MaxUploadBytes: cfg.MaxUploadBytes(),
		Logger:         logger,
		StartTime:      startTime,
		Version:        config.Version,
	})

	printBanner(server.Addr(), store.Dir(), cfg.OutputsDir(), ffmpeg.Binary())

	sigCtx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(sigCtx)
	g.Go(server.Start)
	g.Go(func() error { return doctor.Watch(gctx) })
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("initiating graceful shutdown")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("failed to shutdown HTTP server: %w", err)
		}
		return nil
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info("shutdown complete")
	return nil
}

func printBanner(addr, uploadsDir, outputsDir, ffmpegBin string) {
	fmt.Println()
	fmt.Println(bannerTable(addr, uploadsDir, outputsDir, ffmpegBin))
	fmt.Println()
}

func bannerTable(addr, uploadsDir, outputsDir, ffmpegBin string) string {
	return renderTable(
		[]string{"NEXUS RENDER " + config.Version, ""},
		[][]string{
			{"API URL", "http://" + addr},
			{"Uploads", logging.SanitizePath(uploadsDir)},
			{"Outputs", logging.SanitizePath(outputsDir)},
			{"FFmpeg", logging.SanitizePath(ffmpegBin)},
		},
		nil,
	)
}
