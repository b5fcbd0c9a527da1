package api

import (
	"context"
	"io"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/nexuspro/nexus-render/internal/artifacts"
	"github.com/nexuspro/nexus-render/internal/assets"
	"github.com/nexuspro/nexus-render/internal/delivery"
	"github.com/nexuspro/nexus-render/internal/edit"
	"github.com/nexuspro/nexus-render/internal/engine"
	"github.com/nexuspro/nexus-render/internal/export"
)

type Uploader interface {
	Save(ctx context.Context, up assets.Upload, r io.Reader) (*assets.Asset, error)
}

type AssetLister interface {
	List(ctx context.Context, limit int) ([]*assets.Asset, error)
}

type Exporter interface {
	Export(ctx context.Context, raw edit.Raw) (*export.Result, error)
}

type ArtifactResolver interface {
	Resolve(ctx context.Context, name string) (*artifacts.Artifact, error)
}

type Server struct {
	httpServer *http.Server
	logger     *slog.Logger
}

type ServerConfig struct {
	Bind           string
	Port           int
	Uploader       Uploader
	Assets         AssetLister
	Exporter       Exporter
	Artifacts      ArtifactResolver
	Delivery       delivery.Service
	Doctor         *engine.CachedDoctor
	Gatherer       prometheus.Gatherer
	AllowedOrigins []string
	MaxUploadBytes int64
	Logger         *slog.Logger
	StartTime      time.Time
	Version        string
}

func NewServer(cfg ServerConfig) *Server {
	router := NewRouter(cfg)

	return &Server{
		httpServer: &http.Server{
			Addr:              net.JoinHostPort(cfg.Bind, strconv.Itoa(cfg.Port)),
			Handler:           router,
			ReadHeaderTimeout: 15 * time.Second,
			// Uploads and renders are unbounded in time.
			ReadTimeout:  0,
			WriteTimeout: 0,
			IdleTimeout:  60 * time.Second,
		},
		logger: cfg.Logger,
	}
}

func (s *Server) Start() error {
	s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}
