// Package config provides configuration management for the Nexus render server.
// Configuration is loaded from environment variables (optionally seeded from a
// .env file) with sensible defaults.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// Default values
	DefaultPort          = 5000
	DefaultBind          = "127.0.0.1"
	DefaultLogLevel      = "info"
	DefaultDataDir       = ".nexus"
	DefaultMaxUploadMB   = 2048
	DefaultAllowedOrigin = "*"

	// Environment variable names
	EnvPort           = "NEXUS_PORT"
	EnvBind           = "NEXUS_BIND"
	EnvLogLevel       = "NEXUS_LOG_LEVEL"
	EnvDataDir        = "NEXUS_DATA_DIR"
	EnvFFmpegPath     = "NEXUS_FFMPEG_PATH"
	EnvAllowedOrigins = "NEXUS_ALLOWED_ORIGINS"
	EnvMaxUploadMB    = "NEXUS_MAX_UPLOAD_MB"

	// Database filename
	DBFilename = "nexus.db"

	// Lock filename guarding the data directory against a second server
	LockFilename = "nexus.lock"
)

// Config defines the application configuration interface
type Config interface {
	Port() int
	Bind() string
	LogLevel() string
	DataDir() string
	DBPath() string
	LockPath() string
	UploadsDir() string
	OutputsDir() string
	FFmpegPath() string
	AllowedOrigins() []string
	MaxUploadBytes() int64
}

// EnvConfig reads configuration from environment variables
type EnvConfig struct {
	port           int
	bind           string
	logLevel       string
	dataDir        string
	ffmpegPath     string
	allowedOrigins []string
	maxUploadMB    int64
}

// LoadDotEnv seeds the process environment from a .env file in the working
// directory. Variables that are already set win. A missing file is not an error.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			return fmt.Errorf("failed to load %s: %w", p, err)
		}
	}
	return nil
}

// New creates a new EnvConfig with defaults and environment variable overrides
func New() (*EnvConfig, error) {
	cfg := &EnvConfig{
		port:           DefaultPort,
		bind:           DefaultBind,
		logLevel:       DefaultLogLevel,
		dataDir:        defaultDataDir(),
		allowedOrigins: []string{DefaultAllowedOrigin},
		maxUploadMB:    DefaultMaxUploadMB,
	}

	if p := os.Getenv(EnvPort); p != "" {
		port, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvPort, err)
		}
		if port < 1 || port > 65535 {
			return nil, fmt.Errorf("invalid %s: port must be between 1 and 65535", EnvPort)
		}
		cfg.port = port
	}

	if b := strings.TrimSpace(os.Getenv(EnvBind)); b != "" {
		cfg.bind = b
	}

	if ll := os.Getenv(EnvLogLevel); ll != "" {
		cfg.logLevel = ll
	}

	if dd := os.Getenv(EnvDataDir); dd != "" {
		cfg.dataDir = dd
	}

	cfg.ffmpegPath = strings.TrimSpace(os.Getenv(EnvFFmpegPath))

	if origins := os.Getenv(EnvAllowedOrigins); origins != "" {
		var list []string
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				list = append(list, o)
			}
		}
		if len(list) > 0 {
			cfg.allowedOrigins = list
		}
	}

	if mb := os.Getenv(EnvMaxUploadMB); mb != "" {
		n, err := strconv.ParseInt(mb, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", EnvMaxUploadMB, err)
		}
		if n <= 0 {
			return nil, fmt.Errorf("invalid %s: must be positive", EnvMaxUploadMB)
		}
		cfg.maxUploadMB = n
	}

	return cfg, nil
}

// Port returns the HTTP server port
func (c *EnvConfig) Port() int {
	return c.port
}

// Bind returns the interface address the HTTP server listens on
func (c *EnvConfig) Bind() string {
	return c.bind
}

// LogLevel returns the log level (debug, info, warn, error)
func (c *EnvConfig) LogLevel() string {
	return c.logLevel
}

// DataDir returns the data directory path
func (c *EnvConfig) DataDir() string {
	return c.dataDir
}

// DBPath returns the full path to the SQLite database file
func (c *EnvConfig) DBPath() string {
	return filepath.Join(c.dataDir, DBFilename)
}

func (c *EnvConfig) LockPath() string {
	return filepath.Join(c.dataDir, LockFilename)
}

// UploadsDir holds inbound assets, one file per asset id.
func (c *EnvConfig) UploadsDir() string {
	return filepath.Join(c.dataDir, "uploads")
}

// OutputsDir holds rendered artifacts, one file per output id.
func (c *EnvConfig) OutputsDir() string {
	return filepath.Join(c.dataDir, "outputs")
}

// FFmpegPath returns the configured ffmpeg binary; empty means look it up on PATH.
func (c *EnvConfig) FFmpegPath() string {
	return c.ffmpegPath
}

func (c *EnvConfig) AllowedOrigins() []string {
	out := make([]string, len(c.allowedOrigins))
	copy(out, c.allowedOrigins)
	return out
}

func (c *EnvConfig) MaxUploadBytes() int64 {
	return c.maxUploadMB * 1024 * 1024
}

// defaultDataDir returns the default data directory path
func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home is not available
		return DefaultDataDir
	}
	return filepath.Join(home, DefaultDataDir)
}

// Version information (set at build time via ldflags)
var (
	Version   = "0.1.0"
	BuildTime = "unknown"
	GitCommit = "unknown"
)
