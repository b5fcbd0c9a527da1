package engine

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/nexuspro/nexus-render/internal/logging"
)

const (
	maxStderrBytes = 8 * 1024 // 8 KB tail of stderr kept for diagnostics

	defaultProbeTimeout = 30 * time.Second
)

// Config holds the subprocess engine configuration.
type Config struct {
	Binary       string // ffmpeg path; empty = look up on PATH
	ProbeTimeout time.Duration
	Logger       *slog.Logger
	DebugPaths   bool // if true, log full file paths; otherwise sanitise
}

// FFmpeg is the production Engine: one ffmpeg subprocess per render.
type FFmpeg struct {
	cfg    Config
	binary string
	logger *slog.Logger
}

// NewFFmpeg resolves the ffmpeg binary. It does not probe capabilities; use
// Probe or a CachedDoctor for that.
func NewFFmpeg(cfg Config) (*FFmpeg, error) {
	bin, err := resolveBinary(cfg.Binary)
	if err != nil {
		return nil, fmt.Errorf("cannot locate ffmpeg: %w", err)
	}
	if cfg.ProbeTimeout <= 0 {
		cfg.ProbeTimeout = defaultProbeTimeout
	}

	logger := logging.WithComponent(cfg.Logger, "engine")
	logger.Info("media engine initialised", "binary", bin)

	return &FFmpeg{cfg: cfg, binary: bin, logger: logger}, nil
}

func (f *FFmpeg) Binary() string {
	return f.binary
}

// Run executes ffmpeg with cmd.Args. There is no internal timeout: the
// render runs until the engine exits or ctx is cancelled.
func (f *FFmpeg) Run(ctx context.Context, cmd Command) error {
	start := time.Now()

	if cmd.Output != "" {
		if err := os.MkdirAll(filepath.Dir(cmd.Output), 0755); err != nil {
			return &Error{ExitCode: -1, Diagnostic: fmt.Sprintf("cannot create output dir: %v", err)}
		}
	}

	proc := exec.CommandContext(ctx, f.binary, cmd.Args...)

	var stderrBuf bytes.Buffer
	proc.Stderr = io.Writer(&limitedWriter{w: &stderrBuf, limit: maxStderrBytes})
	proc.Stdout = io.Discard

	f.logger.Info("executing render", "output", f.safePath(cmd.Output), "argc", len(cmd.Args))
	f.logger.Debug("render arguments", "args", cmd.Args)

	err := proc.Run()
	elapsed := time.Since(start)
	stderrTail := stderrBuf.String()

	if err == nil {
		f.logger.Info("render succeeded",
			"duration_ms", elapsed.Milliseconds(),
			"output", f.safePath(cmd.Output),
		)
		return nil
	}

	exitCode := -1
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		exitCode = exitErr.ExitCode()
	}

	diag := diagnostic(exitCode, stderrTail, err)
	f.logger.Error("FFmpeg error",
		"exit_code", exitCode,
		"duration_ms", elapsed.Milliseconds(),
		"diagnostic", diag,
		"stderr_tail", truncate(stderrTail, 512),
	)

	return &Error{
		ExitCode:   exitCode,
		Diagnostic: diag,
		StderrTail: stderrTail,
		Duration:   elapsed,
	}
}

var (
	versionPattern  = regexp.MustCompile(`^ffmpeg version (\S+)`)
	drawtextPattern = regexp.MustCompile(`(?m)^\s*\S+\s+drawtext\s`)
	overlayPattern  = regexp.MustCompile(`(?m)^\s*\S+\s+overlay\s`)
	x264Pattern     = regexp.MustCompile(`(?m)^\s*\S+\s+libx264\s`)
)

// Probe runs `ffmpeg -version`, `-filters` and `-encoders` and derives the
// capability flags.
func (f *FFmpeg) Probe(ctx context.Context) (*Capabilities, error) {
	ctx, cancel := context.WithTimeout(ctx, f.cfg.ProbeTimeout)
	defer cancel()

	version, err := f.output(ctx, "-hide_banner", "-version")
	if err != nil {
		return nil, fmt.Errorf("ffmpeg -version: %w", err)
	}
	filters, err := f.output(ctx, "-hide_banner", "-filters")
	if err != nil {
		return nil, fmt.Errorf("ffmpeg -filters: %w", err)
	}
	encoders, err := f.output(ctx, "-hide_banner", "-encoders")
	if err != nil {
		return nil, fmt.Errorf("ffmpeg -encoders: %w", err)
	}

	caps := parseCapabilities(version, filters, encoders)
	caps.Binary = f.binary
	caps.ProbedAt = time.Now()

	f.logger.Info("doctor probe complete",
		"version", caps.Version,
		"drawtext", caps.HasDrawText,
		"overlay", caps.HasOverlay,
		"libx264", caps.HasX264,
	)

	return caps, nil
}

func (f *FFmpeg) output(ctx context.Context, args ...string) (string, error) {
	var stdout, stderr bytes.Buffer
	proc := exec.CommandContext(ctx, f.binary, args...)
	proc.Stdout = &stdout
	proc.Stderr = &limitedWriter{w: &stderr, limit: maxStderrBytes}
	if err := proc.Run(); err != nil {
		return "", fmt.Errorf("%w: %s", err, truncate(stderr.String(), 256))
	}
	return stdout.String(), nil
}

func parseCapabilities(version, filters, encoders string) *Capabilities {
	caps := &Capabilities{
		HasDrawText: drawtextPattern.MatchString(filters),
		HasOverlay:  overlayPattern.MatchString(filters),
		HasX264:     x264Pattern.MatchString(encoders),
	}
	if m := versionPattern.FindStringSubmatch(strings.TrimSpace(version)); m != nil {
		caps.Version = m[1]
	}
	return caps
}

// diagnostic picks the most useful line of stderr: the last non-empty one,
// which is where ffmpeg reports the fatal condition.
func diagnostic(exitCode int, stderrTail string, runErr error) string {
	last := lastLine(stderrTail)
	switch {
	case exitCode == -1 && last == "":
		return fmt.Sprintf("ffmpeg failed to run: %v", runErr)
	case last == "":
		return fmt.Sprintf("ffmpeg exited with code %d", exitCode)
	default:
		return fmt.Sprintf("ffmpeg exited with code %d: %s", exitCode, last)
	}
}

func lastLine(s string) string {
	var last string
	sc := bufio.NewScanner(strings.NewReader(s))
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			last = line
		}
	}
	return last
}

func (f *FFmpeg) safePath(path string) string {
	if f.cfg.DebugPaths || path == "" {
		return path
	}
	if sanitized := logging.SanitizePath(path); sanitized != path {
		return sanitized
	}
	return filepath.Base(path)
}

// resolveBinary finds a usable ffmpeg binary.
func resolveBinary(preferred string) (string, error) {
	if preferred != "" {
		if p, err := exec.LookPath(preferred); err == nil {
			return p, nil
		}
		return "", fmt.Errorf("configured ffmpeg %q not found", preferred)
	}
	if p, err := exec.LookPath("ffmpeg"); err == nil {
		return p, nil
	}
	return "", fmt.Errorf("no ffmpeg binary found on PATH")
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return "..." + s[len(s)-maxLen:]
}

// limitedWriter is an io.Writer that keeps only the last `limit` bytes.
type limitedWriter struct {
	w     *bytes.Buffer
	limit int
}

func (lw *limitedWriter) Write(p []byte) (int, error) {
	n := len(p)
	lw.w.Write(p)
	if lw.w.Len() > lw.limit {
		// Keep only the tail
		b := lw.w.Bytes()
		tail := make([]byte, lw.limit)
		copy(tail, b[len(b)-lw.limit:])
		lw.w.Reset()
		lw.w.Write(tail)
	}
	return n, nil
}
