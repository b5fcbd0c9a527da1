// Package engine runs media engine jobs (ffmpeg as a subprocess) and probes
// the installed engine for the filters and encoders renders depend on.
package engine

import (
	"context"
	"time"
)

// Engine executes one fully described render. Run blocks until the engine
// exits; a nil error means Command.Output was written.
type Engine interface {
	Run(ctx context.Context, cmd Command) error
}

// Prober reports what the installed engine can do.
type Prober interface {
	Probe(ctx context.Context) (*Capabilities, error)
}

// Command is an engine invocation: the argument vector (without the binary)
// and the file it is expected to produce.
type Command struct {
	Args   []string
	Output string
}

// Capabilities is the result of a doctor probe.
type Capabilities struct {
	Binary      string    `json:"binary"`
	Version     string    `json:"version"`
	HasDrawText bool      `json:"has_drawtext"`
	HasOverlay  bool      `json:"has_overlay"`
	HasX264     bool      `json:"has_libx264"`
	ProbedAt    time.Time `json:"probed_at"`
}

// Ready reports whether every stage and the encoder a render may need are available.
func (c *Capabilities) Ready() bool {
	return c != nil && c.HasDrawText && c.HasOverlay && c.HasX264
}

// Error is a failed engine run. Diagnostic is the human-readable reason and
// is what Error returns, unmodified.
type Error struct {
	ExitCode   int
	Diagnostic string
	StderrTail string
	Duration   time.Duration
}

func (e *Error) Error() string {
	return e.Diagnostic
}
