package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/nexuspro/nexus-render/internal/logging"
)

// StubEngine stands in for ffmpeg. It records every command and either
// writes Payload to the command's output or fails with Err.
type StubEngine struct {
	logger *slog.Logger

	mu      sync.Mutex
	err     error
	payload []byte
	delay   time.Duration
	calls   []Command
}

func NewStubEngine(logger *slog.Logger) *StubEngine {
	return &StubEngine{
		logger:  logging.WithComponent(logger, "engine-stub"),
		payload: []byte("stub render"),
	}
}

// FailWith makes every following run fail with diagnostic as its reason.
func (s *StubEngine) FailWith(diagnostic string) *StubEngine {
	s.mu.Lock()
	s.err = &Error{ExitCode: 1, Diagnostic: diagnostic}
	s.mu.Unlock()
	return s
}

// WithDelay makes every run block for d before completing.
func (s *StubEngine) WithDelay(d time.Duration) *StubEngine {
	s.mu.Lock()
	s.delay = d
	s.mu.Unlock()
	return s
}

func (s *StubEngine) Run(ctx context.Context, cmd Command) error {
	s.mu.Lock()
	s.calls = append(s.calls, cmd)
	err, payload, delay := s.err, s.payload, s.delay
	s.mu.Unlock()

	s.logger.Info("engine stub: render requested", "output", cmd.Output, "argc", len(cmd.Args))

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return &Error{ExitCode: -1, Diagnostic: ctx.Err().Error()}
		}
	}
	if err != nil {
		return err
	}
	if err := os.WriteFile(cmd.Output, payload, 0644); err != nil {
		return &Error{ExitCode: -1, Diagnostic: fmt.Sprintf("cannot write output: %v", err)}
	}
	return nil
}

func (s *StubEngine) Probe(ctx context.Context) (*Capabilities, error) {
	return &Capabilities{
		Binary:      "stub",
		Version:     "stub",
		HasDrawText: true,
		HasOverlay:  true,
		HasX264:     true,
		ProbedAt:    time.Now(),
	}, nil
}

// Calls returns a copy of every command received so far.
func (s *StubEngine) Calls() []Command {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Command, len(s.calls))
	copy(out, s.calls)
	return out
}
