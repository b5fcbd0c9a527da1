package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/nexuspro/nexus-render/internal/logging"
)

const (
	defaultProbeInterval = 5 * time.Minute
	probeTimeout         = 30 * time.Second
)

// Report is what /health shows about the engine.
type Report struct {
	Capabilities *Capabilities
	// Stale is set when the last probe failed or no probe has landed for
	// two intervals. Capabilities then describe an older engine state.
	Stale     bool
	LastError string
}

// CachedDoctor holds the latest probe result. Readers never spawn the
// engine; Refresh and Watch are the only paths that probe.
type CachedDoctor struct {
	prober   Prober
	interval time.Duration
	logger   *slog.Logger
	group    singleflight.Group

	mu      sync.RWMutex
	cached  *Capabilities
	lastErr error
}

func NewCachedDoctor(prober Prober, logger *slog.Logger) *CachedDoctor {
	return &CachedDoctor{
		prober:   prober,
		interval: defaultProbeInterval,
		logger:   logging.WithComponent(logger, "doctor"),
	}
}

func (d *CachedDoctor) Peek() *Capabilities {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.cached
}

func (d *CachedDoctor) Report() Report {
	d.mu.RLock()
	defer d.mu.RUnlock()

	r := Report{Capabilities: d.cached}
	if d.lastErr != nil {
		r.Stale = true
		r.LastError = d.lastErr.Error()
	}
	if d.cached != nil && !d.cached.ProbedAt.IsZero() && time.Since(d.cached.ProbedAt) > 2*d.interval {
		r.Stale = true
	}
	return r
}

// Refresh probes now. Concurrent callers share one probe. When the probe
// fails and an earlier result exists, that result is returned without error.
func (d *CachedDoctor) Refresh(ctx context.Context) (*Capabilities, error) {
	v, err, _ := d.group.Do("probe", func() (any, error) {
		caps, err := d.prober.Probe(ctx)
		d.record(caps, err)
		return caps, err
	})
	if err != nil {
		if prev := d.Peek(); prev != nil {
			return prev, nil
		}
		return nil, err
	}
	return v.(*Capabilities), nil
}

func (d *CachedDoctor) record(caps *Capabilities, err error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if err != nil {
		d.lastErr = err
		d.logger.Warn("doctor probe failed", "error", err, "have_previous", d.cached != nil)
		return
	}
	if d.cached != nil && d.cached.Ready() != caps.Ready() {
		d.logger.Warn("engine readiness changed", "ready", caps.Ready(), "version", caps.Version)
	}
	d.cached = caps
	d.lastErr = nil
}

// Watch re-probes every interval until ctx is done. It always returns nil so
// it can share an errgroup with the HTTP server.
func (d *CachedDoctor) Watch(ctx context.Context) error {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			probeCtx, cancel := context.WithTimeout(ctx, probeTimeout)
			_, _ = d.Refresh(probeCtx)
			cancel()
		}
	}
}
