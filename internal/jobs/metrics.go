package jobs

import "github.com/prometheus/client_golang/prometheus"

// Metrics are the export job collectors. A nil *Metrics records nothing.
type Metrics struct {
	jobs     *prometheus.CounterVec
	duration prometheus.Histogram
	inFlight prometheus.Gauge
}

// NewMetrics creates the collectors and registers them with reg when reg is
// not nil.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		jobs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "nexus",
			Subsystem: "export",
			Name:      "jobs_total",
			Help:      "Export jobs by terminal state.",
		}, []string{"result"}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "nexus",
			Subsystem: "export",
			Name:      "duration_seconds",
			Help:      "Wall time of engine runs.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12),
		}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "nexus",
			Subsystem: "export",
			Name:      "jobs_in_flight",
			Help:      "Export jobs currently running.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.jobs, m.duration, m.inFlight)
	}
	return m
}

func (m *Metrics) started() {
	if m == nil {
		return
	}
	m.inFlight.Inc()
}

func (m *Metrics) finished(s Snapshot) {
	if m == nil {
		return
	}
	m.inFlight.Dec()
	m.jobs.WithLabelValues(string(s.State)).Inc()
	if d := s.Duration(); d > 0 {
		m.duration.Observe(d.Seconds())
	}
}
