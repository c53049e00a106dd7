package monitor

import (
	"strconv"

	"github.com/Laisky/errors/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/agentsim/simcheck/harness/ledger"
)

const namespace = "simcheck"

// Metrics exports run statistics through a private prometheus registry.
// It implements ledger.Observer.
type Metrics struct {
	Registry *prometheus.Registry

	checks  *prometheus.CounterVec
	latency *prometheus.HistogramVec
	health  *EndpointHealth
}

// NewMetrics creates and registers the run collectors.
func NewMetrics() (*Metrics, error) {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		checks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "checks_total",
			Help:      "Checks recorded by the harness, by scenario and outcome.",
		}, []string{"scenario", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Latency of HTTP checks against the backend.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 180},
		}, []string{"method", "path", "status"}),
		health: NewEndpointHealth(),
	}

	for _, c := range []prometheus.Collector{m.checks, m.latency} {
		if err := m.Registry.Register(c); err != nil {
			return nil, errors.Wrap(err, "register collector")
		}
	}
	return m, nil
}

// Observe implements ledger.Observer.
func (m *Metrics) Observe(r ledger.CheckRecord) {
	m.checks.WithLabelValues(r.Scenario, string(r.Outcome)).Inc()
	if r.Synthetic() {
		return
	}
	m.latency.WithLabelValues(r.Method, r.Path, strconv.Itoa(r.ObservedStatus)).Observe(r.Elapsed.Seconds())
	m.health.Observe(r)
}

// Health returns the per-endpoint success tracker.
func (m *Metrics) Health() *EndpointHealth {
	return m.health
}

// WriteTextfile dumps every collected metric in the node-exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.Registry); err != nil {
		return errors.Wrapf(err, "write metrics to %s", path)
	}
	return nil
}
