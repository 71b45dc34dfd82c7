// Package metrics exposes Prometheus collectors for diffusion runs.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Run outcomes.
const (
	OutcomeSaturated = "saturated"
	OutcomeCompleted = "completed"
	OutcomeFailed    = "failed"
)

// Metrics provides observability for simulation runs. Each instance owns its
// registry so several servers can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	// Runs by outcome
	Runs *prometheus.CounterVec

	// Countries that adopted after the base year, summed over runs
	Adoptions prometheus.Counter

	// Wall-clock time of Run calls
	RunLatency prometheus.Histogram

	// Simulated years before the run stopped
	YearsSimulated prometheus.Histogram

	// Fraction of countries adopted at the end of each run
	FinalReach prometheus.Histogram

	// Runs currently held by the admin store
	StoredRuns prometheus.Gauge
}

// New creates a new Metrics instance with its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,
		Runs: f.NewCounterVec(prometheus.CounterOpts{
			Name: "diffusion_runs_total",
			Help: "Total simulation runs by outcome",
		}, []string{"outcome"}),

		Adoptions: f.NewCounter(prometheus.CounterOpts{
			Name: "diffusion_adoptions_total",
			Help: "Total adoption transitions across all runs",
		}),

		RunLatency: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "diffusion_run_duration_seconds",
			Help:    "Duration of a single simulation run",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		}),

		YearsSimulated: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "diffusion_run_years",
			Help:    "Simulated years per run, shorter than requested when saturation ends a run early",
			Buckets: []float64{0, 1, 2, 5, 10, 15, 25, 50, 100},
		}),

		FinalReach: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "diffusion_run_final_reach_ratio",
			Help:    "Fraction of countries adopted at the end of a run",
			Buckets: prometheus.LinearBuckets(0.1, 0.1, 10),
		}),

		StoredRuns: f.NewGauge(prometheus.GaugeOpts{
			Name: "diffusion_stored_runs",
			Help: "Runs currently kept in memory by the admin server",
		}),
	}
}

// ObserveRun records a finished run.
func (m *Metrics) ObserveRun(saturated bool, adoptions, years int, reach float64, d time.Duration) {
	if m == nil {
		return
	}
	outcome := OutcomeCompleted
	if saturated {
		outcome = OutcomeSaturated
	}
	m.Runs.WithLabelValues(outcome).Inc()
	m.Adoptions.Add(float64(adoptions))
	m.RunLatency.Observe(d.Seconds())
	m.YearsSimulated.Observe(float64(years))
	m.FinalReach.Observe(reach)
}

// IncrementFailed records a run that was rejected.
func (m *Metrics) IncrementFailed() {
	if m != nil {
		m.Runs.WithLabelValues(OutcomeFailed).Inc()
	}
}

// SetStoredRuns updates the stored-run gauge.
func (m *Metrics) SetStoredRuns(n int) {
	if m != nil {
		m.StoredRuns.Set(float64(n))
	}
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
