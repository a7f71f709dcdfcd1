package api

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the run counters exposed at GET /metrics. Each Server gets
// its own registry rather than the global default so multiple servers (as
// in tests) can coexist without duplicate-registration panics.
type Metrics struct {
	Registry      *prometheus.Registry
	RunsStarted   prometheus.Counter
	RunsCompleted prometheus.Counter
	RunsFailed    prometheus.Counter
}

// NewMetrics builds a fresh registry and registers every counter against it.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Registry: reg,
		RunsStarted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "truststack_runs_started_total",
			Help: "Total number of runs triggered via the API.",
		}),
		RunsCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "truststack_runs_completed_total",
			Help: "Total number of runs that reached the completed status.",
		}),
		RunsFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "truststack_runs_failed_total",
			Help: "Total number of runs that reached the failed status.",
		}),
	}
	reg.MustRegister(m.RunsStarted, m.RunsCompleted, m.RunsFailed)
	return m
}
