package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus counters, histograms, and gauges for the
// estimation evaluator.
type Metrics struct {
	SnapshotsEvaluated prometheus.Counter
	ReportsConsidered  prometheus.Counter
	ReportsExpired     prometheus.Counter
	EvaluationErrors   prometheus.Counter
	EvaluatorRunning   prometheus.Gauge

	// Estimates counts published estimates by derived category.
	Estimates *prometheus.CounterVec // label: category

	EvaluationDuration prometheus.Histogram
}

// NewMetrics creates and registers all evaluator metrics with the default
// Prometheus registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		SnapshotsEvaluated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wait_engine",
			Name:      "snapshots_evaluated_total",
			Help:      "Total venue snapshots pulled from the source.",
		}),
		ReportsConsidered: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wait_engine",
			Name:      "reports_considered_total",
			Help:      "Total reports fed into the estimator, including stale ones.",
		}),
		ReportsExpired: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wait_engine",
			Name:      "reports_expired_total",
			Help:      "Total reports past the freshness cutoff at evaluation time.",
		}),
		EvaluationErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "wait_engine",
			Name:      "evaluation_errors_total",
			Help:      "Total failed fetch-estimate-publish cycles.",
		}),
		EvaluatorRunning: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "wait_engine",
			Name:      "evaluator_running",
			Help:      "1 when the evaluator loop is active, 0 when shut down.",
		}),
		Estimates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "wait_engine",
			Name:      "estimates_total",
			Help:      "Published estimates by wait category.",
		}, []string{"category"}),
		EvaluationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "wait_engine",
			Name:      "evaluation_duration_seconds",
			Help:      "Duration of a complete fetch-estimate-publish cycle.",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5},
		}),
	}

	prometheus.MustRegister(
		m.SnapshotsEvaluated,
		m.ReportsConsidered,
		m.ReportsExpired,
		m.EvaluationErrors,
		m.EvaluatorRunning,
		m.Estimates,
		m.EvaluationDuration,
	)

	return m
}

// NewMetricsForTesting creates Metrics with unregistered collectors to avoid
// "already registered" panics when called from multiple tests.
func NewMetricsForTesting() *Metrics {
	return &Metrics{
		SnapshotsEvaluated: prometheus.NewCounter(prometheus.CounterOpts{Namespace: "wait_engine", Name: "snapshots_evaluated_total"}),
		ReportsConsidered:  prometheus.NewCounter(prometheus.CounterOpts{Namespace: "wait_engine", Name: "reports_considered_total"}),
		ReportsExpired:     prometheus.NewCounter(prometheus.CounterOpts{Namespace: "wait_engine", Name: "reports_expired_total"}),
		EvaluationErrors:   prometheus.NewCounter(prometheus.CounterOpts{Namespace: "wait_engine", Name: "evaluation_errors_total"}),
		EvaluatorRunning:   prometheus.NewGauge(prometheus.GaugeOpts{Namespace: "wait_engine", Name: "evaluator_running"}),
		Estimates:          prometheus.NewCounterVec(prometheus.CounterOpts{Namespace: "wait_engine", Name: "estimates_total"}, []string{"category"}),
		EvaluationDuration: prometheus.NewHistogram(prometheus.HistogramOpts{Namespace: "wait_engine", Name: "evaluation_duration_seconds"}),
	}
}
