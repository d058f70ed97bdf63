package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus instruments for reconciliation runs. A nil
// *Metrics is valid and records nothing, so callers never need a guard.
type Metrics struct {
	runsTotal       *prometheus.CounterVec
	matchedTotal    prometheus.Counter
	missingTotal    prometheus.Counter
	unexpectedTotal prometheus.Counter
	runDuration     prometheus.Histogram
}

// NewMetrics registers the reconciliation instruments with reg. Pass
// prometheus.DefaultRegisterer in main; tests use a fresh registry.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		runsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "reconciler_runs_total",
			Help: "Reconciliation runs by outcome.",
		}, []string{"status"}),
		matchedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "reconciler_matched_transactions_total",
			Help: "Statement transactions matched to a ledger transaction.",
		}),
		missingTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "reconciler_missing_transactions_total",
			Help: "Statement transactions with no ledger counterpart.",
		}),
		unexpectedTotal: factory.NewCounter(prometheus.CounterOpts{
			Name: "reconciler_unexpected_transactions_total",
			Help: "Ledger transactions with no statement counterpart.",
		}),
		runDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "reconciler_run_duration_seconds",
			Help:    "Wall time of one reconciliation run.",
			Buckets: prometheus.DefBuckets,
		}),
	}
}

// ObserveRun records the outcome of one reconciliation run.
func (m *Metrics) ObserveRun(status string, matched, missing, unexpected int, d time.Duration) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(status).Inc()
	m.matchedTotal.Add(float64(matched))
	m.missingTotal.Add(float64(missing))
	m.unexpectedTotal.Add(float64(unexpected))
	m.runDuration.Observe(d.Seconds())
}
