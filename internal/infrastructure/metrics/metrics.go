package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// Pipeline metrics
	RunsTotal   *prometheus.CounterVec
	RunDuration prometheus.Histogram

	// Ingestion metrics
	EntriesIngested  prometheus.Counter
	EntriesDuplicate prometheus.Counter
	RecordsMalformed prometheus.Counter
	SourceFailures   *prometheus.CounterVec

	// Evaluation metrics
	ObligationsDetected prometheus.Gauge
	RecommendedAmount   prometheus.Gauge
	SafetyLevel         *prometheus.GaugeVec
	SnapshotStale       prometheus.Gauge

	// Goal metrics
	GoalSuggestions  prometheus.Gauge
	SuggestedSavings prometheus.Gauge
}

// New creates and registers all Prometheus metrics
func New() *Metrics {
	return &Metrics{
		// Pipeline metrics
		RunsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fss_runs_total",
				Help: "Total evaluation runs by outcome",
			},
			[]string{"status"},
		),
		RunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "fss_run_duration_seconds",
			Help:    "Duration of evaluation runs",
			Buckets: prometheus.DefBuckets,
		}),

		// Ingestion metrics
		EntriesIngested: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fss_entries_ingested_total",
			Help: "Total ledger entries ingested",
		}),
		EntriesDuplicate: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fss_entries_duplicate_total",
			Help: "Total records skipped as already ingested",
		}),
		RecordsMalformed: promauto.NewCounter(prometheus.CounterOpts{
			Name: "fss_records_malformed_total",
			Help: "Total raw records dropped as unparseable",
		}),
		SourceFailures: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "fss_source_failures_total",
				Help: "Total fetch failures by source",
			},
			[]string{"source"},
		),

		// Evaluation metrics
		ObligationsDetected: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "fss_obligations_detected",
			Help: "Recurring obligations detected in the last run",
		}),
		RecommendedAmount: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "fss_recommended_amount",
			Help: "Drawdown amount recommended by the last run",
		}),
		SafetyLevel: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "fss_safety_level",
				Help: "Safety classification of the last run, 1 for the active level",
			},
			[]string{"level"},
		),
		SnapshotStale: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "fss_snapshot_stale",
			Help: "Whether the last snapshot was published with stale sources",
		}),

		// Goal metrics
		GoalSuggestions: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "fss_goal_suggestions",
			Help: "Goal suggestions published by the last run",
		}),
		SuggestedSavings: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "fss_suggested_savings",
			Help: "Total weekly savings suggested by the last run",
		}),
	}
}

// ObserveRun records the outcome of one evaluation run.
func (m *Metrics) ObserveRun(status string, seconds float64) {
	m.RunsTotal.WithLabelValues(status).Inc()
	m.RunDuration.Observe(seconds)
}

// ObserveSnapshot records the headline figures of a published snapshot.
func (m *Metrics) ObserveSnapshot(recommended float64, level string, stale bool, obligations, suggestions int) {
	m.RecommendedAmount.Set(recommended)
	m.ObligationsDetected.Set(float64(obligations))
	m.GoalSuggestions.Set(float64(suggestions))

	for _, l := range []string{"safe", "caution", "unsafe"} {
		v := 0.0
		if l == level {
			v = 1.0
		}
		m.SafetyLevel.WithLabelValues(l).Set(v)
	}

	if stale {
		m.SnapshotStale.Set(1)
	} else {
		m.SnapshotStale.Set(0)
	}
}
