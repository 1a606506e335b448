// Package metrics defines the Prometheus collectors for index builds,
// remote synchronisation and lexical lookups, and exposes an HTTP handler
// for scraping.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors for the indexer. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	DocsProcessedTotal  prometheus.Counter
	DocsFailedTotal     prometheus.Counter
	IndexedTerms        prometheus.Gauge
	BuildDuration       prometheus.Histogram
	SnapshotWritesTotal *prometheus.CounterVec
	SyncUpsertsTotal    *prometheus.CounterVec
	LookupFailuresTotal *prometheus.CounterVec
	CircuitBreakerState *prometheus.GaugeVec
}

// New creates the collectors and registers them with reg. Passing nil uses
// the default registerer.
func New(reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		DocsProcessedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "indexer_docs_processed_total",
				Help: "Total records run through term extraction.",
			},
		),
		DocsFailedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "indexer_docs_failed_total",
				Help: "Records whose term extraction failed and were left out of the index.",
			},
		),
		IndexedTerms: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "indexer_terms",
				Help: "Number of distinct terms in the most recent index build.",
			},
		),
		BuildDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "indexer_build_duration_seconds",
				Help:    "Wall time of a full index build.",
				Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
			},
		),
		SnapshotWritesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "indexer_snapshot_writes_total",
				Help: "Local snapshot writes by status.",
			},
			[]string{"status"},
		),
		SyncUpsertsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "indexer_sync_upserts_total",
				Help: "Remote term upserts by status (written, skipped, failed).",
			},
			[]string{"status"},
		),
		LookupFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "indexer_lookup_failures_total",
				Help: "Spelling and synonym lookups that failed or timed out.",
			},
			[]string{"collaborator"},
		),
		CircuitBreakerState: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "indexer_circuit_breaker_state",
				Help: "Circuit breaker state (0=closed, 1=open, 2=half-open).",
			},
			[]string{"name"},
		),
	}

	reg.MustRegister(
		m.DocsProcessedTotal,
		m.DocsFailedTotal,
		m.IndexedTerms,
		m.BuildDuration,
		m.SnapshotWritesTotal,
		m.SyncUpsertsTotal,
		m.LookupFailuresTotal,
		m.CircuitBreakerState,
	)

	return m
}

func (m *Metrics) DocProcessed(ok bool) {
	if m == nil {
		return
	}
	m.DocsProcessedTotal.Inc()
	if !ok {
		m.DocsFailedTotal.Inc()
	}
}

func (m *Metrics) BuildFinished(seconds float64, terms int) {
	if m == nil {
		return
	}
	m.BuildDuration.Observe(seconds)
	m.IndexedTerms.Set(float64(terms))
}

func (m *Metrics) SnapshotWritten(err error) {
	if m == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	m.SnapshotWritesTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) Upsert(status string) {
	if m == nil {
		return
	}
	m.SyncUpsertsTotal.WithLabelValues(status).Inc()
}

func (m *Metrics) LookupFailed(collaborator string) {
	if m == nil {
		return
	}
	m.LookupFailuresTotal.WithLabelValues(collaborator).Inc()
}

func (m *Metrics) BreakerState(name string, state int) {
	if m == nil {
		return
	}
	m.CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// Handler returns the Prometheus scrape HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
