package metrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.DocProcessed(false)
	m.BuildFinished(1.5, 10)
	m.SnapshotWritten(nil)
	m.Upsert("written")
	m.LookupFailed("spelling")
	m.BreakerState("spelling", 1)
}

func TestRecorders(t *testing.T) {
	m := New(prometheus.NewRegistry())

	m.DocProcessed(true)
	m.DocProcessed(false)
	if got := testutil.ToFloat64(m.DocsProcessedTotal); got != 2 {
		t.Fatalf("docs processed = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.DocsFailedTotal); got != 1 {
		t.Fatalf("docs failed = %v, want 1", got)
	}

	m.BuildFinished(0.2, 42)
	if got := testutil.ToFloat64(m.IndexedTerms); got != 42 {
		t.Fatalf("terms = %v, want 42", got)
	}

	m.SnapshotWritten(errors.New("disk full"))
	if got := testutil.ToFloat64(m.SnapshotWritesTotal.WithLabelValues("error")); got != 1 {
		t.Fatalf("snapshot errors = %v, want 1", got)
	}

	m.Upsert("written")
	m.Upsert("written")
	m.Upsert("skipped")
	if got := testutil.ToFloat64(m.SyncUpsertsTotal.WithLabelValues("written")); got != 2 {
		t.Fatalf("written upserts = %v, want 2", got)
	}

	m.BreakerState("synonyms", 1)
	if got := testutil.ToFloat64(m.CircuitBreakerState.WithLabelValues("synonyms")); got != 1 {
		t.Fatalf("breaker state = %v, want 1", got)
	}
}
