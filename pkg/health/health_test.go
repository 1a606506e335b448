package health

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/Adithya-Monish-Kumar-K/humor-index/pkg/resilience"
)

func TestRunAggregatesWorstStatus(t *testing.T) {
	c := NewChecker()
	c.Register("store", PingCheck(func(context.Context) error { return nil }, false))
	c.Register("synonym-cache", PingCheck(func(context.Context) error { return errors.New("refused") }, true))

	report := c.Run(context.Background())
	if report.Status != StatusDegraded {
		t.Fatalf("status = %s, want degraded", report.Status)
	}
	if got := report.Components["synonym-cache"].Message; got != "refused" {
		t.Fatalf("message = %q", got)
	}

	c.Register("kafka", PingCheck(func(context.Context) error { return errors.New("down") }, false))
	if got := c.Run(context.Background()).Status; got != StatusDown {
		t.Fatalf("status = %s, want down", got)
	}
}

func TestReadyHandler(t *testing.T) {
	c := NewChecker()
	c.Register("store", PingCheck(func(context.Context) error { return errors.New("unreachable") }, false))

	rec := httptest.NewRecorder()
	c.ReadyHandler()(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("code = %d, want 503", rec.Code)
	}
}

func TestBreakerCheck(t *testing.T) {
	state := resilience.StateOpen
	c := NewChecker()
	c.Register("spelling", BreakerCheck(func() resilience.State { return state }))

	report := c.Run(context.Background())
	if report.Status != StatusDegraded {
		t.Fatalf("status = %s, want degraded", report.Status)
	}
	if got := report.Components["spelling"].Message; got != "circuit open" {
		t.Fatalf("message = %q", got)
	}
	if diff := cmp.Diff([]string{"spelling"}, report.Failing()); diff != "" {
		t.Fatalf("Failing() mismatch (-want +got):\n%s", diff)
	}

	state = resilience.StateClosed
	if got := c.Run(context.Background()).Status; got != StatusUp {
		t.Fatalf("status = %s, want up", got)
	}
}

func TestRunBoundsSlowChecks(t *testing.T) {
	c := NewChecker()
	c.Timeout = 10 * time.Millisecond
	c.Register("store", PingCheck(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}, false))
	if got := c.Run(context.Background()).Status; got != StatusDown {
		t.Fatalf("status = %s, want down", got)
	}
}
