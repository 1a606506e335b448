// Package health reports on the indexer's collaborators: the document
// store, the synonym cache and the guarded lexical lookups. Checks run
// concurrently and the worst status wins.
package health

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Adithya-Monish-Kumar-K/humor-index/pkg/resilience"
)

type Status string

const (
	StatusUp       Status = "up"
	StatusDegraded Status = "degraded"
	StatusDown     Status = "down"
)

// worse reports whether a ranks below b.
func (a Status) worse(b Status) bool {
	rank := map[Status]int{StatusUp: 0, StatusDegraded: 1, StatusDown: 2}
	return rank[a] > rank[b]
}

// Check probes one collaborator.
type Check func(ctx context.Context) ComponentHealth

type ComponentHealth struct {
	Status  Status `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// Report is the aggregated result of all checks.
type Report struct {
	Status     Status                     `json:"status"`
	Components map[string]ComponentHealth `json:"components"`
	Timestamp  string                     `json:"timestamp"`
}

// Failing returns the names of components that are not up, sorted.
func (r Report) Failing() []string {
	var names []string
	for name, c := range r.Components {
		if c.Status != StatusUp {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// Checker holds the registered checks. Each check gets at most Timeout.
type Checker struct {
	Timeout time.Duration

	mu     sync.RWMutex
	checks map[string]Check
	logger *slog.Logger
}

func NewChecker() *Checker {
	return &Checker{
		Timeout: 5 * time.Second,
		checks:  make(map[string]Check),
		logger:  slog.Default().With("component", "health"),
	}
}

func (c *Checker) Register(name string, check Check) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks[name] = check
}

// PingCheck turns a ping function (redis Ping, sql PingContext) into a
// Check. A failed ping is down, or degraded when the collaborator is
// optional.
func PingCheck(ping func(ctx context.Context) error, optional bool) Check {
	return func(ctx context.Context) ComponentHealth {
		err := ping(ctx)
		switch {
		case err == nil:
			return ComponentHealth{Status: StatusUp}
		case optional:
			return ComponentHealth{Status: StatusDegraded, Message: err.Error()}
		default:
			return ComponentHealth{Status: StatusDown, Message: err.Error()}
		}
	}
}

// BreakerCheck reports a guarded lookup. An open or probing breaker means
// lookups are being skipped, which degrades output quality without
// stopping the build.
func BreakerCheck(state func() resilience.State) Check {
	return func(context.Context) ComponentHealth {
		s := state()
		if s == resilience.StateClosed {
			return ComponentHealth{Status: StatusUp}
		}
		return ComponentHealth{Status: StatusDegraded, Message: "circuit " + s.String()}
	}
}

// Run executes every registered check concurrently.
func (c *Checker) Run(ctx context.Context) Report {
	c.mu.RLock()
	checks := make(map[string]Check, len(c.checks))
	for name, check := range c.checks {
		checks[name] = check
	}
	c.mu.RUnlock()

	report := Report{
		Status:     StatusUp,
		Components: make(map[string]ComponentHealth, len(checks)),
		Timestamp:  time.Now().UTC().Format(time.RFC3339),
	}
	var mu sync.Mutex
	var g errgroup.Group
	for name, check := range checks {
		name, check := name, check
		g.Go(func() error {
			checkCtx, cancel := context.WithTimeout(ctx, c.Timeout)
			defer cancel()
			start := time.Now()
			result := check(checkCtx)
			result.Latency = time.Since(start).Round(time.Millisecond).String()

			mu.Lock()
			report.Components[name] = result
			if result.Status.worse(report.Status) {
				report.Status = result.Status
			}
			mu.Unlock()
			return nil
		})
	}
	g.Wait()

	for _, name := range report.Failing() {
		comp := report.Components[name]
		c.logger.Warn("dependency unhealthy", "name", name, "status", comp.Status, "message", comp.Message)
	}
	return report
}

func (c *Checker) LiveHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
	}
}

// ReadyHandler answers 503 only when a required collaborator is down.
func (c *Checker) ReadyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		report := c.Run(r.Context())
		code := http.StatusOK
		if report.Status == StatusDown {
			code = http.StatusServiceUnavailable
		}
		writeJSON(w, code, report)
	}
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}
