// Package resilience provides fault-tolerance primitives used around the
// indexer's slow collaborators: a circuit breaker for lexical lookups,
// exponential-backoff retry for store writes, and a timeout wrapper.
package resilience

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"
)

// ErrCircuitOpen is returned when the circuit breaker is in the Open state.
var ErrCircuitOpen = errors.New("circuit breaker is open")

// State represents the current phase of a circuit breaker.
type State int

const (
	StateClosed State = iota
	StateOpen
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig controls failure thresholds and recovery timing.
//
// IsFailure decides which errors count against the breaker; nil means every
// non-nil error does. OnStateChange runs after each transition, outside the
// breaker lock.
type CircuitBreakerConfig struct {
	FailureThreshold int
	ResetTimeout     time.Duration
	Probes           int
	IsFailure        func(error) bool
	OnStateChange    func(name string, from, to State)
}

// CircuitBreaker fails fast once FailureThreshold consecutive lookups have
// failed, then lets Probes calls through after ResetTimeout to test the
// collaborator again.
type CircuitBreaker struct {
	name   string
	cfg    CircuitBreakerConfig
	logger *slog.Logger
	now    func() time.Time

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time
	inFlight int
}

// NewCircuitBreaker fills zero config values with defaults: five failures,
// a thirty second cool-down and a single probe.
func NewCircuitBreaker(name string, cfg CircuitBreakerConfig) *CircuitBreaker {
	if cfg.FailureThreshold <= 0 {
		cfg.FailureThreshold = 5
	}
	if cfg.ResetTimeout <= 0 {
		cfg.ResetTimeout = 30 * time.Second
	}
	if cfg.Probes <= 0 {
		cfg.Probes = 1
	}
	if cfg.IsFailure == nil {
		cfg.IsFailure = func(err error) bool { return err != nil }
	}
	return &CircuitBreaker{
		name:   name,
		cfg:    cfg,
		logger: slog.Default().With("component", "circuit-breaker", "name", name),
		now:    time.Now,
	}
}

// Execute runs fn if the circuit allows it and records the outcome.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	_, err := Guard(cb, func() (struct{}, error) {
		return struct{}{}, fn()
	})
	return err
}

// Guard is Execute for functions that also produce a value.
func Guard[T any](cb *CircuitBreaker, fn func() (T, error)) (T, error) {
	var zero T
	if err := cb.admit(); err != nil {
		return zero, err
	}
	v, err := fn()
	cb.record(err != nil && cb.cfg.IsFailure(err))
	return v, err
}

func (cb *CircuitBreaker) State() State {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// transition is a state change observed under the lock and reported after
// it is released.
type transition struct {
	from, to State
	failures int
}

func (cb *CircuitBreaker) admit() error {
	cb.mu.Lock()
	var changed *transition
	switch cb.state {
	case StateOpen:
		wait := cb.cfg.ResetTimeout - cb.now().Sub(cb.openedAt)
		if wait > 0 {
			cb.mu.Unlock()
			return fmt.Errorf("%w: %s (retry after %v)", ErrCircuitOpen, cb.name, wait)
		}
		changed = cb.moveTo(StateHalfOpen)
		cb.inFlight = 1
	case StateHalfOpen:
		if cb.inFlight >= cb.cfg.Probes {
			cb.mu.Unlock()
			return fmt.Errorf("%w: %s (probe in flight)", ErrCircuitOpen, cb.name)
		}
		cb.inFlight++
	}
	cb.mu.Unlock()
	cb.notify(changed)
	return nil
}

func (cb *CircuitBreaker) record(failed bool) {
	cb.mu.Lock()
	var changed *transition
	switch {
	case !failed:
		cb.failures = 0
		if cb.state == StateHalfOpen {
			cb.inFlight = 0
			changed = cb.moveTo(StateClosed)
		}
	default:
		cb.failures++
		if cb.state == StateHalfOpen || (cb.state == StateClosed && cb.failures >= cb.cfg.FailureThreshold) {
			cb.openedAt = cb.now()
			cb.inFlight = 0
			changed = cb.moveTo(StateOpen)
		}
	}
	cb.mu.Unlock()
	cb.notify(changed)
}

// moveTo must be called with cb.mu held.
func (cb *CircuitBreaker) moveTo(to State) *transition {
	t := &transition{from: cb.state, to: to, failures: cb.failures}
	cb.state = to
	return t
}

func (cb *CircuitBreaker) notify(t *transition) {
	if t == nil {
		return
	}
	cb.logger.Info("circuit state changed",
		"from", t.from.String(),
		"to", t.to.String(),
		"consecutive_failures", t.failures,
	)
	if cb.cfg.OnStateChange != nil {
		cb.cfg.OnStateChange(cb.name, t.from, t.to)
	}
}
