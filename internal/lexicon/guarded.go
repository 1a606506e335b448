package lexicon

import (
	"context"
	"errors"
	"time"

	"github.com/Adithya-Monish-Kumar-K/humor-index/internal/indexer/pipeline"
	apperrors "github.com/Adithya-Monish-Kumar-K/humor-index/pkg/errors"
	"github.com/Adithya-Monish-Kumar-K/humor-index/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/humor-index/pkg/resilience"
)

// GuardConfig bounds a single lookup. Zero values fall back to the
// resilience package defaults; a zero Timeout disables the deadline.
type GuardConfig struct {
	Timeout          time.Duration
	FailureThreshold int
	ResetTimeout     time.Duration
	Metrics          *metrics.Metrics
}

func (g GuardConfig) breaker(name string) *resilience.CircuitBreaker {
	m := g.Metrics
	return resilience.NewCircuitBreaker(name, resilience.CircuitBreakerConfig{
		FailureThreshold: g.FailureThreshold,
		ResetTimeout:     g.ResetTimeout,
		IsFailure: func(err error) bool {
			return !errors.Is(err, apperrors.ErrNoSuggestion)
		},
		OnStateChange: func(name string, _, to resilience.State) {
			m.BreakerState(name, int(to))
		},
	})
}

// GuardedCorrector puts a deadline and a circuit breaker in front of a
// SpellCorrector. ErrNoSuggestion is an answer, not a failure.
type GuardedCorrector struct {
	next    pipeline.SpellCorrector
	breaker *resilience.CircuitBreaker
	cfg     GuardConfig
}

func NewGuardedCorrector(next pipeline.SpellCorrector, cfg GuardConfig) *GuardedCorrector {
	return &GuardedCorrector{
		next:    next,
		breaker: cfg.breaker("spelling"),
		cfg:     cfg,
	}
}

func (g *GuardedCorrector) Correct(ctx context.Context, token string) (string, error) {
	fixed, err := resilience.Guard(g.breaker, func() (string, error) {
		return resilience.Call(ctx, g.cfg.Timeout, "spelling lookup", func(ctx context.Context) (string, error) {
			return g.next.Correct(ctx, token)
		})
	})
	if err != nil && !errors.Is(err, apperrors.ErrNoSuggestion) {
		g.cfg.Metrics.LookupFailed("spelling")
	}
	return fixed, err
}

// State exposes the breaker state for health reporting.
func (g *GuardedCorrector) State() resilience.State {
	return g.breaker.State()
}

// GuardedSynonyms is the SynonymSource counterpart of GuardedCorrector.
type GuardedSynonyms struct {
	next    pipeline.SynonymSource
	breaker *resilience.CircuitBreaker
	cfg     GuardConfig
}

func NewGuardedSynonyms(next pipeline.SynonymSource, cfg GuardConfig) *GuardedSynonyms {
	return &GuardedSynonyms{
		next:    next,
		breaker: cfg.breaker("synonyms"),
		cfg:     cfg,
	}
}

func (g *GuardedSynonyms) Lookup(ctx context.Context, token string) ([]string, error) {
	syns, err := resilience.Guard(g.breaker, func() ([]string, error) {
		return resilience.Call(ctx, g.cfg.Timeout, "synonym lookup", func(ctx context.Context) ([]string, error) {
			return g.next.Lookup(ctx, token)
		})
	})
	if err != nil {
		g.cfg.Metrics.LookupFailed("synonyms")
		return nil, err
	}
	return syns, nil
}

func (g *GuardedSynonyms) State() resilience.State {
	return g.breaker.State()
}
