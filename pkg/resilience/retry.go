package resilience

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"time"
)

// Backoff produces the wait before each retry: Initial * Multiplier^(n-1),
// spread by ±Jitter of itself and capped at Max.
type Backoff struct {
	Initial    time.Duration
	Max        time.Duration
	Multiplier float64
	Jitter     float64
}

// Delay returns the wait after the given failed attempt (1-based).
func (b Backoff) Delay(attempt int) time.Duration {
	d := float64(b.Initial) * math.Pow(b.Multiplier, float64(attempt-1))
	d += d * b.Jitter * (2*rand.Float64() - 1)
	if d > float64(b.Max) {
		d = float64(b.Max)
	}
	if d <= 0 {
		d = float64(b.Initial)
	}
	return time.Duration(d)
}

func (b Backoff) withDefaults() Backoff {
	if b.Initial <= 0 {
		b.Initial = 100 * time.Millisecond
	}
	if b.Max <= 0 {
		b.Max = 10 * time.Second
	}
	if b.Multiplier <= 0 {
		b.Multiplier = 2
	}
	if b.Jitter <= 0 {
		b.Jitter = 0.1
	}
	return b
}

// RetryConfig controls Retry. Retryable, when set, stops the loop early for
// errors that will not improve with another attempt. OnRetry is told about
// every failure that will be retried.
type RetryConfig struct {
	Attempts  int
	Backoff   Backoff
	Retryable func(error) bool
	OnRetry   func(attempt int, err error, wait time.Duration)
}

// Retry calls fn until it succeeds, the attempts are spent, the error is
// not retryable, or ctx ends. The returned error wraps fn's last error.
func Retry(ctx context.Context, name string, cfg RetryConfig, fn func() error) error {
	attempts := cfg.Attempts
	if attempts <= 0 {
		attempts = 3
	}
	backoff := cfg.Backoff.withDefaults()

	var err error
	for attempt := 1; ; attempt++ {
		if err = fn(); err == nil {
			return nil
		}
		if cfg.Retryable != nil && !cfg.Retryable(err) {
			return fmt.Errorf("%s: %w", name, err)
		}
		if attempt >= attempts {
			return fmt.Errorf("%s failed after %d attempts: %w", name, attempts, err)
		}
		if ctx.Err() != nil {
			return fmt.Errorf("%s aborted: %w", name, ctx.Err())
		}

		wait := backoff.Delay(attempt)
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, err, wait)
		}
		timer := time.NewTimer(wait)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%s aborted during backoff: %w", name, ctx.Err())
		}
	}
}
