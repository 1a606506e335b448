package resilience

import (
	"context"
	"errors"
	"testing"
	"time"
)

var errBoom = errors.New("boom")

func TestCircuitBreakerOpensAndRecovers(t *testing.T) {
	var transitions []State
	cb := NewCircuitBreaker("test", CircuitBreakerConfig{
		FailureThreshold: 2,
		ResetTimeout:     time.Minute,
		OnStateChange:    func(_ string, _, to State) { transitions = append(transitions, to) },
	})
	now := time.Now()
	cb.now = func() time.Time { return now }

	for i := 0; i < 2; i++ {
		if err := cb.Execute(func() error { return errBoom }); !errors.Is(err, errBoom) {
			t.Fatalf("attempt %d: expected errBoom, got %v", i, err)
		}
	}
	if cb.State() != StateOpen {
		t.Fatalf("expected open, got %s", cb.State())
	}
	called := false
	err := cb.Execute(func() error { called = true; return nil })
	if !errors.Is(err, ErrCircuitOpen) || called {
		t.Fatalf("expected fast failure while open, err=%v called=%v", err, called)
	}

	now = now.Add(2 * time.Minute)
	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Fatalf("half-open probe: %v", err)
	}
	if cb.State() != StateClosed {
		t.Fatalf("expected closed after successful probe, got %s", cb.State())
	}
	want := []State{StateOpen, StateHalfOpen, StateClosed}
	if len(transitions) != len(want) {
		t.Fatalf("transitions = %v, want %v", transitions, want)
	}
	for i := range want {
		if transitions[i] != want[i] {
			t.Fatalf("transitions = %v, want %v", transitions, want)
		}
	}
}

func TestRetrySucceedsAfterFailures(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), "flaky", RetryConfig{Attempts: 3, Backoff: Backoff{Initial: time.Millisecond}}, func() error {
		calls++
		if calls < 3 {
			return errBoom
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Retry: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestRetryStopsOnNonRetryable(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), "fatal", RetryConfig{
		Attempts:  5,
		Backoff:   Backoff{Initial: time.Millisecond},
		Retryable: func(err error) bool { return !errors.Is(err, errBoom) },
	}, func() error {
		calls++
		return errBoom
	})
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected errBoom, got %v", err)
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1", calls)
	}
}

func TestCallTimeout(t *testing.T) {
	_, err := Call(context.Background(), 10*time.Millisecond, "slow", func(ctx context.Context) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}

	v, err := Call(context.Background(), time.Second, "fast", func(context.Context) (string, error) {
		return "ok", nil
	})
	if err != nil || v != "ok" {
		t.Fatalf("Call = %q, %v", v, err)
	}
}

func TestCircuitBreakerIgnoresNonFailures(t *testing.T) {
	errAnswer := errors.New("no answer")
	cb := NewCircuitBreaker("lookup", CircuitBreakerConfig{
		FailureThreshold: 1,
		IsFailure:        func(err error) bool { return !errors.Is(err, errAnswer) },
	})
	for i := 0; i < 3; i++ {
		v, err := Guard(cb, func() (string, error) { return "", errAnswer })
		if !errors.Is(err, errAnswer) || v != "" {
			t.Fatalf("Guard = %q, %v", v, err)
		}
	}
	if cb.State() != StateClosed {
		t.Fatalf("expected closed, got %s", cb.State())
	}
}

func TestCircuitBreakerFailedProbeReopens(t *testing.T) {
	cb := NewCircuitBreaker("probe", CircuitBreakerConfig{FailureThreshold: 1, ResetTimeout: time.Minute})
	now := time.Now()
	cb.now = func() time.Time { return now }

	cb.Execute(func() error { return errBoom })
	now = now.Add(2 * time.Minute)
	if err := cb.Execute(func() error { return errBoom }); !errors.Is(err, errBoom) {
		t.Fatalf("probe should run, got %v", err)
	}
	if cb.State() != StateOpen {
		t.Fatalf("expected open after failed probe, got %s", cb.State())
	}
	if err := cb.Execute(func() error { return nil }); !errors.Is(err, ErrCircuitOpen) {
		t.Fatalf("expected fast failure, got %v", err)
	}
}

func TestRetryReportsEachRetry(t *testing.T) {
	var attempts []int
	err := Retry(context.Background(), "always", RetryConfig{
		Attempts: 3,
		Backoff:  Backoff{Initial: time.Millisecond},
		OnRetry:  func(attempt int, _ error, _ time.Duration) { attempts = append(attempts, attempt) },
	}, func() error { return errBoom })
	if !errors.Is(err, errBoom) {
		t.Fatalf("expected errBoom, got %v", err)
	}
	if len(attempts) != 2 || attempts[0] != 1 || attempts[1] != 2 {
		t.Fatalf("OnRetry attempts = %v, want [1 2]", attempts)
	}
}

func TestRetryStopsWhenContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	err := Retry(ctx, "cancelled", RetryConfig{Attempts: 5, Backoff: Backoff{Initial: time.Hour}}, func() error {
		calls++
		cancel()
		return errBoom
	})
	if !errors.Is(err, context.Canceled) || calls != 1 {
		t.Fatalf("Retry = %v after %d calls", err, calls)
	}
}

func TestBackoffDelayIsCapped(t *testing.T) {
	b := Backoff{Initial: time.Second, Max: 3 * time.Second, Multiplier: 2, Jitter: 0.1}
	if d := b.Delay(10); d != 3*time.Second {
		t.Fatalf("Delay(10) = %v, want cap", d)
	}
	if d := b.Delay(1); d < 900*time.Millisecond || d > 1100*time.Millisecond {
		t.Fatalf("Delay(1) = %v, want 1s ±10%%", d)
	}
}
