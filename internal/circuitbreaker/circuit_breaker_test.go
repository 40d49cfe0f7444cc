package circuitbreaker

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

func newTestBreaker(maxFailures int, timeout time.Duration) *CircuitBreaker {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel) // Reduce noise in tests

	return New(Config{
		Name:        "test",
		MaxFailures: maxFailures,
		Timeout:     timeout,
		MaxRequests: 1,
	}, logger)
}

func TestOpensAfterMaxFailures(t *testing.T) {
	cb := newTestBreaker(3, time.Minute)
	failing := func() error { return errors.New("broker down") }

	for i := 0; i < 3; i++ {
		if err := cb.Execute(failing); err == nil {
			t.Fatal("expected failure to propagate")
		}
	}

	if cb.State() != StateOpen {
		t.Fatalf("expected open state, got %s", cb.State())
	}

	if err := cb.Execute(func() error { return nil }); !errors.Is(err, ErrOpen) {
		t.Fatalf("expected ErrOpen while open, got %v", err)
	}
}

func TestHalfOpenProbeClosesOnSuccess(t *testing.T) {
	cb := newTestBreaker(1, 10*time.Millisecond)

	cb.Execute(func() error { return errors.New("fail") })
	if cb.State() != StateOpen {
		t.Fatalf("expected open state, got %s", cb.State())
	}

	time.Sleep(20 * time.Millisecond)

	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Fatalf("probe should have been allowed: %v", err)
	}
	if cb.State() != StateClosed {
		t.Fatalf("expected closed after successful probe, got %s", cb.State())
	}
}

func TestHalfOpenReopensOnFailure(t *testing.T) {
	cb := newTestBreaker(1, 10*time.Millisecond)

	cb.Execute(func() error { return errors.New("fail") })
	time.Sleep(20 * time.Millisecond)

	cb.Execute(func() error { return errors.New("still failing") })
	if cb.State() != StateOpen {
		t.Fatalf("expected reopened state, got %s", cb.State())
	}
}

func TestSuccessResetsFailureCount(t *testing.T) {
	cb := newTestBreaker(2, time.Minute)

	cb.Execute(func() error { return errors.New("fail") })
	cb.Execute(func() error { return nil })
	cb.Execute(func() error { return errors.New("fail") })

	if cb.State() != StateClosed {
		t.Fatalf("interleaved success should keep breaker closed, got %s", cb.State())
	}
}

func TestReset(t *testing.T) {
	cb := newTestBreaker(1, time.Minute)

	cb.Execute(func() error { return errors.New("fail") })
	if cb.State() != StateOpen {
		t.Fatalf("expected open state, got %s", cb.State())
	}

	cb.Reset()
	if cb.State() != StateClosed {
		t.Fatalf("expected closed after reset, got %s", cb.State())
	}
	if err := cb.Execute(func() error { return nil }); err != nil {
		t.Fatalf("expected execution after reset: %v", err)
	}
}

func TestExecuteConcurrentAccess(t *testing.T) {
	cb := newTestBreaker(1000, time.Minute)

	const numGoroutines = 50
	const numIterations = 20

	var wg sync.WaitGroup
	for i := 0; i < numGoroutines; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < numIterations; j++ {
				cb.Execute(func() error {
					if (n+j)%3 == 0 {
						return errors.New("simulated failure")
					}
					return nil
				})
			}
		}(i)
	}
	wg.Wait()

	// All goroutines finished without deadlock; state must be a known one.
	switch cb.State() {
	case StateClosed, StateOpen, StateHalfOpen:
	default:
		t.Fatalf("unexpected state %d", cb.State())
	}
}
