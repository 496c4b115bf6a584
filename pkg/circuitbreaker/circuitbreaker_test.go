package circuitbreaker

import (
	"errors"
	"testing"
	"time"
)

var errBoom = errors.New("boom")

func fail() (interface{}, error)    { return nil, errBoom }
func succeed() (interface{}, error) { return "ok", nil }

func TestTripsAfterFailureThreshold(t *testing.T) {
	cb := New(2, 1, time.Hour)

	for i := 0; i < 2; i++ {
		if _, err := cb.Execute(fail); !errors.Is(err, errBoom) {
			t.Fatalf("call %d: got %v, want the request error", i+1, err)
		}
	}
	if got := cb.State(); got != Open {
		t.Fatalf("state after threshold failures = %v, want Open", got)
	}

	if _, err := cb.Execute(succeed); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("execute while open: got %v, want ErrCircuitOpen", err)
	}
}

func TestClosedResetsFailureCountOnSuccess(t *testing.T) {
	cb := New(2, 1, time.Hour)

	cb.Execute(fail)
	cb.Execute(succeed)
	cb.Execute(fail)

	if got := cb.State(); got != Closed {
		t.Errorf("state = %v, want Closed after non-consecutive failures", got)
	}
}

func TestRecoversThroughHalfOpen(t *testing.T) {
	cb := New(1, 2, 10*time.Millisecond)

	cb.Execute(fail)
	if got := cb.State(); got != Open {
		t.Fatalf("state = %v, want Open", got)
	}

	time.Sleep(20 * time.Millisecond)

	// First trial request moves the breaker to half-open.
	if _, err := cb.Execute(succeed); err != nil {
		t.Fatalf("trial request failed: %v", err)
	}
	if got := cb.State(); got != HalfOpen {
		t.Fatalf("state = %v, want HalfOpen after one trial success", got)
	}

	if _, err := cb.Execute(succeed); err != nil {
		t.Fatalf("second trial request failed: %v", err)
	}
	if got := cb.State(); got != Closed {
		t.Errorf("state = %v, want Closed after success threshold", got)
	}
}

func TestHalfOpenFailureReopens(t *testing.T) {
	cb := New(1, 2, 10*time.Millisecond)

	cb.Execute(fail)
	time.Sleep(20 * time.Millisecond)
	cb.Execute(fail)

	if got := cb.State(); got != Open {
		t.Errorf("state = %v, want Open after half-open failure", got)
	}
}
