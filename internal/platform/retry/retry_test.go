package retry

import (
	"context"
	"testing"
	"time"

	perr "courtside/internal/platform/errors"
)

func fastPolicy() Policy {
	return Policy{MaxAttempts: 3, Base: time.Millisecond, Cap: 2 * time.Millisecond}
}

func TestDo_SucceedsAfterTransient(t *testing.T) {
	calls := 0
	err := fastPolicy().Do(context.Background(), func() error {
		calls++
		if calls < 3 {
			return perr.Unavailablef("upstream flaked")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestDo_StopsOnNonRetryable(t *testing.T) {
	calls := 0
	err := fastPolicy().Do(context.Background(), func() error {
		calls++
		return perr.InvalidArgf("bad input")
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if calls != 1 {
		t.Fatalf("calls = %d, want 1 (no retry on non-retryable)", calls)
	}
}

func TestDo_ExhaustsBudget(t *testing.T) {
	calls := 0
	err := fastPolicy().Do(context.Background(), func() error {
		calls++
		return perr.Unavailablef("still down")
	})
	if err == nil {
		t.Fatal("expected error after exhaustion")
	}
	if calls != 3 {
		t.Fatalf("calls = %d, want 3", calls)
	}
}

func TestDo_RespectsCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := fastPolicy().Do(ctx, func() error { return perr.Unavailablef("down") })
	if err != context.Canceled {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

func TestBackoff_Capped(t *testing.T) {
	p := Policy{MaxAttempts: 10, Base: time.Second, Cap: 2 * time.Second}
	for attempt := 0; attempt < 8; attempt++ {
		if d := p.Backoff(attempt); d > 2*time.Second+500*time.Millisecond {
			t.Fatalf("Backoff(%d) = %v, exceeds cap + jitter", attempt, d)
		}
	}
}
