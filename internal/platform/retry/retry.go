// Package retry provides a bounded retry policy for collaborator calls
package retry

import (
	"context"
	"math/rand"
	"time"

	perr "courtside/internal/platform/errors"
)

// Policy is an explicit bounded-retry policy: max attempts plus an
// exponential backoff schedule with a cap and light jitter
type Policy struct {
	MaxAttempts int
	Base        time.Duration
	Cap         time.Duration
}

// Default is the policy collaborator adapters start from
func Default() Policy {
	return Policy{MaxAttempts: 3, Base: 500 * time.Millisecond, Cap: 30 * time.Second}
}

// Backoff returns the delay before the given zero-based attempt
func (p Policy) Backoff(attempt int) time.Duration {
	d := p.Base
	if d <= 0 {
		d = 500 * time.Millisecond
	}
	// simple exponential with cap
	ms := int64(d / time.Millisecond)
	ms = ms << uint(attempt)
	ceil := int64(p.Cap / time.Millisecond)
	if ceil <= 0 {
		ceil = int64(30 * time.Second / time.Millisecond)
	}
	if ms > ceil {
		ms = ceil
	}
	// up to 25% jitter so synchronized callers spread out
	ms += rand.Int63n(ms/4 + 1)
	return time.Duration(ms) * time.Millisecond
}

// Do runs fn until it succeeds, returns a non-retryable error, or the
// attempt budget is spent. The last error is returned on exhaustion
func (p Policy) Do(ctx context.Context, fn func() error) error {
	max := p.MaxAttempts
	if max <= 0 {
		max = 1
	}
	var err error
	for attempt := 0; attempt < max; attempt++ {
		if err = ctx.Err(); err != nil {
			return err
		}
		if err = fn(); err == nil {
			return nil
		}
		if !perr.Retryable(err) || attempt == max-1 {
			return err
		}
		if serr := SleepCtx(ctx, p.Backoff(attempt)); serr != nil {
			return serr
		}
	}
	return err
}

// SleepCtx sleeps for d or until ctx is done
func SleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
