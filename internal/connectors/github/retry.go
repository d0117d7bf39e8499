package github

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// maxAttempts is the total number of tries per remote operation, the
// first call included.
const maxAttempts = 3

// minWait is used when a quota reset is already in the past by the time
// we compute the wait; we never sleep a negative duration.
const minWait = time.Second

// Quota is one rate-limit bucket's remaining budget and reset moment.
type Quota struct {
	Remaining int
	ResetAt   time.Time
}

// Quotas is the backend's queryable rate-limit state: the search-specific
// bucket and the shared core bucket.
type Quotas struct {
	Search Quota
	Core   Quota
}

// Caller wraps remote operations with bounded retry-on-throttle
// semantics. Any other failure propagates immediately.
type Caller struct {
	// Limits queries the backend's current rate-limit state.
	Limits func(ctx context.Context) (Quotas, error)

	// Sleep is swappable for tests; nil means time.Sleep.
	Sleep func(d time.Duration)

	Log zerolog.Logger
}

// Do runs op, retrying on throttling after sleeping until the binding
// quota reset. After maxAttempts throttled tries it gives up with
// ErrRetryBudgetExhausted.
func (c *Caller) Do(ctx context.Context, op func() error) error {
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		err := op()
		if err == nil {
			return nil
		}
		if !IsRateLimited(err) {
			return err
		}

		quotas, qerr := c.Limits(ctx)
		if qerr != nil {
			return qerr
		}

		wait := time.Until(bindingReset(quotas))
		if wait <= 0 {
			wait = minWait
		}

		c.Log.Warn().
			Int("attempt", attempt).
			Dur("wait", wait).
			Msg("rate limit exceeded; waiting for quota reset")
		c.sleep(wait)
		c.Log.Info().Int("attempt", attempt).Msg("done waiting; resuming")
	}
	return ErrRetryBudgetExhausted
}

// bindingReset picks the reset moment that actually gates the next call.
// The search reset applies by default; an exhausted core quota dominates
// even if search still has headroom, and when both are exhausted the later
// reset wins.
func bindingReset(q Quotas) time.Time {
	reset := q.Search.ResetAt
	if q.Core.Remaining <= 0 {
		reset = q.Core.ResetAt
		if q.Search.Remaining <= 0 && q.Search.ResetAt.After(reset) {
			reset = q.Search.ResetAt
		}
	}
	return reset
}

func (c *Caller) sleep(d time.Duration) {
	if c.Sleep != nil {
		c.Sleep(d)
		return
	}
	time.Sleep(d)
}
