package github

import (
	"errors"
	"fmt"
	"time"

	gh "github.com/google/go-github/v80/github"

	"github.com/custodia-labs/todoscout/internal/core/ports/driven"
)

// ErrRetryBudgetExhausted is returned when an operation stayed throttled
// through the whole retry budget. It is fatal to the calling stage.
var ErrRetryBudgetExhausted = errors.New("github: retry budget exhausted")

// RateLimitError signals that the backend refused a call because a quota
// is exhausted. It is recoverable: the Caller waits for the binding reset
// and retries.
type RateLimitError struct {
	ResetAt time.Time
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("github: rate limit exceeded, resets at %s", e.ResetAt.Format(time.RFC3339))
}

// IsRateLimited reports whether err is a throttling signal.
func IsRateLimited(err error) bool {
	var rateLimitErr *RateLimitError
	return errors.As(err, &rateLimitErr)
}

// wrapError converts go-github errors into the package's error types:
// throttling into RateLimitError, API failures into driven.RemoteError so
// stages can classify them without importing go-github.
func wrapError(err error, operation string) error {
	if err == nil {
		return nil
	}

	var rateLimitErr *gh.RateLimitError
	if errors.As(err, &rateLimitErr) {
		return &RateLimitError{ResetAt: rateLimitErr.Rate.Reset.Time}
	}

	var abuseErr *gh.AbuseRateLimitError
	if errors.As(err, &abuseErr) {
		reset := time.Now()
		if abuseErr.RetryAfter != nil {
			reset = reset.Add(*abuseErr.RetryAfter)
		}
		return &RateLimitError{ResetAt: reset}
	}

	var ghErr *gh.ErrorResponse
	if errors.As(err, &ghErr) && ghErr.Response != nil {
		return &driven.RemoteError{
			Status: ghErr.Response.StatusCode,
			Body:   ghErr.Message,
		}
	}

	return fmt.Errorf("%s: %w", operation, err)
}
