// Package retry provides a small reusable retry policy shared by the
// adapters that talk to rate-limited upstream APIs.
package retry

import (
	"context"
	"strings"
	"time"
)

// Policy describes how an operation should be retried.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first.
	MaxAttempts int

	// Backoff returns the sleep duration before retrying after the given
	// zero-based attempt. If nil, ExponentialBackoff(time.Second) is used.
	Backoff func(attempt int) time.Duration

	// Retryable decides whether an error is worth retrying. If nil, all
	// errors are retryable.
	Retryable func(err error) bool
}

// ExponentialBackoff returns a backoff function producing base, 2*base,
// 4*base, ... for attempts 0, 1, 2, ...
func ExponentialBackoff(base time.Duration) func(int) time.Duration {
	return func(attempt int) time.Duration {
		return base << uint(attempt)
	}
}

// IsRateLimited reports whether err looks like an HTTP 429 from an upstream.
// Upstream clients surface the status code in the error text, so a substring
// check is the contract here, same as everywhere else in this codebase.
func IsRateLimited(err error) bool {
	return err != nil && strings.Contains(err.Error(), "429")
}

// Do runs fn up to p.MaxAttempts times, sleeping between attempts according
// to p.Backoff. It stops early when fn succeeds, when the error is not
// retryable, or when ctx is done. The last error is returned on exhaustion.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}
	backoff := p.Backoff
	if backoff == nil {
		backoff = ExponentialBackoff(time.Second)
	}

	var err error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(backoff(attempt - 1)):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		err = fn(ctx)
		if err == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
	}
	return err
}
