package scraper

import (
	"context"
	"errors"
	"time"
)

// RetryPolicy bounds retries of a fallible operation with pure exponential
// backoff: the wait after attempt n is BaseDelay * 2^(n-1).
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	// OnRetry, if set, is called before each wait with the failed attempt number.
	OnRetry func(attempt int, err error)
}

// DefaultRetryPolicy returns 3 attempts with a 500ms base delay.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxAttempts: 3, BaseDelay: 500 * time.Millisecond}
}

// Backoff returns the wait that follows a failed attempt (1-based).
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	if attempt <= 0 {
		attempt = 1
	}
	return p.BaseDelay * time.Duration(1<<(attempt-1))
}

// PermanentError marks a failure that Retry returns without another attempt.
type PermanentError struct {
	Err error
}

// Permanent wraps err so Retry stops at the attempt that returned it.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &PermanentError{Err: err}
}

func (e *PermanentError) Error() string { return e.Err.Error() }
func (e *PermanentError) Unwrap() error { return e.Err }
func (e *PermanentError) Permanent() bool { return true }

// isPermanent reports whether any error in the chain declares itself permanent.
func isPermanent(err error) bool {
	var p interface{ Permanent() bool }
	return errors.As(err, &p) && p.Permanent()
}

// Retry runs op until it succeeds or MaxAttempts attempts have failed, and
// then returns the error of the last attempt unchanged. A permanent error is
// returned at once. Cancelling ctx stops the wait between attempts and
// returns ctx.Err().
func Retry[T any](ctx context.Context, p RetryPolicy, op func(context.Context) (T, error)) (T, error) {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	var (
		zero    T
		lastErr error
	)
	for attempt := 1; attempt <= attempts; attempt++ {
		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if attempt == attempts || isPermanent(err) {
			break
		}
		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		if p.OnRetry != nil {
			p.OnRetry(attempt, err)
		}

		timer := time.NewTimer(p.Backoff(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
	return zero, lastErr
}
