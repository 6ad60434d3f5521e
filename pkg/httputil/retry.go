package httputil

import (
	"context"
	"errors"
	"time"
)

// DefaultDelay is the wait before the first retry when a [Policy] names none.
const DefaultDelay = 500 * time.Millisecond

// RetryableError wraps an error to indicate it should trigger a retry.
// Wrap transient failures (connection resets, 5xx responses) with this type
// so that [Policy.Do] knows to attempt the operation again.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable marks err as transient. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err, or anything it wraps, is a [RetryableError].
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}

// Policy controls how often and how patiently an operation is retried.
// The zero value runs the operation exactly once.
type Policy struct {
	Attempts int           // total tries, values below 1 mean 1
	Delay    time.Duration // wait before the second try, doubled after each failure
	MaxDelay time.Duration // upper bound on the wait, zero means unbounded
}

// Do runs fn until it succeeds, returns a non-retryable error or the
// attempts run out. The attempt number passed to fn starts at 1. Returns the
// last error, or ctx.Err() if the context ends while waiting.
func (p Policy) Do(ctx context.Context, fn func(attempt int) error) error {
	attempts := max(p.Attempts, 1)
	delay := p.Delay
	if delay <= 0 {
		delay = DefaultDelay
	}

	var lastErr error
	for i := 1; i <= attempts; i++ {
		if lastErr = fn(i); lastErr == nil || !IsRetryable(lastErr) {
			return lastErr
		}
		if i == attempts {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay *= 2
		if p.MaxDelay > 0 && delay > p.MaxDelay {
			delay = p.MaxDelay
		}
	}
	return lastErr
}
