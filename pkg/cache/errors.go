package cache

import (
	"context"
	"errors"
	"time"
)

// ErrUnavailable reports that a cache backend could not be reached.
var ErrUnavailable = errors.New("cache unavailable")

// RetryableError marks a transient failure.
type RetryableError struct{ Err error }

// Retryable wraps err so [RetryWithBackoff] tries again. nil stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err was wrapped with [Retryable].
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// retryBase is the first backoff delay; each retry doubles it.
var retryBase = 100 * time.Millisecond

// RetryWithBackoff calls fn up to three times, backing off between calls.
// Only retryable errors are retried.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	const attempts = 3
	delay := retryBase
	var lastErr error

	for i := range attempts {
		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if !IsRetryable(err) {
			return err
		}
		if i == attempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
			delay *= 2
		}
	}
	return lastErr
}
