package httputil

import (
	"context"
	"errors"
	"time"
)

// Default retry settings.
const (
	DefaultAttempts = 3
	DefaultDelay    = time.Second
)

// maxRetryAfter caps how long a Retry-After hint can stall a request.
const maxRetryAfter = 30 * time.Second

// RetryableError marks a transient failure: a network error, 429 or 5xx.
// After is the server's Retry-After hint, zero when absent.
type RetryableError struct {
	Err   error
	After time.Duration
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps err as a [RetryableError]. It returns nil for nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// RetryableAfter wraps err as a [RetryableError] that asks for at least d
// before the next attempt.
func RetryableAfter(err error, d time.Duration) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err, After: min(max(d, 0), maxRetryAfter)}
}

// IsRetryable reports whether err is wrapped with [RetryableError].
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}

// waitFor returns the pause before the next attempt: the backoff delay or
// the server's hint, whichever is longer.
func waitFor(err error, delay time.Duration) time.Duration {
	var re *RetryableError
	if errors.As(err, &re) && re.After > delay {
		return re.After
	}
	return delay
}

// Retry runs fn up to attempts times. Only [RetryableError] failures are
// retried; the pause doubles each time and honors Retry-After hints. It
// returns the last error, or ctx.Err() when ctx ends during a pause.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !IsRetryable(err) {
			return err
		}

		if i == attempts-1 {
			break
		}
		t := time.NewTimer(waitFor(lastErr, delay))
		select {
		case <-ctx.Done():
			t.Stop()
			return ctx.Err()
		case <-t.C:
		}
		delay *= 2
	}
	return lastErr
}

// RetryWithBackoff calls [Retry] with [DefaultAttempts] and [DefaultDelay].
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return Retry(ctx, DefaultAttempts, DefaultDelay, fn)
}
