package cache

import (
	"context"
	"errors"
	"time"
)

// Failures of remote backends. Callers treat both as a cache miss and
// carry on computing.
var (
	// ErrNetwork wraps transport failures talking to a remote backend.
	ErrNetwork = errors.New("cache backend unreachable")

	// ErrClosed is returned by operations on a closed cache.
	ErrClosed = errors.New("cache closed")
)

// RetryableError marks a backend failure that may succeed on another
// attempt, such as a dropped Redis connection.
type RetryableError struct{ Err error }

// Retryable marks err as worth retrying. Nil stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

func (e *RetryableError) Error() string { return e.Err.Error() }

func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable reports whether err, or any error it wraps, is a RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// retryPolicy bounds how long a cache operation may stall a pipeline stage.
// The delay doubles after every failed attempt up to maxDelay.
type retryPolicy struct {
	attempts int
	delay    time.Duration
	maxDelay time.Duration
}

var defaultRetry = retryPolicy{attempts: 3, delay: 50 * time.Millisecond, maxDelay: 400 * time.Millisecond}

// RetryWithBackoff runs fn until it succeeds, returns an error not marked
// Retryable, or the attempts of the default policy are used up.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	return defaultRetry.run(ctx, fn)
}

func (p retryPolicy) run(ctx context.Context, fn func() error) error {
	delay := p.delay
	var err error
	for attempt := 1; ; attempt++ {
		if cerr := ctx.Err(); cerr != nil {
			return cerr
		}
		if err = fn(); err == nil || !IsRetryable(err) {
			return err
		}
		if attempt >= p.attempts {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
		delay = min(delay*2, p.maxDelay)
	}
}
