// Package retry runs operations with bounded exponential backoff.
//
// The relay client uses it to dial, and the status monitor uses [Policy.Backoff]
// to space out reconnect attempts before falling back to polling.
package retry

import (
	"context"
	"errors"
	"time"
)

// RetryableError marks a failure as transient. [Do] only retries errors
// wrapped with [Retryable]; everything else is returned immediately.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps err so that [Do] tries again. A nil err stays nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// IsRetryable reports whether err was wrapped with [Retryable].
func IsRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}

// Policy bounds a retry loop.
type Policy struct {
	// Attempts is the total number of tries, including the first. Values
	// below one mean one.
	Attempts int `toml:"attempts" json:"attempts"`
	// Delay is the wait after the first failure. It doubles after each
	// further failure.
	Delay time.Duration `toml:"delay" json:"delay"`
	// MaxDelay caps the wait. Zero means no cap.
	MaxDelay time.Duration `toml:"max_delay" json:"max_delay"`
}

// Default is 3 attempts starting at one second, capped at 30 seconds.
var Default = Policy{Attempts: 3, Delay: time.Second, MaxDelay: 30 * time.Second}

// Backoff returns the wait after the n-th failed attempt (0-based).
func (p Policy) Backoff(n int) time.Duration {
	d := p.Delay
	for range n {
		d *= 2
		if p.MaxDelay > 0 && d >= p.MaxDelay {
			return p.MaxDelay
		}
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		return p.MaxDelay
	}
	return d
}

// Do calls fn until it succeeds, returns a non-retryable error, or the
// attempts run out. fn receives the 0-based attempt number. Do returns the
// last error, or ctx.Err() if the context ends while waiting.
func Do(ctx context.Context, p Policy, fn func(attempt int) error) error {
	attempts := max(p.Attempts, 1)
	var lastErr error

	for i := range attempts {
		if err := fn(i); err == nil {
			return nil
		} else if lastErr = err; !IsRetryable(err) {
			return err
		}

		if i < attempts-1 {
			if err := Sleep(ctx, p.Backoff(i)); err != nil {
				return err
			}
		}
	}
	return lastErr
}

// Sleep waits for d or until ctx is done.
func Sleep(ctx context.Context, d time.Duration) error {
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
