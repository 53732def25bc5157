// Package retry retries background operations with capped exponential
// backoff. It backs outbound Twilio sends, never user-facing provider
// calls, which get exactly one attempt before falling back.
package retry

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// Policy controls how often and how patiently Do retries.
type Policy struct {
	// Attempts is the total number of calls including the first. Values
	// below 1 mean a single call.
	Attempts int
	// Base is the delay after the first failure; it doubles per attempt.
	Base time.Duration
	// Cap bounds a single delay.
	Cap time.Duration
}

// Default suits short network calls: three attempts, 500ms then 1s.
var Default = Policy{Attempts: 3, Base: 500 * time.Millisecond, Cap: 10 * time.Second}

type permanentError struct{ err error }

func (p permanentError) Error() string { return p.err.Error() }
func (p permanentError) Unwrap() error { return p.err }

// Permanent marks err as not worth retrying. Do returns the wrapped error
// immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

// Do calls fn until it succeeds, returns a Permanent error, the attempts are
// exhausted, or ctx ends. The last error from fn is returned, joined with the
// context error when cancellation stopped the loop.
func (p Policy) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	delay := p.Base
	if delay <= 0 {
		delay = Default.Base
	}
	ceiling := p.Cap
	if ceiling <= 0 {
		ceiling = Default.Cap
	}

	var last error
	for n := 1; n <= attempts; n++ {
		if err := ctx.Err(); err != nil {
			return errors.Join(last, err)
		}

		last = fn(ctx)
		if last == nil {
			return nil
		}
		var perm permanentError
		if errors.As(last, &perm) {
			return perm.err
		}
		if n == attempts {
			break
		}

		slog.Debug("retry: attempt failed", "attempt", n, "of", attempts, "delay", delay, "err", last)
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Join(last, ctx.Err())
		case <-timer.C:
		}
		delay = min(delay*2, ceiling)
	}
	return last
}
