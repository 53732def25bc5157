// Package fallback is the failure boundary around every external call.
//
// A provider call gets one attempt, bounded by a timeout. Errors, timeouts,
// panics and malformed results all collapse into a Result that reports the
// failure explicitly; Respond goes one step further and turns a failed
// provider call into a well-formed error Response carrying a localized
// apology. Error detail goes to the log and never to the user.
package fallback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fishermate/fishermate/internal/fishermate/content"
)

// DefaultTimeout bounds a provider call when the Wrapper has none set.
const DefaultTimeout = 10 * time.Second

var (
	// ErrMalformed reports a provider result that failed validation.
	ErrMalformed = errors.New("fallback: malformed provider result")
	// ErrPanic reports a provider that panicked.
	ErrPanic = errors.New("fallback: provider panicked")
)

// Result is the outcome of one guarded call: either Value or Err is
// meaningful, never both.
type Result[T any] struct {
	Value T
	Err   error
}

// OK reports whether the call succeeded.
func (r Result[T]) OK() bool { return r.Err == nil }

// Or returns Value on success and def otherwise.
func (r Result[T]) Or(def T) T {
	if r.Err != nil {
		return def
	}
	return r.Value
}

// Wrapper carries the timeout and logger applied to guarded calls. The zero
// value is usable.
type Wrapper struct {
	Timeout time.Duration
	Logger  *slog.Logger
}

// New returns a Wrapper with the given timeout; nil logger means the slog
// default.
func New(timeout time.Duration, logger *slog.Logger) *Wrapper {
	return &Wrapper{Timeout: timeout, Logger: logger}
}

func (w *Wrapper) timeout() time.Duration {
	if w == nil || w.Timeout <= 0 {
		return DefaultTimeout
	}
	return w.Timeout
}

func (w *Wrapper) logger() *slog.Logger {
	if w == nil || w.Logger == nil {
		return slog.Default()
	}
	return w.Logger
}

// Try runs fn once under the wrapper's timeout. A panic inside fn, an error,
// or the deadline expiring yields a failed Result. fn keeps running in the
// background after a timeout but its result is discarded.
func Try[T any](ctx context.Context, w *Wrapper, op string, fn func(context.Context) (T, error)) Result[T] {
	ctx, cancel := context.WithTimeout(ctx, w.timeout())
	defer cancel()

	done := make(chan Result[T], 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				done <- Result[T]{Err: fmt.Errorf("%w: %v", ErrPanic, p)}
			}
		}()
		v, err := fn(ctx)
		done <- Result[T]{Value: v, Err: err}
	}()

	var res Result[T]
	select {
	case res = <-done:
	case <-ctx.Done():
		res = Result[T]{Err: fmt.Errorf("%s: %w", op, ctx.Err())}
	}
	if res.Err != nil {
		w.logger().Warn("provider call failed", "op", op, "err", res.Err)
	}
	return res
}

// Respond calls p through Try and validates the Response. On any failure it
// returns an error Response whose text is onFailure(lang); the same failing
// provider therefore always produces the same shape.
func Respond(ctx context.Context, w *Wrapper, op string, p content.Provider, q content.Query, onFailure func(lang string) string) content.Response {
	res := Try(ctx, w, op, func(ctx context.Context) (content.Response, error) {
		r, err := p.Respond(ctx, q)
		if err != nil {
			return r, err
		}
		if strings.TrimSpace(r.Text) == "" {
			return r, fmt.Errorf("%s: %w: empty text", op, ErrMalformed)
		}
		return r, nil
	})
	if !res.OK() {
		return Failure(q.Language, onFailure)
	}
	r := res.Value
	if r.Language == "" {
		r.Language = q.Language
	}
	return r
}

// Failure builds the error Response returned after a failed provider call.
func Failure(lang string, onFailure func(lang string) string) content.Response {
	if onFailure == nil {
		onFailure = Apology
	}
	return content.Response{Text: onFailure(lang), Type: content.TypeError, Language: lang}
}
