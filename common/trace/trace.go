// Package trace assigns correlation IDs to inbound requests and carries them
// through context so every log line of one exchange can be grouped.
package trace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

type traceKey struct{}

// HeaderName is the HTTP header used to accept and echo trace IDs.
const HeaderName = "X-Trace-Id"

// GenerateID returns a new random trace ID prefixed with "t_".
func GenerateID() string {
	buf := make([]byte, 12)
	if _, err := rand.Read(buf); err != nil {
		return fmt.Sprintf("t_%x", time.Now().UnixNano())
	}
	return "t_" + hex.EncodeToString(buf)
}

// WithTraceID returns a child context carrying id.
func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceKey{}, id)
}

// FromContext returns the trace ID stored in ctx, or "".
func FromContext(ctx context.Context) string {
	id, _ := ctx.Value(traceKey{}).(string)
	return id
}

// Ensure returns ctx unchanged when it already carries a trace ID, and
// otherwise a child context with a fresh one.
func Ensure(ctx context.Context) (context.Context, string) {
	if id := FromContext(ctx); id != "" {
		return ctx, id
	}
	id := GenerateID()
	return WithTraceID(ctx, id), id
}
