// Package channel defines what the delivery channels share: the inbound
// envelope, the reply they produce, and the exchange record they emit.
package channel

import (
	"context"
	"time"

	"github.com/fishermate/fishermate/internal/fishermate/content"
	"github.com/fishermate/fishermate/internal/fishermate/session"
)

// Inbound is one message received from a user on any channel.
type Inbound struct {
	UserID     string // channel-specific sender identifier
	To         string
	Text       string
	MediaURL   string // set when the user sent an attachment
	Location   *content.Location
	ReceivedAt time.Time
}

// Reply is what a channel sends back for one Inbound.
type Reply struct {
	// Messages holds one or more outbound bodies, already split to the
	// channel's length limit.
	Messages []string
	Language string
	// Intent names the branch that produced the reply ("weather",
	// "command", "language", ...).
	Intent string
	// Degraded is set when a provider failed and a fallback text was used.
	Degraded bool
}

// Text joins the reply messages with newlines.
func (r Reply) Text() string {
	switch len(r.Messages) {
	case 0:
		return ""
	case 1:
		return r.Messages[0]
	}
	out := r.Messages[0]
	for _, m := range r.Messages[1:] {
		out += "\n" + m
	}
	return out
}

// Adapter is a channel state machine: it turns an Inbound into a Reply,
// updating the sender's session. Handle never fails; internal faults become
// a localized error message.
type Adapter interface {
	Channel() session.Channel
	Handle(ctx context.Context, in Inbound) Reply
}

// LanguageSource is implemented by adapters that can report a user's
// preferred language outside Handle.
type LanguageSource interface {
	Language(ctx context.Context, userID string) string
}

// Exchange describes one handled message for the exchange log.
type Exchange struct {
	TraceID  string
	Channel  session.Channel
	User     string // masked
	Intent   string
	Language string
	Messages int
	Degraded bool
	At       time.Time
}

// Recorder receives an Exchange per handled message.
type Recorder interface {
	Record(ctx context.Context, e Exchange) error
}

// RecorderFunc adapts a function to Recorder.
type RecorderFunc func(ctx context.Context, e Exchange) error

// Record calls f.
func (f RecorderFunc) Record(ctx context.Context, e Exchange) error { return f(ctx, e) }
