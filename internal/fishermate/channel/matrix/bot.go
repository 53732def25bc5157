// Package matrix runs the chat-relay state machine as a Matrix bot. It
// answers in every room it is invited to.
package matrix

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"

	"github.com/fishermate/fishermate/common/redact"
	"github.com/fishermate/fishermate/common/trace"
	"github.com/fishermate/fishermate/internal/fishermate/channel"
	"github.com/fishermate/fishermate/internal/fishermate/content"
)

// Sender posts text to a room.
type Sender interface {
	SendText(ctx context.Context, roomID id.RoomID, text string) (*mautrix.RespSendEvent, error)
}

// Bot turns room messages into relay exchanges.
type Bot struct {
	adapter channel.Adapter
	sender  Sender
	self    id.UserID
	limiter *channel.Limiter
	logger  *slog.Logger
}

// NewBot returns a Bot answering as self through sender. limiter may be
// nil.
func NewBot(adapter channel.Adapter, sender Sender, self id.UserID, limiter *channel.Limiter, logger *slog.Logger) *Bot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bot{
		adapter: adapter,
		sender:  sender,
		self:    self,
		limiter: limiter,
		logger:  logger.With("channel", "matrix"),
	}
}

// HandleMessage answers one m.room.message event.
func (b *Bot) HandleMessage(ctx context.Context, evt *event.Event) {
	if evt.Sender == b.self {
		return
	}
	in, ok := Inbound(evt)
	if !ok {
		return
	}
	if !b.limiter.Allow(in.UserID) {
		b.logger.Info("rate limit exceeded", "user", redact.User(in.UserID))
		return
	}

	ctx = trace.WithTraceID(ctx, trace.GenerateID())
	reply := b.adapter.Handle(ctx, in)
	for _, m := range reply.Messages {
		if _, err := b.sender.SendText(ctx, evt.RoomID, m); err != nil {
			b.logger.Error("send failed", "room", evt.RoomID.String(), "err", err)
			return
		}
	}
}

// Inbound converts a message event into the channel envelope. Notices and
// edits are skipped.
func Inbound(evt *event.Event) (channel.Inbound, bool) {
	msg := evt.Content.AsMessage()
	if msg == nil || msg.MsgType == "" || msg.MsgType == event.MsgNotice {
		return channel.Inbound{}, false
	}
	if msg.RelatesTo != nil && msg.RelatesTo.Type == event.RelReplace {
		return channel.Inbound{}, false
	}
	in := channel.Inbound{
		UserID:     evt.Sender.String(),
		To:         evt.RoomID.String(),
		ReceivedAt: time.UnixMilli(evt.Timestamp),
	}
	switch msg.MsgType {
	case event.MsgText, event.MsgEmote:
		in.Text = strings.TrimSpace(msg.Body)
	case event.MsgLocation:
		if loc, ok := parseGeoURI(string(msg.GeoURI)); ok {
			in.Location = &loc
		} else {
			in.MediaURL = string(msg.GeoURI)
		}
	default:
		in.MediaURL = string(msg.URL)
		if in.MediaURL == "" {
			in.MediaURL = string(msg.MsgType)
		}
	}
	return in, true
}

// parseGeoURI reads "geo:lat,lon[,alt][;params]".
func parseGeoURI(uri string) (content.Location, bool) {
	rest, ok := strings.CutPrefix(uri, "geo:")
	if !ok {
		return content.Location{}, false
	}
	rest, _, _ = strings.Cut(rest, ";")
	parts := strings.Split(rest, ",")
	if len(parts) < 2 {
		return content.Location{}, false
	}
	lat, err1 := strconv.ParseFloat(parts[0], 64)
	lon, err2 := strconv.ParseFloat(parts[1], 64)
	if err1 != nil || err2 != nil || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		return content.Location{}, false
	}
	return content.Location{Lat: lat, Lon: lon}, true
}
