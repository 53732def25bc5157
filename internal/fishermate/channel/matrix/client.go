package matrix

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"maunium.net/go/mautrix"
	"maunium.net/go/mautrix/event"
	"maunium.net/go/mautrix/id"
)

// Config holds the bot account settings.
type Config struct {
	Homeserver  string
	UserID      string
	AccessToken string
	Rooms       []string // joined at start, in addition to invites

	// State persists the sync position. When nil every restart replays
	// the rooms from the beginning.
	State StateStore

	Logger *slog.Logger
}

// Client syncs the bot account and feeds room messages to a Bot.
type Client struct {
	client *mautrix.Client
	config Config
	logger *slog.Logger
	stopCh chan struct{}
}

// New creates a Client. It does not contact the homeserver.
func New(cfg Config) (*Client, error) {
	if cfg.Homeserver == "" || cfg.UserID == "" || cfg.AccessToken == "" {
		return nil, errors.New("matrix: homeserver, user ID and access token are required")
	}
	client, err := mautrix.NewClient(cfg.Homeserver, id.UserID(cfg.UserID), cfg.AccessToken)
	if err != nil {
		return nil, fmt.Errorf("matrix: create client: %w", err)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.State != nil {
		client.Store = &syncStore{state: cfg.State}
	} else {
		logger.Warn("matrix sync position is not persisted; history replays on restart")
	}
	return &Client{client: client, config: cfg, logger: logger, stopCh: make(chan struct{})}, nil
}

// UserID is the bot's own Matrix ID.
func (c *Client) UserID() id.UserID { return c.client.UserID }

// Sender exposes the underlying client for Bot replies.
func (c *Client) Sender() Sender { return c.client }

// Start registers bot, joins the configured rooms and syncs in the
// background until Stop or ctx is done.
func (c *Client) Start(ctx context.Context, bot *Bot) error {
	syncer, ok := c.client.Syncer.(*mautrix.DefaultSyncer)
	if !ok {
		return errors.New("matrix: unexpected syncer type")
	}
	syncer.OnEventType(event.EventMessage, bot.HandleMessage)
	syncer.OnEventType(event.StateMember, c.handleInvite)

	for _, room := range c.config.Rooms {
		if err := c.joinRoom(ctx, id.RoomID(room)); err != nil {
			return fmt.Errorf("matrix: join %s: %w", room, err)
		}
	}

	go c.syncLoop(ctx)
	return nil
}

func (c *Client) syncLoop(ctx context.Context) {
	const (
		backoffMin = 2 * time.Second
		backoffMax = 5 * time.Minute
	)
	backoff := backoffMin
	for {
		err := c.client.SyncWithContext(ctx)
		if err == nil || ctx.Err() != nil {
			return
		}
		select {
		case <-c.stopCh:
			return
		default:
		}
		c.logger.Error("matrix sync stopped; reconnecting", "err", err, "backoff", backoff)
		select {
		case <-c.stopCh:
			return
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}
		backoff = min(backoff*2, backoffMax)
	}
}

// Stop ends the sync loop.
func (c *Client) Stop() {
	select {
	case <-c.stopCh:
		return
	default:
	}
	close(c.stopCh)
	c.client.StopSync()
}

func (c *Client) handleInvite(ctx context.Context, evt *event.Event) {
	member := evt.Content.AsMember()
	if member == nil || member.Membership != event.MembershipInvite {
		return
	}
	if evt.GetStateKey() != c.client.UserID.String() {
		return
	}
	if err := c.joinRoom(ctx, evt.RoomID); err != nil {
		c.logger.Error("matrix invite join failed", "room", evt.RoomID.String(), "err", err)
		return
	}
	c.logger.Info("matrix joined room", "room", evt.RoomID.String(), "inviter", evt.Sender.String())
}

func (c *Client) joinRoom(ctx context.Context, roomID id.RoomID) error {
	_, err := c.client.JoinRoomByID(ctx, roomID)
	if err != nil {
		// Already a member, or the invite was withdrawn.
		if errors.Is(err, mautrix.MForbidden) {
			c.logger.Warn("matrix join forbidden, continuing", "room", roomID.String())
			return nil
		}
		return err
	}
	return nil
}
