// Package session keeps per-user conversational state for one delivery
// channel.
//
// Each channel owns its own Store; sessions are never shared between
// channels. A Store serializes every mutation of a given user's session, so
// rapid or retried deliveries from the same user can neither create a
// duplicate session nor lose an update. Callers only ever see copies.
package session

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInvalidConfig is returned when a store is missing a required option.
	ErrInvalidConfig = errors.New("session: invalid store configuration")
	// ErrInvalidStoreType is returned for an unknown store type.
	ErrInvalidStoreType = errors.New("session: invalid store type")
	// ErrClosed is returned by a store after Close.
	ErrClosed = errors.New("session: store closed")
	// ErrContention is returned when an optimistic update keeps conflicting.
	ErrContention = errors.New("session: too many concurrent updates")
)

// Channel names a delivery surface.
type Channel string

const (
	ChannelRelay Channel = "relay"
	ChannelSMS   Channel = "sms"
)

// Nav is a chat-relay menu position.
type Nav string

const (
	NavMain    Nav = "main"
	NavWeather Nav = "weather"
	NavLegal   Nav = "legal"
	NavSafety  Nav = "safety"
)

// Direction marks who produced a history entry.
type Direction string

const (
	FromUser   Direction = "user"
	FromSystem Direction = "system"
)

// Entry is one line of conversation history.
type Entry struct {
	Direction Direction `json:"direction"`
	Text      string    `json:"text"`
	At        time.Time `json:"at"`
}

// Session is the state kept for one user on one channel.
type Session struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	Channel      Channel   `json:"channel"`
	Language     string    `json:"language"`
	Nav          Nav       `json:"nav,omitempty"` // relay only
	CreatedAt    time.Time `json:"created_at"`
	LastActivity time.Time `json:"last_activity"`
	MessageCount int       `json:"message_count"`
	History      []Entry   `json:"history,omitempty"`
	Version      int64     `json:"version"`
}

// Clone returns a deep copy of s.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	if s.History != nil {
		c.History = make([]Entry, len(s.History))
		copy(c.History, s.History)
	}
	return &c
}

// Append adds a history entry.
func (s *Session) Append(dir Direction, text string, at time.Time) {
	s.History = append(s.History, Entry{Direction: dir, Text: text, At: at})
}

// Stale reports whether s has been idle for longer than ttl at now. A
// session idle for exactly ttl is not stale.
func (s *Session) Stale(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.LastActivity) > ttl
}

// Store holds the sessions of one channel.
type Store interface {
	// GetOrCreate returns the user's session, creating it with the store's
	// defaults on first contact.
	GetOrCreate(ctx context.Context, userID string) (*Session, error)

	// Touch records inbound activity: it sets LastActivity to now and
	// increments MessageCount, creating the session if needed. It returns
	// the updated session.
	Touch(ctx context.Context, userID string) (*Session, error)

	// Update applies fn to the user's session under the store's per-user
	// serialization and returns the result. fn must be fast and must not
	// call back into the store. The session is created if needed.
	Update(ctx context.Context, userID string, fn func(*Session)) (*Session, error)

	// EvictStale removes every session idle for longer than ttl and
	// returns how many were removed.
	EvictStale(ctx context.Context, ttl time.Duration) (int, error)

	// Snapshot returns copies of all sessions.
	Snapshot(ctx context.Context) ([]*Session, error)

	// Close releases the store's resources.
	Close() error
}

func touch(now time.Time) func(*Session) {
	return func(s *Session) {
		s.LastActivity = now
		s.MessageCount++
	}
}
