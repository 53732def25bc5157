package session

import (
	"time"

	"github.com/redis/go-redis/v9"
)

// StoreOption is a functional option for configuring a session store.
type StoreOption func(*storeConfig)

type storeConfig struct {
	channel         Channel
	defaultLanguage string
	now             func() time.Time
	redisClient     *redis.Client
	redisURL        string
	keyPrefix       string
	keyTTL          time.Duration
}

func newStoreConfig(opts []StoreOption) *storeConfig {
	c := &storeConfig{
		channel:         ChannelRelay,
		defaultLanguage: "en",
		now:             time.Now,
		keyPrefix:       "fishermate:session:",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithChannel sets the channel new sessions belong to. Relay sessions
// start on the main menu; SMS sessions have no navigation state.
func WithChannel(ch Channel) StoreOption {
	return func(c *storeConfig) { c.channel = ch }
}

// WithDefaultLanguage sets the language of new sessions.
func WithDefaultLanguage(lang string) StoreOption {
	return func(c *storeConfig) {
		if lang != "" {
			c.defaultLanguage = lang
		}
	}
}

// WithClock overrides the store's clock.
func WithClock(now func() time.Time) StoreOption {
	return func(c *storeConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// WithRedisClient sets the Redis client for the Redis store. The caller
// keeps ownership of the client.
func WithRedisClient(client *redis.Client) StoreOption {
	return func(c *storeConfig) { c.redisClient = client }
}

// WithRedisURL makes the Redis store open, and later close, its own client.
func WithRedisURL(url string) StoreOption {
	return func(c *storeConfig) { c.redisURL = url }
}

// WithKeyPrefix sets the Redis key prefix. The channel name is appended.
func WithKeyPrefix(prefix string) StoreOption {
	return func(c *storeConfig) { c.keyPrefix = prefix }
}

// WithKeyTTL sets a Redis expiry on session keys as a backstop to the
// sweep. Zero leaves keys without expiry.
func WithKeyTTL(ttl time.Duration) StoreOption {
	return func(c *storeConfig) { c.keyTTL = ttl }
}
