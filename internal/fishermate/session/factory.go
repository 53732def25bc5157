package session

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// StoreType names a session store driver.
type StoreType string

const (
	StoreTypeMemory StoreType = "memory"
	StoreTypeRedis  StoreType = "redis"
)

// NewStore creates a Store of the given type. The Redis driver requires
// WithRedisClient or WithRedisURL.
func NewStore(storeType StoreType, opts ...StoreOption) (Store, error) {
	cfg := newStoreConfig(opts)

	switch storeType {
	case StoreTypeMemory, "":
		return newMemoryStore(cfg), nil

	case StoreTypeRedis:
		client, owned := cfg.redisClient, false
		if client == nil {
			if cfg.redisURL == "" {
				return nil, fmt.Errorf("%w: redis store needs a client or URL", ErrInvalidConfig)
			}
			o, err := redis.ParseURL(cfg.redisURL)
			if err != nil {
				return nil, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
			}
			client, owned = redis.NewClient(o), true
		}
		return newRedisStore(client, owned, cfg), nil

	default:
		return nil, fmt.Errorf("%w: %q", ErrInvalidStoreType, storeType)
	}
}

func newSession(cfg *storeConfig, userID string) *Session {
	now := cfg.now()
	s := &Session{
		ID:           uuid.NewString(),
		UserID:       userID,
		Channel:      cfg.channel,
		Language:     cfg.defaultLanguage,
		CreatedAt:    now,
		LastActivity: now,
		Version:      1,
	}
	if cfg.channel == ChannelRelay {
		s.Nav = NavMain
	}
	return s
}
