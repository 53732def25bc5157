package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// maxTxRetries bounds optimistic-update retries per call.
const maxTxRetries = 16

// redisStore keeps sessions as JSON values, one key per user. Mutations run
// inside WATCH/MULTI/EXEC so concurrent writers for the same user retry
// instead of overwriting each other.
type redisStore struct {
	client *redis.Client
	owned  bool
	cfg    *storeConfig
	prefix string
}

func newRedisStore(client *redis.Client, owned bool, cfg *storeConfig) *redisStore {
	return &redisStore{
		client: client,
		owned:  owned,
		cfg:    cfg,
		prefix: cfg.keyPrefix + string(cfg.channel) + ":",
	}
}

func (s *redisStore) key(userID string) string {
	return s.prefix + userID
}

// GetOrCreate implements Store. SETNX makes creation race-free: a loser of
// the race reads the winner's session.
func (s *redisStore) GetOrCreate(ctx context.Context, userID string) (*Session, error) {
	key := s.key(userID)
	for i := 0; i < maxTxRetries; i++ {
		sess, err := s.get(ctx, s.client, key)
		if err != nil {
			return nil, err
		}
		if sess != nil {
			return sess, nil
		}
		fresh := newSession(s.cfg, userID)
		val, err := json.Marshal(fresh)
		if err != nil {
			return nil, err
		}
		ok, err := s.client.SetNX(ctx, key, val, s.cfg.keyTTL).Result()
		if err != nil {
			return nil, fmt.Errorf("create session: %w", err)
		}
		if ok {
			return fresh, nil
		}
	}
	return nil, ErrContention
}

// Touch implements Store.
func (s *redisStore) Touch(ctx context.Context, userID string) (*Session, error) {
	return s.Update(ctx, userID, func(sess *Session) {
		touch(s.cfg.now())(sess)
	})
}

// Update implements Store.
func (s *redisStore) Update(ctx context.Context, userID string, fn func(*Session)) (*Session, error) {
	key := s.key(userID)
	var out *Session

	txf := func(tx *redis.Tx) error {
		sess, err := s.get(ctx, tx, key)
		if err != nil {
			return err
		}
		if sess == nil {
			sess = newSession(s.cfg, userID)
		}
		if fn != nil {
			fn(sess)
			sess.Version++
		}
		val, err := json.Marshal(sess)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, val, s.cfg.keyTTL)
			return nil
		})
		if err == nil {
			out = sess
		}
		return err
	}

	for i := 0; i < maxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return out, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, fmt.Errorf("update session: %w", err)
	}
	return nil, ErrContention
}

// EvictStale implements Store. Each candidate is re-read under WATCH, so a
// session touched during the sweep survives it.
func (s *redisStore) EvictStale(ctx context.Context, ttl time.Duration) (int, error) {
	keys, err := s.keys(ctx)
	if err != nil {
		return 0, err
	}
	now := s.cfg.now()
	removed := 0
	for _, key := range keys {
		err := s.client.Watch(ctx, func(tx *redis.Tx) error {
			sess, err := s.get(ctx, tx, key)
			if err != nil || sess == nil || !sess.Stale(now, ttl) {
				return err
			}
			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, key)
				return nil
			})
			if err == nil {
				removed++
			}
			return err
		}, key)
		switch {
		case err == nil, errors.Is(err, redis.TxFailedErr):
			// A concurrent write means the session is active again.
		default:
			return removed, fmt.Errorf("evict %s: %w", key, err)
		}
	}
	return removed, nil
}

// Snapshot implements Store.
func (s *redisStore) Snapshot(ctx context.Context) ([]*Session, error) {
	keys, err := s.keys(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*Session, 0, len(keys))
	for _, key := range keys {
		sess, err := s.get(ctx, s.client, key)
		if err != nil {
			return nil, err
		}
		if sess != nil {
			out = append(out, sess)
		}
	}
	return out, nil
}

// Close implements Store. A client supplied through WithRedisClient is
// left open for its owner.
func (s *redisStore) Close() error {
	if !s.owned {
		return nil
	}
	return s.client.Close()
}

func (s *redisStore) keys(ctx context.Context) ([]string, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan sessions: %w", err)
	}
	return keys, nil
}

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

// get reads a session; a missing key yields (nil, nil).
func (s *redisStore) get(ctx context.Context, c getter, key string) (*Session, error) {
	val, err := c.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(val, &sess); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	return &sess, nil
}
