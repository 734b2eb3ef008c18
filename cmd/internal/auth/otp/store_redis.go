package otp

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "corbit:otp:"

var errRedisUnavailable = errors.New("otp redis unavailable")

// RedisStore keeps challenges in Redis with a native TTL. Consume runs under
// WATCH so concurrent verifies for the same identifier serialize through
// optimistic transactions.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore creates a Redis-backed challenge store.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func (s *RedisStore) key(identifier string) string {
	return redisKeyPrefix + identifier
}

func (s *RedisStore) Put(ctx context.Context, ch Challenge) error {
	encoded, err := json.Marshal(ch)
	if err != nil {
		return err
	}
	ttl := time.Until(ch.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}
	if err := s.rdb.Set(ctx, s.key(ch.Identifier), encoded, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", errRedisUnavailable, err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, identifier string) (Challenge, error) {
	data, err := s.rdb.Get(ctx, s.key(identifier)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Challenge{}, ErrNoChallenge
	}
	if err != nil {
		return Challenge{}, fmt.Errorf("%w: %v", errRedisUnavailable, err)
	}

	var ch Challenge
	if err := json.Unmarshal(data, &ch); err != nil {
		return Challenge{}, err
	}
	return ch, nil
}

func (s *RedisStore) Replace(ctx context.Context, identifier, code string, expiresAt time.Time) (Challenge, error) {
	ch, err := s.Get(ctx, identifier)
	if err != nil {
		return Challenge{}, err
	}
	ch.Code = code
	ch.ExpiresAt = expiresAt
	if err := s.Put(ctx, ch); err != nil {
		return Challenge{}, err
	}
	return ch, nil
}

func (s *RedisStore) Consume(ctx context.Context, identifier string, purpose Purpose, code string, now time.Time) (Challenge, error) {
	const maxRetries = 4
	key := s.key(identifier)

	for i := 0; i < maxRetries; i++ {
		var matched Challenge

		err := s.rdb.Watch(ctx, func(tx *redis.Tx) error {
			data, err := tx.Get(ctx, key).Bytes()
			if err != nil {
				return err
			}

			var ch Challenge
			if err := json.Unmarshal(data, &ch); err != nil {
				return err
			}

			if ch.Purpose != purpose {
				return ErrNoChallenge
			}
			if now.After(ch.ExpiresAt) {
				_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
					pipe.Del(ctx, key)
					return nil
				})
				if err != nil {
					return err
				}
				return ErrExpired
			}
			if subtle.ConstantTimeCompare([]byte(ch.Code), []byte(code)) != 1 {
				return ErrInvalidCode
			}

			_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
				pipe.Del(ctx, key)
				return nil
			})
			if err != nil {
				return err
			}

			matched = ch
			return nil
		}, key)

		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil {
			switch {
			case errors.Is(err, redis.Nil):
				return Challenge{}, ErrNoChallenge
			case errors.Is(err, ErrNoChallenge), errors.Is(err, ErrExpired), errors.Is(err, ErrInvalidCode):
				return Challenge{}, err
			default:
				return Challenge{}, fmt.Errorf("%w: %v", errRedisUnavailable, err)
			}
		}

		return matched, nil
	}

	return Challenge{}, ErrNoChallenge
}

func (s *RedisStore) Delete(ctx context.Context, identifier string) error {
	if err := s.rdb.Del(ctx, s.key(identifier)).Err(); err != nil {
		return fmt.Errorf("%w: %v", errRedisUnavailable, err)
	}
	return nil
}
