package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisTokenPrefix  = "corbit:session:tok:"
	redisUserPrefix   = "corbit:session:user:"
	redisDevicePrefix = "corbit:session:dev:"
)

var errRedisUnavailable = errors.New("session redis unavailable")

// RedisStore keeps sessions in Redis. The token key carries the session JSON
// with a native TTL; per-user and per-device index sets make bulk revocation
// a set lookup instead of a scan. Index sets may hold hashes whose token key
// already expired; those count as gone.
type RedisStore struct {
	rdb *redis.Client
}

// NewRedisStore creates a Redis-backed session store.
func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func tokenKey(hash string) string { return redisTokenPrefix + hash }

func userKey(userID int) string { return redisUserPrefix + strconv.Itoa(userID) }

func deviceKey(userID int, deviceID string) string {
	return redisDevicePrefix + strconv.Itoa(userID) + ":" + deviceID
}

func (s *RedisStore) Put(ctx context.Context, sess Session) error {
	encoded, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	ttl := time.Until(sess.ExpiresAt)
	if ttl <= 0 {
		ttl = time.Second
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, tokenKey(sess.TokenHash), encoded, ttl)
		pipe.SAdd(ctx, userKey(sess.UserID), sess.TokenHash)
		pipe.SAdd(ctx, deviceKey(sess.UserID, sess.DeviceID), sess.TokenHash)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", errRedisUnavailable, err)
	}
	return nil
}

func (s *RedisStore) GetByTokenHash(ctx context.Context, tokenHash string) (Session, error) {
	data, err := s.rdb.Get(ctx, tokenKey(tokenHash)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Session{}, ErrNotFound
	}
	if err != nil {
		return Session{}, fmt.Errorf("%w: %v", errRedisUnavailable, err)
	}

	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return Session{}, err
	}
	return sess, nil
}

func (s *RedisStore) Delete(ctx context.Context, tokenHash string) error {
	sess, err := s.GetByTokenHash(ctx, tokenHash)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}

	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, tokenKey(tokenHash))
		pipe.SRem(ctx, userKey(sess.UserID), tokenHash)
		pipe.SRem(ctx, deviceKey(sess.UserID, sess.DeviceID), tokenHash)
		return nil
	})
	if err != nil {
		return fmt.Errorf("%w: %v", errRedisUnavailable, err)
	}
	return nil
}

func (s *RedisStore) DeleteByDevice(ctx context.Context, userID int, deviceID string) (int, error) {
	hashes, err := s.rdb.SMembers(ctx, deviceKey(userID, deviceID)).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errRedisUnavailable, err)
	}
	if len(hashes) == 0 {
		return 0, nil
	}

	var dels []*redis.IntCmd
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, h := range hashes {
			dels = append(dels, pipe.Del(ctx, tokenKey(h)))
			pipe.SRem(ctx, userKey(userID), h)
		}
		pipe.Del(ctx, deviceKey(userID, deviceID))
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errRedisUnavailable, err)
	}

	removed := 0
	for _, cmd := range dels {
		removed += int(cmd.Val())
	}
	return removed, nil
}

func (s *RedisStore) DeleteAllForUser(ctx context.Context, userID int) (int, error) {
	hashes, err := s.rdb.SMembers(ctx, userKey(userID)).Result()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errRedisUnavailable, err)
	}
	if len(hashes) == 0 {
		return 0, nil
	}

	// Resolve device index keys from the live sessions so they get cleaned
	// up too; hashes whose token key already expired resolve to nothing.
	deviceKeys := make(map[string]struct{})
	for _, h := range hashes {
		sess, err := s.GetByTokenHash(ctx, h)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return 0, err
		}
		deviceKeys[deviceKey(sess.UserID, sess.DeviceID)] = struct{}{}
	}

	var dels []*redis.IntCmd
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		for _, h := range hashes {
			dels = append(dels, pipe.Del(ctx, tokenKey(h)))
		}
		for k := range deviceKeys {
			pipe.Del(ctx, k)
		}
		pipe.Del(ctx, userKey(userID))
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errRedisUnavailable, err)
	}

	removed := 0
	for _, cmd := range dels {
		removed += int(cmd.Val())
	}
	return removed, nil
}
