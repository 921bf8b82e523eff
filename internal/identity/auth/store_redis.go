// Copyright (c) 2026 Serenity. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/serenity/internal/platform/clock"
	"github.com/taibuivan/serenity/internal/platform/constants"
)

// RedisSessionStore implements [SessionStore] using Redis.
//
// # Layout
//
//   - auth:session:<hash>  JSON session, key TTL = remaining life + SessionExpiryGrace
//   - auth:session:expiry  sorted set of hashes scored by expiry (unix millis, rounded up)
type RedisSessionStore struct {
	client *redis.Client
	clock  clock.Clock
}

// NewRedisSessionStore creates a new Redis-backed SessionStore.
func NewRedisSessionStore(client *redis.Client, clk clock.Clock) *RedisSessionStore {
	return &RedisSessionStore{client: client, clock: clk}
}

func sessionKey(tokenHash string) string {
	return constants.RedisPrefixSession + tokenHash
}

// expiryScore rounds up to the next millisecond so an index entry never
// sorts before the instant its session actually expires.
func expiryScore(expiresAt time.Time) float64 {
	millis := expiresAt.UnixMilli()
	if expiresAt.Sub(time.UnixMilli(millis)) > 0 {
		millis++
	}
	return float64(millis)
}

/*
Put stores the session payload and indexes its expiry.

Parameters:
  - context: context.Context
  - session: *Session

Returns:
  - error: Execution errors
*/
func (store *RedisSessionStore) Put(context context.Context, session *Session) error {
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("redis_session_encode_failed: %w", err)
	}

	ttl := session.ExpiresAt.Sub(store.clock.Now()) + SessionExpiryGrace

	_, err = store.client.TxPipelined(context, func(pipe redis.Pipeliner) error {
		pipe.Set(context, sessionKey(session.TokenHash), payload, ttl)
		pipe.ZAdd(context, constants.RedisKeySessionIndex, redis.Z{
			Score:  expiryScore(session.ExpiresAt),
			Member: session.TokenHash,
		})
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis_session_put_failed: %w", err)
	}

	return nil
}

/*
Get loads the session and enforces expiry.

Description: An expired payload is deleted before ErrSessionExpired is returned.

Parameters:
  - context: context.Context
  - tokenHash: string

Returns:
  - *Session: Live session
  - error: ErrSessionNotFound, ErrSessionExpired or connectivity errors
*/
func (store *RedisSessionStore) Get(context context.Context, tokenHash string) (*Session, error) {
	payload, err := store.client.Get(context, sessionKey(tokenHash)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("redis_session_get_failed: %w", err)
	}

	var session Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return nil, fmt.Errorf("redis_session_decode_failed: %w", err)
	}
	session.TokenHash = tokenHash

	if session.ExpiredAt(store.clock.Now()) {
		if err := store.Delete(context, tokenHash); err != nil {
			return nil, err
		}
		return nil, ErrSessionExpired
	}

	return &session, nil
}

/*
Delete removes the payload and its index entry.

Parameters:
  - context: context.Context
  - tokenHash: string

Returns:
  - error: Deletion failures
*/
func (store *RedisSessionStore) Delete(context context.Context, tokenHash string) error {
	_, err := store.client.TxPipelined(context, func(pipe redis.Pipeliner) error {
		pipe.Del(context, sessionKey(tokenHash))
		pipe.ZRem(context, constants.RedisKeySessionIndex, tokenHash)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis_session_delete_failed: %w", err)
	}

	return nil
}

/*
SweepExpired deletes every indexed session whose expiry has passed.

Description: Candidates come from the expiry index; each payload is
re-checked against the clock before deletion. Index entries whose payload
is already gone are dropped without being counted.

Parameters:
  - context: context.Context

Returns:
  - int: Sessions removed
  - error: Execution failures
*/
func (store *RedisSessionStore) SweepExpired(context context.Context) (int, error) {
	now := store.clock.Now()

	hashes, err := store.client.ZRangeByScore(context, constants.RedisKeySessionIndex, &redis.ZRangeBy{
		Min: "-inf",
		Max: strconv.FormatInt(now.UnixMilli(), 10),
	}).Result()
	if err != nil {
		return 0, fmt.Errorf("redis_session_sweep_scan_failed: %w", err)
	}

	if len(hashes) == 0 {
		return 0, nil
	}

	keys := make([]string, len(hashes))
	for i, hash := range hashes {
		keys[i] = sessionKey(hash)
	}

	payloads, err := store.client.MGet(context, keys...).Result()
	if err != nil {
		return 0, fmt.Errorf("redis_session_sweep_load_failed: %w", err)
	}

	var expiredKeys []string
	var staleMembers []interface{}
	for i, payload := range payloads {
		raw, ok := payload.(string)
		if !ok {
			staleMembers = append(staleMembers, hashes[i])
			continue
		}

		var session Session
		if err := json.Unmarshal([]byte(raw), &session); err != nil {
			return 0, fmt.Errorf("redis_session_decode_failed: %w", err)
		}
		if !session.ExpiredAt(now) {
			continue
		}

		expiredKeys = append(expiredKeys, keys[i])
		staleMembers = append(staleMembers, hashes[i])
	}

	if len(staleMembers) == 0 {
		return 0, nil
	}

	var removed *redis.IntCmd
	_, err = store.client.TxPipelined(context, func(pipe redis.Pipeliner) error {
		if len(expiredKeys) > 0 {
			removed = pipe.Del(context, expiredKeys...)
		}
		pipe.ZRem(context, constants.RedisKeySessionIndex, staleMembers...)
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("redis_session_sweep_delete_failed: %w", err)
	}

	if removed == nil {
		return 0, nil
	}
	return int(removed.Val()), nil
}
