// Copyright (c) 2026 AnimeAB. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisRevocationStore implements [RevocationStore] with expiring Redis keys.
type RedisRevocationStore struct {
	client redis.Cmdable
}

// NewRevocationStore creates a Redis-backed RevocationStore.
func NewRevocationStore(client redis.Cmdable) *RedisRevocationStore {
	return &RedisRevocationStore{client: client}
}

/*
Revoke stores the token ID until the token itself would have expired.

Parameters:
  - ctx: context.Context
  - tokenID: string (the jti claim)
  - ttl: time.Duration (remaining token lifetime)

Returns:
  - error: Storage failures
*/
func (store *RedisRevocationStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}

	if err := store.client.Set(ctx, revokedKeyPrefix+tokenID, 1, ttl).Err(); err != nil {
		return fmt.Errorf("redis_revocation_set_failed: %w", err)
	}
	return nil
}

// IsRevoked checks for the token ID key.
func (store *RedisRevocationStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	count, err := store.client.Exists(ctx, revokedKeyPrefix+tokenID).Result()
	if err != nil {
		return false, fmt.Errorf("redis_revocation_get_failed: %w", err)
	}
	return count > 0, nil
}
