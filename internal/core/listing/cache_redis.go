// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package listing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/taibuivan/etalage/internal/platform/constants"
)

// RedisVariantCache implements [VariantCache] using Redis.
type RedisVariantCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisVariantCache creates a Redis backed variant cache whose entries
// expire after ttl.
func NewRedisVariantCache(client *redis.Client, ttl time.Duration) *RedisVariantCache {
	return &RedisVariantCache{client: client, ttl: ttl}
}

func variantKey(listingID string) string {
	return constants.RedisPrefixVariants + listingID
}

/*
Get retrieves the cached representatives of a listing.

Returns:
  - []*ProductUnit: The flat projection
  - bool: false on a miss
  - error: Connectivity or decoding errors
*/
func (cache *RedisVariantCache) Get(context context.Context, listingID string) ([]*ProductUnit, bool, error) {
	payload, err := cache.client.Get(context, variantKey(listingID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("redis_variants_get_failed: %w", err)
	}

	var representatives []*ProductUnit
	if err := json.Unmarshal(payload, &representatives); err != nil {
		return nil, false, fmt.Errorf("redis_variants_decode_failed: %w", err)
	}

	return representatives, true, nil
}

func (cache *RedisVariantCache) Set(context context.Context, listingID string, representatives []*ProductUnit) error {
	payload, err := json.Marshal(representatives)
	if err != nil {
		return fmt.Errorf("redis_variants_encode_failed: %w", err)
	}

	if err := cache.client.Set(context, variantKey(listingID), payload, cache.ttl).Err(); err != nil {
		return fmt.Errorf("redis_variants_set_failed: %w", err)
	}
	return nil
}

// Invalidate drops the entries of every listed listing in one round-trip.
func (cache *RedisVariantCache) Invalidate(context context.Context, listingIDs ...string) error {
	if len(listingIDs) == 0 {
		return nil
	}

	keys := make([]string, 0, len(listingIDs))
	for _, listingID := range listingIDs {
		keys = append(keys, variantKey(listingID))
	}

	if err := cache.client.Del(context, keys...).Err(); err != nil {
		return fmt.Errorf("redis_variants_invalidate_failed: %w", err)
	}
	return nil
}
