// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package redis connects the variant projection cache.

Redis only ever holds derived data (projected variant lists). Losing it costs
a recomputation from PostgreSQL, never correctness, so the client is tuned to
fail fast: short timeouts and no retries behind a slow read.
*/
package redis

import (
	stdctx "context"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// cacheTimeout applies to dial, read and write. A cache answer slower than
// this is worth less than a database read.
const cacheTimeout = 500 * time.Millisecond

// NewClient opens a client for redisURL and proves it with a PING.
// Query parameters of the URL (pool_size, db, ...) override the cache tuning.
func NewClient(context stdctx.Context, redisURL string, logger *slog.Logger) (*redis.Client, error) {
	options, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid URL: %w", err)
	}
	tuneForCache(options)

	client := redis.NewClient(options)
	if err := Ping(context, client); err != nil {
		_ = client.Close()
		return nil, err
	}

	logger.Info("variant_cache_connected",
		slog.String("addr", options.Addr),
		slog.Int("db", options.DB),
		slog.Int("pool_size", options.PoolSize),
	)

	return client, nil
}

// tuneForCache only fills values the URL left at their zero default.
func tuneForCache(options *redis.Options) {
	if options.DialTimeout == 0 {
		options.DialTimeout = cacheTimeout
	}
	if options.ReadTimeout == 0 {
		options.ReadTimeout = cacheTimeout
	}
	if options.WriteTimeout == 0 {
		options.WriteTimeout = cacheTimeout
	}
	if options.MaxRetries == 0 {
		options.MaxRetries = -1
	}
	if options.PoolSize == 0 {
		options.PoolSize = 16
	}
	if options.MinIdleConns == 0 {
		options.MinIdleConns = 2
	}
}

// Ping sends PING within the cache timeout.
func Ping(context stdctx.Context, client *redis.Client) error {
	pingCtx, cancel := stdctx.WithTimeout(context, 2*cacheTimeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis: ping failed: %w", err)
	}
	return nil
}
