// Copyright (c) 2026 Etalage. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package middleware

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/taibuivan/etalage/internal/platform/apperr"
	"github.com/taibuivan/etalage/internal/platform/constants"
	"github.com/taibuivan/etalage/internal/platform/respond"
)

// clientBuckets are the token buckets of one client IP. Catalog browsing and
// catalog writes are metered separately: a write can carry inline images and
// expand into hundreds of product rows.
type clientBuckets struct {
	read     *rate.Limiter
	write    *rate.Limiter
	lastSeen time.Time
}

type limiterTable struct {
	mu      sync.Mutex
	clients map[string]*clientBuckets
}

// reserve takes a token from the client's bucket for method. It returns the
// delay until a token would be available when the bucket is empty.
func (table *limiterTable) reserve(ip, method string, now time.Time) (time.Duration, bool) {
	table.mu.Lock()
	defer table.mu.Unlock()

	buckets, found := table.clients[ip]
	if !found {
		buckets = &clientBuckets{
			read:  rate.NewLimiter(rate.Limit(constants.DefaultRateLimitRPS), constants.DefaultRateLimitBurst),
			write: rate.NewLimiter(rate.Limit(constants.WriteRateLimitRPS), constants.WriteRateLimitBurst),
		}
		table.clients[ip] = buckets
	}
	buckets.lastSeen = now

	limiter := buckets.read
	if isWrite(method) {
		limiter = buckets.write
	}

	reservation := limiter.ReserveN(now, 1)
	if delay := reservation.DelayFrom(now); delay > 0 {
		reservation.CancelAt(now)
		return delay, false
	}
	return 0, true
}

func (table *limiterTable) sweep(idleBefore time.Time) {
	table.mu.Lock()
	defer table.mu.Unlock()

	for ip, buckets := range table.clients {
		if buckets.lastSeen.Before(idleBefore) {
			delete(table.clients, ip)
		}
	}
}

func isWrite(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}

/*
RateLimit meters each client IP with two token buckets, one for reads and a
stricter one for writes. A rejected request gets 429 with Retry-After.

Each call owns its client table. The sweeper goroutine drops idle clients
and stops when context is cancelled.
*/
func RateLimit(context context.Context) func(http.Handler) http.Handler {
	table := &limiterTable{clients: make(map[string]*clientBuckets)}

	go func() {
		ticker := time.NewTicker(constants.RateLimitCleanupInterval)
		defer ticker.Stop()

		for {
			select {
			case now := <-ticker.C:
				table.sweep(now.Add(-constants.RateLimitClientTTL))
			case <-context.Done():
				return
			}
		}
	}()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			delay, allowed := table.reserve(RealIP(request), request.Method, time.Now())
			if !allowed {
				seconds := int(math.Ceil(delay.Seconds()))
				writer.Header().Set(constants.HeaderRetryAfter, strconv.Itoa(seconds))
				respond.Error(writer, request, apperr.RateLimited(seconds))
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}
