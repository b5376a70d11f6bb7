// Package ratelimit is a fixed-window request limiter backed by a Redis
// counter per client address.
package ratelimit

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type Limiter struct {
	rdb    redis.Cmdable
	limit  int64
	window time.Duration
	log    zerolog.Logger
}

func New(rdb redis.Cmdable, limit int64, window time.Duration, log zerolog.Logger) *Limiter {
	return &Limiter{rdb: rdb, limit: limit, window: window, log: log}
}

// Allow counts one request against key and reports whether it is within the
// limit for the current window.
func (l *Limiter) Allow(ctx context.Context, key string) (bool, int64, error) {
	k := "rl:" + key
	pipe := l.rdb.TxPipeline()
	// the first request of a window creates the key with its TTL; INCR keeps it
	pipe.SetNX(ctx, k, 0, l.window)
	incr := pipe.Incr(ctx, k)
	if _, err := pipe.Exec(ctx); err != nil {
		return false, 0, err
	}
	n := incr.Val()
	return n <= l.limit, n, nil
}

// Middleware rejects requests over the limit with 429. A nil limiter or a
// non-positive limit passes everything through. Redis failures fail open.
func (l *Limiter) Middleware(route string, next http.Handler) http.Handler {
	if l == nil || l.limit <= 0 {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := route + ":" + ClientKey(r)
		ok, n, err := l.Allow(r.Context(), key)
		if err != nil {
			l.log.Warn().Err(err).Str("key", key).Msg("rate limiter unavailable")
			next.ServeHTTP(w, r)
			return
		}
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", strconv.Itoa(int(l.window.Seconds())))
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"error": "rate limit exceeded",
				"count": n,
				"limit": l.limit,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// ClientKey identifies the caller by remote host.
func ClientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
