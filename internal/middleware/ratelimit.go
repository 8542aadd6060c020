package middleware

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RateLimiter provides a Redis-backed sliding window rate limit per client address
type RateLimiter struct {
	redis       *redis.Client
	maxRequests int
	window      time.Duration
	logger      *log.Logger
}

// NewRateLimiter creates a new rate limiter
func NewRateLimiter(client *redis.Client, maxRequests int, window time.Duration, logger *log.Logger) *RateLimiter {
	return &RateLimiter{
		redis:       client,
		maxRequests: maxRequests,
		window:      window,
		logger:      logger,
	}
}

// Limit returns a middleware that rate limits requests
func (rl *RateLimiter) Limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, err := rl.checkRateLimit(r.Context(), clientIdentifier(r))
		if err != nil {
			// Fail open: a Redis outage should not take the API down with it
			rl.logger.Printf("Rate limit check failed: %v", err)
			next.ServeHTTP(w, r)
			return
		}

		if !allowed {
			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", strconv.Itoa(int(rl.window.Seconds())))
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, `{"error":"Too many requests. Please try again later."}`)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// clientIdentifier returns the rate limit bucket for the request
func clientIdentifier(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		return "ip:" + strings.TrimSpace(strings.Split(forwarded, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}

// checkRateLimit records the request and reports whether it is within the limit
func (rl *RateLimiter) checkRateLimit(ctx context.Context, identifier string) (bool, error) {
	key := "ratelimit:" + identifier
	now := time.Now()
	windowStart := now.Add(-rl.window).UnixNano()

	pipe := rl.redis.Pipeline()

	// Remove old entries outside the window
	pipe.ZRemRangeByScore(ctx, key, "0", strconv.FormatInt(windowStart, 10))

	// Count requests in current window
	countCmd := pipe.ZCard(ctx, key)

	// Members must be unique or requests in the same instant collapse into one
	pipe.ZAdd(ctx, key, redis.Z{
		Score:  float64(now.UnixNano()),
		Member: uuid.NewString(),
	})

	pipe.Expire(ctx, key, rl.window)

	if _, err := pipe.Exec(ctx); err != nil {
		return false, err
	}

	return countCmd.Val() < int64(rl.maxRequests), nil
}
