package serverutils

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/patrickmn/go-cache"
	"github.com/redis/go-redis/v9"
)

// RateLimiter bounds request rate per caller key. Implementations are
// injectable so a single-instance deployment can use process memory while
// a scaled one shares counters through Redis.
type RateLimiter interface {
	// Allow reports whether the caller identified by key may proceed,
	// counting this call against its window.
	Allow(ctx context.Context, key string) (bool, error)
}

// MemoryRateLimiter keeps TTL'd counters in process memory.
// Counters do not survive restarts or span instances.
type MemoryRateLimiter struct {
	counters *cache.Cache
	limit    int
	window   time.Duration
}

func NewMemoryRateLimiter(limit int, window time.Duration) *MemoryRateLimiter {
	return &MemoryRateLimiter{
		counters: cache.New(window, 2*window),
		limit:    limit,
		window:   window,
	}
}

func (l *MemoryRateLimiter) Allow(_ context.Context, key string) (bool, error) {
	n, err := l.counters.IncrementInt64(key, 1)
	if err != nil {
		// First hit in this window.
		l.counters.Set(key, int64(1), l.window)
		return true, nil
	}
	return n <= int64(l.limit), nil
}

// RedisRateLimiter shares counters across instances via INCR + EXPIRE.
type RedisRateLimiter struct {
	rdb    *redis.Client
	limit  int
	window time.Duration
	prefix string
}

func NewRedisRateLimiter(rdb *redis.Client, limit int, window time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{
		rdb:    rdb,
		limit:  limit,
		window: window,
		prefix: "ratelimit:",
	}
}

func (l *RedisRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	redisKey := l.prefix + key
	n, err := l.rdb.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, fmt.Errorf("rate limit incr failed: %w", err)
	}
	if n == 1 {
		l.rdb.Expire(ctx, redisKey, l.window)
	}
	return n <= int64(l.limit), nil
}

// RateLimitMiddleware keys callers by client IP. A limiter error fails
// open: availability of the widget beats strict limiting.
func RateLimitMiddleware(limiter RateLimiter) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		ok, err := limiter.Allow(ctx.Context(), ctx.IP())
		if err != nil {
			return ctx.Next()
		}
		if !ok {
			return ctx.Status(fiber.StatusTooManyRequests).JSON(
				ErrorResponse(fiber.StatusTooManyRequests, "too many requests"))
		}
		return ctx.Next()
	}
}
