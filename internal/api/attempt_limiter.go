package api

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

const (
	loginAttemptLimit  = 5
	loginAttemptWindow = 15 * time.Minute
	redisLimiterPrefix = "skinior:login-attempts:"
)

// attemptLimiter counts failed attempts per key inside a sliding window.
type attemptLimiter interface {
	tooManyRecent(ctx context.Context, key string, now time.Time, limit int, window time.Duration) (bool, error)
	addFailure(ctx context.Context, key string, now time.Time, window time.Duration) error
	reset(ctx context.Context, key string) error
}

type memoryAttemptLimiter struct {
	mu       sync.Mutex
	attempts map[string][]time.Time
}

func newAttemptLimiter() *memoryAttemptLimiter {
	return &memoryAttemptLimiter{
		attempts: make(map[string][]time.Time),
	}
}

func (limiter *memoryAttemptLimiter) tooManyRecent(_ context.Context, key string, now time.Time, limit int, window time.Duration) (bool, error) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	pruned := limiter.pruneLocked(key, now, window)
	return len(pruned) >= limit, nil
}

func (limiter *memoryAttemptLimiter) addFailure(_ context.Context, key string, now time.Time, window time.Duration) error {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	pruned := limiter.pruneLocked(key, now, window)
	pruned = append(pruned, now)
	limiter.attempts[key] = pruned
	return nil
}

func (limiter *memoryAttemptLimiter) reset(_ context.Context, key string) error {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	delete(limiter.attempts, key)
	return nil
}

func (limiter *memoryAttemptLimiter) pruneLocked(key string, now time.Time, window time.Duration) []time.Time {
	values := limiter.attempts[key]
	if len(values) == 0 {
		return []time.Time{}
	}

	threshold := now.Add(-window)
	pruned := make([]time.Time, 0, len(values))
	for _, value := range values {
		if value.After(threshold) {
			pruned = append(pruned, value)
		}
	}

	if len(pruned) == 0 {
		delete(limiter.attempts, key)
		return []time.Time{}
	}

	limiter.attempts[key] = pruned
	return pruned
}

// redisAttemptLimiter keeps one sorted set per key, scored by attempt time in
// nanoseconds, so every replica sees the same window.
type redisAttemptLimiter struct {
	client goredis.UniversalClient
	prefix string
}

func newRedisAttemptLimiter(client goredis.UniversalClient) *redisAttemptLimiter {
	return &redisAttemptLimiter{client: client, prefix: redisLimiterPrefix}
}

func (limiter *redisAttemptLimiter) tooManyRecent(ctx context.Context, key string, now time.Time, limit int, window time.Duration) (bool, error) {
	redisKey := limiter.prefix + key
	threshold := strconv.FormatInt(now.Add(-window).UnixNano(), 10)

	var count *goredis.IntCmd
	_, err := limiter.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, redisKey, "-inf", "("+threshold)
		count = pipe.ZCard(ctx, redisKey)
		return nil
	})
	if err != nil {
		return false, err
	}
	return count.Val() >= int64(limit), nil
}

func (limiter *redisAttemptLimiter) addFailure(ctx context.Context, key string, now time.Time, window time.Duration) error {
	redisKey := limiter.prefix + key
	threshold := strconv.FormatInt(now.Add(-window).UnixNano(), 10)

	_, err := limiter.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.ZRemRangeByScore(ctx, redisKey, "-inf", "("+threshold)
		pipe.ZAdd(ctx, redisKey, goredis.Z{
			Score:  float64(now.UnixNano()),
			Member: uuid.NewString(),
		})
		pipe.Expire(ctx, redisKey, window)
		return nil
	})
	return err
}

func (limiter *redisAttemptLimiter) reset(ctx context.Context, key string) error {
	return limiter.client.Del(ctx, limiter.prefix+key).Err()
}

func requestLimiterKey(c *fiber.Ctx) string {
	key := strings.TrimSpace(c.IP())
	if key == "" {
		return "unknown"
	}
	return key
}
