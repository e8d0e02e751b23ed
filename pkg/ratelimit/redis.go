package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
local ttl = redis.call("PTTL", KEYS[1])
if ttl < 0 then
  ttl = tonumber(ARGV[1])
end
return {current, ttl}
`)

// RedisLimiter counts requests per key in a one-minute fixed window shared by
// every instance. Burst is added to the per-minute allowance.
type RedisLimiter struct {
	client redis.UniversalClient
	prefix string
	limit  int
	window time.Duration
}

var _ Limiter = (*RedisLimiter)(nil)

// NewRedisLimiter creates a RedisLimiter. An empty prefix defaults to "escrow:rate_limit".
func NewRedisLimiter(client redis.UniversalClient, prefix string, cfg Config) *RedisLimiter {
	cfg = cfg.normalized()
	prefix = strings.TrimSuffix(strings.TrimSpace(prefix), ":")
	if prefix == "" {
		prefix = "escrow:rate_limit"
	}
	return &RedisLimiter{client: client, prefix: prefix, limit: cfg.RequestsPerMinute + cfg.Burst - 1, window: time.Minute}
}

func (r *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	redisKey := fmt.Sprintf("%s:%s", r.prefix, key)
	raw, err := fixedWindowScript.Run(ctx, r.client, []string{redisKey}, r.window.Milliseconds()).Result()
	if err != nil {
		return Decision{}, fmt.Errorf("failed to run rate limit script: %w", err)
	}

	values, ok := raw.([]interface{})
	if !ok || len(values) != 2 {
		return Decision{}, fmt.Errorf("unexpected redis limiter response shape: %T", raw)
	}
	count, ok := values[0].(int64)
	if !ok {
		return Decision{}, fmt.Errorf("unexpected redis limiter count type: %T", values[0])
	}
	ttlMs, ok := values[1].(int64)
	if !ok || ttlMs < 0 {
		ttlMs = r.window.Milliseconds()
	}

	if int(count) > r.limit {
		return Decision{Allowed: false, RetryAfter: time.Duration(ttlMs) * time.Millisecond}, nil
	}
	return Decision{Allowed: true}, nil
}
