package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var actionRateLimitScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// RedisActionRateLimiter implements distributed fixed-window rate limiting for
// claim/feed actions using Redis.
type RedisActionRateLimiter struct {
	client redis.UniversalClient
	prefix string
}

func NewRedisActionRateLimiter(client redis.UniversalClient, prefix string) *RedisActionRateLimiter {
	trimmedPrefix := strings.TrimSpace(prefix)
	if trimmedPrefix == "" {
		trimmedPrefix = "pawmine:rate_limit"
	}
	trimmedPrefix = strings.TrimSuffix(trimmedPrefix, ":")

	return &RedisActionRateLimiter{
		client: client,
		prefix: trimmedPrefix,
	}
}

// Allow increments the window counter for the key and reports whether the
// action stays within the limit. A nil limiter or non-positive limit allows
// everything.
func (r *RedisActionRateLimiter) Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	if r == nil || r.client == nil || limit <= 0 || window <= 0 {
		return true, nil
	}

	normalizedKey := strings.TrimSpace(key)
	if normalizedKey == "" {
		return true, nil
	}

	windowMs := window.Milliseconds()
	if windowMs < 1000 {
		windowMs = 1000
	}

	fullKey := fmt.Sprintf("%s:%s", r.prefix, normalizedKey)
	rawResult, err := actionRateLimitScript.Run(ctx, r.client, []string{fullKey}, windowMs).Result()
	if err != nil {
		return false, err
	}

	count, ok := rawResult.(int64)
	if !ok {
		return false, fmt.Errorf("unexpected redis limiter response type: %T", rawResult)
	}

	return count <= int64(limit), nil
}
