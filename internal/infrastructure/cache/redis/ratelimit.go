package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RateLimiter enforces per-tenant, per-action limits with an INCR+EXPIRE
// fixed window. Redis being down fails open so an infrastructure outage
// never turns into a hard request failure.
type RateLimiter struct {
	rdb *redis.Client
}

func NewRateLimiter(rdb *redis.Client) *RateLimiter {
	return &RateLimiter{rdb: rdb}
}

func (l *RateLimiter) Check(ctx context.Context, tenantID, action string, limit int, window time.Duration) (bool, int, error) {
	if limit <= 0 {
		return true, 0, nil
	}

	key := fmt.Sprintf("ratelimit:%s:%s", tenantID, action)

	count, err := l.rdb.Incr(ctx, key).Result()
	if err != nil {
		return true, limit, fmt.Errorf("rate limit incr: %w", err)
	}
	if count == 1 {
		l.rdb.Expire(ctx, key, window)
	}

	remaining := limit - int(count)
	if remaining < 0 {
		remaining = 0
	}
	return count <= int64(limit), remaining, nil
}
