package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// UsageTracker accumulates per-tenant metered counters in monthly buckets.
type UsageTracker struct {
	rdb *redis.Client
	now func() time.Time
}

func NewUsageTracker(rdb *redis.Client) *UsageTracker {
	return &UsageTracker{rdb: rdb, now: time.Now}
}

func (t *UsageTracker) Increment(ctx context.Context, tenantID, metric string, amount int) error {
	if amount <= 0 {
		return nil
	}

	key := fmt.Sprintf("usage:%s:%s:%s", tenantID, metric, t.now().UTC().Format("2006-01"))
	if err := t.rdb.IncrBy(ctx, key, int64(amount)).Err(); err != nil {
		return fmt.Errorf("usage incr: %w", err)
	}
	return nil
}

// Get reads the current month's counter for a tenant metric.
func (t *UsageTracker) Get(ctx context.Context, tenantID, metric string) (int64, error) {
	key := fmt.Sprintf("usage:%s:%s:%s", tenantID, metric, t.now().UTC().Format("2006-01"))
	count, err := t.rdb.Get(ctx, key).Int64()
	if err != nil {
		if err == redis.Nil {
			return 0, nil
		}
		return 0, fmt.Errorf("usage get: %w", err)
	}
	return count, nil
}
