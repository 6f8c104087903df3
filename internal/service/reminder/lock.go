package reminder

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

// Locker serializes sweeps across processes.
type Locker interface {
	Acquire(ctx context.Context) (bool, error)
	Release(ctx context.Context)
}

const lockKey = "dentavia:reminder:sweep-lease"

type redisLocker struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisLocker returns a SetNX lease with the given TTL. The TTL bounds
// how long a crashed holder can block other replicas.
func NewRedisLocker(rdb *redis.Client, ttl time.Duration) Locker {
	return &redisLocker{rdb: rdb, ttl: ttl}
}

func (l *redisLocker) Acquire(ctx context.Context) (bool, error) {
	return l.rdb.SetNX(ctx, lockKey, time.Now().UTC().Format(time.RFC3339), l.ttl).Result()
}

func (l *redisLocker) Release(ctx context.Context) {
	if err := l.rdb.Del(ctx, lockKey).Err(); err != nil {
		slog.Warn("reminder lease release failed", "err", err)
	}
}
