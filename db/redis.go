package db

import (
	"context"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

const ingestLockPrefix = "newslens:lock:ingest:"

// ConnectRedis connects to the Redis instance named by REDIS_URL. Redis is
// optional; callers get (nil, nil) when no URL is configured.
func ConnectRedis() (*redis.Client, error) {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		return nil, nil
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		opt = &redis.Options{Addr: redisURL}
	}

	client := redis.NewClient(opt)

	if _, err := client.Ping(context.Background()).Result(); err != nil {
		client.Close()
		return nil, err
	}

	return client, nil
}

// IngestLock is a best-effort cross-replica lock around a cache-miss ingest
// for one query. It never blocks an ingest outright: a replica that loses the
// race re-checks its cache and carries on, and the URL upsert keeps the
// outcome consistent.
type IngestLock struct {
	client *redis.Client
}

func NewIngestLock(client *redis.Client) *IngestLock {
	return &IngestLock{client: client}
}

// Acquire takes the lock for the query. It reports true when no Redis client
// is configured so single-replica deployments behave as if unlocked.
func (l *IngestLock) Acquire(ctx context.Context, query string, ttl time.Duration) bool {
	if l == nil || l.client == nil {
		return true
	}

	ok, err := l.client.SetNX(ctx, ingestLockPrefix+query, 1, ttl).Result()
	if err != nil {
		return true
	}
	return ok
}

func (l *IngestLock) Release(ctx context.Context, query string) {
	if l == nil || l.client == nil {
		return
	}
	l.client.Del(ctx, ingestLockPrefix+query)
}
