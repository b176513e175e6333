package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// IngestLock implements usecase.IngestLock with a per-account SET NX key.
// The TTL bounds how long a crashed run can block an account.
type IngestLock struct {
	client *redis.Client
	prefix string
}

// NewIngestLock creates a new IngestLock.
func NewIngestLock(client *redis.Client) *IngestLock {
	return &IngestLock{
		client: client,
		prefix: "fss:lock:ingest:",
	}
}

// Acquire takes the lock for an account. Returns false when another run
// holds it.
func (l *IngestLock) Acquire(ctx context.Context, accountID string, ttl time.Duration) (bool, error) {
	return l.client.SetNX(ctx, l.prefix+accountID, "held", ttl).Result()
}

// Release frees the lock for an account.
func (l *IngestLock) Release(ctx context.Context, accountID string) error {
	return l.client.Del(ctx, l.prefix+accountID).Err()
}
