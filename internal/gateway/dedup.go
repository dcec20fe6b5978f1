package gateway

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisDedup remembers processed command IDs in Redis so redeliveries are
// dropped even across process restarts.
type RedisDedup struct {
	client *redis.Client
}

func NewRedisDedup(client *redis.Client) *RedisDedup {
	return &RedisDedup{client: client}
}

func dedupKey(commandID string) string {
	return "portfolio:command:" + commandID
}

func (d *RedisDedup) FirstDelivery(ctx context.Context, commandID string, retention time.Duration) (bool, error) {
	first, err := d.client.SetNX(ctx, dedupKey(commandID), 1, retention).Result()
	if err != nil {
		return false, fmt.Errorf("dedup setnx: %w", err)
	}
	return first, nil
}

// InMemoryDedup is the test and single-node fallback when Redis is not
// configured. Entries are never evicted; acceptable for process lifetimes.
type InMemoryDedup struct {
	mu   sync.Mutex
	seen map[string]struct{}
}

func NewInMemoryDedup() *InMemoryDedup {
	return &InMemoryDedup{seen: make(map[string]struct{})}
}

func (d *InMemoryDedup) FirstDelivery(_ context.Context, commandID string, _ time.Duration) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, ok := d.seen[commandID]; ok {
		return false, nil
	}
	d.seen[commandID] = struct{}{}
	return true, nil
}
