//go:build integration

package gateway_test

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"portfolio/internal/gateway"
	"portfolio/pkg/testutil/containers"
)

func TestRedisDedupFirstDelivery(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	redis := containers.NewRedisContainer(t)
	dedup := gateway.NewRedisDedup(redis.Client)

	commandID := uuid.NewString()

	first, err := dedup.FirstDelivery(ctx, commandID, time.Minute)
	require.NoError(t, err)
	require.True(t, first)

	second, err := dedup.FirstDelivery(ctx, commandID, time.Minute)
	require.NoError(t, err)
	require.False(t, second, "redelivery of the same command must not be first")

	other, err := dedup.FirstDelivery(ctx, uuid.NewString(), time.Minute)
	require.NoError(t, err)
	require.True(t, other, "distinct commands are independent")
}

func TestRedisDedupConcurrentDeliveries(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	redis := containers.NewRedisContainer(t)
	dedup := gateway.NewRedisDedup(redis.Client)

	commandID := uuid.NewString()
	const goroutines = 20

	var wg sync.WaitGroup
	var firstCount atomic.Int32
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			first, err := dedup.FirstDelivery(ctx, commandID, time.Minute)
			require.NoError(t, err)
			if first {
				firstCount.Add(1)
			}
		}()
	}
	wg.Wait()

	require.Equal(t, int32(1), firstCount.Load(), "exactly one delivery wins")
}

func TestRedisDedupRetentionExpires(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx := context.Background()
	redis := containers.NewRedisContainer(t)
	dedup := gateway.NewRedisDedup(redis.Client)

	commandID := uuid.NewString()

	first, err := dedup.FirstDelivery(ctx, commandID, 100*time.Millisecond)
	require.NoError(t, err)
	require.True(t, first)

	require.Eventually(t, func() bool {
		again, err := dedup.FirstDelivery(ctx, commandID, time.Minute)
		return err == nil && again
	}, 5*time.Second, 100*time.Millisecond, "key should expire after retention")
}
