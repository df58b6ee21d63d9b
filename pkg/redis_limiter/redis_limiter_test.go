package redis_limiter

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T, maxConcurrent int, ttl time.Duration) (*RedisLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisLimiter(client, maxConcurrent, "test:", ttl), mr
}

func TestRedisLimiter_AcquireRelease(t *testing.T) {
	ctx := context.Background()
	limiter, mr := newTestLimiter(t, 2, time.Minute)

	require.NoError(t, limiter.Acquire(ctx, "10.0.0.1"))
	require.NoError(t, limiter.Acquire(ctx, "10.0.0.1"))
	assert.ErrorIs(t, limiter.Acquire(ctx, "10.0.0.1"), ErrLimitReached)

	count, err := mr.Get("test:10.0.0.1")
	require.NoError(t, err)
	assert.Equal(t, "2", count, "a refused acquire does not take a slot")
	assert.Equal(t, time.Minute, mr.TTL("test:10.0.0.1"))

	require.NoError(t, limiter.Acquire(ctx, "10.0.0.2"), "keys are limited independently")

	require.NoError(t, limiter.Release(ctx, "10.0.0.1"))
	require.NoError(t, limiter.Acquire(ctx, "10.0.0.1"))

	require.NoError(t, limiter.Release(ctx, "10.0.0.1"))
	require.NoError(t, limiter.Release(ctx, "10.0.0.1"))
	assert.False(t, mr.Exists("test:10.0.0.1"), "key removed once every slot is back")
}

func TestRedisLimiter_SlotsExpire(t *testing.T) {
	ctx := context.Background()
	limiter, mr := newTestLimiter(t, 1, 30*time.Second)

	require.NoError(t, limiter.Acquire(ctx, "client"))
	assert.ErrorIs(t, limiter.Acquire(ctx, "client"), ErrLimitReached)

	mr.FastForward(31 * time.Second)
	assert.NoError(t, limiter.Acquire(ctx, "client"), "leaked slot freed after ttl")
}

func TestRedisLimiter_MinimumTTL(t *testing.T) {
	limiter, mr := newTestLimiter(t, 1, 0)

	require.NoError(t, limiter.Acquire(context.Background(), "client"))
	assert.Equal(t, time.Second, mr.TTL("test:client"))
}

func TestRedisLimiter_Unavailable(t *testing.T) {
	limiter, mr := newTestLimiter(t, 1, time.Minute)
	mr.Close()

	err := limiter.Acquire(context.Background(), "client")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrLimitReached)
	assert.Error(t, limiter.Release(context.Background(), "client"))
}
