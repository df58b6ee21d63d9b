package redis_limiter

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
)

// ErrLimitReached every slot for the key is taken
var ErrLimitReached = errors.New("concurrency limit reached")

// acquireScript increments the counter unless it already reached ARGV[1].
// Returns the new count, or limit+1 when full.
var acquireScript = redis.NewScript(`
local current = redis.call('GET', KEYS[1])
if current == false then
	current = 0
else
	current = tonumber(current)
end

if current >= tonumber(ARGV[1]) then
	return current + 1
end

local newCount = redis.call('INCR', KEYS[1])
redis.call('EXPIRE', KEYS[1], tonumber(ARGV[2]))
return newCount`)

// releaseScript decrements the counter and drops the key at zero.
var releaseScript = redis.NewScript(`
local count = redis.call('DECR', KEYS[1])
if tonumber(count) <= 0 then
	redis.call('DEL', KEYS[1])
	return 0
else
	redis.call('EXPIRE', KEYS[1], tonumber(ARGV[1]))
	return count
end`)

// RedisLimiter counting semaphore shared through Redis. Slots expire after ttl so a crashed
// holder cannot leak them forever.
type RedisLimiter struct {
	client        *redis.Client
	maxConcurrent int
	keyPrefix     string
	ttl           time.Duration
}

// NewRedisLimiter creates a RedisLimiter
func NewRedisLimiter(client *redis.Client, maxConcurrent int, keyPrefix string, ttl time.Duration) *RedisLimiter {
	return &RedisLimiter{
		client:        client,
		maxConcurrent: maxConcurrent,
		keyPrefix:     keyPrefix,
		ttl:           ttl,
	}
}

func (rl *RedisLimiter) ttlSeconds() int {
	seconds := int(rl.ttl.Seconds())
	if seconds < 1 {
		return 1
	}
	return seconds
}

// Acquire takes a slot for key, or returns ErrLimitReached
func (rl *RedisLimiter) Acquire(ctx context.Context, key string) error {
	result, err := acquireScript.Run(ctx, rl.client, []string{rl.keyPrefix + key}, rl.maxConcurrent, rl.ttlSeconds()).Int()
	if err != nil {
		return fmt.Errorf("run acquire script: %w", err)
	}

	if result > rl.maxConcurrent {
		return ErrLimitReached
	}
	return nil
}

// Release returns a slot for key
func (rl *RedisLimiter) Release(ctx context.Context, key string) error {
	if err := releaseScript.Run(ctx, rl.client, []string{rl.keyPrefix + key}, rl.ttlSeconds()).Err(); err != nil {
		return fmt.Errorf("run release script: %w", err)
	}
	return nil
}
