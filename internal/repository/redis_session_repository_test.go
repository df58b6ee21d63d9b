package repository

import (
	"context"
	"testing"
	"time"

	"github.com/inkwell/blog/internal/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisSessionRepository(t *testing.T) (*RedisSessionRepository, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisSessionRepository(client), mr
}

func TestRedisSessionRepository(t *testing.T) {
	ctx := context.Background()
	repo, mr := newRedisSessionRepository(t)

	expiresAt := time.Now().Add(time.Hour)
	session := &models.Session{ID: "abc", UserID: 7, ExpiresAt: expiresAt}
	require.NoError(t, repo.Create(ctx, session))
	assert.False(t, session.CreatedAt.IsZero())

	assert.True(t, mr.Exists(sessionKeyPrefix+"abc"))
	ttl := mr.TTL(sessionKeyPrefix + "abc")
	assert.InDelta(t, time.Hour.Seconds(), ttl.Seconds(), 5)

	got, err := repo.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, "abc", got.ID)
	assert.Equal(t, uint(7), got.UserID)
	assert.WithinDuration(t, expiresAt, got.ExpiresAt, time.Millisecond)

	err = repo.Create(ctx, &models.Session{ID: "abc", UserID: 8, ExpiresAt: expiresAt})
	assert.ErrorIs(t, err, ErrDuplicate)
	got, err = repo.Get(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, uint(7), got.UserID, "existing session is not replaced")

	_, err = repo.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Delete(ctx, "abc"))
	require.NoError(t, repo.Delete(ctx, "abc"))
	_, err = repo.Get(ctx, "abc")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisSessionRepository_Expiry(t *testing.T) {
	ctx := context.Background()
	repo, mr := newRedisSessionRepository(t)

	err := repo.Create(ctx, &models.Session{ID: "stale", UserID: 1, ExpiresAt: time.Now().Add(-time.Minute)})
	assert.Error(t, err)
	assert.False(t, mr.Exists(sessionKeyPrefix+"stale"))

	require.NoError(t, repo.Create(ctx, &models.Session{ID: "short", UserID: 1, ExpiresAt: time.Now().Add(time.Minute)}))
	mr.FastForward(2 * time.Minute)

	_, err = repo.Get(ctx, "short")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRedisSessionRepository_Unavailable(t *testing.T) {
	ctx := context.Background()
	repo, mr := newRedisSessionRepository(t)
	mr.Close()

	_, err := repo.Get(ctx, "abc")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
