package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	c, err := NewRedisCache(context.Background(), RedisOptions{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestRedisCache(t *testing.T) {
	ctx := context.Background()
	c, mr := setupTestRedis(t)

	t.Run("miss", func(t *testing.T) {
		data, hit, err := c.Get(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, hit)
		assert.Nil(t, data)
	})

	t.Run("set and get", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "k", []byte("svg"), time.Hour))
		data, hit, err := c.Get(ctx, "k")
		require.NoError(t, err)
		assert.True(t, hit)
		assert.Equal(t, "svg", string(data))

		assert.True(t, mr.Exists(DefaultRedisPrefix+"k"))
		assert.Equal(t, time.Hour, mr.TTL(DefaultRedisPrefix+"k"))
	})

	t.Run("expiry", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "short", []byte("x"), time.Second))
		mr.FastForward(2 * time.Second)
		_, hit, err := c.Get(ctx, "short")
		require.NoError(t, err)
		assert.False(t, hit)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, c.Set(ctx, "gone", []byte("x"), 0))
		require.NoError(t, c.Delete(ctx, "gone"))
		assert.False(t, mr.Exists(DefaultRedisPrefix+"gone"))
	})
}

func TestRedisCachePrefix(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewRedisCacheFromClient(client, "tenant:")
	defer c.Close()

	require.NoError(t, c.Set(context.Background(), "k", []byte("v"), 0))
	assert.True(t, mr.Exists("tenant:k"))
}

func TestRedisCacheUnavailable(t *testing.T) {
	defer func(p retryPolicy) { defaultRetry = p }(defaultRetry)
	defaultRetry.delay = time.Millisecond

	c, mr := setupTestRedis(t)
	mr.Close()

	_, _, err := c.Get(context.Background(), "k")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNetwork)
	assert.True(t, IsRetryable(err))
}

func TestNewRedisCacheBadAddr(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := NewRedisCache(ctx, RedisOptions{Addr: "127.0.0.1:1"})
	assert.Error(t, err)
}
