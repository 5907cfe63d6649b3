package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryCache(t *testing.T) {
	ctx := context.Background()
	c, err := NewMemoryCache(2)
	require.NoError(t, err)

	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))

	data, hit, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, "1", string(data))

	// "b" is now least recently used and gets evicted.
	require.NoError(t, c.Set(ctx, "c", []byte("3"), 0))
	_, hit, _ = c.Get(ctx, "b")
	assert.False(t, hit)
	assert.Equal(t, 2, c.Len())

	require.NoError(t, c.Delete(ctx, "a"))
	_, hit, _ = c.Get(ctx, "a")
	assert.False(t, hit)
}

func TestMemoryCacheCopiesData(t *testing.T) {
	ctx := context.Background()
	c, err := NewMemoryCache(0)
	require.NoError(t, err)

	buf := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", buf, 0))
	buf[0] = 'x'

	data, _, _ := c.Get(ctx, "k")
	assert.Equal(t, "abc", string(data))
}

func TestMemoryCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewMemoryCache(4)
	require.NoError(t, err)

	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	_, hit, _ := c.Get(ctx, "k")
	assert.True(t, hit)

	now = now.Add(2 * time.Minute)
	_, hit, _ = c.Get(ctx, "k")
	assert.False(t, hit)
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCacheClosed(t *testing.T) {
	ctx := context.Background()
	c, err := NewMemoryCache(4)
	require.NoError(t, err)
	require.NoError(t, c.Close())

	_, _, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrClosed)
	assert.ErrorIs(t, c.Set(ctx, "k", nil, 0), ErrClosed)
}
