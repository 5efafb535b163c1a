package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryClient(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryClient(2, time.Minute)

	_, err := c.Get(ctx, "x")
	assert.ErrorIs(t, err, ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "a", []byte("1"), 0))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), 0))
	v, err := c.Get(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, []byte("1"), v)

	// "b" давно не читали: вытесняется им
	require.NoError(t, c.Set(ctx, "c", []byte("3"), 0))
	_, err = c.Get(ctx, "b")
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Equal(t, 2, c.Len())

	require.NoError(t, c.Delete(ctx, "a"))
	_, err = c.Get(ctx, "a")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryClient_Expires(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryClient(10, 20*time.Millisecond)
	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Hour))
	time.Sleep(60 * time.Millisecond)
	_, err := c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrCacheMiss)
}

func TestMemoryClient_DeleteByPrefix(t *testing.T) {
	ctx := context.Background()
	c := NewMemoryClient(0, 0)
	for _, k := range []string{Key("search", "n11", "tava"), Key("search", "n11", "kilif"), Key("search", "trendyol", "tava")} {
		require.NoError(t, c.Set(ctx, k, []byte("{}"), 0))
	}
	require.NoError(t, c.DeleteByPrefix(ctx, Key("search", "n11")+":"))
	assert.Equal(t, 1, c.Len())
	_, err := c.Get(ctx, "search:trendyol:tava")
	assert.NoError(t, err)
	require.NoError(t, c.Close())
	assert.Equal(t, 0, c.Len())
}

func TestNew(t *testing.T) {
	c, err := New(Config{Driver: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &MemoryClient{}, c)

	c, err = New(Config{Driver: "none"})
	require.NoError(t, err)
	require.NoError(t, c.Set(context.Background(), "a", []byte("1"), time.Minute))
	_, err = c.Get(context.Background(), "a")
	assert.ErrorIs(t, err, ErrCacheMiss)

	_, err = New(Config{Driver: "memcached"})
	assert.Error(t, err)
}

func TestNewRedisClient_Unreachable(t *testing.T) {
	// порт 1 никто не слушает
	_, err := New(Config{Driver: "redis", Redis: RedisConfig{Addr: "127.0.0.1:1"}})
	assert.Error(t, err)
}
