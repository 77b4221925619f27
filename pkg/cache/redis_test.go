package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := NewRedisCache("redis://"+mr.Addr(), "test:")
	require.NoError(t, err)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestNewRedisCache_BadURL(t *testing.T) {
	_, err := NewRedisCache("not a url", "x")
	assert.Error(t, err)
}

func TestKey(t *testing.T) {
	c, _ := newTestCache(t)
	assert.Equal(t, "test:cooldown:42", c.Key("cooldown", "42"))

	bare := &Cache{}
	assert.Equal(t, "a:b", bare.Key("a", "b"))
}

func TestGetSet(t *testing.T) {
	ctx := context.Background()
	c, mr := newTestCache(t)

	_, err := c.Get(ctx, "missing")
	assert.True(t, IsMiss(err))

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)

	ttl, err := c.TTL(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, time.Minute, ttl)

	mr.FastForward(2 * time.Minute)
	exists, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestInt64(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	require.NoError(t, c.SetInt64(ctx, "n", 1234567890123, 0))
	n, err := c.GetInt64(ctx, "n")
	require.NoError(t, err)
	assert.Equal(t, int64(1234567890123), n)
}

func TestJSON(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	type payload struct {
		Name  string `json:"name"`
		Count int    `json:"count"`
	}

	require.NoError(t, c.SetJSON(ctx, "j", payload{Name: "x", Count: 3}, time.Hour))

	var got payload
	require.NoError(t, c.GetJSON(ctx, "j", &got))
	assert.Equal(t, payload{Name: "x", Count: 3}, got)

	require.NoError(t, c.Delete(ctx, "j"))
	assert.True(t, IsMiss(c.GetJSON(ctx, "j", &got)))
}

func TestPushCapped(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t)

	for _, v := range []string{"1", "2", "3", "4"} {
		require.NoError(t, c.PushCapped(ctx, "list", 3, time.Hour, v))
	}

	items, err := c.LRange(ctx, "list", 0, -1)
	require.NoError(t, err)
	assert.Equal(t, []string{"4", "3", "2"}, items)

	n, err := c.LLen(ctx, "list")
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)

	ttl, err := c.TTL(ctx, "list")
	require.NoError(t, err)
	assert.Equal(t, time.Hour, ttl)
}

func TestPing(t *testing.T) {
	c, mr := newTestCache(t)
	assert.NoError(t, c.Ping(context.Background()))

	mr.Close()
	assert.Error(t, c.Ping(context.Background()))
}
