package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestMemory(t *testing.T) *MemoryCache {
	t.Helper()
	c, err := NewMemoryCache(MemoryConfig{NumCounters: 1000, MaxCost: 1 << 20, BufferItems: 64})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func TestMemoryCache_SetGetDelete(t *testing.T) {
	c := newTestMemory(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", map[string]int{"a": 1}, time.Minute))

	var got map[string]int
	require.NoError(t, c.Get(ctx, "k", &got))
	assert.Equal(t, map[string]int{"a": 1}, got)

	ok, err := c.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, c.Delete(ctx, "k"))
	assert.True(t, IsCacheMiss(c.Get(ctx, "k", &got)))
}

func TestMemoryCache_Bytes(t *testing.T) {
	c := newTestMemory(t)
	ctx := context.Background()

	src := []byte("raw")
	require.NoError(t, c.Set(ctx, "b", src, time.Minute))
	src[0] = 'x'

	var got []byte
	require.NoError(t, c.Get(ctx, "b", &got))
	assert.Equal(t, []byte("raw"), got)
}

func TestMemoryCache_Miss(t *testing.T) {
	c := newTestMemory(t)
	var s string
	err := c.Get(context.Background(), "nope", &s)
	assert.ErrorIs(t, err, ErrCacheMiss)
	assert.Equal(t, "memory", c.Name())
}

func TestKeyBuilder(t *testing.T) {
	assert.Equal(t, "share_token:abc", ShareToken.Build("abc"))
	assert.Equal(t, "share_token", ShareToken.Build())
	assert.Equal(t, "share_token:42", ShareToken.BuildID(42))
}

func TestAddJitter(t *testing.T) {
	d := 10 * time.Minute
	for i := 0; i < 50; i++ {
		got := addJitter(d)
		assert.GreaterOrEqual(t, got, d)
		assert.Less(t, got, d+d/10)
	}
	assert.Equal(t, time.Duration(0), addJitter(0))
}

func TestHelper_ShareToken(t *testing.T) {
	h := NewHelper(newTestMemory(t), HelperConfig{ShareTokenTTL: time.Minute})
	ctx := context.Background()

	_, err := h.GetCachedShareToken(ctx, "tok")
	assert.True(t, IsCacheMiss(err))

	require.NoError(t, h.CacheShareToken(ctx, "tok", 7))
	id, err := h.GetCachedShareToken(ctx, "tok")
	require.NoError(t, err)
	assert.Equal(t, uint(7), id)

	require.NoError(t, h.CacheMissingShareToken(ctx, "bad"))
	assert.True(t, h.IsMissingShareToken(ctx, "bad"))
	assert.False(t, h.IsMissingShareToken(ctx, "tok"))

	require.NoError(t, h.DeleteCachedShareToken(ctx, "tok"))
	_, err = h.GetCachedShareToken(ctx, "tok")
	assert.True(t, IsCacheMiss(err))
}

func TestHelper_NilProvider(t *testing.T) {
	var h *Helper
	ctx := context.Background()
	assert.NoError(t, h.CacheShareToken(ctx, "t", 1))
	_, err := h.GetCachedShareToken(ctx, "t")
	assert.True(t, IsCacheMiss(err))
	assert.False(t, h.IsMissingShareToken(ctx, "t"))

	h = NewHelper(nil, HelperConfig{})
	assert.NoError(t, h.CacheMissingShareToken(ctx, "k"))
	assert.NoError(t, h.DeleteCachedShareToken(ctx, "k"))
}
