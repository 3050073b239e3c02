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
	c := NewMemoryCache("wilayah")

	key := c.GenerateKey("regency", "51")
	assert.Equal(t, "wilayah:regency:51", key)

	_, found, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Set(ctx, key, `[{"code":"51.03"}]`, 0))
	require.NoError(t, c.Set(ctx, c.GenerateKey("province", ""), `[]`, 0))
	require.NoError(t, c.Set(ctx, "other:x", "1", 0))

	v, found, err := c.Get(ctx, key)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, `[{"code":"51.03"}]`, v)

	keys, err := c.Keys(ctx, Prefix("wilayah"))
	require.NoError(t, err)
	assert.Equal(t, []string{"wilayah:province:", "wilayah:regency:51"}, keys)

	require.NoError(t, c.Delete(ctx, keys...))
	keys, err = c.Keys(ctx, Prefix("wilayah"))
	require.NoError(t, err)
	assert.Empty(t, keys)

	_, found, _ = c.Get(ctx, "other:x")
	assert.True(t, found)
	assert.NoError(t, c.Close())
}

func TestMemoryCacheTTL(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewMemoryCache("t").(*memoryCache)
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", "v", time.Minute))
	_, found, _ := c.Get(ctx, "k")
	assert.True(t, found)

	now = now.Add(time.Minute)
	_, found, _ = c.Get(ctx, "k")
	assert.False(t, found)

	keys, _ := c.Keys(ctx, "")
	assert.Empty(t, keys)
}

func TestRedisKeyLayout(t *testing.T) {
	c := NewRedisCache("localhost:0", "wilayah")
	t.Cleanup(func() { _ = c.Close() })
	assert.Equal(t, "wilayah:village:51.03.01", c.GenerateKey("village", "51.03.01"))
}
