package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInMemoryCache_SetGet(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)
}

func TestInMemoryCache_Missing(t *testing.T) {
	c := NewInMemoryCache()

	_, err := c.Get(context.Background(), "absent")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	c := NewInMemoryCache()
	c.now = func() time.Time { return now }

	require.NoError(t, c.Set(ctx, "k", []byte("v"), 10*time.Second))

	now = now.Add(5 * time.Second)
	_, err := c.Get(ctx, "k")
	require.NoError(t, err)

	now = now.Add(6 * time.Second)
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Equal(t, 0, c.Len(), "expired entry should be evicted on read")
}

func TestInMemoryCache_Clear(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache()

	require.NoError(t, c.Set(ctx, "a", []byte("1"), time.Minute))
	require.NoError(t, c.Set(ctx, "b", []byte("2"), time.Minute))
	require.NoError(t, c.Clear(ctx))

	assert.Equal(t, 0, c.Len())
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	c := NewInMemoryCache()

	type page struct {
		Items []string `json:"items"`
	}

	require.NoError(t, SetJSON(ctx, c, "p", page{Items: []string{"x", "y"}}, time.Minute))

	var got page
	require.NoError(t, GetJSON(ctx, c, "p", &got))
	assert.Equal(t, []string{"x", "y"}, got.Items)

	err := GetJSON(ctx, c, "missing", &got)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListKey(t *testing.T) {
	assert.Equal(t, "list:2:", ListKey(2, ""))
	assert.Equal(t, "list:1:Food", ListKey(1, "Food"))
	assert.NotEqual(t, ListKey(1, "food"), ListKey(1, "FOOD"), "category is echoed verbatim so the key keeps its case")
	assert.NotEqual(t, ListKey(1, "food"), ListKey(2, "food"))
}

func TestRedisCache(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	c, err := NewRedisCache(ctx, addr, "", 0, "coupon-admin-test:")
	require.NoError(t, err)
	defer func() { _ = c.Close() }()

	require.NoError(t, c.Set(ctx, "k", []byte("v"), time.Minute))
	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), got)

	require.NoError(t, c.Clear(ctx))
	_, err = c.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	c, err := NewRedisCache(ctx, "127.0.0.1:1", "", 0, "x:")
	assert.Nil(t, c)
	assert.Error(t, err)
}
