package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testRedisAddr = "localhost:6379"

func setupTestCache(t *testing.T) *Cache {
	t.Helper()

	client := redis.NewClient(&redis.Options{Addr: testRedisAddr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available at %s: %v", testRedisAddr, err)
	}
	t.Cleanup(func() { client.Close() })

	return New(client, "billiard-test:", time.Minute)
}

func TestNilCacheIsAlwaysMissing(t *testing.T) {
	var c *Cache
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "k", map[string]int{"a": 1}))

	var out map[string]int
	found, err := c.Get(ctx, "k", &out)
	require.NoError(t, err)
	assert.False(t, found)
	assert.NoError(t, c.Delete(ctx, "k"))
	assert.NoError(t, c.Close())
}

func TestSetGetDelete(t *testing.T) {
	c := setupTestCache(t)
	ctx := context.Background()
	key := ProductKey(7)

	type item struct {
		Title string  `json:"title"`
		Price float64 `json:"price"`
	}

	require.NoError(t, c.Set(ctx, key, item{Title: "Cue", Price: 4990}))

	var got item
	found, err := c.Get(ctx, key, &got)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "Cue", got.Title)

	require.NoError(t, c.Delete(ctx, key))
	found, err = c.Get(ctx, key, &got)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestCloseReleasesClient(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: testRedisAddr})
	c := New(client, "billiard-test:", time.Minute)

	require.NoError(t, c.Close())

	err := c.Set(context.Background(), ProductKey(1), "value")
	require.Error(t, err)
	assert.ErrorIs(t, err, redis.ErrClosed)
}
