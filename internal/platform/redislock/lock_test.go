package redislock

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestAcquireRelease(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	a := New(client, "mise:job:", time.Minute)
	b := New(client, "mise:job:", time.Minute)

	ok, err := a.Acquire(ctx, "recipe_image_x_1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, mr.Exists("mise:job:recipe_image_x_1"))

	ok, err = b.Acquire(ctx, "recipe_image_x_1")
	require.NoError(t, err)
	assert.False(t, ok, "second holder must not acquire")

	require.NoError(t, b.Release(ctx, "recipe_image_x_1"))
	assert.True(t, mr.Exists("mise:job:recipe_image_x_1"), "foreign release is ignored")

	require.NoError(t, a.Release(ctx, "recipe_image_x_1"))
	assert.False(t, mr.Exists("mise:job:recipe_image_x_1"))

	ok, err = b.Acquire(ctx, "recipe_image_x_1")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestLockExpires(t *testing.T) {
	mr, client := setupTestRedis(t)
	ctx := context.Background()

	l := New(client, "", time.Second)
	ok, err := l.Acquire(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Second)

	ok, err = New(client, "", time.Second).Acquire(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestAcquireConnectionError(t *testing.T) {
	mr, client := setupTestRedis(t)
	mr.Close()

	_, err := New(client, "", 0).Acquire(context.Background(), "k")
	assert.Error(t, err)
	assert.Error(t, New(client, "", 0).Ping(context.Background()))
}
