package appointments

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisReservations(t *testing.T) (*RedisReservations, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisReservations(client, "test:"), mr
}

func TestRedisReservations(t *testing.T) {
	ctx := context.Background()
	res, mr := newRedisReservations(t)

	ok, err := res.Reserve(ctx, "abc", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.True(t, mr.Exists("test:reservation:abc"))

	ok, err = res.Reserve(ctx, "abc", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second reservation inside the window")

	require.NoError(t, res.Release(ctx, "abc"))
	ok, err = res.Reserve(ctx, "abc", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "released key can be reserved again")
}

func TestRedisReservations_Expires(t *testing.T) {
	ctx := context.Background()
	res, mr := newRedisReservations(t)

	ok, err := res.Reserve(ctx, "abc", time.Minute)
	require.NoError(t, err)
	require.True(t, ok)

	mr.FastForward(2 * time.Minute)

	ok, err = res.Reserve(ctx, "abc", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRedisReservations_Error(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	res := NewRedisReservations(client, "")
	mr.Close()

	_, err = res.Reserve(context.Background(), "abc", time.Minute)
	assert.ErrorContains(t, err, "appointments: reserve")
}

func TestMemoryReservations(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2025, 12, 1, 10, 0, 0, 0, time.UTC)
	res := NewMemoryReservations()
	res.now = func() time.Time { return now }

	ok, _ := res.Reserve(ctx, "abc", time.Minute)
	assert.True(t, ok)
	ok, _ = res.Reserve(ctx, "abc", time.Minute)
	assert.False(t, ok)

	now = now.Add(61 * time.Second)
	ok, _ = res.Reserve(ctx, "abc", time.Minute)
	assert.True(t, ok, "expired reservation")

	require.NoError(t, res.Release(ctx, "abc"))
	ok, _ = res.Reserve(ctx, "abc", time.Minute)
	assert.True(t, ok)
}
