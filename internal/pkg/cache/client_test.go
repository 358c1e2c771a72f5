package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocabin/internal/pkg/cache"
)

func newClient(t *testing.T) (*cache.RedisClient, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client, err := cache.NewRedisClient(mr.Addr())
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })
	return client, mr
}

func TestSetGetDelete(t *testing.T) {
	client, _ := newClient(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "k", "v", time.Minute))
	v, err := client.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", v)

	require.NoError(t, client.Delete(ctx, "k"))
	_, err = client.Get(ctx, "k")
	assert.ErrorIs(t, err, cache.ErrCacheMiss)
}

func TestIncr_SetsExpirationOnFirstHit(t *testing.T) {
	client, mr := newClient(t)
	ctx := context.Background()

	n, err := client.Incr(ctx, "counter", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
	assert.Equal(t, time.Minute, mr.TTL("counter"))

	n, err = client.Incr(ctx, "counter", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	mr.FastForward(time.Minute + time.Second)
	n, err = client.Incr(ctx, "counter", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestIncr_RestoresMissingExpiration(t *testing.T) {
	client, mr := newClient(t)
	ctx := context.Background()

	// Contador gravado sem TTL nunca expiraria.
	require.NoError(t, mr.Set("rate-limit:10.0.0.1", "150"))
	require.Equal(t, time.Duration(0), mr.TTL("rate-limit:10.0.0.1"))

	n, err := client.Incr(ctx, "rate-limit:10.0.0.1", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(151), n)
	assert.Equal(t, time.Minute, mr.TTL("rate-limit:10.0.0.1"))

	mr.FastForward(time.Minute + time.Second)
	n, err = client.Incr(ctx, "rate-limit:10.0.0.1", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestNewRedisClient_PingFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	client, err := cache.NewRedisClient(addr)
	assert.Error(t, err)
	assert.NotNil(t, client)
	client.Close()
}
