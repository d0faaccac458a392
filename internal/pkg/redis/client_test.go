package redis

import (
	"context"
	"strconv"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Gopher0727/SocialHub/config"
)

// setupTestRedis spins up an in-process miniredis and a Client against it.
func setupTestRedis(t *testing.T) (*Client, *miniredis.Miniredis) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	port, err := strconv.Atoi(mr.Port())
	require.NoError(t, err)

	client, err := NewClient(&config.RedisConfig{
		Host:         mr.Host(),
		Port:         port,
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 2,
	})
	require.NoError(t, err)

	t.Cleanup(func() {
		client.Close()
		mr.Close()
	})
	return client, mr
}

func TestNewClientConnectionFailure(t *testing.T) {
	client, err := NewClient(&config.RedisConfig{
		Host: "invalid",
		Port: 9999,
	})
	assert.Error(t, err)
	assert.Nil(t, client)
}

func TestNextGroupSeq(t *testing.T) {
	client, _ := setupTestRedis(t)
	ctx := context.Background()

	t.Run("increments per group", func(t *testing.T) {
		first, err := client.NextGroupSeq(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(1), first)

		second, err := client.NextGroupSeq(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(2), second)
	})

	t.Run("groups are independent", func(t *testing.T) {
		seq, err := client.NextGroupSeq(ctx, 2)
		require.NoError(t, err)
		assert.Equal(t, int64(1), seq)
	})
}

func TestUserPresence(t *testing.T) {
	client, mr := setupTestRedis(t)
	ctx := context.Background()

	t.Run("offline by default", func(t *testing.T) {
		online, err := client.IsUserOnline(ctx, 7)
		require.NoError(t, err)
		assert.False(t, online)
	})

	t.Run("online after set", func(t *testing.T) {
		require.NoError(t, client.SetUserOnline(ctx, 7, 2*time.Minute))

		online, err := client.IsUserOnline(ctx, 7)
		require.NoError(t, err)
		assert.True(t, online)
	})

	t.Run("flag expires with ttl", func(t *testing.T) {
		mr.FastForward(3 * time.Minute)

		online, err := client.IsUserOnline(ctx, 7)
		require.NoError(t, err)
		assert.False(t, online)
	})

	t.Run("explicit removal on disconnect", func(t *testing.T) {
		require.NoError(t, client.SetUserOnline(ctx, 8, 2*time.Minute))
		require.NoError(t, client.RemoveUserOnline(ctx, 8))

		online, err := client.IsUserOnline(ctx, 8)
		require.NoError(t, err)
		assert.False(t, online)
	})
}

func TestKVHelpers(t *testing.T) {
	client, _ := setupTestRedis(t)
	ctx := context.Background()

	require.NoError(t, client.Set(ctx, "k", "v", 0))

	val, err := client.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v", val)

	n, err := client.Exists(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	require.NoError(t, client.Del(ctx, "k"))
	n, err = client.Exists(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}
