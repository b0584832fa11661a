package security

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlidingWindowLimiter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	key := "u1"
	limiter := NewSlidingWindowLimiter(client, time.Minute, 2)

	base := time.Now()
	limiter.now = func() time.Time { return base }
	for i := 0; i < 2; i++ {
		ok, err := limiter.Allow(ctx, key)
		require.NoError(t, err)
		assert.True(t, ok)
	}
	ok, err := limiter.Allow(ctx, key)
	require.NoError(t, err)
	assert.False(t, ok)

	// every earlier entry has left the window
	limiter.now = func() time.Time { return base.Add(2 * time.Minute) }
	ok, err = limiter.Allow(ctx, key)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSlidingWindowLimiterKeysAreIndependent(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	ctx := context.Background()
	limiter := NewSlidingWindowLimiter(client, time.Minute, 1)
	ok, err := limiter.Allow(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = limiter.Allow(ctx, "u2")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = limiter.Allow(ctx, "u1")
	require.NoError(t, err)
	assert.False(t, ok)
}
