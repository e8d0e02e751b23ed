package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLimiter(t *testing.T) {
	now := time.Date(2025, 5, 2, 9, 30, 0, 0, time.UTC)
	l := NewMemoryLimiter(Config{RequestsPerMinute: 60, Burst: 2})
	l.now = func() time.Time { return now }
	ctx := context.Background()

	t.Run("Burst Then Deny", func(t *testing.T) {
		for i := 0; i < 2; i++ {
			d, err := l.Allow(ctx, "buyer-1")
			require.NoError(t, err)
			assert.True(t, d.Allowed)
		}
		d, err := l.Allow(ctx, "buyer-1")
		require.NoError(t, err)
		assert.False(t, d.Allowed)
		assert.Equal(t, time.Second, d.RetryAfter)
	})

	t.Run("Keys Are Independent", func(t *testing.T) {
		d, err := l.Allow(ctx, "seller-1")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	})

	t.Run("Refills Over Time", func(t *testing.T) {
		now = now.Add(time.Second)
		d, err := l.Allow(ctx, "buyer-1")
		require.NoError(t, err)
		assert.True(t, d.Allowed)
	})

	t.Run("Idle Keys Are Dropped", func(t *testing.T) {
		now = now.Add(time.Hour)
		_, _ = l.Allow(ctx, "fresh")
		assert.Len(t, l.visitors, 1)
	})
}

func TestRedisLimiter_Unavailable(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", DialTimeout: 100 * time.Millisecond, MaxRetries: -1})
	defer client.Close()

	_, err := NewRedisLimiter(client, "", Config{RequestsPerMinute: 10}).Allow(context.Background(), "buyer-1")

	assert.Error(t, err)
}
