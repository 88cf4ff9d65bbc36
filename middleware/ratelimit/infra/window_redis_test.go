package infra

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMiniRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestRedisWindowCounter_IncrementsAndSetsTTL(t *testing.T) {
	mr, rdb := newMiniRedis(t)
	c := NewRedisWindowCounter(rdb, WithWindowPrefix("test:window:"))
	ctx := context.Background()

	for i := 1; i <= 3; i++ {
		hit, err := c.Hit(ctx, "10.0.0.1", time.Minute)
		require.NoError(t, err)
		assert.EqualValues(t, i, hit.Count)
	}

	assert.True(t, mr.Exists("test:window:10.0.0.1"))
	assert.Equal(t, time.Minute, mr.TTL("test:window:10.0.0.1"))
}

func TestRedisWindowCounter_ResetsAfterWindow(t *testing.T) {
	mr, rdb := newMiniRedis(t)
	c := NewRedisWindowCounter(rdb)
	ctx := context.Background()

	_, err := c.Hit(ctx, "k", time.Minute)
	require.NoError(t, err)
	_, err = c.Hit(ctx, "k", time.Minute)
	require.NoError(t, err)

	mr.FastForward(61 * time.Second)

	hit, err := c.Hit(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.EqualValues(t, 1, hit.Count)
}

func TestRedisWindowCounter_RestoresMissingTTL(t *testing.T) {
	mr, rdb := newMiniRedis(t)
	c := NewRedisWindowCounter(rdb)

	// chave sem TTL, como se o PEXPIRE anterior tivesse se perdido
	require.NoError(t, mr.Set("ratelimit:window:k", "4"))

	hit, err := c.Hit(context.Background(), "k", time.Minute)
	require.NoError(t, err)
	assert.EqualValues(t, 5, hit.Count)
	assert.Equal(t, time.Minute, mr.TTL("ratelimit:window:k"))
}

func TestRedisWindowCounter_ReturnsErrorWhenRedisDown(t *testing.T) {
	mr, rdb := newMiniRedis(t)
	c := NewRedisWindowCounter(rdb)
	mr.SetError("ERR injected failure")

	_, err := c.Hit(context.Background(), "k", time.Minute)
	assert.Error(t, err)
}

func TestRedisWindowCounter_ConcurrentInstancesShareOneWindow(t *testing.T) {
	mr, rdb := newMiniRedis(t)
	instances := []*RedisWindowCounter{NewRedisWindowCounter(rdb), NewRedisWindowCounter(rdb)}

	const hits = 40
	counts := make(chan int64, hits)
	var wg sync.WaitGroup
	for i := 0; i < hits; i++ {
		wg.Add(1)
		go func(c *RedisWindowCounter) {
			defer wg.Done()
			hit, err := c.Hit(context.Background(), "10.0.0.9", time.Minute)
			if assert.NoError(t, err) {
				counts <- hit.Count
			}
		}(instances[i%2])
	}
	wg.Wait()
	close(counts)

	seen := make(map[int64]bool)
	for n := range counts {
		assert.False(t, seen[n], "count %d returned twice", n)
		seen[n] = true
	}
	assert.Len(t, seen, hits)
	assert.Equal(t, time.Minute, mr.TTL("ratelimit:window:10.0.0.9"))
}

func TestRedisWindowCounter_WindowStartFollowsTTL(t *testing.T) {
	mr, rdb := newMiniRedis(t)
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	c := NewRedisWindowCounter(rdb)
	c.now = func() time.Time { return now }

	first, err := c.Hit(context.Background(), "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, now, first.WindowStart)

	mr.FastForward(20 * time.Second)
	now = now.Add(20 * time.Second)

	second, err := c.Hit(context.Background(), "k", time.Minute)
	require.NoError(t, err)
	assert.EqualValues(t, 2, second.Count)
	assert.Equal(t, first.WindowStart, second.WindowStart)
}
