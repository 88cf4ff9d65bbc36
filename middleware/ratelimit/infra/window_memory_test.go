package infra

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kisan-gateway/middleware/ratelimit/domain"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestCounter() (*MemoryWindowCounter, *fakeClock) {
	clock := &fakeClock{now: time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)}
	c := NewMemoryWindowCounter()
	c.now = clock.Now
	return c, clock
}

func TestMemoryWindowCounter_CountsWithinWindow(t *testing.T) {
	c, clock := newTestCounter()
	ctx := context.Background()
	start := clock.Now()

	for i := 1; i <= 3; i++ {
		hit, err := c.Hit(ctx, "k", time.Minute)
		require.NoError(t, err)
		assert.EqualValues(t, i, hit.Count)
		assert.Equal(t, start, hit.WindowStart)
		clock.Advance(10 * time.Second)
	}
}

func TestMemoryWindowCounter_ResetsOnlyAfterWindowElapsed(t *testing.T) {
	c, clock := newTestCounter()
	ctx := context.Background()

	_, _ = c.Hit(ctx, "k", time.Minute)

	// exatamente 60s ainda é a mesma janela
	clock.Advance(time.Minute)
	hit, _ := c.Hit(ctx, "k", time.Minute)
	assert.EqualValues(t, 2, hit.Count)

	clock.Advance(time.Millisecond)
	hit, _ = c.Hit(ctx, "k", time.Minute)
	assert.EqualValues(t, 1, hit.Count)
	assert.Equal(t, clock.Now(), hit.WindowStart)
}

func TestMemoryWindowCounter_KeysAreIndependent(t *testing.T) {
	c, _ := newTestCounter()
	ctx := context.Background()

	_, _ = c.Hit(ctx, "a", time.Minute)
	_, _ = c.Hit(ctx, "a", time.Minute)
	hit, _ := c.Hit(ctx, "b", time.Minute)

	assert.EqualValues(t, 1, hit.Count)
}

func TestMemoryWindowCounter_ConcurrentHitsAreNotLost(t *testing.T) {
	c := NewMemoryWindowCounter()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = c.Hit(ctx, domain.Key("burst"), time.Minute)
		}()
	}
	wg.Wait()

	hit, err := c.Hit(ctx, "burst", time.Minute)
	require.NoError(t, err)
	assert.EqualValues(t, 201, hit.Count)
}

func TestMemoryWindowCounter_CleanupDropsExpiredWindows(t *testing.T) {
	c, clock := newTestCounter()
	ctx := context.Background()

	_, _ = c.Hit(ctx, "old", time.Minute)
	clock.Advance(45 * time.Second)
	_, _ = c.Hit(ctx, "new", time.Minute)
	clock.Advance(20 * time.Second)

	c.Cleanup()

	assert.Equal(t, 1, c.Len())
}
