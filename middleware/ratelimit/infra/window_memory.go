package infra

import (
	"context"
	"sync"
	"time"

	"kisan-gateway/middleware/ratelimit/domain"
)

// MemoryWindowCounter mantém as janelas em memória, protegidas por um único mutex.
// Serve para uma instância só; para várias instâncias use RedisWindowCounter.
type MemoryWindowCounter struct {
	mu      sync.Mutex
	entries map[string]*windowEntry
	now     func() time.Time

	// maior janela já vista, usada pelo Cleanup
	maxWindow time.Duration
}

type windowEntry struct {
	start time.Time
	count int64
}

func NewMemoryWindowCounter() *MemoryWindowCounter {
	return &MemoryWindowCounter{
		entries: make(map[string]*windowEntry),
		now:     time.Now,
	}
}

// Hit implementa domain.WindowCounter.
func (c *MemoryWindowCounter) Hit(_ context.Context, key domain.Key, window time.Duration) (domain.WindowHit, error) {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	if window > c.maxWindow {
		c.maxWindow = window
	}

	ent, ok := c.entries[string(key)]
	if !ok || now.Sub(ent.start) > window {
		ent = &windowEntry{start: now}
		c.entries[string(key)] = ent
	}
	ent.count++

	return domain.WindowHit{Count: ent.count, WindowStart: ent.start}, nil
}

// Cleanup descarta janelas que já terminaram.
func (c *MemoryWindowCounter) Cleanup() {
	now := c.now()

	c.mu.Lock()
	defer c.mu.Unlock()

	for k, ent := range c.entries {
		if now.Sub(ent.start) > c.maxWindow {
			delete(c.entries, k)
		}
	}
}

func (c *MemoryWindowCounter) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *MemoryWindowCounter) StartJanitor(ctx context.Context, every time.Duration) {
	startJanitor(ctx, every, c.Cleanup)
}
