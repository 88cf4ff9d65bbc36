package infra

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"kisan-gateway/middleware/ratelimit/domain"
)

// Store é um token bucket por chave (x/time/rate) com limpeza de chaves ociosas.
type Store struct {
	mu           sync.Mutex
	entries      map[string]*bucketEntry
	rps          rate.Limit
	burst        int
	idleTTL      time.Duration
	cleanupEvery time.Duration
}

type bucketEntry struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

type StoreOption func(*Store)

func WithIdleTTL(d time.Duration) StoreOption {
	return func(s *Store) { s.idleTTL = d }
}

func WithCleanupEvery(d time.Duration) StoreOption {
	return func(s *Store) { s.cleanupEvery = d }
}

func NewStore(rps float64, burst int, opts ...StoreOption) *Store {
	s := &Store{
		entries:      make(map[string]*bucketEntry),
		rps:          rate.Limit(rps),
		burst:        burst,
		idleTTL:      15 * time.Minute,
		cleanupEvery: 2 * time.Minute,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) RPS() float64 { return float64(s.rps) }
func (s *Store) Burst() int   { return s.burst }

// Get implementa domain.LimiterStore.
func (s *Store) Get(key domain.Key) domain.Limiter {
	return s.limiter(string(key))
}

func (s *Store) limiter(key string) *rate.Limiter {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if ent, ok := s.entries[key]; ok {
		ent.lastSeen = now
		return ent.lim
	}

	lim := rate.NewLimiter(s.rps, s.burst)
	s.entries[key] = &bucketEntry{lim: lim, lastSeen: now}
	return lim
}

func (s *Store) Cleanup() {
	cutoff := time.Now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()

	for k, ent := range s.entries {
		if ent.lastSeen.Before(cutoff) {
			delete(s.entries, k)
		}
	}
}

// StartJanitor limpa chaves ociosas periodicamente até o ctx encerrar.
func (s *Store) StartJanitor(ctx context.Context) {
	startJanitor(ctx, s.cleanupEvery, s.Cleanup)
}
