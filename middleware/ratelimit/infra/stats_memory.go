package infra

import (
	"context"
	"sync"

	"kisan-gateway/middleware/ratelimit/domain"
)

// MemoryStatsStore é uma implementação simples em memória.
// Não faz expiração; com trackKeys a cardinalidade cresce com o número de clientes.
type MemoryStatsStore struct {
	mu      sync.Mutex
	total   domain.Counters
	byRoute map[string]domain.Counters
	byKey   map[string]domain.Counters

	trackKeys bool
}

type MemoryStatsOption func(*MemoryStatsStore)

func WithTrackKeys(track bool) MemoryStatsOption {
	return func(s *MemoryStatsStore) { s.trackKeys = track }
}

func NewMemoryStatsStore(opts ...MemoryStatsOption) *MemoryStatsStore {
	s := &MemoryStatsStore{
		byRoute: make(map[string]domain.Counters),
		byKey:   make(map[string]domain.Counters),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func bump(c domain.Counters, allowed bool) domain.Counters {
	if allowed {
		c.Allowed++
	} else {
		c.Denied++
	}
	return c
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	route := ev.Method + " " + ev.Path

	s.mu.Lock()
	defer s.mu.Unlock()

	s.total = bump(s.total, ev.Allowed)
	s.byRoute[route] = bump(s.byRoute[route], ev.Allowed)
	if s.trackKeys {
		s.byKey[string(ev.Key)] = bump(s.byKey[string(ev.Key)], ev.Allowed)
	}
	return nil
}

// Totals implementa domain.StatsReader.
func (s *MemoryStatsStore) Totals(context.Context) (domain.Counters, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total, nil
}

func (s *MemoryStatsStore) ByRoute() map[string]domain.Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyCounters(s.byRoute)
}

func (s *MemoryStatsStore) ByKey() map[string]domain.Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return copyCounters(s.byKey)
}

func copyCounters(in map[string]domain.Counters) map[string]domain.Counters {
	out := make(map[string]domain.Counters, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
