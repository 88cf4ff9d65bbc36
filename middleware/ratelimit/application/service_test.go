package application

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"kisan-gateway/middleware/ratelimit/domain"
)

type stubLimiter bool

func (s stubLimiter) Allow() bool { return bool(s) }

type stubStore struct {
	lim  domain.Limiter
	keys []domain.Key
}

func (s *stubStore) Get(k domain.Key) domain.Limiter {
	s.keys = append(s.keys, k)
	return s.lim
}

func TestService_Decide(t *testing.T) {
	tests := []struct {
		name       string
		store      domain.LimiterStore
		retryAfter time.Duration
		want       domain.Decision
	}{
		{name: "no store", want: domain.Decision{Allowed: true}},
		{name: "store without limiter", store: &stubStore{}, want: domain.Decision{Allowed: true}},
		{name: "bucket has tokens", store: &stubStore{lim: stubLimiter(true)}, retryAfter: 5 * time.Second, want: domain.Decision{Allowed: true}},
		{name: "empty bucket, default retry", store: &stubStore{lim: stubLimiter(false)}, want: domain.Decision{RetryAfter: time.Second}},
		{name: "empty bucket, configured retry", store: &stubStore{lim: stubLimiter(false)}, retryAfter: 2500 * time.Millisecond, want: domain.Decision{RetryAfter: 2500 * time.Millisecond}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := Service{Store: tt.store, RetryAfter: tt.retryAfter}
			assert.Equal(t, tt.want, svc.Decide("10.0.0.1"))
		})
	}
}

func TestService_Decide_LooksUpByClientKey(t *testing.T) {
	store := &stubStore{lim: stubLimiter(true)}
	svc := Service{Store: store}

	svc.Decide("farm-1")
	svc.Decide("farm-2")

	assert.Equal(t, []domain.Key{"farm-1", "farm-2"}, store.keys)
}
