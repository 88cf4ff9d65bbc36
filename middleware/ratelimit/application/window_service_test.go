package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kisan-gateway/middleware/ratelimit/domain"
)

// sequenceCounter devolve contagens crescentes a partir de 1, com a janela fixa em start.
type sequenceCounter struct {
	start time.Time
	count int64
	err   error
}

func (c *sequenceCounter) Hit(context.Context, domain.Key, time.Duration) (domain.WindowHit, error) {
	if c.err != nil {
		return domain.WindowHit{}, c.err
	}
	c.count++
	return domain.WindowHit{Count: c.count, WindowStart: c.start}, nil
}

type recordingStats struct {
	events []domain.StatsEvent
}

func (r *recordingStats) Record(_ context.Context, ev domain.StatsEvent) error {
	r.events = append(r.events, ev)
	return nil
}

func TestWindowService_AllowsUpToLimitThenDenies(t *testing.T) {
	start := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	counter := &sequenceCounter{start: start}
	svc := WindowService{
		Counter: counter,
		Limit:   3,
		Window:  time.Minute,
		Now:     func() time.Time { return start.Add(20 * time.Second) },
	}

	for i := 1; i <= 3; i++ {
		dec := svc.Decide(context.Background(), "10.0.0.1")
		require.Truef(t, dec.Allowed, "request %d should be allowed", i)
		assert.EqualValues(t, i, dec.Count)
	}

	dec := svc.Decide(context.Background(), "10.0.0.1")
	assert.False(t, dec.Allowed)
	assert.EqualValues(t, 4, dec.Count)
	assert.Equal(t, 40*time.Second, dec.RetryAfter)
}

func TestWindowService_DefaultsToTwentyFivePerMinute(t *testing.T) {
	counter := &sequenceCounter{start: time.Now()}
	svc := WindowService{Counter: counter}

	for i := 0; i < DefaultWindowLimit; i++ {
		require.True(t, svc.Decide(context.Background(), "k").Allowed)
	}
	assert.False(t, svc.Decide(context.Background(), "k").Allowed)
}

func TestWindowService_FailsOpenWhenCounterErrors(t *testing.T) {
	svc := WindowService{Counter: &sequenceCounter{err: errors.New("redis down")}, Limit: 1}

	dec := svc.Decide(context.Background(), "k")
	assert.True(t, dec.Allowed)
}

func TestWindowService_RecordsStats(t *testing.T) {
	stats := &recordingStats{}
	svc := WindowService{
		Counter: &sequenceCounter{start: time.Now()},
		Stats:   stats,
		Limit:   1,
		Scope:   "POST /chat",
	}

	svc.Decide(context.Background(), "k")
	svc.Decide(context.Background(), "k")

	require.Len(t, stats.events, 2)
	assert.True(t, stats.events[0].Allowed)
	assert.False(t, stats.events[1].Allowed)
	assert.Equal(t, "POST /chat", stats.events[1].Path)
	assert.Equal(t, domain.Key("k"), stats.events[1].Key)
}

func TestWindowService_AllowsWhenNoCounter(t *testing.T) {
	assert.True(t, WindowService{}.Decide(context.Background(), "k").Allowed)
}
