package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// waitPool nunca libera vaga: Acquire só retorna quando o ctx encerra.
type waitPool struct{}

func (waitPool) Acquire(ctx context.Context) (func(), bool) {
	<-ctx.Done()
	return nil, false
}

type countingPool struct {
	acquired, released int
}

func (p *countingPool) Acquire(context.Context) (func(), bool) {
	p.acquired++
	return func() { p.released++ }, true
}

func TestConcurrencyService_NoPoolAlwaysAcquires(t *testing.T) {
	release, ok := ConcurrencyService{}.Acquire(context.Background())
	require.True(t, ok)
	assert.NotPanics(t, release)
}

func TestConcurrencyService_GivesUpAfterTimeout(t *testing.T) {
	svc := ConcurrencyService{Pool: waitPool{}, AcquireTimeout: 10 * time.Millisecond}

	start := time.Now()
	_, ok := svc.Acquire(context.Background())

	assert.False(t, ok)
	assert.Less(t, time.Since(start), time.Second)
}

func TestConcurrencyService_WithoutTimeoutFollowsCallerContext(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, ok := ConcurrencyService{Pool: waitPool{}}.Acquire(ctx)
	assert.False(t, ok)
}

func TestConcurrencyService_ReleaseReturnsSlot(t *testing.T) {
	pool := &countingPool{}
	svc := ConcurrencyService{Pool: pool, AcquireTimeout: time.Second}

	release, ok := svc.Acquire(context.Background())
	require.True(t, ok)
	release()

	assert.Equal(t, 1, pool.acquired)
	assert.Equal(t, 1, pool.released)
}
