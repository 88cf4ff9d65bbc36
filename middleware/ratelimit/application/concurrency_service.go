package application

import (
	"context"
	"time"

	"kisan-gateway/middleware/ratelimit/domain"
)

// ConcurrencyService concentra a regra de aquisição de vagas com timeout,
// sem saber nada sobre HTTP.
type ConcurrencyService struct {
	Pool           domain.SlotPool
	AcquireTimeout time.Duration
}

// Acquire tenta adquirir uma vaga.
//   - AcquireTimeout <= 0: espera até o ctx cancelar.
//   - AcquireTimeout > 0: espera no máximo o timeout.
//
// Com ok=false nenhuma vaga foi adquirida e release é nil.
func (s ConcurrencyService) Acquire(ctx context.Context) (release func(), ok bool) {
	if s.Pool == nil {
		return func() {}, true
	}
	if s.AcquireTimeout <= 0 {
		return s.Pool.Acquire(ctx)
	}

	acqCtx, cancel := context.WithTimeout(ctx, s.AcquireTimeout)
	defer cancel()
	return s.Pool.Acquire(acqCtx)
}
