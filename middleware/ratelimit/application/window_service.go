package application

import (
	"context"
	"time"

	"kisan-gateway/logging"
	"kisan-gateway/middleware/ratelimit/domain"
)

const (
	DefaultWindowLimit = 25
	DefaultWindow      = 60 * time.Second
)

// WindowService aplica o limite de janela fixa: no máximo Limit requisições por
// Window para cada chave. A requisição Limit+1 dentro da janela é negada.
//
// Se o contador falhar (ex: Redis fora), a decisão é permitir e registrar um aviso.
type WindowService struct {
	Counter domain.WindowCounter
	Stats   domain.StatsStore
	Limit   int64
	Window  time.Duration
	// Scope identifica o recurso nas estatísticas (ex: "POST /chat").
	Scope string

	Now func() time.Time
}

func (s WindowService) Decide(ctx context.Context, key domain.Key) domain.Decision {
	if s.Counter == nil {
		return domain.Decision{Allowed: true}
	}
	if s.Limit <= 0 {
		s.Limit = DefaultWindowLimit
	}
	if s.Window <= 0 {
		s.Window = DefaultWindow
	}
	if s.Now == nil {
		s.Now = time.Now
	}

	hit, err := s.Counter.Hit(ctx, key, s.Window)
	if err != nil {
		logging.FromCtx(ctx).Warn().Err(err).Str("key", string(key)).Msg("rate limit counter unavailable, allowing request")
		return domain.Decision{Allowed: true}
	}

	dec := domain.Decision{Allowed: hit.Count <= s.Limit, Count: hit.Count}
	if !dec.Allowed {
		dec.RetryAfter = hit.WindowStart.Add(s.Window).Sub(s.Now())
		if dec.RetryAfter < 0 {
			dec.RetryAfter = 0
		}
	}

	s.record(ctx, key, dec.Allowed)
	return dec
}

func (s WindowService) record(ctx context.Context, key domain.Key, allowed bool) {
	if s.Stats == nil {
		return
	}
	ev := domain.StatsEvent{Key: key, Allowed: allowed, Path: s.Scope, At: s.Now()}
	if err := s.Stats.Record(ctx, ev); err != nil {
		logging.FromCtx(ctx).Debug().Err(err).Msg("failed to record rate limit stats")
	}
}
