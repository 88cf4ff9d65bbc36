package domain

// Camada de domínio do rate limit.
//
// Dois modelos convivem aqui:
//   - janela fixa (WindowCounter): usada no /chat, N requisições por janela por cliente
//   - token bucket (Limiter/LimiterStore): usada no /tts, com Retry-After

import (
	"context"
	"time"
)

type Key string

// Limiter representa algo que pode decidir se uma ação é permitida agora.
type Limiter interface {
	Allow() bool
}

// LimiterStore obtém um limiter por chave (ex: IP, API key).
type LimiterStore interface {
	Get(Key) Limiter
}

// WindowHit é o estado da janela depois de contabilizar uma requisição.
type WindowHit struct {
	Count       int64
	WindowStart time.Time
}

// WindowCounter incrementa atomicamente o contador da janela corrente da chave.
//
// Se a janela não existe ou já passou de `window`, ela é reiniciada com Count=1.
// A implementação precisa ser segura para requisições concorrentes da mesma chave.
type WindowCounter interface {
	Hit(ctx context.Context, key Key, window time.Duration) (WindowHit, error)
}

type Decision struct {
	Allowed bool
	// Count é o valor do contador da janela após esta requisição (0 para token bucket).
	Count int64
	// RetryAfter é o valor a ser retornado em Retry-After quando bloquear.
	// Se 0, não há recomendação.
	RetryAfter time.Duration
}
