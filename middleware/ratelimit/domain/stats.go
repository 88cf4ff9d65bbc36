package domain

import (
	"context"
	"time"
)

// StatsEvent representa um evento de decisão do rate limit.
//
// Method/Path são strings genéricas; cuidado com cardinalidade ao salvar Key.
type StatsEvent struct {
	Key     Key
	Allowed bool

	Method string
	Path   string

	At time.Time
}

// StatsStore persiste estatísticas do rate limit.
// Quem chama trata erro como best-effort (não derruba request).
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}

type Counters struct {
	Allowed int64 `json:"allowed"`
	Denied  int64 `json:"denied"`
}

// StatsReader é implementado pelos stores que conseguem devolver os totais.
type StatsReader interface {
	Totals(ctx context.Context) (Counters, error)
}
