package infra

import (
	"context"
	"time"

	"kisan-gateway/assistant/domain"
	"kisan-gateway/logging"
)

const (
	DefaultChatLogQueueSize = 256

	saveTimeout = 5 * time.Second
)

// ChatLogQueue desacopla o log de conversas do caminho da resposta: Enqueue nunca
// bloqueia e descarta quando a fila está cheia; Run grava no store em background.
type ChatLogQueue struct {
	store domain.ChatLogStore
	ch    chan domain.ChatLogEntry
}

var _ domain.ChatLogSink = (*ChatLogQueue)(nil)

func NewChatLogQueue(store domain.ChatLogStore, size int) *ChatLogQueue {
	if size <= 0 {
		size = DefaultChatLogQueueSize
	}
	return &ChatLogQueue{store: store, ch: make(chan domain.ChatLogEntry, size)}
}

func (q *ChatLogQueue) Enqueue(e domain.ChatLogEntry) bool {
	select {
	case q.ch <- e:
		return true
	default:
		return false
	}
}

// Run consome a fila até o ctx encerrar; depois grava o que ainda estiver no buffer.
// Erros do store só são logados.
func (q *ChatLogQueue) Run(ctx context.Context) error {
	logger := logging.FromCtx(ctx)
	for {
		select {
		case e := <-q.ch:
			q.save(context.WithoutCancel(ctx), e)
		case <-ctx.Done():
			flushed := q.drain(context.WithoutCancel(ctx))
			logger.Debug().Int("flushed", flushed).Msg("chat log queue stopped")
			return nil
		}
	}
}

func (q *ChatLogQueue) drain(ctx context.Context) int {
	n := 0
	for {
		select {
		case e := <-q.ch:
			q.save(ctx, e)
			n++
		default:
			return n
		}
	}
}

func (q *ChatLogQueue) save(ctx context.Context, e domain.ChatLogEntry) {
	ctx, cancel := context.WithTimeout(ctx, saveTimeout)
	defer cancel()

	if err := q.store.Save(ctx, e); err != nil {
		logging.FromCtx(ctx).Warn().Err(err).Str("id", e.ID).Msg("failed to save chat log")
	}
}

func (q *ChatLogQueue) Len() int { return len(q.ch) }
