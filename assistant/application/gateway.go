package application

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"kisan-gateway/assistant/domain"
	"kisan-gateway/logging"
	rldomain "kisan-gateway/middleware/ratelimit/domain"
)

const (
	DefaultTemperature     = 0.7
	DefaultMaxOutputTokens = 500
	DefaultChatTimeout     = 30 * time.Second
)

// RateLimiter decide se o cliente ainda pode chamar o modelo nesta janela.
// application.WindowService (middleware/ratelimit) implementa.
type RateLimiter interface {
	Decide(ctx context.Context, key rldomain.Key) rldomain.Decision
}

type GatewayOptions struct {
	Limiter RateLimiter
	LLM     domain.LLM
	// ChatLog é opcional; sem ele nada é registrado.
	ChatLog domain.ChatLogSink

	Params  domain.GenerationParams
	Timeout time.Duration
	// HistoryLimit mantém só os N itens mais recentes do histórico (0 = todos).
	HistoryLimit int

	Now func() time.Time
}

// Gateway transforma um pedido de chat em no máximo uma chamada ao modelo e uma resposta.
//
// Todas as falhas (limite, pergunta vazia, upstream fora, resposta vazia) viram texto
// localizado com Status success. Quem precisa distinguir falhas deve olhar o log,
// não este envelope.
type Gateway struct {
	limiter      RateLimiter
	llm          domain.LLM
	chatLog      domain.ChatLogSink
	params       domain.GenerationParams
	timeout      time.Duration
	historyLimit int
	now          func() time.Time
}

func NewGateway(opts GatewayOptions) *Gateway {
	if opts.Params.Temperature == 0 {
		opts.Params.Temperature = DefaultTemperature
	}
	if opts.Params.MaxOutputTokens <= 0 {
		opts.Params.MaxOutputTokens = DefaultMaxOutputTokens
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultChatTimeout
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Gateway{
		limiter:      opts.Limiter,
		llm:          opts.LLM,
		chatLog:      opts.ChatLog,
		params:       opts.Params,
		timeout:      opts.Timeout,
		historyLimit: opts.HistoryLimit,
		now:          opts.Now,
	}
}

func success(text string) domain.ChatReply {
	return domain.ChatReply{Text: text, Status: domain.StatusSuccess}
}

func (g *Gateway) Handle(ctx context.Context, req domain.ChatRequest, clientKey string) domain.ChatReply {
	logger := logging.FromCtx(ctx).With().Str("client", clientKey).Str("lang", string(req.LanguageMode)).Logger()
	lang := req.LanguageMode

	if g.limiter != nil {
		if dec := g.limiter.Decide(ctx, rldomain.Key(clientKey)); !dec.Allowed {
			logger.Info().Int64("count", dec.Count).Msg("chat rate limited")
			return success(localized(lang, msgRateLimited))
		}
	}

	message := strings.TrimSpace(req.Message)
	if message == "" {
		return success(localized(lang, msgEmptyQuestion))
	}

	history := req.History
	if g.historyLimit > 0 && len(history) > g.historyLimit {
		history = history[len(history)-g.historyLimit:]
	}

	prompt, err := RenderPrompt(PromptData{
		Date:                g.now().Format(promptDate),
		LanguageInstruction: languageInstruction(lang),
		Transcript:          RenderTranscript(history),
		Message:             stripTags(message),
	})
	if err != nil {
		logger.Error().Err(err).Msg("failed to render prompt")
		return success(localized(lang, msgUpstreamFailed))
	}

	// o ctx do request entra aqui: se o cliente desconectar, a chamada ao modelo é cancelada
	callCtx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	started := g.now()
	raw, err := g.llm.Generate(callCtx, prompt, g.params)
	elapsed := g.now().Sub(started)

	var text string
	if err != nil {
		logger.Warn().Err(err).Dur("elapsed", elapsed).Msg("upstream generation failed")
		text = g.failureText(lang, err)
	} else if text = NormalizeReply(raw); text == "" {
		logger.Warn().Dur("elapsed", elapsed).Msg("upstream returned empty text")
		text = localized(lang, msgAskAgain)
	} else {
		logger.Debug().Dur("elapsed", elapsed).Int("reply_len", len(text)).Msg("chat reply generated")
	}

	g.logExchange(ctx, clientKey, lang, message, text)
	return success(text)
}

func (g *Gateway) failureText(lang domain.LanguageMode, err error) string {
	var upErr *domain.UpstreamError
	switch {
	case errors.Is(err, domain.ErrNoCompletion):
		return localized(lang, msgAskAgain)
	case errors.As(err, &upErr) && (upErr.StatusCode == http.StatusBadRequest || upErr.StatusCode == http.StatusForbidden):
		return localized(lang, msgUpstreamRejected)
	default:
		return localized(lang, msgUpstreamFailed)
	}
}

func (g *Gateway) logExchange(ctx context.Context, clientKey string, lang domain.LanguageMode, message, reply string) {
	if g.chatLog == nil {
		return
	}
	ok := g.chatLog.Enqueue(domain.ChatLogEntry{
		ID:           uuid.NewString(),
		ClientKey:    clientKey,
		LanguageMode: lang,
		UserMessage:  message,
		BotResponse:  reply,
		Category:     Classify(message),
		CreatedAt:    g.now(),
	})
	if !ok {
		logging.FromCtx(ctx).Warn().Msg("chat log queue full, dropping entry")
	}
}
