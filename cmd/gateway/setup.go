package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"kisan-gateway/assistant"
	"kisan-gateway/assistant/application"
	"kisan-gateway/assistant/domain"
	"kisan-gateway/assistant/infra"
	"kisan-gateway/config"
	"kisan-gateway/logging"
	"kisan-gateway/middleware/ratelimit"
	rlapp "kisan-gateway/middleware/ratelimit/application"
	rldomain "kisan-gateway/middleware/ratelimit/domain"
	rlinfra "kisan-gateway/middleware/ratelimit/infra"
)

// app reúne o que o serve precisa para rodar e para desligar.
type app struct {
	router   http.Handler
	chatLog  *infra.ChatLogQueue
	janitors []func(ctx context.Context)
	closers  []func() error
}

func (a *app) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		errs = append(errs, a.closers[i]())
	}
	return errors.Join(errs...)
}

type rateBackend interface {
	rldomain.StatsStore
	rldomain.StatsReader
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	logger := logging.FromCtx(ctx)
	a := &app{}

	counter, stats, err := a.rateLimitBackend(ctx, cfg)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	llm, err := newLLM(ctx, cfg)
	if err != nil {
		_ = a.Close()
		return nil, err
	}

	gwOpts := application.GatewayOptions{
		Limiter: rlapp.WindowService{
			Counter: counter,
			Stats:   stats,
			Limit:   cfg.Chat.RateLimit,
			Window:  cfg.Chat.RateWindow,
			Scope:   "POST /chat",
		},
		LLM: llm,
		Params: domain.GenerationParams{
			Temperature:     cfg.Gemini.Temperature,
			MaxOutputTokens: cfg.Gemini.MaxOutputTokens,
		},
		Timeout:      cfg.Chat.Timeout,
		HistoryLimit: cfg.Chat.HistoryLimit,
	}
	if cfg.ChatLog.Path != "" {
		db, err := infra.OpenChatLogDB(ctx, cfg.ChatLog.Path)
		if err != nil {
			_ = a.Close()
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		a.chatLog = infra.NewChatLogQueue(infra.NewSQLiteChatLog(db), cfg.ChatLog.QueueSize)
		gwOpts.ChatLog = a.chatLog
		logger.Info().Str("path", cfg.ChatLog.Path).Msg("chat log enabled")
	}

	ttsOpts := application.TTSOptions{
		DefaultVoice: cfg.TTS.DefaultVoice,
		Timeout:      cfg.TTS.Timeout,
	}
	if cfg.TTS.MurfAPIKey != "" {
		ttsOpts.Speech = infra.NewMurfClient(infra.MurfConfig{
			APIKey:  cfg.TTS.MurfAPIKey,
			BaseURL: cfg.TTS.MurfBaseURL,
			Timeout: cfg.TTS.Timeout,
		})
	} else {
		logger.Warn().Msg("MURF_API_KEY not set, /tts will answer 503")
	}

	ttsStore := rlinfra.NewStore(cfg.TTS.RateRPS, cfg.TTS.RateBurst)
	a.janitors = append(a.janitors, ttsStore.StartJanitor)

	keyFn := ratelimit.DefaultKeyFunc(cfg.Server.RateKeyHeader, cfg.Server.TrustXFF)
	a.router = assistant.NewRouter(assistant.Options{
		Chat:        application.NewGateway(gwOpts),
		TTS:         application.NewTTSRelay(ttsOpts),
		Stats:       stats,
		KeyFn:       keyFn,
		AllowOrigin: cfg.Server.CORSAllowOrigin,
		TTSRateLimit: ratelimit.Options{
			Store: ttsStore,
			Stats: stats,
			KeyFn: keyFn,
		},
		TTSConcurrency: ratelimit.ConcurrencyOptions{
			Max:            cfg.TTS.ConcurrencyMax,
			AcquireTimeout: cfg.TTS.ConcurrencyTimeout,
		},
	})
	return a, nil
}

// rateLimitBackend usa Redis quando REDIS_ADDR está definido (contador compartilhado
// entre instâncias); sem ele, tudo fica em memória.
func (a *app) rateLimitBackend(ctx context.Context, cfg *config.Config) (rldomain.WindowCounter, rateBackend, error) {
	logger := logging.FromCtx(ctx)

	if cfg.Redis.Addr == "" {
		counter := rlinfra.NewMemoryWindowCounter()
		window := cfg.Chat.RateWindow
		a.janitors = append(a.janitors, func(ctx context.Context) { counter.StartJanitor(ctx, window) })
		logger.Info().Msg("rate limit: in-memory counters")
		return counter, rlinfra.NewMemoryStatsStore(), nil
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	a.closers = append(a.closers, rdb.Close)

	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return nil, nil, fmt.Errorf("redis ping %s: %w", cfg.Redis.Addr, err)
	}

	logger.Info().Str("addr", cfg.Redis.Addr).Msg("rate limit: redis counters")
	return rlinfra.NewRedisWindowCounter(rdb),
		rlinfra.NewRedisStatsStore(rdb,
			rlinfra.WithStatsPrefix(cfg.Redis.StatsPrefix),
			rlinfra.WithStatsTTL(cfg.Redis.StatsTTL),
		),
		nil
}

func newLLM(ctx context.Context, cfg *config.Config) (domain.LLM, error) {
	gc := infra.GeminiConfig{
		APIKey:  cfg.Gemini.APIKey,
		BaseURL: cfg.Gemini.BaseURL,
		Model:   cfg.Gemini.Model,
		Timeout: cfg.Chat.Timeout,
	}
	if cfg.Gemini.Backend == config.BackendGenAI {
		return infra.NewGenAIClient(ctx, gc)
	}
	return infra.NewGeminiClient(gc), nil
}

func openChatLog(ctx context.Context, path string) (*sql.DB, *infra.SQLiteChatLog, error) {
	if path == "" {
		return nil, nil, errors.New("CHATLOG_PATH is not set (or pass --db)")
	}
	db, err := infra.OpenChatLogDB(ctx, path)
	if err != nil {
		return nil, nil, err
	}
	return db, infra.NewSQLiteChatLog(db), nil
}
