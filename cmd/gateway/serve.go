package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"kisan-gateway/config"
	"kisan-gateway/logging"
)

const shutdownTimeout = 10 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP gateway",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		var flushLog func()
		ctx, flushLog = setupLogger(ctx, cfg.Server.LogJSON)
		defer flushLog()
		logger := logging.FromCtx(ctx)

		a, err := newApp(ctx, cfg)
		if err != nil {
			logger.Error().Err(err).Msg("failed to start gateway")
			return err
		}
		defer func() {
			if err := a.Close(); err != nil {
				logger.Warn().Err(err).Msg("error while closing resources")
			}
		}()

		return serve(ctx, cfg, a)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve(ctx context.Context, cfg *config.Config, a *app) error {
	logger := logging.FromCtx(ctx)

	// requests não herdam o cancelamento do sinal; o Shutdown espera os que estão em andamento
	baseCtx := context.WithoutCancel(ctx)
	srv := &http.Server{
		Addr:              cfg.Server.ListenAddr,
		Handler:           a.router,
		BaseContext:       func(net.Listener) context.Context { return baseCtx },
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      max(cfg.Chat.Timeout, cfg.TTS.Timeout) + 10*time.Second,
		IdleTimeout:       90 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	for _, start := range a.janitors {
		start(gctx)
	}

	// a fila do chat log só para depois do servidor, para não perder o que os últimos requests enfileiraram
	queueCtx, stopQueue := context.WithCancel(baseCtx)
	defer stopQueue()
	if a.chatLog != nil {
		g.Go(func() error { return a.chatLog.Run(queueCtx) })
	}

	g.Go(func() error {
		logger.Info().
			Str("addr", cfg.Server.ListenAddr).
			Int64("chat_limit", cfg.Chat.RateLimit).
			Dur("chat_window", cfg.Chat.RateWindow).
			Str("llm_backend", cfg.Gemini.Backend).
			Str("model", cfg.Gemini.Model).
			Msg("gateway listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		defer stopQueue()

		shutdownCtx, cancel := context.WithTimeout(baseCtx, shutdownTimeout)
		defer cancel()
		logger.Info().Msg("shutting down")
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error().Err(err).Msg("gateway stopped with error")
		return err
	}
	logger.Info().Msg("gateway has been shut down gracefully")
	return nil
}
