package ratelimit

import (
	"net/http"
	"strconv"
	"time"

	"kisan-gateway/logging"
	"kisan-gateway/middleware/ratelimit/application"
	"kisan-gateway/middleware/ratelimit/domain"
)

type Options struct {
	Store               domain.LimiterStore
	Stats               domain.StatsStore
	KeyFn               KeyFunc
	RejectStatus        int
	RetryAfter          time.Duration
	AddRateLimitHeaders bool
}

type rateInfo interface {
	RPS() float64
	Burst() int
}

// Middleware aplica token bucket por cliente. Bloqueado: RejectStatus (429 por padrão),
// Retry-After e corpo JSON {"error": ...}.
func Middleware(opts Options) func(next http.Handler) http.Handler {
	if opts.Store == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusTooManyRequests
	}
	if opts.KeyFn == nil {
		opts.KeyFn = DefaultKeyFunc("", false)
	}

	svc := application.Service{
		Store:      opts.Store,
		RetryAfter: opts.RetryAfter,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := opts.KeyFn(r)

			if opts.AddRateLimitHeaders {
				w.Header().Set("X-RateLimit-Key", key)
				if ri, ok := opts.Store.(rateInfo); ok {
					w.Header().Set("X-RateLimit-RPS", formatFloat(ri.RPS()))
					w.Header().Set("X-RateLimit-Burst", strconv.Itoa(ri.Burst()))
				}
			}

			dec := svc.Decide(domain.Key(key))
			if opts.Stats != nil {
				err := opts.Stats.Record(r.Context(), domain.StatsEvent{
					Key:     domain.Key(key),
					Allowed: dec.Allowed,
					Method:  r.Method,
					Path:    r.URL.Path,
					At:      time.Now(),
				})
				if err != nil {
					logging.FromCtx(r.Context()).Debug().Err(err).Msg("failed to record rate limit stats")
				}
			}
			if !dec.Allowed {
				logging.FromCtx(r.Context()).Info().Str("key", key).Str("path", r.URL.Path).Msg("rate limited")
				w.Header().Set("Retry-After", retryAfterSeconds(dec.RetryAfter))
				writeError(w, opts.RejectStatus)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
