package ratelimit

import (
	"net/http"
	"time"

	"kisan-gateway/middleware/ratelimit/application"
	"kisan-gateway/middleware/ratelimit/infra"
)

type ConcurrencyOptions struct {
	Max            int
	RejectStatus   int
	AcquireTimeout time.Duration
}

// ConcurrencyMiddleware limita quantas requisições passam ao mesmo tempo. Max <= 0 desliga.
func ConcurrencyMiddleware(opts ConcurrencyOptions) func(next http.Handler) http.Handler {
	if opts.Max <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	if opts.RejectStatus == 0 {
		opts.RejectStatus = http.StatusServiceUnavailable
	}

	svc := application.ConcurrencyService{
		Pool:           infra.NewChanPool(opts.Max),
		AcquireTimeout: opts.AcquireTimeout,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			release, ok := svc.Acquire(r.Context())
			if !ok {
				writeError(w, opts.RejectStatus)
				return
			}
			defer release()

			next.ServeHTTP(w, r)
		})
	}
}
