package assistant

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"kisan-gateway/logging"
)

// requestLogger coloca no ctx um logger com o request id e registra o resultado de cada requisição.
func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		logger := logging.FromCtx(r.Context()).With().
			Str("request_id", middleware.GetReqID(r.Context())).
			Logger()
		r = r.WithContext(logger.WithContext(r.Context()))

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		ev := logger.Debug()
		if status >= http.StatusInternalServerError {
			ev = logger.Warn()
		}
		ev.Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", status).
			Int("bytes", ww.BytesWritten()).
			Dur("elapsed", time.Since(start)).
			Msg("request")
	})
}
