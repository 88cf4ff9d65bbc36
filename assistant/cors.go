package assistant

import "net/http"

func cors(allowOrigin string) func(http.Handler) http.Handler {
	if allowOrigin == "" {
		allowOrigin = "*"
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := w.Header()
			h.Set("Access-Control-Allow-Origin", allowOrigin)
			h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
			h.Set("Access-Control-Allow-Headers", "Content-Type")
			if allowOrigin != "*" {
				h.Add("Vary", "Origin")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// preflight responde OPTIONS com 200 e corpo vazio; os headers vêm do cors.
func preflight(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}
