package ratelimit

import (
	"net"
	"net/http"
	"strings"
)

type KeyFunc func(r *http.Request) string

// DefaultKeyFunc identifica o cliente por header configurado, depois pelo primeiro IP
// do X-Forwarded-For (só com trustXFF) e por fim pelo host de RemoteAddr.
func DefaultKeyFunc(keyHeader string, trustXFF bool) KeyFunc {
	return func(r *http.Request) string {
		if keyHeader != "" {
			if v := strings.TrimSpace(r.Header.Get(keyHeader)); v != "" {
				return v
			}
		}

		if trustXFF {
			if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
				first, _, _ := strings.Cut(xff, ",")
				if ip := strings.TrimSpace(first); ip != "" {
					return ip
				}
			}
		}

		host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
		if err == nil && host != "" {
			return host
		}
		if r.RemoteAddr != "" {
			return r.RemoteAddr
		}
		return "unknown"
	}
}
