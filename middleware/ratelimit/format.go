package ratelimit

import (
	"encoding/json"
	"math"
	"net/http"
	"strconv"
	"time"
)

func formatFloat(v float64) string {
	// sem notação científica para valores comuns
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// retryAfterSeconds arredonda para cima: Retry-After: 0 faria o cliente repetir na hora.
func retryAfterSeconds(d time.Duration) string {
	s := int(math.Ceil(d.Seconds()))
	if s < 1 {
		s = 1
	}
	return strconv.Itoa(s)
}

func writeError(w http.ResponseWriter, status int) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": http.StatusText(status)})
}
