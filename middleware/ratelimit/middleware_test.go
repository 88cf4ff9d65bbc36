package ratelimit

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"kisan-gateway/middleware/ratelimit/infra"
)

func TestMiddleware_AllowsThenRejectsSameKey(t *testing.T) {
	store := infra.NewStore(0.02, 1)
	stats := infra.NewMemoryStatsStore()

	calls := 0
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusOK)
		_, _ = io.WriteString(w, "ok")
	})

	h := Middleware(Options{
		Store:               store,
		Stats:               stats,
		RetryAfter:          1 * time.Second,
		AddRateLimitHeaders: true,
	})(next)

	// 1) primeira passa
	r1 := httptest.NewRequest(http.MethodPost, "http://example/tts", nil)
	r1.RemoteAddr = "10.0.0.1:1234"
	w1 := httptest.NewRecorder()
	h.ServeHTTP(w1, r1)
	if w1.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w1.Code)
	}
	if got := w1.Header().Get("X-RateLimit-Key"); got != "10.0.0.1" {
		t.Fatalf("expected X-RateLimit-Key=10.0.0.1, got %q", got)
	}
	if got := w1.Header().Get("X-RateLimit-Burst"); got != "1" {
		t.Fatalf("expected X-RateLimit-Burst=1, got %q", got)
	}

	// 2) segunda bloqueia (burst=1 e rps bem baixo)
	r2 := httptest.NewRequest(http.MethodPost, "http://example/tts", nil)
	r2.RemoteAddr = "10.0.0.1:1234"
	w2 := httptest.NewRecorder()
	h.ServeHTTP(w2, r2)
	if w2.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", w2.Code)
	}
	if got := w2.Header().Get("Retry-After"); got != "1" {
		t.Fatalf("expected Retry-After=1, got %q", got)
	}

	var body map[string]string
	if err := json.NewDecoder(w2.Body).Decode(&body); err != nil {
		t.Fatalf("expected JSON error body: %v", err)
	}
	if body["error"] == "" {
		t.Fatalf("expected error field in body, got %v", body)
	}

	if calls != 1 {
		t.Fatalf("expected next handler to be called once, got %d", calls)
	}
	if got := stats.ByRoute()["POST /tts"]; got.Allowed != 1 || got.Denied != 1 {
		t.Fatalf("expected 1 allowed / 1 denied for POST /tts, got %+v", got)
	}
}

func TestMiddleware_KeyByHeader(t *testing.T) {
	store := infra.NewStore(0.02, 1)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	h := Middleware(Options{
		Store: store,
		KeyFn: DefaultKeyFunc("X-Api-Key", false),
	})(next)

	// duas chaves diferentes => ambas passam (cada chave tem seu próprio limiter)
	for _, k := range []string{"k1", "k2"} {
		r := httptest.NewRequest(http.MethodPost, "http://example/tts", nil)
		r.Header.Set("X-Api-Key", k)
		r.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200 for key %s, got %d", k, w.Code)
		}
	}
}

func TestMiddleware_RetryAfterRoundsUp(t *testing.T) {
	store := infra.NewStore(0.02, 1)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	h := Middleware(Options{
		Store:      store,
		RetryAfter: 2500 * time.Millisecond,
	})(next)

	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		r := httptest.NewRequest(http.MethodPost, "http://example/tts", nil)
		r.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, r)
		if w.Code != want {
			t.Fatalf("request %d: expected %d, got %d", i+1, want, w.Code)
		}
		if want == http.StatusTooManyRequests {
			if got := strings.TrimSpace(w.Header().Get("Retry-After")); got != "3" {
				t.Fatalf("expected Retry-After=3, got %q", got)
			}
		}
	}
}

func TestMiddleware_NilStorePassesThrough(t *testing.T) {
	called := false
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { called = true })

	Middleware(Options{})(next).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	if !called {
		t.Fatalf("expected next handler to be called")
	}
}
